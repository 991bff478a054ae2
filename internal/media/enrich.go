// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package media

import "strings"

// AssetURL makes an uploaded file path absolute against the API origin.
// Anything already starting with "http" is returned as-is.
func AssetURL(origin, path string) string {
	if path == "" || strings.HasPrefix(path, "http") {
		return path
	}
	origin = strings.TrimRight(origin, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return origin + path
}

// Media fields rewritten by Enricher.
const (
	thumbnailField    = "thumbnail_url"
	videoField        = "video_url"
	previewVideoField = "preview_video_url"
)

// Enricher rewrites media fields in decoded API documents so pages can use
// them directly.
type Enricher struct {
	origin string
}

// NewEnricher creates an enricher for uploads served from origin.
func NewEnricher(origin string) *Enricher {
	return &Enricher{origin: strings.TrimRight(origin, "/")}
}

// Origin returns the asset origin.
func (e *Enricher) Origin() string {
	return e.origin
}

// Enrich walks doc in place and returns it:
//
//   - a relative thumbnail_url becomes absolute
//   - a YouTube video_url or preview_video_url gains a video_embed_url or
//     preview_video_embed_url sibling
//   - an uploaded video_url or preview_video_url becomes absolute
func (e *Enricher) Enrich(doc any) any {
	switch v := doc.(type) {
	case map[string]any:
		e.enrichObject(v)
		for _, child := range v {
			e.Enrich(child)
		}
	case []any:
		for _, item := range v {
			e.Enrich(item)
		}
	}
	return doc
}

func (e *Enricher) enrichObject(obj map[string]any) {
	if thumb, ok := obj[thumbnailField].(string); ok {
		obj[thumbnailField] = AssetURL(e.origin, thumb)
	}

	for _, field := range []string{videoField, previewVideoField} {
		link, ok := obj[field].(string)
		if !ok || link == "" {
			continue
		}
		if IsYouTubeURL(link) {
			if embed, ok := YouTubeEmbedURL(link); ok {
				obj[strings.TrimSuffix(field, "_url")+"_embed_url"] = embed
			}
			continue
		}
		obj[field] = AssetURL(e.origin, link)
	}
}
