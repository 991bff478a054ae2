// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package media

import (
	"regexp"
	"strings"
)

var (
	youtubeLinkPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`)
	youtubeIDPattern   = regexp.MustCompile(`^([a-zA-Z0-9_-]{11})$`)
	youtubeHostPattern = regexp.MustCompile(`youtube\.com|youtu\.be`)
)

const youtubeEmbedBase = "https://www.youtube.com/embed/"

// YouTubeVideoID extracts the video ID from a watch, short or embed link,
// or accepts a bare 11-character ID.
func YouTubeVideoID(url string) (string, bool) {
	if url == "" {
		return "", false
	}
	for _, pattern := range []*regexp.Regexp{youtubeLinkPattern, youtubeIDPattern} {
		if m := pattern.FindStringSubmatch(url); len(m) > 1 && m[1] != "" {
			return m[1], true
		}
	}
	return "", false
}

// YouTubeEmbedURL returns the embeddable player URL for url. Embed links
// are returned unchanged.
func YouTubeEmbedURL(url string) (string, bool) {
	if url == "" {
		return "", false
	}
	if strings.Contains(url, "youtube.com/embed/") {
		return url, true
	}
	id, ok := YouTubeVideoID(url)
	if !ok {
		return "", false
	}
	return youtubeEmbedBase + id, true
}

// IsYouTubeURL reports whether url points at YouTube.
func IsYouTubeURL(url string) bool {
	return url != "" && youtubeHostPattern.MatchString(url)
}
