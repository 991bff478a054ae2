// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/classfront/internal/backend"
)

// errUnsupportedBody is returned for bodies that are neither JSON nor a form.
var errUnsupportedBody = errors.New("unsupported request body")

// input is a submitted form. The Inertia client posts JSON unless the form
// holds a file, in which case it sends multipart/form-data.
type input struct {
	values map[string]any
	files  map[string]*multipart.FileHeader
}

// readInput decodes the request body. A missing body yields empty input.
// multipartMemory bounds the in-memory share of multipart bodies.
func readInput(r *http.Request, multipartMemory int64) (*input, error) {
	in := &input{values: map[string]any{}, files: map[string]*multipart.FileHeader{}}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return in, nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("parse content type: %w", err)
	}

	switch mediaType {
	case "application/json":
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		if len(bytes.TrimSpace(body)) == 0 {
			return in, nil
		}
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&in.values); err != nil {
			return nil, fmt.Errorf("decode JSON body: %w", err)
		}
		if in.values == nil {
			in.values = map[string]any{}
		}

	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, fmt.Errorf("parse multipart body: %w", err)
		}
		copyFormValues(in.values, r.MultipartForm.Value)
		for field, headers := range r.MultipartForm.File {
			if len(headers) > 0 && headers[0].Size > 0 {
				in.files[field] = headers[0]
			}
		}

	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("parse form body: %w", err)
		}
		copyFormValues(in.values, r.PostForm)

	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedBody, mediaType)
	}
	return in, nil
}

func copyFormValues(dst map[string]any, src map[string][]string) {
	for key, values := range src {
		switch len(values) {
		case 0:
		case 1:
			dst[key] = values[0]
		default:
			list := make([]any, len(values))
			for i, v := range values {
				list[i] = v
			}
			dst[key] = list
		}
	}
}

// String returns a scalar field as text, or "".
func (in *input) String(key string) string {
	return formString(in.values[key])
}

// Has reports whether a non-file field was submitted.
func (in *input) Has(key string) bool {
	_, ok := in.values[key]
	return ok
}

// File returns an uploaded, non-empty file, or nil.
func (in *input) File(key string) *multipart.FileHeader {
	return in.files[key]
}

// Except returns the submitted fields without the named ones. Files are
// never included.
func (in *input) Except(keys ...string) map[string]any {
	out := make(map[string]any, len(in.values))
	for k, v := range in.values {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Strings returns every scalar field as text, for re-filling forms.
func (in *input) Strings() map[string]string {
	out := make(map[string]string, len(in.values))
	for k, v := range in.values {
		switch v.(type) {
		case map[string]any, []any:
			continue
		}
		out[k] = formString(v)
	}
	return out
}

// Form builds a multipart body from the fields minus except, attaching
// the named files when they were uploaded.
func (in *input) Form(except []string, files ...string) *backend.Form {
	form := backend.NewForm()
	fields := in.Except(except...)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		appendFormField(form, k, fields[k])
	}
	for _, field := range files {
		if fh := in.File(field); fh != nil {
			form.AddFileHeader(field, fh)
		}
	}
	return form
}

// appendFormField flattens nested values the way the Inertia client does
// (tags[0], meta[level]).
func appendFormField(form *backend.Form, key string, value any) {
	switch v := value.(type) {
	case []any:
		for i, item := range v {
			appendFormField(form, key+"["+strconv.Itoa(i)+"]", item)
		}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			appendFormField(form, key+"["+k+"]", v[k])
		}
	default:
		form.Add(key, formString(v))
	}
}

func formString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "1"
		}
		return "0"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
