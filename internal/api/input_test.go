// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package api

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestReadInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		body        string
		want        map[string]string
		wantErr     bool
	}{
		{
			name:        "json",
			contentType: "application/json",
			body:        `{"email":"a@b.c","remember":true,"price":150000.5,"qty":2}`,
			want:        map[string]string{"email": "a@b.c", "remember": "1", "price": "150000.5", "qty": "2"},
		},
		{
			name:        "json with charset",
			contentType: "application/json; charset=utf-8",
			body:        `{"name":"Budi"}`,
			want:        map[string]string{"name": "Budi"},
		},
		{
			name:        "empty json body",
			contentType: "application/json",
			body:        "  ",
			want:        map[string]string{},
		},
		{
			name:        "urlencoded",
			contentType: "application/x-www-form-urlencoded",
			body:        url.Values{"email": {"a@b.c"}, "_token": {"t"}}.Encode(),
			want:        map[string]string{"email": "a@b.c", "_token": "t"},
		},
		{
			name: "no content type",
			want: map[string]string{},
		},
		{
			name:        "malformed json",
			contentType: "application/json",
			body:        `{"email":`,
			wantErr:     true,
		},
		{
			name:        "unsupported",
			contentType: "text/plain",
			body:        "hello",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			in, err := readInput(req, 1<<20)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("readInput() error = %v", err)
			}
			got := in.Strings()
			if len(got) != len(tt.want) {
				t.Fatalf("Strings() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestReadInput_UnsupportedBody(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("<xml/>"))
	req.Header.Set("Content-Type", "application/xml")
	if _, err := readInput(req, 1<<20); !errors.Is(err, errUnsupportedBody) {
		t.Errorf("error = %v, want errUnsupportedBody", err)
	}
}

func TestReadInput_Multipart(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("title", "Go")
	_ = mw.WriteField("tags", "backend")
	_ = mw.WriteField("tags", "web")
	fw, _ := mw.CreateFormFile("thumbnail", "go.png")
	_, _ = fw.Write([]byte("png"))
	// Browsers send an empty part for an untouched file input.
	_, _ = mw.CreateFormFile("preview_video", "")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	in, err := readInput(req, 1<<20)
	if err != nil {
		t.Fatalf("readInput() error = %v", err)
	}
	if in.String("title") != "Go" {
		t.Errorf("title = %q", in.String("title"))
	}
	if in.File("thumbnail") == nil {
		t.Error("thumbnail missing")
	}
	if in.File("preview_video") != nil {
		t.Error("empty file part should be ignored")
	}
	if _, ok := in.Strings()["tags"]; ok {
		t.Error("Strings() should skip list values")
	}

	form := in.Form([]string{"thumbnail"}, "thumbnail", "preview_video")
	if !form.HasFiles() {
		t.Error("Form() lost the thumbnail")
	}
	for key, want := range map[string]string{"title": "Go", "tags[0]": "backend", "tags[1]": "web"} {
		if got, _ := form.Value(key); got != want {
			t.Errorf("form %s = %q, want %q", key, got, want)
		}
	}
}

func TestInput_FormFlattensNestedJSON(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(
		`{"_token":"x","meta":{"level":"beginner","free":false},"ids":[3,4]}`))
	req.Header.Set("Content-Type", "application/json")

	in, err := readInput(req, 1<<20)
	if err != nil {
		t.Fatal(err)
	}
	if !in.Has("_token") || in.Has("missing") {
		t.Error("Has() mismatch")
	}
	if _, ok := in.Except("_token")["_token"]; ok {
		t.Error("Except() kept _token")
	}

	form := in.Form([]string{"_token"})
	want := map[string]string{
		"meta[level]": "beginner",
		"meta[free]":  "0",
		"ids[0]":      "3",
		"ids[1]":      "4",
	}
	if form.Len() != len(want) {
		t.Errorf("form has %d fields, want %d", form.Len(), len(want))
	}
	for key, v := range want {
		if got, _ := form.Value(key); got != v {
			t.Errorf("form %s = %q, want %q", key, got, v)
		}
	}
	if _, ok := form.Value("_token"); ok {
		t.Error("excluded field present")
	}
}
