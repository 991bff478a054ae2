// Classfront - Course Storefront Web Front End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/classfront

package backend

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Form is a multipart body for the course API: ordered text fields plus
// file parts. File contents are streamed, never buffered whole.
type Form struct {
	fields []formField
	files  []FilePart
}

type formField struct {
	name  string
	value string
}

// FilePart is one uploaded file.
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{}
}

// Add appends a text field. Repeated names are sent as repeated parts.
func (f *Form) Add(name, value string) {
	f.fields = append(f.fields, formField{name: name, value: value})
}

// AddFile appends a file part read from r.
func (f *Form) AddFile(field, filename, contentType string, r io.Reader) {
	f.files = append(f.files, FilePart{
		Field:       field,
		Filename:    filename,
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(r), nil
		},
	})
}

// AddFileHeader appends an uploaded file from an incoming multipart request.
// The file is opened only while the outbound body is written.
func (f *Form) AddFileHeader(field string, fh *multipart.FileHeader) {
	f.files = append(f.files, FilePart{
		Field:       field,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	})
}

// Value returns the first value of a text field.
func (f *Form) Value(name string) (string, bool) {
	for _, field := range f.fields {
		if field.name == name {
			return field.value, true
		}
	}
	return "", false
}

// HasFiles reports whether the form carries at least one file part.
func (f *Form) HasFiles() bool {
	return len(f.files) > 0
}

// Len returns the number of text fields and file parts.
func (f *Form) Len() int {
	return len(f.fields) + len(f.files)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// writeTo encodes the form with mw and closes it.
func (f *Form) writeTo(mw *multipart.Writer) error {
	for _, field := range f.fields {
		if err := mw.WriteField(field.name, field.value); err != nil {
			return fmt.Errorf("write field %s: %w", field.name, err)
		}
	}

	for _, part := range f.files {
		if err := writeFilePart(mw, part); err != nil {
			return err
		}
	}

	return mw.Close()
}

func writeFilePart(mw *multipart.Writer, part FilePart) error {
	contentType := part.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(part.Field), quoteEscaper.Replace(part.Filename)))
	h.Set("Content-Type", contentType)

	w, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part %s: %w", part.Field, err)
	}

	src, err := part.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", part.Filename, err)
	}
	defer src.Close()

	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("copy %s: %w", part.Filename, err)
	}
	return nil
}

// pipe streams the encoded form through an io.Pipe. The returned content
// type carries the multipart boundary.
func (f *Form) pipe() (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(f.writeTo(mw))
	}()

	return pr, mw.FormDataContentType()
}
