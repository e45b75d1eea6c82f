package http

import (
	"bytes"
	"io"
	"mime/multipart"
	"strings"
	"testing"
)

// newMultipart writes a multipart form with the given fields and a single CSV
// file part, returning the content type to set on the request.
func newMultipart(t *testing.T, buf *bytes.Buffer, fields map[string]string, filename, csvBody string) string {
	t.Helper()
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := io.Copy(fw, strings.NewReader(csvBody)); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return mw.FormDataContentType()
}
