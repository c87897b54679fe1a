package middlewarectx_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/staffdesk/internal/http/middlewarectx"
	"github.com/magabrotheeeer/staffdesk/internal/models"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type part struct {
	name        string
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, field string, parts ...part) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+p.name+`"`)
		if p.contentType != "" {
			h.Set("Content-Type", p.contentType)
		}
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload/files", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploads(t *testing.T) {
	const rejected = "Only jpeg, png, jpg, avif, webp, pdf files are allowed. Max size 50 MB."

	tests := []struct {
		name           string
		parts          []part
		wantStatusCode int
		wantMessage    string
		wantTypes      []string
	}{
		{
			name: "image and pdf accepted",
			parts: []part{
				{name: "photo.PNG", contentType: "image/png", data: pngHeader},
				{name: "scan.pdf", contentType: "application/pdf", data: []byte("%PDF-1.4\n")},
			},
			wantStatusCode: http.StatusOK,
			wantTypes:      []string{"image/png", "application/pdf"},
		},
		{
			name:           "octet-stream is sniffed",
			parts:          []part{{name: "photo.png", contentType: "application/octet-stream", data: pngHeader}},
			wantStatusCode: http.StatusOK,
			wantTypes:      []string{"image/png"},
		},
		{
			name:           "disallowed extension",
			parts:          []part{{name: "notes.txt", contentType: "image/png", data: pngHeader}},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantMessage:    rejected,
		},
		{
			name:           "disallowed mime type",
			parts:          []part{{name: "notes.png", contentType: "text/plain", data: []byte("hello")}},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantMessage:    rejected,
		},
		{
			name: "too many files",
			parts: func() []part {
				ps := make([]part, 11)
				for i := range ps {
					ps[i] = part{name: "p.png", contentType: "image/png", data: pngHeader}
				}
				return ps
			}(),
			wantStatusCode: http.StatusUnprocessableEntity,
			wantMessage:    "Too many files. Max 10 allowed.",
		},
		{
			name:           "no files",
			wantStatusCode: http.StatusOK,
			wantTypes:      []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []models.File
			next := func(w http.ResponseWriter, r *http.Request) {
				got = middlewarectx.FilesFrom(r.Context())
				w.WriteHeader(http.StatusOK)
			}

			w := serve(middlewarectx.Uploads("files", 10), next, multipartRequest(t, "files", tt.parts...))

			assert.Equal(t, tt.wantStatusCode, w.Code)
			if tt.wantMessage != "" {
				assert.Contains(t, w.Body.String(), tt.wantMessage)
				return
			}
			types := make([]string, 0, len(got))
			for _, f := range got {
				types = append(types, f.MIMEType)
			}
			assert.Equal(t, tt.wantTypes, types)
		})
	}
}

func TestUploads_NotMultipart(t *testing.T) {
	called := false
	next := func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Empty(t, middlewarectx.FilesFrom(r.Context()))
		w.WriteHeader(http.StatusOK)
	}
	req := httptest.NewRequest(http.MethodPost, "/upload/file", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")

	w := serve(middlewarectx.Uploads("file", 1), next, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}
