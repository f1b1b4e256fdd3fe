package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenFunc func(context.Context) string

func (f tokenFunc) AccessToken(ctx context.Context) string { return f(ctx) }

func newClient(srv *httptest.Server) *Client {
	return New(Options{
		BaseURL:    srv.URL + "/api",
		HTTPClient: srv.Client(),
		Tokens:     tokenFunc(func(context.Context) string { return "jwt" }),
	})
}

func TestUpload_SendsFileAndPath(t *testing.T) {
	var (
		gotPath, gotContent, gotName, gotAuth, gotPartType string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/storage/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		gotPath = r.FormValue("path")
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		b, _ := io.ReadAll(f)
		gotContent = string(b)
		gotName = hdr.Filename
		gotPartType = hdr.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":{"path":"gallery/2024/sports.png"}}`)
	}))
	defer srv.Close()

	res := newClient(srv).From("school-media").
		Upload(context.Background(), "gallery/2024/sports.png", "", strings.NewReader("PNGDATA"))

	require.Nil(t, res.Error)
	require.NotNil(t, res.Data)
	assert.Equal(t, "gallery/2024/sports.png", res.Data.Path)

	assert.Equal(t, "gallery/2024/sports.png", gotPath)
	assert.Equal(t, "PNGDATA", gotContent)
	assert.Equal(t, "sports.png", gotName)
	assert.Equal(t, "image/png", gotPartType)
	assert.Equal(t, "Bearer jwt", gotAuth)
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantMsg     string
	}{
		{
			name:        "json error",
			status:      http.StatusRequestEntityTooLarge,
			contentType: "application/json",
			body:        `{"error":"file too large"}`,
			wantMsg:     "file too large",
		},
		{
			name:        "html error page",
			status:      http.StatusBadGateway,
			contentType: "text/html; charset=utf-8",
			body:        `<html><body>Bad gateway</body></html>`,
			wantMsg:     "Upload failed: server responded with status 502 and a non-JSON body (text/html; charset=utf-8)",
		},
		{
			name:        "html with ok status",
			status:      http.StatusOK,
			contentType: "text/html",
			body:        `<!doctype html>`,
			wantMsg:     "Upload failed: server responded with status 200 and a non-JSON body (text/html)",
		},
		{
			name:        "error field with ok status",
			status:      http.StatusOK,
			contentType: "application/json",
			body:        `{"error":"path is required"}`,
			wantMsg:     "path is required",
		},
		{
			name:        "malformed json",
			status:      http.StatusOK,
			contentType: "application/json",
			body:        `{"data":`,
			wantMsg:     "invalid JSON response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			res := newClient(srv).From("media").Upload(context.Background(), "a/b.pdf", "b.pdf", strings.NewReader("x"))

			require.NotNil(t, res.Error)
			assert.Contains(t, res.Error.Message, tt.wantMsg)
			assert.Nil(t, res.Data)
		})
	}
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestUpload_UnreadableFile(t *testing.T) {
	c := New(Options{BaseURL: "http://127.0.0.1:1/api"})

	res := c.From("media").Upload(context.Background(), "x.txt", "", brokenReader{})
	require.NotNil(t, res.Error)
	assert.Contains(t, res.Error.Message, "disk gone")
}

func TestUpload_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := newClient(srv)
	srv.Close()

	res := c.From("media").Upload(context.Background(), "x.txt", "", strings.NewReader("x"))
	require.NotNil(t, res.Error)
}

func TestUploadFile_PlainVariant(t *testing.T) {
	var fields []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		for k := range r.MultipartForm.Value {
			fields = append(fields, k)
		}
		_, _, err := r.FormFile("file")
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":{"path":"uploads/2024/06/01/abc-report.pdf","url":"http://cdn/report.pdf"}}`)
	}))
	defer srv.Close()

	res := newClient(srv).UploadFile(context.Background(), "report.pdf", strings.NewReader("%PDF"))

	require.Nil(t, res.Error)
	assert.Equal(t, "uploads/2024/06/01/abc-report.pdf", res.Data.Path)
	assert.Equal(t, "http://cdn/report.pdf", res.Data.URL)
	assert.Empty(t, fields, "plain upload sends only the file part")
}

func TestGetPublicURL(t *testing.T) {
	c := New(Options{BaseURL: "http://localhost:5000/api"})

	tests := []struct {
		in   string
		want string
	}{
		{in: "gallery/sports.png", want: "http://localhost:5000/api/storage/public/gallery/sports.png"},
		{in: "/results/class 10.pdf", want: "http://localhost:5000/api/storage/public/results/class%2010.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			res := c.From("any-bucket").GetPublicURL(tt.in)
			assert.Equal(t, tt.want, res.Data.PublicURL)
		})
	}
}

func TestRemove(t *testing.T) {
	var gotBody, gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody, gotMethod, gotPath = string(b), r.Method, r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":[{"path":"a.png"},{"path":"b.png"}]}`)
	}))
	defer srv.Close()

	res := newClient(srv).From("media").Remove(context.Background(), []string{"a.png", "b.png"})

	require.Nil(t, res.Error)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/storage/remove", gotPath)
	assert.JSONEq(t, `["a.png","b.png"]`, gotBody)
	assert.Equal(t, []FileObject{{Path: "a.png"}, {Path: "b.png"}}, res.Data)
}

func TestRemove_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"missing or malformed jwt"}`)
	}))
	defer srv.Close()

	res := newClient(srv).From("media").Remove(context.Background(), nil)
	require.NotNil(t, res.Error)
	assert.Equal(t, "missing or malformed jwt", res.Error.Message)
}
