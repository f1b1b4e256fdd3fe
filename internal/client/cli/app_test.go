package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EdProwise/beawar-school-sub001/internal/client/client"
	"github.com/EdProwise/beawar-school-sub001/internal/logging"
)

type call struct {
	method string
	uri    string
	auth   string
	body   string
}

type cmsBackend struct {
	mu    sync.Mutex
	calls []call
}

func (b *cmsBackend) last() call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[len(b.calls)-1]
}

func newCMSBackend(t *testing.T) (*cmsBackend, *httptest.Server) {
	t.Helper()
	b := &cmsBackend{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.calls = append(b.calls, call{method: r.Method, uri: r.URL.RequestURI(), auth: r.Header.Get("Authorization"), body: string(body)})
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/api/auth/signin":
			_, _ = io.WriteString(w, `{"user":{"id":"u1","email":"admin@school.test"},"session":{"access_token":"tok-1","user":{"id":"u1","email":"admin@school.test"}}}`)
		case r.URL.Path == "/api/news" && r.Method == http.MethodGet && r.URL.Query().Get("id") == "missing":
			_, _ = io.WriteString(w, `[]`)
		case r.URL.Path == "/api/news" && r.Method == http.MethodGet && r.URL.Query().Get("count") == "exact":
			_, _ = io.WriteString(w, `{"data":[{"_id":"n1"}],"count":7}`)
		case r.URL.Path == "/api/news" && r.Method == http.MethodGet:
			_, _ = io.WriteString(w, `[{"_id":"n1","title":"Sports day"}]`)
		case r.URL.Path == "/api/storage/upload":
			_, _ = io.WriteString(w, `{"data":{"path":"gallery/a.txt"}}`)
		case r.URL.Path == "/api/upload":
			_, _ = io.WriteString(w, `{"data":{"path":"uploads/a.txt","url":"http://cdn/a.txt"}}`)
		case r.URL.Path == "/api/storage/remove":
			_, _ = io.WriteString(w, `{"data":[{"path":"gallery/a.txt"}]}`)
		default:
			_, _ = io.WriteString(w, `{"_id":"n1","title":"Sports day"}`)
		}
	}))
	t.Cleanup(srv.Close)
	return b, srv
}

func newTestApp(t *testing.T, srv *httptest.Server, stdin string) (*App, *bytes.Buffer) {
	t.Helper()
	cl := client.New(client.Options{BaseURL: srv.URL + "/api", HTTPClient: srv.Client(), Logger: logging.Nop{}})
	var out bytes.Buffer
	a := newApp(cl, logging.Nop{}, strings.NewReader(stdin), &out)
	t.Cleanup(func() { _ = a.Close() })
	return a, &out
}

func stubCredentials(t *testing.T, email, password string) {
	t.Helper()
	origText, origPass := getSimpleText, getPassword
	getSimpleText = func(*bufio.Reader, string, io.Writer) (string, error) { return email, nil }
	getPassword = func(io.Writer) ([]byte, error) { return []byte(password), nil }
	t.Cleanup(func() { getSimpleText, getPassword = origText, origPass })
}

func TestParseSelectArgs(t *testing.T) {
	sa, err := parseSelectArgs([]string{
		"news", "is_published=true", "category!=old", "views>=10", "views<=99",
		"tag~=a,b", "order=created_at:desc", "limit=5", "count",
	})
	require.NoError(t, err)

	assert.Equal(t, "news", sa.table)
	assert.Equal(t, []filter{
		{field: "is_published", op: opEq, value: "true"},
		{field: "category", op: opNeq, value: "old"},
		{field: "views", op: opGte, value: "10"},
		{field: "views", op: opLte, value: "99"},
		{field: "tag", op: opIn, value: "a,b"},
	}, sa.filters)
	assert.Equal(t, "created_at", sa.orderBy)
	assert.True(t, sa.descending)
	assert.Equal(t, 5, sa.limit)
	assert.True(t, sa.count)
}

func TestParseSelectArgs_Errors(t *testing.T) {
	for _, args := range [][]string{
		nil,
		{"news", "limit=x"},
		{"news", "limit=-1"},
		{"news", "noequals"},
		{"news", "=value"},
		{"news", "!=value"},
	} {
		_, err := parseSelectArgs(args)
		assert.Error(t, err, "%v", args)
	}
}

func TestApp_Select_BuildsQuery(t *testing.T) {
	be, srv := newCMSBackend(t)
	a, out := newTestApp(t, srv, "")

	require.NoError(t, a.Select(context.Background(), []string{"news", "is_published=true", "order=created_at:desc", "limit=5"}))

	assert.Equal(t, "/api/news?is_published=true&sort=created_at&order=desc&limit=5", be.last().uri)
	assert.Contains(t, out.String(), `"id": "n1"`)
	assert.Contains(t, out.String(), `"title": "Sports day"`)
}

func TestApp_Select_CountAndIn(t *testing.T) {
	be, srv := newCMSBackend(t)
	a, out := newTestApp(t, srv, "")

	require.NoError(t, a.Select(context.Background(), []string{"news", "tag~=a,b", "count"}))

	assert.Equal(t, "/api/news?count=exact&tag_in=%5B%22a%22%2C%22b%22%5D", be.last().uri)
	assert.True(t, strings.HasPrefix(out.String(), "count: 7\n"))
}

func TestApp_LoginThenWrite(t *testing.T) {
	be, srv := newCMSBackend(t)
	a, out := newTestApp(t, srv, "")
	ctx := context.Background()
	stubCredentials(t, "admin@school.test", "pw")

	assert.False(t, a.isLoggedIn())
	require.NoError(t, a.Login(ctx))
	assert.True(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "* signed in admin@school.test")
	assert.Equal(t, "admin@school.test", a.status(ctx))

	require.NoError(t, a.Insert(ctx, []string{"news", `{"title":"Sports day"}`}))
	got := be.last()
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/api/news", got.uri)
	assert.Equal(t, "Bearer tok-1", got.auth)
	assert.JSONEq(t, `{"title":"Sports day"}`, got.body)

	require.NoError(t, a.Update(ctx, []string{"news", "n1", `{"id":"n1","title":"x"}`}))
	got = be.last()
	assert.Equal(t, http.MethodPatch, got.method)
	assert.Equal(t, "/api/news/n1", got.uri)
	assert.JSONEq(t, `{"title":"x"}`, got.body)

	require.NoError(t, a.Upsert(ctx, []string{"settings", `{"key":"theme"}`}))
	got = be.last()
	assert.Equal(t, "/api/settings/upsert", got.uri)
	assert.JSONEq(t, `{"data":{"key":"theme"}}`, got.body)

	require.NoError(t, a.Delete(ctx, []string{"news", "n1"}))
	got = be.last()
	assert.Equal(t, http.MethodDelete, got.method)
	assert.Equal(t, "/api/news/n1", got.uri)

	require.NoError(t, a.Logout(ctx))
	assert.Contains(t, out.String(), "* signed out")
	assert.Equal(t, "anonymous", a.status(ctx))
}

func TestApp_InsertReadsMultilineBody(t *testing.T) {
	be, srv := newCMSBackend(t)
	a, _ := newTestApp(t, srv, "{\n\"title\": \"From stdin\"\n}\n\n")

	require.NoError(t, a.Insert(context.Background(), []string{"news"}))
	assert.JSONEq(t, `{"title":"From stdin"}`, be.last().body)
}

func TestApp_InvalidJSONMakesNoCall(t *testing.T) {
	be, srv := newCMSBackend(t)
	a, _ := newTestApp(t, srv, "")

	err := a.Insert(context.Background(), []string{"news", "{not json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON object")
	assert.Empty(t, be.calls)
}

func TestApp_Get(t *testing.T) {
	be, srv := newCMSBackend(t)
	a, out := newTestApp(t, srv, "")
	ctx := context.Background()

	require.NoError(t, a.Get(ctx, []string{"news", "n1"}))
	assert.Equal(t, "/api/news?id=n1", be.last().uri)
	assert.Contains(t, out.String(), `"id": "n1"`)

	err := a.Get(ctx, []string{"news", "missing"})
	require.Error(t, err)
	assert.Equal(t, "No rows found", err.Error())

	assert.Error(t, a.Get(ctx, []string{"news"}))
}

func TestApp_WhoAmI_SignedOut(t *testing.T) {
	_, srv := newCMSBackend(t)
	a, out := newTestApp(t, srv, "")

	require.NoError(t, a.WhoAmI(context.Background()))
	assert.Equal(t, "not signed in\n", out.String())
}

func TestApp_Media(t *testing.T) {
	be, srv := newCMSBackend(t)
	a, out := newTestApp(t, srv, "")
	ctx := context.Background()

	file := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0o600))

	require.NoError(t, a.Upload(ctx, []string{"gallery/a.txt", file}))
	got := be.last()
	assert.Equal(t, "/api/storage/upload", got.uri)
	assert.Contains(t, got.body, `filename="a.txt"`)
	assert.Contains(t, got.body, "hello")
	assert.Contains(t, out.String(), `"path": "gallery/a.txt"`)

	require.NoError(t, a.UploadFile(ctx, []string{file}))
	assert.Equal(t, "/api/upload", be.last().uri)
	assert.Contains(t, out.String(), `"url": "http://cdn/a.txt"`)

	require.NoError(t, a.Remove(ctx, []string{"gallery/a.txt"}))
	got = be.last()
	assert.Equal(t, http.MethodDelete, got.method)
	assert.JSONEq(t, `["gallery/a.txt"]`, got.body)

	out.Reset()
	require.NoError(t, a.URL(ctx, []string{"gallery/my photo.jpg"}))
	assert.Equal(t, srv.URL+"/api/storage/public/gallery/my%20photo.jpg\n", out.String())

	assert.Error(t, a.Upload(ctx, []string{"x", filepath.Join(t.TempDir(), "nope")}))
}
