// Package storage is the file half of the CMS data-access client: uploads,
// removals and public URLs for media such as gallery images and result
// sheets.
//
// The bucket given to From is accepted for interface compatibility but does
// not scope any URL; the backend has a single media store.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"strings"

	"github.com/EdProwise/beawar-school-sub001/internal/client/query"
	"github.com/EdProwise/beawar-school-sub001/internal/client/transport"
	"github.com/EdProwise/beawar-school-sub001/internal/logging"
)

type Error = query.Error

type Options struct {
	// BaseURL is the table API root; storage routes live under its root.
	BaseURL    string
	HTTPClient transport.Doer
	Tokens     transport.TokenSource
	Logger     logging.Logger
}

type Client struct {
	root   string
	http   transport.Doer
	tokens transport.TokenSource
	logger logging.Logger
}

func New(opts Options) *Client {
	c := &Client{
		root:   transport.RootURL(opts.BaseURL),
		http:   opts.HTTPClient,
		tokens: opts.Tokens,
		logger: opts.Logger,
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.logger == nil {
		c.logger = logging.Nop{}
	}
	return c
}

// Bucket is a named handle on the media store.
type Bucket struct {
	client *Client
	name   string
}

// From returns a handle for bucket.
func (c *Client) From(bucket string) *Bucket {
	return &Bucket{client: c, name: bucket}
}

// Name returns the bucket name the handle was created with.
func (b *Bucket) Name() string {
	return b.name
}

type FileObject struct {
	Path string `json:"path"`
	URL  string `json:"url,omitempty"`
}

type UploadResponse struct {
	Data  *FileObject `json:"data"`
	Error *Error      `json:"error"`
}

type PublicURL struct {
	PublicURL string `json:"publicUrl"`
}

type PublicURLResponse struct {
	Data PublicURL `json:"data"`
}

type RemoveResponse struct {
	Data  []FileObject `json:"data"`
	Error *Error       `json:"error"`
}

// Upload stores file under objectPath. filename names the multipart file
// part; the base of objectPath is used when it is empty.
func (b *Bucket) Upload(ctx context.Context, objectPath, filename string, file io.Reader) UploadResponse {
	if filename == "" {
		filename = path.Base(objectPath)
	}
	target := transport.JoinURL(b.client.root, "api", "storage", "upload")
	return b.client.upload(ctx, target, filename, file, map[string]string{"path": objectPath})
}

// GetPublicURL builds the public address of objectPath without any
// network call.
func (b *Bucket) GetPublicURL(objectPath string) PublicURLResponse {
	return PublicURLResponse{Data: PublicURL{PublicURL: b.client.publicURL(objectPath)}}
}

// Remove deletes the objects at paths.
func (b *Bucket) Remove(ctx context.Context, paths []string) RemoveResponse {
	if paths == nil {
		paths = []string{}
	}
	target := transport.JoinURL(b.client.root, "api", "storage", "remove")

	req, err := transport.NewJSONRequest(ctx, http.MethodDelete, target, paths, b.client.token(ctx))
	if err != nil {
		return RemoveResponse{Error: &Error{Message: err.Error()}}
	}

	status, raw, err := b.client.do(ctx, req)
	if err != nil {
		return RemoveResponse{Error: &Error{Message: err.Error()}}
	}
	if !transport.OK(status) {
		return RemoveResponse{Error: &Error{Message: transport.ErrorMessage(status, raw)}}
	}

	var payload struct {
		Data []FileObject `json:"data"`
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return RemoveResponse{Error: &Error{Message: "invalid JSON response: " + err.Error()}}
		}
	}
	return RemoveResponse{Data: payload.Data}
}

// UploadFile is the plain upload route: the backend chooses the object
// path and returns it with a public URL.
func (c *Client) UploadFile(ctx context.Context, filename string, file io.Reader) UploadResponse {
	target := transport.JoinURL(c.root, "api", "upload")
	return c.upload(ctx, target, filename, file, nil)
}

func (c *Client) upload(ctx context.Context, target, filename string, file io.Reader, fields map[string]string) UploadResponse {
	body, contentType, err := multipartBody(filename, file, fields)
	if err != nil {
		return UploadResponse{Error: &Error{Message: err.Error()}}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return UploadResponse{Error: &Error{Message: err.Error()}}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	transport.SetBearer(req, c.token(ctx))

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "upload failed", "url", target, "error", err)
		return UploadResponse{Error: &Error{Message: err.Error()}}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return UploadResponse{Error: &Error{Message: "read response: " + err.Error()}}
	}

	if !transport.IsJSON(resp) {
		ct := resp.Header.Get("Content-Type")
		if ct == "" {
			ct = "no content type"
		}
		return UploadResponse{Error: &Error{Message: fmt.Sprintf(
			"Upload failed: server responded with status %d and a non-JSON body (%s)", resp.StatusCode, ct)}}
	}
	if !transport.OK(resp.StatusCode) {
		return UploadResponse{Error: &Error{Message: transport.ErrorMessage(resp.StatusCode, raw)}}
	}

	var payload struct {
		Data  *FileObject `json:"data"`
		Error string      `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return UploadResponse{Error: &Error{Message: "invalid JSON response: " + err.Error()}}
	}
	if payload.Error != "" {
		return UploadResponse{Error: &Error{Message: payload.Error}}
	}

	c.logger.Debug(ctx, "uploaded", "url", target, "status", resp.StatusCode)
	return UploadResponse{Data: payload.Data}
}

func (c *Client) do(ctx context.Context, req *http.Request) (int, []byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "storage request failed", "url", req.URL.String(), "error", err)
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}

func (c *Client) token(ctx context.Context) string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.AccessToken(ctx)
}

func (c *Client) publicURL(objectPath string) string {
	segments := strings.Split(strings.TrimLeft(objectPath, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return transport.JoinURL(c.root, "api", "storage", "public", strings.Join(segments, "/"))
}

// multipartBody writes the extra fields first and the file part last.
func multipartBody(filename string, file io.Reader, fields map[string]string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("write %s field: %w", name, err)
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	ct := mime.TypeByExtension(path.Ext(filename))
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("read file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
