// Package sdk provides the client-side library for the Celerix attachment daemon.
package sdk

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/celerix-dev/celerix-attach/pkg/schema"
)

// APIError is a non-2xx answer from the daemon.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

// Client is a remote client for the attachment daemon.
type Client struct {
	base string
	http *http.Client
}

// Connect returns a client for the daemon at addr and checks that it answers.
// TLS is used unless CELERIX_DISABLE_TLS is "true"; the daemon's self-signed
// certificate is accepted.
func Connect(addr string) (*Client, error) {
	c := NewClient(addr)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// NewClient returns a client for addr without contacting it. addr may be a
// host:port or a full http(s) URL.
func NewClient(addr string) *Client {
	base := addr
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		scheme := "https://"
		if os.Getenv("CELERIX_DISABLE_TLS") == "true" {
			scheme = "http://"
		}
		base = scheme + base
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true, // We use self-signed certs for internal traffic
		},
	}

	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Transport: transport, Timeout: 2 * time.Minute},
	}
}

// BaseURL returns the daemon URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.base
}

// do sends a request, retrying transport failures up to 3 times. Responses
// with an error status are not retried.
func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string, out any) error {
	var err error

	for i := 0; i < 3; i++ {
		var req *http.Request
		req, err = http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(body))
		if err != nil {
			return err
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		var resp *http.Response
		resp, err = c.http.Do(req)
		if err == nil {
			return decodeResponse(resp, out)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		fmt.Fprintf(os.Stderr, "[Celerix SDK] Attempt %d failed: %v. Retrying...\n", i+1, err)
		time.Sleep(time.Duration((i+1)*200) * time.Millisecond)
	}

	return fmt.Errorf("failed after 3 attempts. last error: %w", err)
}

func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var body struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &body) != nil || body.Error == "" {
			body.Error = strings.TrimSpace(string(data))
		}
		return &APIError{Status: resp.StatusCode, Message: body.Error}
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// Ping checks that the daemon is up.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/ping", nil, "", nil)
}

func (c *Client) ListItems(ctx context.Context) ([]schema.Item, error) {
	var items []schema.Item
	err := c.do(ctx, http.MethodGet, "/api/items", nil, "", &items)
	return items, err
}

func (c *Client) GetItem(ctx context.Context, id string) (schema.Item, error) {
	var it schema.Item
	err := c.do(ctx, http.MethodGet, "/api/items/"+url.PathEscape(id), nil, "", &it)
	return it, err
}

// CreateItem creates an item, uploading the files at photoPath and filePath
// when they are not empty.
func (c *Client) CreateItem(ctx context.Context, name, photoPath, filePath string) (schema.Item, error) {
	form := newForm()
	if err := form.field("name", name); err != nil {
		return schema.Item{}, err
	}
	if photoPath != "" {
		if err := form.file(schema.FieldPhoto, photoPath); err != nil {
			return schema.Item{}, err
		}
	}
	if filePath != "" {
		if err := form.file(schema.FieldFile, filePath); err != nil {
			return schema.Item{}, err
		}
	}
	body, ct, err := form.close()
	if err != nil {
		return schema.Item{}, err
	}

	var it schema.Item
	err = c.do(ctx, http.MethodPost, "/api/items", body, ct, &it)
	return it, err
}

// ReplacePhoto uploads the file at path as the item's new photo.
func (c *Client) ReplacePhoto(ctx context.Context, id, path string) (schema.Item, error) {
	return c.replace(ctx, id, schema.FieldPhoto, path)
}

// ReplaceFile uploads the file at path as the item's new file.
func (c *Client) ReplaceFile(ctx context.Context, id, path string) (schema.Item, error) {
	return c.replace(ctx, id, schema.FieldFile, path)
}

func (c *Client) replace(ctx context.Context, id, field, path string) (schema.Item, error) {
	form := newForm()
	if err := form.file(field, path); err != nil {
		return schema.Item{}, err
	}
	body, ct, err := form.close()
	if err != nil {
		return schema.Item{}, err
	}

	var it schema.Item
	err = c.do(ctx, http.MethodPut, "/api/items/"+url.PathEscape(id)+"/"+field, body, ct, &it)
	return it, err
}

// ClearAttachment deletes the item's photo or file and reports whether a
// file existed.
func (c *Client) ClearAttachment(ctx context.Context, id, field string) (bool, error) {
	if field != schema.FieldPhoto && field != schema.FieldFile {
		return false, fmt.Errorf("unknown attachment field %q", field)
	}
	var out struct {
		Deleted bool `json:"deleted"`
	}
	err := c.do(ctx, http.MethodDelete, "/api/items/"+url.PathEscape(id)+"/"+field, nil, "", &out)
	return out.Deleted, err
}

func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/items/"+url.PathEscape(id), nil, "", nil)
}

// IsNotFound reports whether err is a 404 from the daemon.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

type form struct {
	buf bytes.Buffer
	w   *multipart.Writer
}

func newForm() *form {
	f := &form{}
	f.w = multipart.NewWriter(&f.buf)
	return f
}

func (f *form) field(name, value string) error {
	return f.w.WriteField(name, value)
}

// file adds the file at path as a part, declaring the content type sniffed
// from its bytes.
func (f *form) file(field, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filepath.Base(path)))
	hdr.Set("Content-Type", mimetype.Detect(data).String())

	pw, err := f.w.CreatePart(hdr)
	if err != nil {
		return err
	}
	_, err = pw.Write(data)
	return err
}

func (f *form) close() ([]byte, string, error) {
	if err := f.w.Close(); err != nil {
		return nil, "", err
	}
	return f.buf.Bytes(), f.w.FormDataContentType(), nil
}
