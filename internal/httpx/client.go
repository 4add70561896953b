// Package httpx is the shared REST client used by the platform API
// facades. It centralizes base-URL handling, default headers, JSON
// encoding, multipart uploads, and HTTP error mapping.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/altairlabs/platformkit/types"
)

const defaultTimeout = 30 * time.Second

// Client is a JSON-first HTTP client bound to a base URL with a set of
// default headers. It is immutable after construction and safe for
// concurrent use.
type Client struct {
	baseURL string
	headers map[string]string
	hc      *http.Client
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHeader adds a default header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.hc.Timeout = timeout }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// NewClient creates a Client bound to baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: make(map[string]string),
		hc:      &http.Client{Timeout: defaultTimeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FilePart describes a file attached to a multipart upload.
type FilePart struct {
	FieldName   string
	FileName    string
	ContentType string
	Content     []byte
}

// GetJSON issues a GET request and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	data, _, err := c.do(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}
	return decodeInto(data, out)
}

// GetBytes issues a GET request and returns the raw response body.
func (c *Client) GetBytes(ctx context.Context, path string) ([]byte, error) {
	data, _, err := c.do(ctx, http.MethodGet, path, nil, nil, "")
	return data, err
}

// PostJSON issues a POST with a JSON body and decodes the JSON response
// into out.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return types.NewError(types.ErrInvalidRequest, "failed to encode request body").WithCause(err)
	}
	data, _, err := c.do(ctx, http.MethodPost, path, nil, bytes.NewReader(payload), "application/json")
	if err != nil {
		return err
	}
	return decodeInto(data, out)
}

// PatchJSON issues a PATCH with a JSON body and decodes the JSON
// response into out.
func (c *Client) PatchJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return types.NewError(types.ErrInvalidRequest, "failed to encode request body").WithCause(err)
	}
	data, _, err := c.do(ctx, http.MethodPatch, path, nil, bytes.NewReader(payload), "application/json")
	if err != nil {
		return err
	}
	return decodeInto(data, out)
}

// Delete issues a DELETE request and decodes any JSON response into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	data, _, err := c.do(ctx, http.MethodDelete, path, nil, nil, "")
	if err != nil {
		return err
	}
	return decodeInto(data, out)
}

// PostMultipart issues a POST with multipart form fields and an
// attached file, decoding the JSON response into out.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, file FilePart, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			return types.NewError(types.ErrInvalidRequest, "failed to write form field").WithCause(err)
		}
	}

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name=%q; filename=%q`, file.FieldName, file.FileName)}
	if file.ContentType != "" {
		header["Content-Type"] = []string{file.ContentType}
	}
	part, err := w.CreatePart(header)
	if err != nil {
		return types.NewError(types.ErrInvalidRequest, "failed to create multipart section").WithCause(err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return types.NewError(types.ErrInvalidRequest, "failed to write file content").WithCause(err)
	}
	if err := w.Close(); err != nil {
		return types.NewError(types.ErrInvalidRequest, "failed to finalize multipart body").WithCause(err)
	}

	data, _, err := c.do(ctx, http.MethodPost, path, nil, &buf, w.FormDataContentType())
	if err != nil {
		return err
	}
	return decodeInto(data, out)
}

// do executes one request and returns the response body and content
// type. Responses with status >= 400 are mapped to typed errors.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, string, error) {
	fullURL := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, "", types.NewError(types.ErrInvalidRequest, "failed to build request").WithCause(err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.logger.Debug("platform api request", zap.String("method", method), zap.String("url", fullURL))

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", types.Errorf(types.ErrUpstreamError, "%s %s failed", method, path).WithCause(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", types.NewError(types.ErrUpstreamError, "failed to read response body").WithCause(err)
	}

	if resp.StatusCode >= 400 {
		return nil, "", mapStatus(resp.StatusCode, errMessage(data))
	}

	return data, resp.Header.Get("Content-Type"), nil
}

// decodeInto unmarshals data into out when out is non-nil and a body is
// present.
func decodeInto(data []byte, out any) error {
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return types.NewError(types.ErrUpstreamError, "invalid JSON response").WithCause(err)
	}
	return nil
}

// errMessage extracts a human-readable message from an error body.
func errMessage(data []byte) string {
	if len(data) == 0 {
		return "unknown error"
	}
	var envelope struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil {
		if envelope.Error.Message != "" {
			return envelope.Error.Message
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	return strings.TrimSpace(string(data))
}

// mapStatus translates an HTTP status into a typed error.
func mapStatus(status int, msg string) *types.Error {
	switch status {
	case http.StatusUnauthorized:
		return types.NewError(types.ErrUnauthorized, msg).WithHTTPStatus(status)
	case http.StatusForbidden:
		return types.NewError(types.ErrForbidden, msg).WithHTTPStatus(status)
	case http.StatusNotFound:
		return types.NewError(types.ErrNotFound, msg).WithHTTPStatus(status)
	case http.StatusTooManyRequests:
		return types.NewError(types.ErrRateLimited, msg).WithHTTPStatus(status).WithRetryable(true)
	default:
		if status >= 500 {
			return types.NewError(types.ErrUpstreamError, msg).WithHTTPStatus(status).WithRetryable(true)
		}
		return types.NewError(types.ErrInvalidRequest, msg).WithHTTPStatus(status)
	}
}
