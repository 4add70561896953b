package httpx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altairlabs/platformkit/types"
)

func TestClient_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/things", r.URL.Path)
		assert.Equal(t, "abc", r.URL.Query().Get("cursor"))
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count": 2}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, WithHeader("x-api-key", "secret"))

	var out struct {
		Count int `json:"count"`
	}
	query := url.Values{"cursor": []string{"abc"}}
	require.NoError(t, c.GetJSON(context.Background(), "/v1/things", query, &out))
	assert.Equal(t, 2, out.Count)
}

func TestClient_GetBytes(t *testing.T) {
	payload := []byte("%PDF-1.7 binary content")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	got, err := c.GetBytes(context.Background(), "/docs/42")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestClient_PostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name": "thing"}`, string(body))
		_, _ = w.Write([]byte(`{"id": "t-1"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	var out struct {
		ID string `json:"id"`
	}
	err := c.PostJSON(context.Background(), "/v1/things", map[string]string{"name": "thing"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "t-1", out.ID)
}

func TestClient_PatchAndDelete(t *testing.T) {
	var methods []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	require.NoError(t, c.PatchJSON(context.Background(), "/v1/things/t-1", map[string]string{"name": "new"}, nil))
	require.NoError(t, c.Delete(context.Background(), "/v1/things/t-1", nil))
	assert.Equal(t, []string{http.MethodPatch, http.MethodDelete}, methods)
}

func TestClient_PostMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "doc-1", r.FormValue("documentId"))

		file, header, err := r.FormFile("file1")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "report.pdf", header.Filename)
		assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))

		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte("pdf bytes"), content)

		_, _ = w.Write([]byte(`{"documentId": "doc-1"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	var out struct {
		DocumentID string `json:"documentId"`
	}
	err := c.PostMultipart(context.Background(), "/docs", map[string]string{"documentId": "doc-1"}, FilePart{
		FieldName:   "file1",
		FileName:    "report.pdf",
		ContentType: "application/pdf",
		Content:     []byte("pdf bytes"),
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", out.DocumentID)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		code   types.ErrorCode
	}{
		{http.StatusUnauthorized, types.ErrUnauthorized},
		{http.StatusForbidden, types.ErrForbidden},
		{http.StatusNotFound, types.ErrNotFound},
		{http.StatusTooManyRequests, types.ErrRateLimited},
		{http.StatusConflict, types.ErrInvalidRequest},
		{http.StatusInternalServerError, types.ErrUpstreamError},
	}
	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message": "nope"}`, tt.status)
		}))

		c := NewClient(server.URL)
		err := c.GetJSON(context.Background(), "/x", nil, nil)
		require.Error(t, err, "status %d", tt.status)
		assert.Equal(t, tt.code, types.GetErrorCode(err), "status %d", tt.status)
		assert.Contains(t, err.Error(), "nope")
		server.Close()
	}
}

func TestClient_InvalidJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	var out map[string]any
	err := c.GetJSON(context.Background(), "/x", nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestClient_BaseURLJoining(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	// Trailing slash on base and leading slash on path must not double up.
	c := NewClient(server.URL + "/")
	require.NoError(t, c.GetJSON(context.Background(), "/v1/x", nil, nil))
	assert.Equal(t, "/v1/x", gotPath)
}

func TestErrMessage(t *testing.T) {
	assert.Equal(t, "bad thing", errMessage([]byte(`{"message": "bad thing"}`)))
	assert.Equal(t, "nested", errMessage([]byte(`{"error": {"message": "nested"}}`)))
	assert.Equal(t, "plain text", errMessage([]byte("plain text")))
	assert.Equal(t, "unknown error", errMessage(nil))
}
