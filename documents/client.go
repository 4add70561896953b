// Package documents is the client for the platform's document
// management and semantic search APIs.
package documents

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/altairlabs/platformkit/internal/httpx"
	"github.com/altairlabs/platformkit/types"
)

// PlatformAPIVersion is sent on every request via the
// Platform-Api-Version header.
const PlatformAPIVersion = "2025-02-01"

// Config holds the connection parameters for the document APIs.
type Config struct {
	// BaseURL is the platform base URL.
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates via the x-api-key header.
	APIKey string `yaml:"api_key"`

	// ClientID is the tenant identifier embedded in API paths.
	ClientID string `yaml:"client_id"`
}

// Client calls the document management and semantic search endpoints.
type Client struct {
	clientID string
	api      *httpx.Client
}

// NewClient creates a document API client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, types.NewError(types.ErrConfiguration, "base url is required")
	}
	if cfg.ClientID == "" {
		return nil, types.NewError(types.ErrConfiguration, "client id is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	api := httpx.NewClient(cfg.BaseURL,
		httpx.WithHeader("Platform-Api-Version", PlatformAPIVersion),
		httpx.WithHeader("Accept", "application/json"),
		httpx.WithHeader("x-api-key", cfg.APIKey),
		httpx.WithLogger(logger),
	)
	return &Client{clientID: cfg.ClientID, api: api}, nil
}

// UploadOptions configures a document upload.
type UploadOptions struct {
	// DocumentID identifies the document. A random UUID is assigned
	// when empty.
	DocumentID string

	// DocumentPart identifies the part within a multi-part document.
	// Defaults to "0".
	DocumentPart string

	// TTLSeconds is the document's time-to-live. Defaults to 900.
	TTLSeconds int
}

type uploadResponse struct {
	DocumentID string `json:"documentId"`
}

// Upload reads the file at path and uploads it as a PDF document,
// returning the assigned document ID.
func (c *Client) Upload(ctx context.Context, path string, opts UploadOptions) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", types.Errorf(types.ErrInputValidation, "cannot read %s", path).WithCause(err)
	}
	return c.UploadBytes(ctx, filepath.Base(path), content, opts)
}

// UploadBytes uploads in-memory PDF content under the given file name,
// returning the assigned document ID.
func (c *Client) UploadBytes(ctx context.Context, fileName string, content []byte, opts UploadOptions) (string, error) {
	if len(content) == 0 {
		return "", types.NewError(types.ErrInputValidation, "document content cannot be empty")
	}
	if opts.DocumentID == "" {
		opts.DocumentID = uuid.NewString()
	}
	if opts.DocumentPart == "" {
		opts.DocumentPart = "0"
	}
	if opts.TTLSeconds == 0 {
		opts.TTLSeconds = 900
	}

	fields := map[string]string{
		"documentId":   opts.DocumentID,
		"documentPart": opts.DocumentPart,
		"ttl":          strconv.Itoa(opts.TTLSeconds),
	}
	file := httpx.FilePart{
		FieldName:   "file1",
		FileName:    fileName,
		ContentType: "application/pdf",
		Content:     content,
	}

	var resp uploadResponse
	path := fmt.Sprintf("/document-management/api/%s/documents", c.clientID)
	if err := c.api.PostMultipart(ctx, path, fields, file, &resp); err != nil {
		return "", err
	}
	if resp.DocumentID == "" {
		resp.DocumentID = opts.DocumentID
	}
	return resp.DocumentID, nil
}

// Get retrieves a document's binary content by ID.
func (c *Client) Get(ctx context.Context, documentID string) ([]byte, error) {
	if documentID == "" {
		return nil, types.NewError(types.ErrInputValidation, "document id cannot be empty")
	}
	path := fmt.Sprintf("/document-management/api/%s/documents/%s", c.clientID, url.PathEscape(documentID))
	return c.api.GetBytes(ctx, path)
}

// SearchOptions tunes a semantic search request. Zero values fall back
// to the platform defaults.
type SearchOptions struct {
	IndexName           string
	IndexVersion        int
	EmbeddingDeployment string
	EmbeddingModel      string
	VectorDimensions    int
	KNearestNeighbors   int
	Exhaustive          *bool
	Threshold           float64
	Skip                int
	Take                int
}

func (o *SearchOptions) applyDefaults() {
	if o.IndexName == "" {
		o.IndexName = "default_semantic_search_index"
	}
	if o.IndexVersion == 0 {
		o.IndexVersion = 3
	}
	if o.EmbeddingDeployment == "" {
		o.EmbeddingDeployment = "text-embedding-3-large-dev-shared"
	}
	if o.EmbeddingModel == "" {
		o.EmbeddingModel = "text-embedding-3-large"
	}
	if o.VectorDimensions == 0 {
		o.VectorDimensions = 3072
	}
	if o.KNearestNeighbors == 0 {
		o.KNearestNeighbors = 3
	}
	if o.Exhaustive == nil {
		exhaustive := true
		o.Exhaustive = &exhaustive
	}
	if o.Threshold == 0 {
		o.Threshold = 0.3
	}
	if o.Take == 0 {
		o.Take = 5
	}
}

type searchParams struct {
	Type                      string                    `json:"type"`
	ContentVectorSearchParams contentVectorSearchParams `json:"contentVectorSearchParams"`
}

type contentVectorSearchParams struct {
	KNearestNeighborsCount int     `json:"kNearestNeighborsCount"`
	Exhaustive             bool    `json:"exhaustive"`
	Threshold              float64 `json:"threshold"`
}

type searchRequest struct {
	DocumentIDs             []string     `json:"documentIds"`
	Query                   string       `json:"query"`
	EmbeddingDeploymentName string       `json:"embeddingDeploymentName"`
	EmbeddingModel          string       `json:"embeddingModel"`
	VectorDimensions        int          `json:"vectorDimensions"`
	SearchParams            searchParams `json:"searchParams"`
	Skip                    int          `json:"skip"`
	Take                    int          `json:"take"`
}

// SearchResult is a single semantic search hit.
type SearchResult struct {
	DocumentID string  `json:"documentId"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}

// SearchResponse is the semantic search result set.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// SemanticSearch performs vector-similarity search over the given
// documents.
func (c *Client) SemanticSearch(ctx context.Context, query string, documentIDs []string, opts SearchOptions) (*SearchResponse, error) {
	if query == "" {
		return nil, types.NewError(types.ErrInputValidation, "query cannot be empty")
	}
	if len(documentIDs) == 0 {
		return nil, types.NewError(types.ErrInputValidation, "at least one document id is required")
	}
	opts.applyDefaults()

	body := searchRequest{
		DocumentIDs:             documentIDs,
		Query:                   query,
		EmbeddingDeploymentName: opts.EmbeddingDeployment,
		EmbeddingModel:          opts.EmbeddingModel,
		VectorDimensions:        opts.VectorDimensions,
		SearchParams: searchParams{
			Type: "RegularSearchParameters",
			ContentVectorSearchParams: contentVectorSearchParams{
				KNearestNeighborsCount: opts.KNearestNeighbors,
				Exhaustive:             *opts.Exhaustive,
				Threshold:              opts.Threshold,
			},
		},
		Skip: opts.Skip,
		Take: opts.Take,
	}

	path := fmt.Sprintf("/semantic-search/api/%s/indexes/%s/search?indexVersion=%d",
		c.clientID, url.PathEscape(opts.IndexName), opts.IndexVersion)

	var resp SearchResponse
	if err := c.api.PostJSON(ctx, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
