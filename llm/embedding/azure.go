package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/altairlabs/platformkit/providers"
	"github.com/altairlabs/platformkit/types"
)

const (
	defaultAPIVersion = "2024-06-01"
	defaultModel      = "text-embedding-3-large"
	defaultDimensions = 3072
	defaultTimeout    = 30 * time.Second
)

// AzureProvider generates embeddings via the Azure OpenAI embeddings
// API and validates the response shape before returning it.
type AzureProvider struct {
	cfg    providers.AzureEmbeddingConfig
	client *http.Client
	logger *zap.Logger
}

// NewAzureProvider creates an Azure embedding provider from the given
// configuration.
func NewAzureProvider(cfg providers.AzureEmbeddingConfig, logger *zap.Logger) (*AzureProvider, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, types.NewError(types.ErrConfiguration, "azure endpoint is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, types.NewError(types.ErrConfiguration, "azure api key is required")
	}
	if strings.TrimSpace(cfg.Deployment) == "" {
		return nil, types.NewError(types.ErrConfiguration, "azure deployment is required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = defaultDimensions
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AzureProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}, nil
}

// Name implements Provider.
func (p *AzureProvider) Name() string { return "azure-embedding" }

// Dimensions implements Provider.
func (p *AzureProvider) Dimensions() int { return p.cfg.Dimensions }

type embedRequest struct {
	Input      string `json:"input"`
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions,omitempty"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
}

// EmbedQuery implements Provider. The input must be non-empty after
// trimming; a response vector whose length differs from the configured
// dimensions, or containing a non-finite value, is rejected.
func (p *AzureProvider) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, types.NewError(types.ErrInputValidation, "input text for embedding cannot be empty")
	}

	payload, err := json.Marshal(embedRequest{
		Input:      text,
		Model:      p.cfg.Model,
		Dimensions: p.cfg.Dimensions,
	})
	if err != nil {
		return nil, types.NewError(types.ErrInvalidRequest, "failed to encode request").WithCause(err)
	}

	endpoint := fmt.Sprintf("%s/openai/deployments/%s/embeddings?api-version=%s",
		strings.TrimRight(p.cfg.Endpoint, "/"), p.cfg.Deployment, p.cfg.APIVersion)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, types.NewError(types.ErrInvalidRequest, "failed to build request").WithCause(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", p.cfg.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "azure embedding request failed").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, types.Errorf(types.ErrUpstreamError, "azure embedding failed: %s", strings.TrimSpace(string(data))).
			WithHTTPStatus(resp.StatusCode)
	}

	var embed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embed); err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "failed to decode azure embedding response").WithCause(err)
	}
	if len(embed.Data) == 0 {
		return nil, types.NewError(types.ErrUpstreamError, "azure embedding response contained no data")
	}

	vector := embed.Data[0].Embedding
	if err := validateVector(vector, p.cfg.Dimensions); err != nil {
		return nil, err
	}
	return vector, nil
}

// validateVector checks the embedding vector shape: exact length and
// finite elements only.
func validateVector(vector []float64, dimensions int) error {
	if len(vector) != dimensions {
		return types.Errorf(types.ErrSchemaValidation,
			"unexpected embedding dimensions: expected %d, got %d", dimensions, len(vector))
	}
	for i, v := range vector {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return types.Errorf(types.ErrSchemaValidation,
				"embedding vector contains non-finite value at index %d", i)
		}
	}
	return nil
}
