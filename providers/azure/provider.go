// Package azure implements the llm.Backend interface over the Azure
// OpenAI chat completions API.
package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/altairlabs/platformkit/llm"
	"github.com/altairlabs/platformkit/providers"
	"github.com/altairlabs/platformkit/types"
)

// DefaultAPIVersion is the Azure OpenAI API version used when the
// configuration leaves it empty.
const DefaultAPIVersion = "2024-06-01"

// maxRetries is the fixed retry budget for transient failures. Retrying
// is a backend-client responsibility and is not configurable per request.
const maxRetries = 2

const defaultTimeout = 60 * time.Second

// Provider is an Azure OpenAI chat completions client. It satisfies
// llm.Backend and retries transient failures up to maxRetries times
// with exponential backoff.
type Provider struct {
	cfg    providers.AzureConfig
	client *http.Client
	logger *zap.Logger
}

// NewProvider creates an Azure backend from the given configuration.
// Missing connection parameters are reported as configuration errors.
func NewProvider(cfg providers.AzureConfig, logger *zap.Logger) (*Provider, error) {
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
		cfg.APIVersion = DefaultAPIVersion
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}, nil
}

// Name implements llm.Backend.
func (p *Provider) Name() string { return "azure-openai" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		FinishReason string      `json:"finish_reason"`
		Message      chatMessage `json:"message"`
	} `json:"choices"`
}

type azureErrorResp struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Invoke implements llm.Backend. It blocks until a response or a final
// failure; transient errors are retried up to maxRetries times.
func (p *Provider) Invoke(ctx context.Context, messages []llm.Message, opts llm.InvokeOptions) (string, error) {
	body := chatRequest{
		Messages:    convertMessages(messages),
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", types.NewError(types.ErrInvalidRequest, "failed to encode request").WithCause(err)
	}

	endpoint := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(p.cfg.Endpoint, "/"), p.cfg.Deployment, p.cfg.APIVersion)

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * 500 * time.Millisecond
			p.logger.Debug("retrying azure completion",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		text, err := p.doRequest(ctx, endpoint, payload)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !types.IsRetryable(err) {
			return "", err
		}
	}
	return "", lastErr
}

func (p *Provider) doRequest(ctx context.Context, endpoint string, payload []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", types.NewError(types.ErrInvalidRequest, "failed to build request").WithCause(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", p.cfg.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", types.NewError(types.ErrUpstreamError, "azure request failed").
			WithRetryable(true).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", mapError(resp.StatusCode, readErrMsg(resp.Body))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return "", types.NewError(types.ErrUpstreamError, "failed to decode azure response").
			WithRetryable(true).WithCause(err)
	}
	if len(chat.Choices) == 0 {
		return "", types.NewError(types.ErrUpstreamError, "azure response contained no choices")
	}
	return chat.Choices[0].Message.Content, nil
}

func convertMessages(msgs []llm.Message) []chatMessage {
	out := make([]chatMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, chatMessage{Role: string(m.Role), Content: m.Content})
	}
	return out
}

// mapError translates an HTTP status into a typed error.
func mapError(status int, msg string) *types.Error {
	switch status {
	case http.StatusUnauthorized:
		return types.NewError(types.ErrUnauthorized, msg).WithHTTPStatus(status)
	case http.StatusForbidden:
		return types.NewError(types.ErrForbidden, msg).WithHTTPStatus(status)
	case http.StatusNotFound:
		return types.NewError(types.ErrNotFound, msg).WithHTTPStatus(status)
	case http.StatusTooManyRequests:
		return types.NewError(types.ErrRateLimited, msg).WithHTTPStatus(status).WithRetryable(true)
	case http.StatusBadRequest:
		return types.NewError(types.ErrInvalidRequest, msg).WithHTTPStatus(status)
	default:
		return types.NewError(types.ErrUpstreamError, msg).WithHTTPStatus(status).WithRetryable(status >= 500)
	}
}

// readErrMsg extracts the error message from an Azure error body,
// falling back to the raw body text.
func readErrMsg(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return "unknown error"
	}
	var azErr azureErrorResp
	if err := json.Unmarshal(data, &azErr); err == nil && azErr.Error.Message != "" {
		return azErr.Error.Message
	}
	return strings.TrimSpace(string(data))
}
