package platformkit

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/altairlabs/platformkit/config"
)

func TestNew_EmptyConfig(t *testing.T) {
	kit, err := New(WithConfig(config.DefaultConfig()), WithLogger(zap.NewNop()))
	require.NoError(t, err)

	// No endpoints configured, no clients wired.
	assert.Nil(t, kit.Completer())
	assert.Nil(t, kit.Embedder())
	assert.Nil(t, kit.Documents())
	assert.Nil(t, kit.Agents())
	assert.NotNil(t, kit.Config())
	assert.NotNil(t, kit.Logger())
}

func TestNew_WiresConfiguredClients(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.Endpoint = "https://res.openai.azure.com"
	cfg.LLM.APIKey = "llm-key"
	cfg.LLM.Deployment = "gpt-4o"
	cfg.Embedding.Endpoint = "https://res.openai.azure.com"
	cfg.Embedding.APIKey = "embed-key"
	cfg.Platform.BaseURL = "https://platform.example.com"
	cfg.Platform.APIKey = "platform-key"
	cfg.Platform.ClientID = "acme"

	kit, err := New(WithConfig(cfg), WithLogger(zap.NewNop()))
	require.NoError(t, err)

	assert.NotNil(t, kit.Completer())
	assert.NotNil(t, kit.Embedder())
	assert.NotNil(t, kit.Documents())
	assert.NotNil(t, kit.Agents())
}

func TestNew_MissingClientID(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Platform.BaseURL = "https://platform.example.com"

	_, err := New(WithConfig(cfg), WithLogger(zap.NewNop()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client id")
}

func TestNew_FromConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "platformkit.yaml")
	content := `
llm:
  endpoint: https://res.openai.azure.com
  api_key: file-key
  deployment: gpt-4o
  timeout: 45s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	kit, err := New(WithConfigPath(path), WithLogger(zap.NewNop()))
	require.NoError(t, err)

	assert.NotNil(t, kit.Completer())
	assert.Equal(t, 45*time.Second, kit.Config().LLM.Timeout)
	assert.Nil(t, kit.Documents())
}

func TestNew_InvalidConfigRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "platformkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("embedding:\n  dimensions: -1\n"), 0o644))

	_, err := New(WithConfigPath(path))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}
