// Package platformkit is a top-level convenience entry point that wires
// the document, agent, completion, and embedding clients from a single
// configuration.
//
// Usage:
//
//	import "github.com/altairlabs/platformkit"
//
//	kit, err := platformkit.New(platformkit.WithConfigPath("platformkit.yaml"))
//	result, err := kit.Completer().Complete(ctx, system, question, llm.CompleteOptions{})
//
// Each client can also be constructed directly from its own package
// when only one surface is needed.
package platformkit

import (
	"go.uber.org/zap"

	"github.com/altairlabs/platformkit/agents"
	"github.com/altairlabs/platformkit/config"
	"github.com/altairlabs/platformkit/documents"
	"github.com/altairlabs/platformkit/internal/logging"
	"github.com/altairlabs/platformkit/llm"
	"github.com/altairlabs/platformkit/llm/embedding"
	"github.com/altairlabs/platformkit/providers"
	"github.com/altairlabs/platformkit/providers/azure"
)

// Kit bundles the platform clients behind one configuration.
type Kit struct {
	cfg    *config.Config
	logger *zap.Logger

	completer *llm.Completer
	embedder  *embedding.AzureProvider
	documents *documents.Client
	agents    *agents.Client
}

// Option configures the Kit created by [New].
type Option func(*options)

type options struct {
	configPath string
	envFile    string
	cfg        *config.Config
	logger     *zap.Logger
}

// WithConfigPath loads configuration from a YAML file.
func WithConfigPath(path string) Option {
	return func(o *options) { o.configPath = path }
}

// WithEnvFile loads a dotenv file before applying environment
// overrides.
func WithEnvFile(path string) Option {
	return func(o *options) { o.envFile = path }
}

// WithConfig supplies an already-built configuration, skipping file and
// environment loading.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger sets a custom zap logger instead of building one from the
// log configuration.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New builds a Kit. Configuration comes from [WithConfig] if given,
// otherwise from defaults, the optional YAML file, and environment
// variables.
func New(opts ...Option) (*Kit, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg := o.cfg
	if cfg == nil {
		loader := config.NewLoader().WithValidator((*config.Config).Validate)
		if o.configPath != "" {
			loader = loader.WithConfigPath(o.configPath)
		}
		if o.envFile != "" {
			loader = loader.WithEnvFile(o.envFile)
		}
		loaded, err := loader.Load()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	logger := o.logger
	if logger == nil {
		built, err := logging.New(cfg.Log)
		if err != nil {
			return nil, err
		}
		logger = built
	}

	kit := &Kit{cfg: cfg, logger: logger}

	if cfg.LLM.Endpoint != "" {
		backend, err := azure.NewProvider(providers.AzureConfig{
			Endpoint:   cfg.LLM.Endpoint,
			APIKey:     cfg.LLM.APIKey,
			Deployment: cfg.LLM.Deployment,
			APIVersion: cfg.LLM.APIVersion,
			Timeout:    cfg.LLM.Timeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		completer, err := llm.NewCompleter(backend)
		if err != nil {
			return nil, err
		}
		kit.completer = completer
	}

	if cfg.Embedding.Endpoint != "" {
		embedder, err := embedding.NewAzureProvider(providers.AzureEmbeddingConfig{
			Endpoint:   cfg.Embedding.Endpoint,
			APIKey:     cfg.Embedding.APIKey,
			Deployment: cfg.Embedding.Deployment,
			Model:      cfg.Embedding.Model,
			APIVersion: cfg.Embedding.APIVersion,
			Dimensions: cfg.Embedding.Dimensions,
			Timeout:    cfg.Embedding.Timeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		kit.embedder = embedder
	}

	if cfg.Platform.BaseURL != "" {
		docs, err := documents.NewClient(documents.Config{
			BaseURL:  cfg.Platform.BaseURL,
			APIKey:   cfg.Platform.APIKey,
			ClientID: cfg.Platform.ClientID,
		}, logger)
		if err != nil {
			return nil, err
		}
		kit.documents = docs

		ag, err := agents.NewClient(agents.Config{
			BaseURL:  cfg.Platform.BaseURL,
			APIKey:   cfg.Platform.APIKey,
			ClientID: cfg.Platform.ClientID,
		}, logger)
		if err != nil {
			return nil, err
		}
		kit.agents = ag
	}

	return kit, nil
}

// Config returns the resolved configuration.
func (k *Kit) Config() *config.Config {
	return k.cfg
}

// Logger returns the kit's logger.
func (k *Kit) Logger() *zap.Logger {
	return k.logger
}

// Completer returns the completion pipeline, or nil when no LLM
// endpoint is configured.
func (k *Kit) Completer() *llm.Completer {
	return k.completer
}

// Embedder returns the embedding provider, or nil when no embedding
// endpoint is configured.
func (k *Kit) Embedder() *embedding.AzureProvider {
	return k.embedder
}

// Documents returns the document API client, or nil when no platform
// base URL is configured.
func (k *Kit) Documents() *documents.Client {
	return k.documents
}

// Agents returns the agent API client, or nil when no platform base
// URL is configured.
func (k *Kit) Agents() *agents.Client {
	return k.agents
}
