// Package config loads platformkit configuration from defaults, an
// optional YAML file, and environment variable overrides, in that
// order of precedence.
package config

import (
	"time"
)

// Config is the complete platformkit configuration.
type Config struct {
	// Platform holds the document and agent API connection settings.
	Platform PlatformConfig `yaml:"platform" env:"PLATFORM"`

	// LLM holds the chat completion deployment settings.
	LLM LLMConfig `yaml:"llm" env:"LLM"`

	// Embedding holds the embedding deployment settings.
	Embedding EmbeddingConfig `yaml:"embedding" env:"EMBEDDING"`

	// Log holds the logging settings.
	Log LogConfig `yaml:"log" env:"LOG"`
}

// PlatformConfig configures the document and agent API clients.
type PlatformConfig struct {
	// Base URL of the platform API gateway.
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// API key sent in the x-api-key header.
	APIKey string `yaml:"api_key" env:"API_KEY"`
	// Client (tenant) identifier used in API paths.
	ClientID string `yaml:"client_id" env:"CLIENT_ID"`
}

// LLMConfig configures the chat completion backend.
type LLMConfig struct {
	// Azure OpenAI resource endpoint.
	Endpoint string `yaml:"endpoint" env:"ENDPOINT"`
	// API key for the resource.
	APIKey string `yaml:"api_key" env:"API_KEY"`
	// Deployment name of the chat model.
	Deployment string `yaml:"deployment" env:"DEPLOYMENT"`
	// REST API version.
	APIVersion string `yaml:"api_version" env:"API_VERSION"`
	// Request timeout.
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// EmbeddingConfig configures the embedding backend.
type EmbeddingConfig struct {
	// Azure OpenAI resource endpoint.
	Endpoint string `yaml:"endpoint" env:"ENDPOINT"`
	// API key for the resource.
	APIKey string `yaml:"api_key" env:"API_KEY"`
	// Deployment name of the embedding model.
	Deployment string `yaml:"deployment" env:"DEPLOYMENT"`
	// Embedding model identifier.
	Model string `yaml:"model" env:"MODEL"`
	// REST API version.
	APIVersion string `yaml:"api_version" env:"API_VERSION"`
	// Expected vector dimensionality.
	Dimensions int `yaml:"dimensions" env:"DIMENSIONS"`
	// Request timeout.
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	// Level: debug, info, warn, error.
	Level string `yaml:"level" env:"LEVEL"`
	// Format: json or console.
	Format string `yaml:"format" env:"FORMAT"`
	// Output paths, stdout/stderr or file paths.
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	// Annotate entries with the calling site.
	EnableCaller bool `yaml:"enable_caller" env:"ENABLE_CALLER"`
}

// DefaultConfig returns the configuration used when no file or
// environment overrides are present.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			APIVersion: "2024-06-01",
			Timeout:    60 * time.Second,
		},
		Embedding: EmbeddingConfig{
			Deployment: "text-embedding-3-large",
			Model:      "text-embedding-3-large",
			APIVersion: "2024-06-01",
			Dimensions: 3072,
			Timeout:    30 * time.Second,
		},
		Log: LogConfig{
			Level:       "info",
			Format:      "console",
			OutputPaths: []string{"stdout"},
		},
	}
}
