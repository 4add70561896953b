// Package providers holds configuration types shared by the backend
// client implementations.
package providers

import "time"

// AzureConfig is the connection configuration for the Azure OpenAI
// backend. It is immutable after construction and safe for concurrent
// reads; the pipeline never mutates it.
type AzureConfig struct {
	// Endpoint is the Azure OpenAI resource endpoint, e.g.
	// https://myresource.openai.azure.com.
	Endpoint string `yaml:"endpoint"`

	// APIKey authenticates requests via the api-key header.
	APIKey string `yaml:"api_key"`

	// Deployment is the model deployment name, e.g. gpt-4o-dev-default.
	Deployment string `yaml:"deployment"`

	// APIVersion selects the service API version. Defaults to
	// DefaultAPIVersion when empty.
	APIVersion string `yaml:"api_version"`

	// Timeout bounds a single HTTP attempt. Zero means the client
	// default of 60s.
	Timeout time.Duration `yaml:"timeout"`
}

// AzureEmbeddingConfig is the connection configuration for the Azure
// OpenAI embeddings backend.
type AzureEmbeddingConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	APIKey     string        `yaml:"api_key"`
	Deployment string        `yaml:"deployment"`
	APIVersion string        `yaml:"api_version"`
	Timeout    time.Duration `yaml:"timeout"`

	// Model is the embedding model name, e.g. text-embedding-3-large.
	Model string `yaml:"model"`

	// Dimensions is the expected embedding vector length. Responses
	// whose vectors differ in length are rejected.
	Dimensions int `yaml:"dimensions"`
}
