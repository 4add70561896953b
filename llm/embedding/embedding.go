// Package embedding provides a client for text embedding backends with
// response shape validation.
package embedding

import "context"

// Provider is the embedding capability consumed by callers. The
// returned vector always has exactly the configured number of
// dimensions and contains only finite values.
type Provider interface {
	// EmbedQuery generates the embedding vector for a single text input.
	EmbedQuery(ctx context.Context, text string) ([]float64, error)

	// Name returns the provider's identifier.
	Name() string

	// Dimensions returns the configured embedding vector length.
	Dimensions() int
}
