// Package llm provides the structured completion pipeline: prompt
// assembly, backend invocation, and schema-constrained response parsing
// behind a single entry point.
package llm

import (
	"context"

	"github.com/altairlabs/platformkit/structured"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is a single chat message sent to a backend.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// InvokeOptions carries the per-request generation parameters handed to
// a backend.
type InvokeOptions struct {
	// Temperature is the sampling temperature. Zero is a valid value
	// and the default.
	Temperature float64

	// MaxTokens caps the response length when positive. Zero means the
	// backend default.
	MaxTokens int
}

// Backend is the text-generation capability the pipeline invokes. A
// Backend owns its own transport concerns, including the bounded retry
// budget for transient failures; the pipeline never retries across its
// own stages.
type Backend interface {
	// Invoke sends the assembled messages and returns the raw text of
	// the model's response.
	Invoke(ctx context.Context, messages []Message, opts InvokeOptions) (string, error)

	// Name returns the backend's identifier.
	Name() string
}

// CompleteOptions configures a single Complete call.
type CompleteOptions struct {
	// Temperature is the sampling temperature. Defaults to 0.
	Temperature float64

	// MaxTokens caps the response length when positive.
	MaxTokens int

	// Schema, when set, switches the call to structured mode: format
	// instructions derived from the schema are appended to the system
	// prompt and the response is parsed and validated against it.
	Schema *structured.Schema
}

// Result is the outcome of a Complete call: raw text in unstructured
// mode, or a mapping conforming to the requested schema in structured
// mode. Exactly one of the two is populated on success.
type Result struct {
	// Text is the backend's raw response. Set only in unstructured mode.
	Text string

	// Fields is the parsed mapping keyed by the schema's field names.
	// Set only in structured mode.
	Fields map[string]any
}

// Structured reports whether the result carries a parsed mapping.
func (r Result) Structured() bool {
	return r.Fields != nil
}
