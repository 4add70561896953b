package llm

import (
	"context"
	"strings"

	"github.com/altairlabs/platformkit/structured"
	"github.com/altairlabs/platformkit/types"
)

// Completer is the structured completion pipeline. It is parameterized
// by a Backend chosen once at construction and holds no mutable state,
// so a single Completer is safe for concurrent use; each Complete call
// is fully independent.
type Completer struct {
	backend Backend
}

// NewCompleter creates a Completer over the given backend.
func NewCompleter(backend Backend) (*Completer, error) {
	if backend == nil {
		return nil, types.NewError(types.ErrConfiguration, "backend cannot be nil")
	}
	return &Completer{backend: backend}, nil
}

// Complete runs one request through the pipeline: validate inputs,
// assemble the prompt, invoke the backend, and parse the response.
//
// Both prompts must be non-empty after trimming; violations fail with
// an INPUT_VALIDATION error before any backend call. When opts.Schema
// is set, the schema's format instructions are appended to the system
// prompt exactly once and the response is parsed into Result.Fields;
// otherwise the backend's raw text is returned unchanged in
// Result.Text. Prompt bodies are passed to the backend as opaque
// values, so literal braces are never reinterpreted.
func (c *Completer) Complete(ctx context.Context, systemPrompt, userPrompt string, opts CompleteOptions) (Result, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return Result{}, types.NewError(types.ErrInputValidation, "system prompt cannot be empty")
	}
	if strings.TrimSpace(userPrompt) == "" {
		return Result{}, types.NewError(types.ErrInputValidation, "user prompt cannot be empty")
	}

	messages, err := assembleMessages(systemPrompt, userPrompt, opts.Schema)
	if err != nil {
		return Result{}, err
	}

	raw, err := c.backend.Invoke(ctx, messages, InvokeOptions{
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return Result{}, types.NewError(types.ErrModelInvocation, "model invocation failed").WithCause(err)
	}

	if opts.Schema == nil {
		return Result{Text: raw}, nil
	}

	fields, err := structured.Parse(raw, opts.Schema)
	if err != nil {
		return Result{}, types.NewError(types.ErrSchemaValidation, "response does not conform to schema").WithCause(err)
	}
	return Result{Fields: fields}, nil
}

// assembleMessages builds the two-role message structure. With a schema,
// the system message is the system prompt plus the schema's format
// instructions, joined by a single newline. Prompt strings are carried
// through verbatim; there is no template substitution.
func assembleMessages(systemPrompt, userPrompt string, schema *structured.Schema) ([]Message, error) {
	system := systemPrompt
	if schema != nil {
		instructions, err := structured.FormatInstructions(schema)
		if err != nil {
			return nil, types.NewError(types.ErrConfiguration, "failed to build format instructions").WithCause(err)
		}
		system = systemPrompt + "\n" + instructions
	}
	return []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: userPrompt},
	}, nil
}
