package voxd

import (
	"context"
	"encoding/json"
	"io"
	"strings"
)

// Provider is a strategy pattern interface for the completion service.
//
// Stream starts an ordinary streaming completion. Structured performs a
// single completion constrained by a JSON schema; the returned document is
// guaranteed to be valid JSON but callers still validate field-level
// constraints against their own types.
type Provider interface {
	Stream(ctx context.Context, req Request) (Stream, error)
	Structured(ctx context.Context, req StructuredRequest) (json.RawMessage, error)
}

// Request carries model selection and generation parameters.
// The provider uses its own defaults when fields are zero/nil.
type Request struct {
	Model        string // model ID, provider-specific; empty = provider default
	SystemPrompt string
	Messages     []Message
	MaxTokens    int      // 0 = provider default
	Temperature  *float64 // nil = provider default
}

// StructuredRequest is a Request whose response must conform to Schema.
// A response that cannot be produced under the schema is a hard failure
// for that call.
type StructuredRequest struct {
	Request
	Schema json.RawMessage
}

// Stream uses a pull-based iterator pattern over text deltas. Next returns
// io.EOF after the final delta. Cancellation flows through the context
// passed to Provider.Stream().
type Stream interface {
	Next() (string, error)
	Close() error
}

// CompleteText drains a streaming completion into a single string. It is the
// non-streaming convenience used for summarization calls where chunk-level
// delivery adds nothing.
func CompleteText(ctx context.Context, p Provider, req Request) (string, error) {
	stream, err := p.Stream(ctx, req)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var b strings.Builder
	for {
		chunk, err := stream.Next()
		if err == io.EOF {
			return b.String(), nil
		}
		if err != nil {
			return b.String(), err
		}
		b.WriteString(chunk)
	}
}
