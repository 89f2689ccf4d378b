package voxd

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrSchema indicates a structured completion response violated its schema.
	ErrSchema = errors.New("response violates schema")

	// ErrUnknownModel indicates a model id with no configured provider mapping.
	ErrUnknownModel = errors.New("unknown model")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")
)

// ToolErrorCause is the closed set of tool invocation failure causes.
type ToolErrorCause string

const (
	ToolNotFound  ToolErrorCause = "not_found"
	ToolTimeout   ToolErrorCause = "timeout"
	ToolExitError ToolErrorCause = "exit_error"
	ToolBadOutput ToolErrorCause = "bad_output"
)

// ToolError is a tool invocation failure with a typed cause. The cause is
// kept internal to the retry boundary; sub-agents flatten it to a single
// message when speaking to the user.
type ToolError struct {
	Cause    ToolErrorCause
	Msg      string
	ExitCode int
}

func (e *ToolError) Error() string {
	return e.Msg
}

// NewToolError creates a ToolError with a formatted message.
func NewToolError(cause ToolErrorCause, format string, args ...any) *ToolError {
	return &ToolError{Cause: cause, Msg: fmt.Sprintf(format, args...)}
}
