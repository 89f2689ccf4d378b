// Package retry provides the bounded, LLM-assisted repair loop wrapping
// external tool invocations.
package retry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"voxd"
)

// DefaultMaxRetries bounds the number of tool invocation attempts.
const DefaultMaxRetries = 3

// Invoker runs a single attempt of an external command.
type Invoker func(ctx context.Context, args []string) (json.RawMessage, error)

// repairSchema constrains the repair completion. Types use the uppercase
// OpenAPI spelling the completion service expects.
const repairSchema = `{
	"type": "OBJECT",
	"properties": {
		"can_fix": {
			"type": "BOOLEAN",
			"description": "Whether the command can be corrected and retried"
		},
		"corrected_command": {
			"type": "ARRAY",
			"items": {"type": "STRING"},
			"description": "The corrected argument vector, present only when can_fix is true"
		}
	},
	"required": ["can_fix"]
}`

type repairOutput struct {
	CanFix           bool     `json:"can_fix"`
	CorrectedCommand []string `json:"corrected_command,omitempty"`
}

// Engine retries failed tool invocations, asking the completion service for
// a corrected command between attempts. Attempts are strictly sequential: a
// correction depends on the prior failure.
type Engine struct {
	provider voxd.Provider
	model    string
	max      int
	logger   *zap.Logger
}

// Option configures an [Engine].
type Option func(*Engine)

// WithMaxRetries overrides the retry bound. Values below one are ignored.
func WithMaxRetries(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.max = n
		}
	}
}

// New creates an Engine using the given provider for repair completions.
func New(provider voxd.Provider, model string, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		provider: provider,
		model:    model,
		max:      DefaultMaxRetries,
		logger:   logger,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Run executes the command, repairing and retrying on failure up to the
// retry bound. commandHelp is the tool's self-reported command reference,
// passed to the repair completion for context.
//
// A repair that reports can_fix=false, or supplies no corrected command,
// aborts immediately: each wasted attempt costs one external call plus a
// completion round-trip, so unfixable errors fail fast. On the final
// attempt any failure is returned as-is with no repair request.
func (e *Engine) Run(ctx context.Context, args []string, commandHelp string, invoke Invoker) (json.RawMessage, error) {
	for attempt := 1; ; attempt++ {
		result, err := invoke(ctx, args)
		if err == nil {
			if attempt > 1 {
				e.logger.Info("command succeeded after repair",
					zap.Int("attempt", attempt),
					zap.Strings("command", args))
			}
			return result, nil
		}

		e.logger.Warn("command failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", e.max),
			zap.Strings("command", args),
			zap.Error(err))

		if attempt >= e.max {
			return nil, err
		}

		fixed, repairErr := e.requestRepair(ctx, args, err, commandHelp)
		if repairErr != nil {
			e.logger.Warn("repair request failed", zap.Error(repairErr))
			return nil, err
		}
		if !fixed.CanFix || len(fixed.CorrectedCommand) == 0 {
			e.logger.Info("error reported unfixable, aborting",
				zap.Strings("command", args))
			return nil, err
		}

		e.logger.Info("applying corrected command",
			zap.Strings("previous", args),
			zap.Strings("corrected", fixed.CorrectedCommand))
		args = fixed.CorrectedCommand
	}
}

func (e *Engine) requestRepair(ctx context.Context, args []string, failure error, commandHelp string) (repairOutput, error) {
	prompt := buildRepairPrompt(args, failure, commandHelp)
	raw, err := e.provider.Structured(ctx, voxd.StructuredRequest{
		Request: voxd.Request{
			Model:    e.model,
			Messages: []voxd.Message{{Role: voxd.RoleUser, Content: prompt}},
		},
		Schema: json.RawMessage(repairSchema),
	})
	if err != nil {
		return repairOutput{}, fmt.Errorf("repair completion: %w", err)
	}

	var out repairOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return repairOutput{}, fmt.Errorf("repair output: %w: %v", voxd.ErrSchema, err)
	}
	return out, nil
}

func buildRepairPrompt(args []string, failure error, commandHelp string) string {
	var b strings.Builder
	b.WriteString("A command-line tool invocation failed. Decide whether the command can be corrected.\n\n")
	fmt.Fprintf(&b, "Failing command: %s\n", strings.Join(args, " "))
	fmt.Fprintf(&b, "Error: %s\n", failure.Error())
	if commandHelp != "" {
		fmt.Fprintf(&b, "\nCommand reference:\n%s\n", commandHelp)
	}
	b.WriteString("\nIf the error is caused by wrong arguments, respond with can_fix=true and the corrected argument vector. If the error is environmental (tool missing, backend down, timeout), respond with can_fix=false.")
	return b.String()
}
