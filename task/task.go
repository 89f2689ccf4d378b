// Package task implements the task-management sub-agent. A structured
// completion turns each user message into an action; mutating commands are
// proposed first and execute only on explicit confirmation.
package task

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"voxd"
	"voxd/retry"
)

// Action is the closed set of decisions the completion can make for a turn.
type Action string

const (
	ActionNone    Action = "none"
	ActionPropose Action = "propose"
	ActionConfirm Action = "confirm"
	ActionCancel  Action = "cancel"
	ActionQuery   Action = "query"
	ActionExit    Action = "exit"
)

// Fixed spoken responses for the confirm/cancel transitions.
const (
	msgNothingToConfirm = "Nothing to confirm."
	msgNothingToCancel  = "Nothing to cancel."
	msgConfirmed        = "Done! Anything else?"
	msgCancelled        = "Cancelled. What would you like to do?"
	msgDecisionFailed   = "I'm having trouble processing that. Could you try again?"
)

const historyResultLimit = 2000

const decisionSchema = `{
	"type": "OBJECT",
	"properties": {
		"response": {
			"type": "STRING",
			"description": "Text response to speak to the user"
		},
		"action": {
			"type": "STRING",
			"enum": ["none", "propose", "confirm", "cancel", "query", "exit"],
			"description": "Action to take: 'none' for conversation or clarification, 'propose' to suggest a mutating command, 'confirm' when the user approves the pending command, 'cancel' when the user declines it, 'query' for read-only commands, 'exit' to leave the task flow"
		},
		"command": {
			"type": "ARRAY",
			"items": {"type": "STRING"},
			"description": "Argument vector for propose/query actions, e.g. [\"task\", \"add\", \"Buy milk\"]"
		}
	},
	"required": ["response", "action"]
}`

type decision struct {
	Response string   `json:"response"`
	Action   Action   `json:"action"`
	Command  []string `json:"command,omitempty"`
}

// Interface compliance checks.
var (
	_ voxd.SubAgent  = (*Agent)(nil)
	_ voxd.Confirmer = (*Agent)(nil)
)

// Agent is the task-management sub-agent. State is in-memory for the
// session duration; turns are serialized by the platform, so no locking.
type Agent struct {
	sessionID string
	model     string
	provider  voxd.Provider
	runner    voxd.ToolRunner
	engine    *retry.Engine
	logger    *zap.Logger
	now       func() time.Time

	active   bool
	pending  []string // argv awaiting confirmation, nil when none
	messages []voxd.Message

	help       string
	helpLoaded bool
}

// Option configures an [Agent].
type Option func(*Agent)

// WithClock overrides the time source used for date context in prompts.
func WithClock(now func() time.Time) Option {
	return func(a *Agent) { a.now = now }
}

// New creates a task sub-agent for one session.
func New(sessionID, model string, provider voxd.Provider, runner voxd.ToolRunner, engine *retry.Engine, logger *zap.Logger, opts ...Option) *Agent {
	a := &Agent{
		sessionID: sessionID,
		model:     model,
		provider:  provider,
		runner:    runner,
		engine:    engine,
		logger:    logger,
		now:       time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Kind returns voxd.KindTask.
func (a *Agent) Kind() voxd.Kind { return voxd.KindTask }

// Active reports whether the agent holds sticky routing.
func (a *Agent) Active() bool { return a.active }

// Activate makes the agent the exclusive recipient of subsequent turns.
func (a *Agent) Activate() { a.active = true }

// Pending reports whether a command awaits confirmation (drives the UI
// confirm/decline button state).
func (a *Agent) Pending() bool { return a.pending != nil }

// Process handles one user turn inside the task flow.
func (a *Agent) Process(ctx context.Context, text string) (voxd.Response, error) {
	a.messages = append(a.messages, voxd.Message{Role: voxd.RoleUser, Content: text})

	dec, err := a.decide(ctx)
	if err != nil {
		a.logger.Error("task decision failed", zap.String("session_id", a.sessionID), zap.Error(err))
		resp := voxd.Response{Text: msgDecisionFailed}
		a.record(resp)
		return resp, nil
	}

	a.logger.Info("task action decided",
		zap.String("session_id", a.sessionID),
		zap.String("action", string(dec.Action)),
		zap.Strings("command", dec.Command))

	resp := a.apply(ctx, dec)
	a.record(resp)
	return resp, nil
}

func (a *Agent) apply(ctx context.Context, dec decision) voxd.Response {
	switch dec.Action {
	case ActionPropose:
		if len(dec.Command) == 0 {
			return voxd.Response{Text: dec.Response}
		}
		a.pending = dec.Command
		return voxd.Response{Text: dec.Response}

	case ActionConfirm:
		resp, _ := a.Confirm(ctx)
		return resp

	case ActionCancel:
		resp, _ := a.Decline(ctx)
		return resp

	case ActionQuery:
		if len(dec.Command) == 0 {
			return voxd.Response{Text: dec.Response}
		}
		return a.query(ctx, dec.Command)

	case ActionExit:
		a.active = false
		return voxd.Response{Text: dec.Response, ExitReason: "user_exit"}

	default: // ActionNone and anything unexpected: conversational only.
		return voxd.Response{Text: dec.Response}
	}
}

// Confirm executes the pending command. It may be triggered by the
// completion-decided confirm action or directly by a UI signal; the
// transition is the same either way. The pending command is cleared
// regardless of outcome.
func (a *Agent) Confirm(ctx context.Context) (voxd.Response, error) {
	if a.pending == nil {
		return voxd.Response{Text: msgNothingToConfirm}, nil
	}
	args := a.pending
	a.pending = nil

	if _, err := a.engine.Run(ctx, args, a.commandHelp(ctx), a.invoke); err != nil {
		a.logger.Error("pending command failed",
			zap.String("session_id", a.sessionID),
			zap.Strings("command", args),
			zap.Error(err))
		return voxd.Response{Text: fmt.Sprintf("Failed: %s. What else can I help with?", err)}, nil
	}
	return voxd.Response{Text: msgConfirmed}, nil
}

// Decline clears the pending command. With nothing pending it is a no-op.
func (a *Agent) Decline(context.Context) (voxd.Response, error) {
	if a.pending == nil {
		return voxd.Response{Text: msgNothingToCancel}, nil
	}
	a.pending = nil
	return voxd.Response{Text: msgCancelled}, nil
}

// query executes a read-only command immediately and summarizes the result
// for voice. The raw command and truncated result are attached as history
// context for later follow-ups.
func (a *Agent) query(ctx context.Context, args []string) voxd.Response {
	raw, err := a.engine.Run(ctx, args, a.commandHelp(ctx), a.invoke)
	if err != nil {
		return voxd.Response{Text: fmt.Sprintf("Operation failed: %s", err)}
	}

	summary, err := a.summarize(ctx, raw)
	if err != nil {
		a.logger.Error("summarization failed", zap.String("session_id", a.sessionID), zap.Error(err))
		return voxd.Response{Text: "I found the results but couldn't summarize them. Could you try again?"}
	}

	result := string(raw)
	if len(result) > historyResultLimit {
		result = result[:historyResultLimit]
	}
	return voxd.Response{
		Text:           summary,
		HistoryContext: fmt.Sprintf("[Command: %s]\n[Result: %s]", strings.Join(args, " "), result),
	}
}

func (a *Agent) decide(ctx context.Context) (decision, error) {
	raw, err := a.provider.Structured(ctx, voxd.StructuredRequest{
		Request: voxd.Request{
			Model:        a.model,
			SystemPrompt: a.systemPrompt(ctx),
			Messages:     a.messages,
		},
		Schema: json.RawMessage(decisionSchema),
	})
	if err != nil {
		return decision{}, fmt.Errorf("task completion: %w", err)
	}

	var dec decision
	if err := json.Unmarshal(raw, &dec); err != nil {
		return decision{}, fmt.Errorf("task output: %w: %v", voxd.ErrSchema, err)
	}
	return dec, nil
}

func (a *Agent) summarize(ctx context.Context, result json.RawMessage) (string, error) {
	text := string(result)
	if len(text) > 3000 {
		text = text[:3000] + "... (truncated)"
	}
	prompt := fmt.Sprintf(`Summarize these results in a brief, conversational response suitable for voice.
Be concise - just the key information.

Results:
%s
`, text)
	return voxd.CompleteText(ctx, a.provider, voxd.Request{
		Model:    a.model,
		Messages: []voxd.Message{{Role: voxd.RoleUser, Content: prompt}},
	})
}

func (a *Agent) invoke(ctx context.Context, args []string) (json.RawMessage, error) {
	return a.runner.Run(ctx, args...)
}

func (a *Agent) record(resp voxd.Response) {
	a.messages = append(a.messages, voxd.Message{Role: voxd.RoleAssistant, Content: resp.HistoryText()})
}

func (a *Agent) systemPrompt(ctx context.Context) string {
	now := a.now()
	return fmt.Sprintf(`You are a task management assistant. Help users manage their tasks via voice.

Current date: %s
Current time: %s

Available CLI commands:
%s

Guidelines:
- For any command that modifies tasks (create/update/complete/delete), use action="propose" with the full command and wait for confirmation
- When the user approves a pending command ("yes", "do it", "go ahead"), use action="confirm"
- When the user declines a pending command ("no", "never mind"), use action="cancel"
- For read-only requests (list, search, what's due), use action="query" with the command; no confirmation needed
- Parse natural language dates relative to the current date
- If a request is ambiguous, ask for clarification with action="none"
- When the user wants to leave the task flow, use action="exit"
- Keep responses concise for voice`,
		now.Format("2006-01-02"),
		now.Format(time.RFC3339),
		a.commandHelp(ctx))
}

// commandHelp fetches the tool's self-reported command reference once and
// caches it for the agent's lifetime.
func (a *Agent) commandHelp(ctx context.Context) string {
	if a.helpLoaded {
		return a.help
	}
	help, err := a.runner.Help(ctx)
	if err != nil {
		a.logger.Warn("command reference unavailable", zap.Error(err))
		return "task CLI not available"
	}
	a.help = help
	a.helpLoaded = true
	return a.help
}
