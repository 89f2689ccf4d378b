package voxd

import "context"

// Kind identifies a sub-agent variant.
type Kind string

const (
	KindTask  Kind = "task"
	KindNotes Kind = "notes"
)

// Response is what a sub-agent hands back to the router for one turn.
type Response struct {
	// Text is spoken to the user.
	Text string

	// ExitReason, when non-empty, returns control to classification-based
	// routing starting with the next turn.
	ExitReason string

	// HistoryContext carries raw command/result context recorded alongside
	// Text in the sub-agent's conversation history so follow-up turns can
	// reference it. Never spoken.
	HistoryContext string
}

// ShouldExit reports whether the sub-agent is done with the conversation.
func (r Response) ShouldExit() bool {
	return r.ExitReason != ""
}

// HistoryText is the content recorded in conversation history for this
// response.
func (r Response) HistoryText() string {
	if r.HistoryContext == "" {
		return r.Text
	}
	return r.HistoryContext + "\n\n" + r.Text
}

// SubAgent is a specialized handler that can become the exclusive recipient
// of a session's subsequent turns. While Active() it receives every turn
// directly, bypassing intent classification, until it signals exit.
type SubAgent interface {
	Kind() Kind
	Active() bool
	Activate()
	Pending() bool
	Process(ctx context.Context, text string) (Response, error)
}

// Confirmer is implemented by sub-agents whose pending command can be
// resolved directly by a UI signal, with no completion round-trip. The
// transitions are identical to the completion-decided confirm/cancel.
type Confirmer interface {
	Confirm(ctx context.Context) (Response, error)
	Decline(ctx context.Context) (Response, error)
}
