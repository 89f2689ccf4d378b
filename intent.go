package voxd

import (
	"context"
	"fmt"
)

// Intent is the classified intent of a user turn.
type Intent string

const (
	IntentDirectResponse Intent = "direct_response"
	IntentWebSearch      Intent = "web_search"
	IntentEndDialog      Intent = "end_dialog"
	IntentTaskManagement Intent = "task_management"
	IntentNotes          Intent = "notes"
)

// KnownIntent reports whether i is a member of the closed intent set.
func KnownIntent(i Intent) bool {
	switch i {
	case IntentDirectResponse, IntentWebSearch, IntentEndDialog,
		IntentTaskManagement, IntentNotes:
		return true
	}
	return false
}

// Classification is the structured result of classifying a user turn.
type Classification struct {
	Intent      Intent  `json:"intent"`
	Confidence  float64 `json:"confidence"`
	SearchQuery string  `json:"search_query,omitempty"`
	Response    string  `json:"response"`
}

// Validate checks schema-level constraints on a classification.
func (c Classification) Validate() error {
	if !KnownIntent(c.Intent) {
		return fmt.Errorf("unknown intent %q: %w", c.Intent, ErrSchema)
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("confidence %g out of [0, 1]: %w", c.Confidence, ErrSchema)
	}
	return nil
}

// Classifier decides what a user turn is asking for, given the full
// conversation history plus the new utterance.
type Classifier interface {
	Classify(ctx context.Context, history []Message, text string) (Classification, error)
}
