package voxd

import (
	"context"
	"encoding/json"
	"time"
)

// Notification is a sealed interface over the closed set of out-of-band
// session notifications. The unexported marker method prevents external
// implementations; a closed set keeps the wire payload from drifting.
type Notification interface {
	notification()
	Type() string
}

// SessionReady announces that a session is live and accepting turns.
type SessionReady struct{}

func (SessionReady) notification() {}

// Type returns the wire type tag.
func (SessionReady) Type() string { return "session_ready" }

// SessionWarning warns that the session will time out soon.
type SessionWarning struct {
	RemainingSeconds int
}

func (SessionWarning) notification() {}

// Type returns the wire type tag.
func (SessionWarning) Type() string { return "session_warning" }

// SessionTimeout announces that the session idled past its deadline.
// Delivery only: tearing the session down is the receiver's job.
type SessionTimeout struct {
	Reason       string
	IdleDuration time.Duration
}

func (SessionTimeout) notification() {}

// Type returns the wire type tag.
func (SessionTimeout) Type() string { return "session_timeout" }

// Interface compliance checks.
var (
	_ Notification = SessionReady{}
	_ Notification = SessionWarning{}
	_ Notification = SessionTimeout{}
)

// Notifier publishes notifications on a channel distinct from response text.
// Publishing is best-effort: callers log failures and never fail the turn.
type Notifier interface {
	Publish(ctx context.Context, sessionID string, n Notification) error
}

// EncodeNotification serializes a notification to its wire format:
// {type, session_id, timestamp, ...payload}.
func EncodeNotification(sessionID string, ts time.Time, n Notification) ([]byte, error) {
	doc := map[string]any{
		"type":       n.Type(),
		"session_id": sessionID,
		"timestamp":  float64(ts.UnixMilli()) / 1000,
	}
	switch v := n.(type) {
	case SessionWarning:
		doc["remaining_seconds"] = v.RemainingSeconds
	case SessionTimeout:
		doc["reason"] = v.Reason
		doc["idle_duration"] = v.IdleDuration.Seconds()
	}
	return json.Marshal(doc)
}
