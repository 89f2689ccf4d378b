package voxd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session represents one live conversation session. It is created when
// capture starts and destroyed when capture stops or settings change; a
// settings change always forces full recreation.
type Session struct {
	ID        string
	CreatedAt time.Time
	Settings  Settings
	Messages  []Message
}

// NewSession creates a Session with a fresh id and the given settings.
func NewSession(settings Settings) *Session {
	return &Session{
		ID:        fmt.Sprintf("session_%s", uuid.NewString()[:8]),
		CreatedAt: time.Now(),
		Settings:  settings,
	}
}

// Append adds a message to the conversation history.
func (s *Session) Append(role Role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
}
