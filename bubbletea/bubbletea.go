// Package bubbletea provides a Bubble Tea console for driving sessions with
// typed input in place of live transcription: useful for development and for
// machines without a capture pipeline.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"voxd"
)

// Controller is the session surface the console drives. *platform.Platform
// satisfies it.
type Controller interface {
	Start(ctx context.Context, settings voxd.Settings) *voxd.Session
	Stop()
	Session() *voxd.Session
	Turn(ctx context.Context, text string) error
	Confirm(ctx context.Context) (voxd.Response, error)
	Decline(ctx context.Context) (voxd.Response, error)
}

// Run creates and runs the Bubble Tea program. It blocks until the program
// exits. When ctx is cancelled the program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	m.feed.attach(p)
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// SegmentChunkMsg delivers one chunk of response text to the console.
type SegmentChunkMsg struct {
	Segment voxd.Segment
	Chunk   string
}

// SegmentClosedMsg marks a segment complete.
type SegmentClosedMsg struct {
	Segment voxd.Segment
}

// NotificationMsg delivers an out-of-band session notification.
type NotificationMsg struct {
	SessionID    string
	Notification voxd.Notification
}

// TurnDoneMsg signals that turn processing finished.
type TurnDoneMsg struct {
	Err error
}

// SignalDoneMsg signals that a confirm/decline UI action finished.
type SignalDoneMsg struct {
	Response voxd.Response
	Err      error
}
