package bubbletea

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"voxd"
)

// Interface compliance checks.
var (
	_ voxd.Sink     = (*Feed)(nil)
	_ voxd.Notifier = (*Feed)(nil)
)

// Feed bridges the session's output surfaces into Bubble Tea messages. It is
// both the segment sink and the notifier, created before the program exists
// and attached once the program is constructed. Anything published before
// attachment is dropped; nothing runs before the program does.
type Feed struct {
	mu      sync.Mutex
	program *tea.Program
}

// NewFeed creates an unattached Feed.
func NewFeed() *Feed {
	return &Feed{}
}

func (f *Feed) attach(p *tea.Program) {
	f.mu.Lock()
	f.program = p
	f.mu.Unlock()
}

func (f *Feed) send(msg tea.Msg) {
	f.mu.Lock()
	p := f.program
	f.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Open returns a writer forwarding chunks as console messages. Only the
// immediate topic is rendered; the synced channel exists for TTS alignment,
// which a text console has no use for.
func (f *Feed) Open(_ context.Context, topic string, seg voxd.Segment) (voxd.SegmentWriter, error) {
	if topic != voxd.TopicImmediate {
		return nopWriter{}, nil
	}
	return &feedWriter{feed: f, seg: seg}, nil
}

// Publish forwards a notification as a console message.
func (f *Feed) Publish(_ context.Context, sessionID string, n voxd.Notification) error {
	f.send(NotificationMsg{SessionID: sessionID, Notification: n})
	return nil
}

type feedWriter struct {
	feed *Feed
	seg  voxd.Segment
}

func (w *feedWriter) Write(_ context.Context, chunk string) error {
	w.feed.send(SegmentChunkMsg{Segment: w.seg, Chunk: chunk})
	return nil
}

func (w *feedWriter) Close(_ context.Context) error {
	w.feed.send(SegmentClosedMsg{Segment: w.seg})
	return nil
}

type nopWriter struct{}

func (nopWriter) Write(context.Context, string) error { return nil }
func (nopWriter) Close(context.Context) error         { return nil }

// turnCmd runs one turn off the UI goroutine.
func turnCmd(ctrl Controller, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		return TurnDoneMsg{Err: ctrl.Turn(ctx, text)}
	}
}

func confirmCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		resp, err := ctrl.Confirm(ctx)
		return SignalDoneMsg{Response: resp, Err: err}
	}
}

func declineCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		resp, err := ctrl.Decline(ctx)
		return SignalDoneMsg{Response: resp, Err: err}
	}
}
