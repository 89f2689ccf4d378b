// Package agent drives one conversation turn end to end: route the
// transcribed text, produce a response, and stream it out. It is the
// outermost error boundary of turn processing; nothing escapes Turn.
package agent

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"voxd"
	"voxd/router"
	"voxd/speech"
	"voxd/stream"
)

const msgCompletionFailed = "Sorry, something went wrong generating a response."

// segment id prefixes per response type.
func idPrefix(rt voxd.ResponseType) string {
	switch rt {
	case voxd.ResponseTask:
		return "TASK"
	case voxd.ResponseNotes:
		return "NOTES"
	default:
		return "RESP"
	}
}

// Driver processes turns for one session. Turns are serialized by the
// caller; Driver itself holds no locks.
type Driver struct {
	session  *voxd.Session
	router   *router.Router
	provider voxd.Provider
	streamer *stream.Streamer
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a [Driver].
type Option func(*Driver)

// WithClock overrides the time source used for date context in the chat
// system prompt.
func WithClock(now func() time.Time) Option {
	return func(d *Driver) { d.now = now }
}

// New creates a Driver for one session.
func New(session *voxd.Session, r *router.Router, provider voxd.Provider, streamer *stream.Streamer, logger *zap.Logger, opts ...Option) *Driver {
	d := &Driver{
		session:  session,
		router:   r,
		provider: provider,
		streamer: streamer,
		logger:   logger,
		now:      time.Now,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Turn processes one finalized transcription. It never returns an error and
// never panics: failures are logged and spoken as an error segment so the
// capture loop stays alive.
func (d *Driver) Turn(ctx context.Context, text string) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("panic in turn processing",
				zap.String("session_id", d.session.ID),
				zap.Any("panic", r),
				zap.Stack("stack"))
			d.speakError(ctx, msgCompletionFailed)
		}
	}()

	if d.session.Settings.Mode == voxd.ModeTranscribe {
		// Transcribe mode bypasses the assistant entirely: the text is
		// echoed on the synced channel and nothing enters history.
		d.echo(ctx, text)
		return
	}

	outcome := d.router.Route(ctx, d.session, text)
	rt, intent := d.router.Metadata()

	switch o := outcome.(type) {
	case voxd.DefaultCompletion:
		d.complete(ctx, rt, intent)

	case voxd.Override:
		// Sub-agent answers quote note content and tool output; strip any
		// markdown before the text is spoken.
		if err := d.streamer.Deliver(ctx, idPrefix(rt), speech.Flatten(o.Text), rt, intent); err != nil {
			d.logger.Error("override delivery failed",
				zap.String("session_id", d.session.ID),
				zap.Error(err))
		}

	case voxd.Failure:
		d.speakError(ctx, o.Text)
	}
}

// complete runs the default streaming completion over the full conversation
// history and records the assistant's reply.
func (d *Driver) complete(ctx context.Context, rt voxd.ResponseType, intent voxd.Intent) {
	src, err := d.provider.Stream(ctx, voxd.Request{
		Model:        d.session.Settings.Model,
		SystemPrompt: d.systemPrompt(),
		Messages:     d.session.Messages,
	})
	if err != nil {
		d.logger.Error("completion failed",
			zap.String("session_id", d.session.ID),
			zap.Error(err))
		d.speakError(ctx, msgCompletionFailed)
		return
	}

	text, err := d.streamer.Relay(ctx, src, rt, intent)
	if err != nil {
		d.logger.Error("completion stream failed",
			zap.String("session_id", d.session.ID),
			zap.Error(err))
		if text == "" {
			d.speakError(ctx, msgCompletionFailed)
			return
		}
		// A truncated response was already heard; record what was spoken.
	}
	d.session.Append(voxd.RoleAssistant, text)
}

func (d *Driver) echo(ctx context.Context, text string) {
	if err := d.streamer.Echo(ctx, text); err != nil {
		d.logger.Error("transcription echo failed",
			zap.String("session_id", d.session.ID),
			zap.Error(err))
	}
}

func (d *Driver) speakError(ctx context.Context, text string) {
	if err := d.streamer.Deliver(ctx, "RESP", text, voxd.ResponseError, ""); err != nil {
		d.logger.Error("error delivery failed",
			zap.String("session_id", d.session.ID),
			zap.Error(err))
	}
}

func (d *Driver) systemPrompt() string {
	return fmt.Sprintf(`You are a helpful voice assistant. Your responses are spoken aloud, so:
- Keep responses brief and conversational
- Avoid lists, markdown, and code blocks
- Spell out abbreviations the first time you use them

Current date: %s`, d.now().Format("2006-01-02"))
}
