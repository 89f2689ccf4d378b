// Package platform manages session lifecycle: creation when capture starts,
// teardown when capture stops or the session idles out, and forced
// recreation whenever settings change.
package platform

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"voxd"
	"voxd/agent"
	"voxd/monitor"
	"voxd/notes"
	"voxd/retry"
	"voxd/router"
	"voxd/stream"
	"voxd/task"
)

// ErrNoSession is returned by turn-level operations when no session is live.
var ErrNoSession = errors.New("no active session")

// Platform owns at most one live session at a time and the shared
// dependencies every session is built from.
type Platform struct {
	classifier voxd.Classifier
	provider   voxd.Provider
	runner     voxd.ToolRunner
	notes      voxd.NotesClient
	sink       voxd.Sink
	notifier   voxd.Notifier
	logger     *zap.Logger

	monitorOpts []monitor.Option

	mu      sync.Mutex
	current *liveSession
}

// liveSession bundles everything created per session.
type liveSession struct {
	session *voxd.Session
	router  *router.Router
	driver  *agent.Driver
	monitor *monitor.Monitor
}

// Option configures a [Platform].
type Option func(*Platform)

// WithMonitorOptions forwards options to every session monitor created.
func WithMonitorOptions(opts ...monitor.Option) Option {
	return func(p *Platform) { p.monitorOpts = opts }
}

// New creates a Platform.
func New(classifier voxd.Classifier, provider voxd.Provider, runner voxd.ToolRunner, notesClient voxd.NotesClient, sink voxd.Sink, notifier voxd.Notifier, logger *zap.Logger, opts ...Option) *Platform {
	p := &Platform{
		classifier: classifier,
		provider:   provider,
		runner:     runner,
		notes:      notesClient,
		sink:       sink,
		notifier:   notifier,
		logger:     logger,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Start tears down any live session and creates a fresh one with the given
// settings. A session_ready notification is published once the session is
// accepting turns.
func (p *Platform) Start(ctx context.Context, settings voxd.Settings) *voxd.Session {
	p.Stop()

	session := voxd.NewSession(settings)
	r := router.New(p.classifier, p.factory(session), settings, p.logger)
	streamer := stream.New(p.sink, settings.Model, p.logger)
	live := &liveSession{
		session: session,
		router:  r,
		driver:  agent.New(session, r, p.provider, streamer, p.logger),
		monitor: monitor.Start(ctx, session.ID, p.notifier, p.logger, p.monitorOpts...),
	}

	p.mu.Lock()
	p.current = live
	p.mu.Unlock()

	// The monitor loop exits on its own after a timeout notification; the
	// session it watched is dead weight from then on, so drop it. Stop()
	// clears current first, which makes this watcher a no-op.
	go func() {
		<-live.monitor.Done()
		p.mu.Lock()
		if p.current == live {
			p.current = nil
			p.mu.Unlock()
			p.logger.Info("session ended by inactivity", zap.String("session_id", session.ID))
			return
		}
		p.mu.Unlock()
	}()

	if err := p.notifier.Publish(ctx, session.ID, voxd.SessionReady{}); err != nil {
		p.logger.Warn("failed to announce session",
			zap.String("session_id", session.ID),
			zap.Error(err))
	}
	p.logger.Info("session created",
		zap.String("session_id", session.ID),
		zap.String("model", settings.Model),
		zap.String("mode", string(settings.Mode)))
	return session
}

// Stop tears down the live session, if any. Idempotent.
func (p *Platform) Stop() {
	p.mu.Lock()
	live := p.current
	p.current = nil
	p.mu.Unlock()

	if live == nil {
		return
	}
	live.monitor.Stop()
	p.logger.Info("session destroyed", zap.String("session_id", live.session.ID))
}

// Session returns the live session, or nil.
func (p *Platform) Session() *voxd.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	return p.current.session
}

// Turn processes one finalized transcription against the live session and
// resets its inactivity window.
func (p *Platform) Turn(ctx context.Context, text string) error {
	live := p.live()
	if live == nil {
		return ErrNoSession
	}
	live.driver.Turn(ctx, text)
	live.monitor.TurnCompleted()
	return nil
}

// UpdateSettings merges a JSON metadata document into the live session's
// settings. Any observed change forces full session recreation; conversation
// history does not survive it.
func (p *Platform) UpdateSettings(ctx context.Context, metadata []byte) (*voxd.Session, error) {
	live := p.live()
	if live == nil {
		return nil, ErrNoSession
	}
	next, changed := live.session.Settings.Merge(metadata)
	if !changed {
		return live.session, nil
	}
	p.logger.Info("settings changed, recreating session",
		zap.String("session_id", live.session.ID))
	return p.Start(ctx, next), nil
}

// Confirm resolves a pending proposal through the UI signal path: the
// pending command executes directly, with no completion round-trip.
func (p *Platform) Confirm(ctx context.Context) (voxd.Response, error) {
	return p.signal(ctx, func(c voxd.Confirmer) (voxd.Response, error) {
		return c.Confirm(ctx)
	})
}

// Decline discards a pending proposal through the UI signal path.
func (p *Platform) Decline(ctx context.Context) (voxd.Response, error) {
	return p.signal(ctx, func(c voxd.Confirmer) (voxd.Response, error) {
		return c.Decline(ctx)
	})
}

func (p *Platform) signal(ctx context.Context, f func(voxd.Confirmer) (voxd.Response, error)) (voxd.Response, error) {
	live := p.live()
	if live == nil {
		return voxd.Response{}, ErrNoSession
	}
	sub := live.router.Active()
	c, ok := sub.(voxd.Confirmer)
	if !ok {
		return voxd.Response{Text: "Nothing to confirm."}, nil
	}
	resp, err := f(c)
	if err == nil {
		live.monitor.TurnCompleted()
	}
	return resp, err
}

func (p *Platform) live() *liveSession {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// factory builds sub-agents bound to one session's identity and model.
func (p *Platform) factory(session *voxd.Session) router.Factory {
	return func(kind voxd.Kind) voxd.SubAgent {
		model := session.Settings.Model
		switch kind {
		case voxd.KindNotes:
			return notes.New(session.ID, model, p.provider, p.notes, p.logger)
		default:
			engine := retry.New(p.provider, model, p.logger)
			return task.New(session.ID, model, p.provider, p.runner, engine, p.logger)
		}
	}
}
