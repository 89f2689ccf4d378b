// Package monitor implements the per-session inactivity timeout monitor.
//
// The monitor only notifies. Tearing the session down on timeout is the
// caller's responsibility, which keeps the monitor free of any access to
// conversation state: it reads and writes only its own timing state.
package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"voxd"
)

// Default timing parameters.
const (
	DefaultWarningThreshold = 55 * time.Second
	DefaultTimeout          = 60 * time.Second
	DefaultPollInterval     = 500 * time.Millisecond
)

// Monitor watches one session for inactivity, emitting a warning
// notification at the warning threshold and a timeout notification at the
// deadline, then stopping. A completed turn resets the window.
type Monitor struct {
	sessionID string
	notifier  voxd.Notifier
	logger    *zap.Logger

	warning time.Duration
	timeout time.Duration
	poll    time.Duration
	now     func() time.Time

	mu           sync.Mutex
	lastActivity time.Time
	warningSent  bool

	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a [Monitor].
type Option func(*Monitor)

// WithThresholds overrides the warning threshold, timeout, and poll interval.
func WithThresholds(warning, timeout, poll time.Duration) Option {
	return func(m *Monitor) {
		m.warning = warning
		m.timeout = timeout
		m.poll = poll
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

// Start creates a monitor for the session and launches its polling loop.
// The loop observes ctx at every poll boundary and exits without side
// effects once cancelled. Callers replacing a session's monitor must Stop
// the prior instance first to avoid duplicate timers.
func Start(ctx context.Context, sessionID string, notifier voxd.Notifier, logger *zap.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		sessionID: sessionID,
		notifier:  notifier,
		logger:    logger,
		warning:   DefaultWarningThreshold,
		timeout:   DefaultTimeout,
		poll:      DefaultPollInterval,
		now:       time.Now,
		done:      make(chan struct{}),
	}
	for _, o := range opts {
		o(m)
	}

	ctx, m.cancel = context.WithCancel(ctx)
	m.lastActivity = m.now()

	go m.run(ctx)
	m.logger.Info("session timer started", zap.String("session_id", sessionID))
	return m
}

// TurnCompleted resets the inactivity window and clears the warning flag.
// It is the only way to suppress an impending warning or timeout.
func (m *Monitor) TurnCompleted() {
	m.mu.Lock()
	m.lastActivity = m.now()
	m.warningSent = false
	m.mu.Unlock()
	m.logger.Debug("turn completed, timer reset", zap.String("session_id", m.sessionID))
}

// Stop cancels the monitor and waits for its loop to exit. No notification
// is emitted after Stop returns. Stop is idempotent.
func (m *Monitor) Stop() {
	m.cancel()
	<-m.done
}

// Done is closed when the monitor loop has exited, whether by timeout or
// cancellation.
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		elapsed, sendWarning, remaining := m.observe()

		if sendWarning {
			m.publish(ctx, voxd.SessionWarning{RemainingSeconds: remaining})
			m.logger.Info("session warning",
				zap.String("session_id", m.sessionID),
				zap.Int("remaining_seconds", remaining))
		}

		if elapsed >= m.timeout {
			m.publish(ctx, voxd.SessionTimeout{Reason: "inactivity", IdleDuration: elapsed})
			m.logger.Info("session timeout",
				zap.String("session_id", m.sessionID),
				zap.Duration("idle", elapsed))
			return
		}
	}
}

// observe computes the elapsed idle time and claims the warning slot for
// this window if it is due.
func (m *Monitor) observe() (elapsed time.Duration, sendWarning bool, remaining int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elapsed = m.now().Sub(m.lastActivity)
	if elapsed >= m.warning && !m.warningSent {
		m.warningSent = true
		sendWarning = true
		remaining = int((m.timeout - elapsed).Seconds())
	}
	return elapsed, sendWarning, remaining
}

// publish is best-effort: delivery failures are logged and never propagated.
func (m *Monitor) publish(ctx context.Context, n voxd.Notification) {
	if err := m.notifier.Publish(ctx, m.sessionID, n); err != nil {
		m.logger.Warn("failed to send session notification",
			zap.String("session_id", m.sessionID),
			zap.String("type", n.Type()),
			zap.Error(err))
	}
}
