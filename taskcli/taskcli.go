// Package taskcli implements [voxd.ToolRunner] over a task-management CLI
// executed as a subprocess. Commands are argument vectors, never shell
// strings, and output is required to be JSON.
package taskcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	osexec "os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"voxd"
)

const (
	defaultBinary  = "task"
	defaultTimeout = 30 * time.Second
)

// Interface compliance check.
var _ voxd.ToolRunner = (*Runner)(nil)

// Runner executes task CLI commands with a per-invocation timeout.
type Runner struct {
	binary  string
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures a [Runner].
type Option func(*Runner)

// WithBinary overrides the executable name. Default is "task".
func WithBinary(binary string) Option {
	return func(r *Runner) { r.binary = binary }
}

// WithTimeout overrides the per-invocation timeout. Default is 30s.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) { r.timeout = d }
}

// New creates a Runner.
func New(logger *zap.Logger, opts ...Option) *Runner {
	r := &Runner{
		binary:  defaultBinary,
		timeout: defaultTimeout,
		logger:  logger,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run executes the argument vector and returns its stdout parsed as JSON.
// The first element of args must be the tool name and is replaced by the
// configured binary; this keeps completion-proposed commands from naming an
// arbitrary executable.
func (r *Runner) Run(ctx context.Context, args ...string) (json.RawMessage, error) {
	if len(args) == 0 {
		return nil, voxd.NewToolError(voxd.ToolBadOutput, "empty command")
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	stdout, stderr, err := r.exec(ctx, args[1:]...)
	if err != nil {
		return nil, r.classify(ctx, err, stderr)
	}

	out := bytes.TrimSpace(stdout)
	if len(out) == 0 {
		// Mutating commands may print nothing on success.
		return json.RawMessage(`{}`), nil
	}
	if !json.Valid(out) {
		return nil, voxd.NewToolError(voxd.ToolBadOutput, "output is not valid JSON: %s", firstLine(out))
	}
	return json.RawMessage(out), nil
}

// Help returns the CLI's usage text, used as grounding context for command
// construction and repair prompts.
func (r *Runner) Help(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	stdout, stderr, err := r.exec(ctx, "--help")
	if err != nil {
		// Some CLIs print usage to stderr and exit nonzero.
		var exitErr *osexec.ExitError
		if errors.As(err, &exitErr) && len(stderr) > 0 {
			return sanitize(stderr), nil
		}
		return "", r.classify(ctx, err, stderr)
	}
	if len(stdout) > 0 {
		return sanitize(stdout), nil
	}
	return sanitize(stderr), nil
}

// CheckAvailable reports whether the CLI can execute a basic listing.
func (r *Runner) CheckAvailable(ctx context.Context) bool {
	_, err := r.Run(ctx, r.binary, "list")
	if err != nil {
		r.logger.Warn("task CLI unavailable", zap.String("binary", r.binary), zap.Error(err))
		return false
	}
	return true
}

func (r *Runner) exec(ctx context.Context, args ...string) (stdout, stderr []byte, err error) {
	cmd := osexec.CommandContext(ctx, r.binary, args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	start := time.Now()
	err = cmd.Run()
	r.logger.Debug("task CLI invoked",
		zap.Strings("args", args),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err))
	return outBuf.Bytes(), errBuf.Bytes(), err
}

func (r *Runner) classify(ctx context.Context, err error, stderr []byte) *voxd.ToolError {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return voxd.NewToolError(voxd.ToolTimeout, "command timed out after %s", r.timeout)
	}

	var exitErr *osexec.ExitError
	if errors.As(err, &exitErr) {
		msg := truncateTail(sanitize(stderr), maxStderrLen)
		if msg == "" {
			msg = exitErr.String()
		}
		te := voxd.NewToolError(voxd.ToolExitError, "%s", msg)
		te.ExitCode = exitErr.ExitCode()
		return te
	}

	if errors.Is(err, osexec.ErrNotFound) {
		return voxd.NewToolError(voxd.ToolNotFound, "%s: executable not found", r.binary)
	}
	return voxd.NewToolError(voxd.ToolNotFound, "failed to start %s: %s", r.binary, err)
}

func firstLine(b []byte) string {
	s := string(b)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}
