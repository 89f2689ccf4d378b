package taskcli_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"voxd"
	"voxd/taskcli"
)

// toolError unwraps err into a *voxd.ToolError or fails the test.
func toolError(t *testing.T, err error) *voxd.ToolError {
	t.Helper()
	var te *voxd.ToolError
	require.True(t, errors.As(err, &te), "expected *voxd.ToolError, got %T: %v", err, err)
	return te
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	t.Run("parses JSON stdout", func(t *testing.T) {
		t.Parallel()
		r := taskcli.New(zap.NewNop(), taskcli.WithBinary("echo"))

		out, err := r.Run(context.Background(), "task", `{"id": 1, "title": "Buy milk"}`)
		require.NoError(t, err)
		assert.JSONEq(t, `{"id": 1, "title": "Buy milk"}`, string(out))
	})

	t.Run("empty stdout succeeds as empty object", func(t *testing.T) {
		t.Parallel()
		r := taskcli.New(zap.NewNop(), taskcli.WithBinary("true"))

		out, err := r.Run(context.Background(), "task", "done", "1")
		require.NoError(t, err)
		assert.JSONEq(t, `{}`, string(out))
	})

	t.Run("non-JSON output is a bad_output error", func(t *testing.T) {
		t.Parallel()
		r := taskcli.New(zap.NewNop(), taskcli.WithBinary("echo"))

		_, err := r.Run(context.Background(), "task", "plain text output")
		te := toolError(t, err)
		assert.Equal(t, voxd.ToolBadOutput, te.Cause)
		assert.Contains(t, te.Msg, "plain text output")
	})

	t.Run("nonzero exit carries stderr and exit code", func(t *testing.T) {
		t.Parallel()
		r := taskcli.New(zap.NewNop(), taskcli.WithBinary("sh"))

		_, err := r.Run(context.Background(), "task", "-c", "echo 'task 42 does not exist' >&2; exit 3")
		te := toolError(t, err)
		assert.Equal(t, voxd.ToolExitError, te.Cause)
		assert.Equal(t, "task 42 does not exist", te.Msg)
		assert.Equal(t, 3, te.ExitCode)
	})

	t.Run("missing executable is a not_found error", func(t *testing.T) {
		t.Parallel()
		r := taskcli.New(zap.NewNop(), taskcli.WithBinary("voxd-no-such-binary"))

		_, err := r.Run(context.Background(), "task", "list")
		te := toolError(t, err)
		assert.Equal(t, voxd.ToolNotFound, te.Cause)
	})

	t.Run("timeout is a timeout error", func(t *testing.T) {
		t.Parallel()
		r := taskcli.New(zap.NewNop(),
			taskcli.WithBinary("sleep"),
			taskcli.WithTimeout(50*time.Millisecond))

		start := time.Now()
		_, err := r.Run(context.Background(), "task", "10")
		te := toolError(t, err)
		assert.Equal(t, voxd.ToolTimeout, te.Cause)
		assert.Less(t, time.Since(start), 5*time.Second, "timeout must interrupt the subprocess")
	})

	t.Run("empty command is rejected", func(t *testing.T) {
		t.Parallel()
		r := taskcli.New(zap.NewNop())

		_, err := r.Run(context.Background())
		te := toolError(t, err)
		assert.Equal(t, voxd.ToolBadOutput, te.Cause)
	})
}

func TestRunner_Help(t *testing.T) {
	t.Parallel()

	r := taskcli.New(zap.NewNop(), taskcli.WithBinary("echo"))
	help, err := r.Help(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "--help\n", help)
}

func TestRunner_CheckAvailable(t *testing.T) {
	t.Parallel()

	t.Run("available", func(t *testing.T) {
		t.Parallel()
		r := taskcli.New(zap.NewNop(), taskcli.WithBinary("true"))
		assert.True(t, r.CheckAvailable(context.Background()))
	})

	t.Run("unavailable", func(t *testing.T) {
		t.Parallel()
		r := taskcli.New(zap.NewNop(), taskcli.WithBinary("voxd-no-such-binary"))
		assert.False(t, r.CheckAvailable(context.Background()))
	})
}
