package voxd_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxd"
	"voxd/mock"
)

func TestClassification_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		c := voxd.Classification{Intent: voxd.IntentWebSearch, Confidence: 0.8, SearchQuery: "weather"}
		assert.NoError(t, c.Validate())
	})

	t.Run("unknown intent", func(t *testing.T) {
		t.Parallel()
		c := voxd.Classification{Intent: "banter", Confidence: 0.5}
		assert.ErrorIs(t, c.Validate(), voxd.ErrSchema)
	})

	t.Run("confidence out of range", func(t *testing.T) {
		t.Parallel()
		c := voxd.Classification{Intent: voxd.IntentDirectResponse, Confidence: 1.2}
		assert.ErrorIs(t, c.Validate(), voxd.ErrSchema)
	})
}

func TestCompleteText(t *testing.T) {
	t.Parallel()

	t.Run("accumulates all chunks", func(t *testing.T) {
		t.Parallel()
		closed := false
		p := &mock.Provider{
			StreamFn: func(_ context.Context, _ voxd.Request) (voxd.Stream, error) {
				s := mock.TextStream("a", "b", "c")
				s.CloseFn = func() error { closed = true; return nil }
				return s, nil
			},
		}

		got, err := voxd.CompleteText(context.Background(), p, voxd.Request{})
		require.NoError(t, err)
		assert.Equal(t, "abc", got)
		assert.True(t, closed, "stream must be closed")
	})

	t.Run("mid-stream error returns partial text", func(t *testing.T) {
		t.Parallel()
		calls := 0
		p := &mock.Provider{
			StreamFn: func(_ context.Context, _ voxd.Request) (voxd.Stream, error) {
				return &mock.Stream{NextFn: func() (string, error) {
					calls++
					if calls == 1 {
						return "partial", nil
					}
					return "", assert.AnError
				}}, nil
			},
		}

		got, err := voxd.CompleteText(context.Background(), p, voxd.Request{})
		assert.Error(t, err)
		assert.Equal(t, "partial", got)
	})
}

func TestResponse_HistoryText(t *testing.T) {
	t.Parallel()

	t.Run("plain response", func(t *testing.T) {
		t.Parallel()
		r := voxd.Response{Text: "Done! Anything else?"}
		assert.Equal(t, "Done! Anything else?", r.HistoryText())
		assert.False(t, r.ShouldExit())
	})

	t.Run("query keeps raw context ahead of the spoken text", func(t *testing.T) {
		t.Parallel()
		r := voxd.Response{
			Text:           "You have two tasks.",
			HistoryContext: "[Command: task list]\n[Result: ...]",
		}
		assert.Equal(t, "[Command: task list]\n[Result: ...]\n\nYou have two tasks.", r.HistoryText())
	})

	t.Run("exit", func(t *testing.T) {
		t.Parallel()
		r := voxd.Response{Text: "Bye.", ExitReason: "user_exit"}
		assert.True(t, r.ShouldExit())
	})
}

func TestToolError(t *testing.T) {
	t.Parallel()

	te := voxd.NewToolError(voxd.ToolExitError, "task %d does not exist", 42)
	te.ExitCode = 1
	assert.Equal(t, "task 42 does not exist", te.Error())
	assert.Equal(t, voxd.ToolExitError, te.Cause)
}

func TestNewSegmentID(t *testing.T) {
	t.Parallel()

	id := voxd.NewSegmentID("LLM")
	assert.Regexp(t, `^LLM_[0-9a-f]{8}$`, id)
	assert.NotEqual(t, id, voxd.NewSegmentID("LLM"))
}
