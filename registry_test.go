package voxd_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxd"
	"voxd/mock"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	streamer := func(text string) *mock.Provider {
		return &mock.Provider{
			StreamFn: func(_ context.Context, _ voxd.Request) (voxd.Stream, error) {
				return mock.TextStream(text), nil
			},
		}
	}

	t.Run("dispatches by prefix", func(t *testing.T) {
		t.Parallel()
		r := voxd.NewRegistry()
		r.Register("gemini-", streamer("from gemini"))
		r.Register("claude-", streamer("from claude"))

		got, err := voxd.CompleteText(context.Background(), r, voxd.Request{Model: "claude-sonnet-4-20250514"})
		require.NoError(t, err)
		assert.Equal(t, "from claude", got)

		got, err = voxd.CompleteText(context.Background(), r, voxd.Request{Model: "gemini-3.1-pro-preview"})
		require.NoError(t, err)
		assert.Equal(t, "from gemini", got)
	})

	t.Run("unknown model", func(t *testing.T) {
		t.Parallel()
		r := voxd.NewRegistry()
		r.Register("gemini-", streamer(""))

		_, err := r.Stream(context.Background(), voxd.Request{Model: "gpt-5"})
		assert.ErrorIs(t, err, voxd.ErrUnknownModel)
		assert.Contains(t, err.Error(), "gpt-5")
	})

	t.Run("empty model uses fallback", func(t *testing.T) {
		t.Parallel()
		r := voxd.NewRegistry()
		r.SetFallback(streamer("fallback"))

		got, err := voxd.CompleteText(context.Background(), r, voxd.Request{})
		require.NoError(t, err)
		assert.Equal(t, "fallback", got)
	})

	t.Run("empty model without fallback", func(t *testing.T) {
		t.Parallel()
		r := voxd.NewRegistry()
		_, err := r.Stream(context.Background(), voxd.Request{})
		assert.ErrorIs(t, err, voxd.ErrUnknownModel)
	})
}
