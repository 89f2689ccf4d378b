package classify_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"voxd"
	"voxd/classify"
	"voxd/mock"
)

func TestClassifier_Classify(t *testing.T) {
	t.Parallel()

	t.Run("parses a conforming response", func(t *testing.T) {
		t.Parallel()

		var captured voxd.StructuredRequest
		provider := &mock.Provider{
			StructuredFn: func(_ context.Context, req voxd.StructuredRequest) (json.RawMessage, error) {
				captured = req
				return json.RawMessage(`{
					"intent": "task_management",
					"confidence": 0.93,
					"response": "I'll hand that to the task agent."
				}`), nil
			},
		}
		c := classify.New(provider, "gemini-3.1-pro-preview", zap.NewNop())

		history := []voxd.Message{
			{Role: voxd.RoleUser, Content: "hi"},
			{Role: voxd.RoleAssistant, Content: "hello!"},
		}
		result, err := c.Classify(context.Background(), history, "remind me to buy milk tomorrow")
		require.NoError(t, err)
		assert.Equal(t, voxd.IntentTaskManagement, result.Intent)
		assert.InDelta(t, 0.93, result.Confidence, 1e-9)

		require.Len(t, captured.Messages, 3, "history plus new utterance")
		assert.Equal(t, "remind me to buy milk tomorrow", captured.Messages[2].Content)
		assert.Equal(t, voxd.RoleUser, captured.Messages[2].Role)
		assert.NotEmpty(t, captured.SystemPrompt)
		assert.NotEmpty(t, captured.Schema)
	})

	t.Run("web_search carries the extracted query", func(t *testing.T) {
		t.Parallel()

		provider := &mock.Provider{
			StructuredFn: func(_ context.Context, _ voxd.StructuredRequest) (json.RawMessage, error) {
				return json.RawMessage(`{
					"intent": "web_search",
					"confidence": 0.88,
					"search_query": "weather warsaw today",
					"response": "Let me check."
				}`), nil
			},
		}
		c := classify.New(provider, "m", zap.NewNop())

		result, err := c.Classify(context.Background(), nil, "what's the weather like?")
		require.NoError(t, err)
		assert.Equal(t, voxd.IntentWebSearch, result.Intent)
		assert.Equal(t, "weather warsaw today", result.SearchQuery)
	})

	t.Run("completion failure is a hard failure", func(t *testing.T) {
		t.Parallel()

		provider := &mock.Provider{
			StructuredFn: func(_ context.Context, _ voxd.StructuredRequest) (json.RawMessage, error) {
				return nil, errors.New("upstream 500")
			},
		}
		c := classify.New(provider, "m", zap.NewNop())

		_, err := c.Classify(context.Background(), nil, "hello")
		require.Error(t, err)
	})

	t.Run("schema violations", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			raw  string
		}{
			{"unknown intent", `{"intent":"make_coffee","confidence":0.5,"response":"x"}`},
			{"confidence out of range", `{"intent":"notes","confidence":1.7,"response":"x"}`},
			{"not json", `definitely not json`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				provider := &mock.Provider{
					StructuredFn: func(_ context.Context, _ voxd.StructuredRequest) (json.RawMessage, error) {
						return json.RawMessage(tt.raw), nil
					},
				}
				c := classify.New(provider, "m", zap.NewNop())

				_, err := c.Classify(context.Background(), nil, "hello")
				require.Error(t, err)
				assert.ErrorIs(t, err, voxd.ErrSchema)
			})
		}
	})
}
