package gemini_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"voxd"
	"voxd/gemini"
)

// mockChunks returns a genai-style streaming iterator from pre-built chunks.
func mockChunks(chunks []*genai.GenerateContentResponse) func(func(*genai.GenerateContentResponse, error) bool) {
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, c := range chunks {
			if !yield(c, nil) {
				return
			}
		}
	}
}

func textChunk(texts ...string) *genai.GenerateContentResponse {
	parts := make([]*genai.Part, len(texts))
	for i, t := range texts {
		parts[i] = &genai.Part{Text: t}
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: parts},
		}},
	}
}

func collectDeltas(t *testing.T, s voxd.Stream) []string {
	t.Helper()
	var deltas []string
	for {
		d, err := s.Next()
		if err == io.EOF {
			return deltas
		}
		require.NoError(t, err)
		deltas = append(deltas, d)
	}
}

func TestStream_TextDeltas(t *testing.T) {
	t.Parallel()
	chunks := []*genai.GenerateContentResponse{
		textChunk("Hello"),
		textChunk(" world"),
	}

	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks))
	assert.Equal(t, []string{"Hello", " world"}, collectDeltas(t, s))
	require.NoError(t, s.Close())
}

func TestStream_MultiPartChunk(t *testing.T) {
	t.Parallel()
	// One SDK chunk with several parts yields one delta per part.
	chunks := []*genai.GenerateContentResponse{
		textChunk("a", "b"),
		textChunk("c"),
	}

	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks))
	assert.Equal(t, []string{"a", "b", "c"}, collectDeltas(t, s))
}

func TestStream_ThoughtPartsSkipped(t *testing.T) {
	t.Parallel()
	chunks := []*genai.GenerateContentResponse{
		{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{Text: "reasoning", Thought: true},
					{Text: "Answer"},
				}},
			}},
		},
	}

	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks))
	assert.Equal(t, []string{"Answer"}, collectDeltas(t, s))
}

func TestStream_NilAndEmptyChunksSkipped(t *testing.T) {
	t.Parallel()
	it := func(yield func(*genai.GenerateContentResponse, error) bool) {
		if !yield(textChunk("before"), nil) {
			return
		}
		if !yield(nil, nil) {
			return
		}
		yield(textChunk(" after"), nil)
	}

	s := gemini.NewStreamFromIter(context.Background(), it)
	assert.Equal(t, []string{"before", " after"}, collectDeltas(t, s))
}

func TestStream_IteratorError(t *testing.T) {
	t.Parallel()
	errIter := func(yield func(*genai.GenerateContentResponse, error) bool) {
		yield(nil, assert.AnError)
	}

	s := gemini.NewStreamFromIter(context.Background(), errIter)
	_, err := s.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini:")

	// The error is sticky.
	_, err2 := s.Next()
	assert.Equal(t, err, err2)
}

func TestStream_PromptBlocked(t *testing.T) {
	t.Parallel()
	// When a prompt is blocked for safety, PromptFeedback is set with zero
	// candidates. The stream surfaces this as an error, not an empty turn.
	chunks := []*genai.GenerateContentResponse{
		{
			PromptFeedback: &genai.GenerateContentResponsePromptFeedback{
				BlockReason: genai.BlockedReasonSafety,
			},
		},
	}

	s := gemini.NewStreamFromIter(context.Background(), mockChunks(chunks))
	_, err := s.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt blocked")
	assert.Contains(t, err.Error(), "SAFETY")
}

func TestStream_ContextCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	emptyIter := func(yield func(*genai.GenerateContentResponse, error) bool) {}

	s := gemini.NewStreamFromIter(ctx, emptyIter)
	_, err := s.Next()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStream_NextAfterClose(t *testing.T) {
	t.Parallel()
	s := gemini.NewStreamFromIter(context.Background(), mockChunks([]*genai.GenerateContentResponse{textChunk("Hi")}))
	require.NoError(t, s.Close())

	_, err := s.Next()
	assert.ErrorIs(t, err, voxd.ErrStreamClosed)
}
