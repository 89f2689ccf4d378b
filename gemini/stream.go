package gemini

import (
	"context"
	"fmt"
	"io"
	"iter"

	"google.golang.org/genai"

	"voxd"
)

// stream implements [voxd.Stream] by wrapping the genai SDK's streaming
// iterator. A single SDK chunk may carry several text parts, so deltas are
// buffered and drained one at a time.
type stream struct {
	ctx    context.Context
	pull   func() (*genai.GenerateContentResponse, error, bool)
	stop   func()
	buf    []string
	closed bool
	err    error
}

// Interface compliance check.
var _ voxd.Stream = (*stream)(nil)

func newStream(ctx context.Context, it iter.Seq2[*genai.GenerateContentResponse, error]) *stream {
	next, stop := iter.Pull2(it)
	return &stream{
		ctx:  ctx,
		pull: next,
		stop: stop,
	}
}

// Next returns the next text delta, or io.EOF after the final one.
func (s *stream) Next() (string, error) {
	if s.closed {
		return "", voxd.ErrStreamClosed
	}
	if s.err != nil {
		return "", s.err
	}

	for len(s.buf) == 0 {
		if err := s.ctx.Err(); err != nil {
			return "", s.fail(err)
		}

		resp, err, ok := s.pull()
		if !ok {
			return "", io.EOF
		}
		if err != nil {
			return "", s.fail(fmt.Errorf("gemini: %w", err))
		}
		if resp == nil {
			continue
		}
		if blocked := blockReason(resp); blocked != "" {
			return "", s.fail(fmt.Errorf("gemini: prompt blocked: %s", blocked))
		}
		s.buf = append(s.buf, textParts(resp)...)
	}

	delta := s.buf[0]
	s.buf = s.buf[1:]
	return delta, nil
}

// Close releases the underlying iterator. Safe to call at any point.
func (s *stream) Close() error {
	s.closed = true
	s.stop()
	return nil
}

func (s *stream) fail(err error) error {
	s.err = err
	return err
}

// textParts extracts the response text deltas, skipping thought parts.
func textParts(resp *genai.GenerateContentResponse) []string {
	var out []string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought || part.Text == "" {
				continue
			}
			out = append(out, part.Text)
		}
	}
	return out
}

func blockReason(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) > 0 {
		return ""
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return string(fb.BlockReason)
	}
	return ""
}
