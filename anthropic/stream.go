package anthropic

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"voxd"
)

// stream implements [voxd.Stream] by parsing SSE events from an HTTP
// response body, surfacing text deltas and skipping everything else.
type stream struct {
	ctx     context.Context
	body    io.ReadCloser
	scanner *bufio.Scanner
	closed  bool
	done    bool
	err     error
}

// Interface compliance check.
var _ voxd.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser) *stream {
	return &stream{
		ctx:     ctx,
		body:    body,
		scanner: bufio.NewScanner(body),
	}
}

// Next reads SSE events until the next text delta. Returns io.EOF after the
// message_stop event.
func (s *stream) Next() (string, error) {
	if s.closed {
		return "", voxd.ErrStreamClosed
	}
	if s.err != nil {
		return "", s.err
	}
	if s.done {
		return "", io.EOF
	}

	for {
		if err := s.ctx.Err(); err != nil {
			return "", s.fail(err)
		}

		eventType, data, err := s.readSSEEvent()
		if err != nil {
			return "", s.fail(err)
		}

		switch eventType {
		case "content_block_delta":
			var evt sseContentBlockDelta
			if err := json.Unmarshal([]byte(data), &evt); err != nil {
				return "", s.fail(fmt.Errorf("anthropic: failed to parse content_block_delta: %w", err))
			}
			if evt.Delta.Type == "text_delta" && evt.Delta.Text != "" {
				return evt.Delta.Text, nil
			}

		case "message_stop":
			s.done = true
			return "", io.EOF

		case "error":
			var evt sseError
			if err := json.Unmarshal([]byte(data), &evt); err != nil {
				return "", s.fail(fmt.Errorf("anthropic: failed to parse error event: %w", err))
			}
			return "", s.fail(fmt.Errorf("anthropic: %s: %s", evt.Error.Type, evt.Error.Message))
		}
		// ping, message_start, content_block_start/stop, message_delta,
		// and unknown event types carry no text.
	}
}

// Close closes the underlying HTTP response body.
func (s *stream) Close() error {
	s.closed = true
	return s.body.Close()
}

func (s *stream) fail(err error) error {
	s.err = err
	return err
}

// readSSEEvent reads lines until a complete SSE event is assembled.
func (s *stream) readSSEEvent() (string, string, error) {
	var eventType string
	var dataBuf strings.Builder

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			// Empty line signals end of event.
			if dataBuf.Len() > 0 {
				return eventType, dataBuf.String(), nil
			}
			continue
		}

		if after, ok := strings.CutPrefix(line, "event: "); ok {
			eventType = after
		} else if after, ok := strings.CutPrefix(line, "data: "); ok {
			if dataBuf.Len() > 0 {
				dataBuf.WriteByte('\n')
			}
			dataBuf.WriteString(after)
		}
		// Ignore comments (lines starting with ':') and unknown fields.
	}

	if err := s.scanner.Err(); err != nil {
		return "", "", fmt.Errorf("anthropic: %w", err)
	}

	// Scanner exhausted without a message_stop: the stream ended early.
	if dataBuf.Len() > 0 {
		return eventType, dataBuf.String(), nil
	}
	return "", "", fmt.Errorf("anthropic: unexpected end of stream")
}
