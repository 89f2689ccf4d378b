// Package stream implements dual-channel segmented delivery of response
// text: an immediate channel that forwards completion chunks as they are
// produced, and a synced channel that stays aligned with audio/TTS timing
// on the default pass-through path.
package stream

import (
	"context"
	"io"
	"strings"

	"go.uber.org/zap"

	"voxd"
)

// Streamer delivers segments to a [voxd.Sink]. Chunks are written strictly
// in generation order; no reordering or coalescing happens here.
type Streamer struct {
	sink   voxd.Sink
	model  string
	logger *zap.Logger
}

// New creates a Streamer tagging every segment with the active model id.
func New(sink voxd.Sink, model string, logger *zap.Logger) *Streamer {
	return &Streamer{sink: sink, model: model, logger: logger}
}

// Relay streams a completion to both channels. The immediate segment opens
// lazily on the first chunk with Final=false; both writers are closed
// exactly once when the source ends, on success and failure paths alike.
// It returns the accumulated text for conversation history.
func (s *Streamer) Relay(ctx context.Context, src voxd.Stream, rt voxd.ResponseType, intent voxd.Intent) (string, error) {
	defer src.Close()

	seg := voxd.Segment{
		ID:     voxd.NewSegmentID("LLM"),
		Final:  false,
		Type:   rt,
		Model:  s.model,
		Intent: intent,
	}

	var immediate, synced voxd.SegmentWriter
	closeBoth := func() {
		if immediate != nil {
			if err := immediate.Close(ctx); err != nil {
				s.logger.Warn("failed to close immediate segment", zap.String("segment_id", seg.ID), zap.Error(err))
			}
			immediate = nil
		}
		if synced != nil {
			if err := synced.Close(ctx); err != nil {
				s.logger.Warn("failed to close synced segment", zap.String("segment_id", seg.ID), zap.Error(err))
			}
			synced = nil
		}
	}
	defer closeBoth()

	var b strings.Builder
	for {
		chunk, err := src.Next()
		if err == io.EOF {
			return b.String(), nil
		}
		if err != nil {
			return b.String(), err
		}
		if chunk == "" {
			continue
		}

		if immediate == nil {
			immediate, err = s.sink.Open(ctx, voxd.TopicImmediate, seg)
			if err != nil {
				return b.String(), err
			}
			synced, err = s.sink.Open(ctx, voxd.TopicSynced, seg)
			if err != nil {
				return b.String(), err
			}
		}

		if err := immediate.Write(ctx, chunk); err != nil {
			return b.String(), err
		}
		if err := synced.Write(ctx, chunk); err != nil {
			return b.String(), err
		}
		b.WriteString(chunk)
	}
}

// Deliver sends a complete response as a single final segment on the
// immediate channel. Sub-agent overrides and spoken errors take this path.
func (s *Streamer) Deliver(ctx context.Context, idPrefix, text string, rt voxd.ResponseType, intent voxd.Intent) error {
	return s.deliver(ctx, voxd.TopicImmediate, idPrefix, text, rt, intent)
}

// Echo sends finalized transcription text as a single final segment on the
// synced channel. Transcribe-mode sessions take this path.
func (s *Streamer) Echo(ctx context.Context, text string) error {
	return s.deliver(ctx, voxd.TopicSynced, "RESP", text, voxd.ResponseDefault, "")
}

func (s *Streamer) deliver(ctx context.Context, topic, idPrefix, text string, rt voxd.ResponseType, intent voxd.Intent) error {
	seg := voxd.Segment{
		ID:     voxd.NewSegmentID(idPrefix),
		Final:  true,
		Type:   rt,
		Model:  s.model,
		Intent: intent,
	}

	w, err := s.sink.Open(ctx, topic, seg)
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Close(ctx); err != nil {
			s.logger.Warn("failed to close segment", zap.String("segment_id", seg.ID), zap.Error(err))
		}
	}()

	return w.Write(ctx, text)
}
