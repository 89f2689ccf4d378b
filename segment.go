package voxd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Delivery topics. Immediate forwards completion chunks as they are
// produced; Synced stays aligned with audio/TTS timing on the default
// pass-through path.
const (
	TopicImmediate = "llm_stream"
	TopicSynced    = "transcription"
)

// ResponseType is the closed set of tags describing what produced a segment.
type ResponseType string

const (
	ResponseDefault ResponseType = "llm_response"
	ResponseTask    ResponseType = "task_response"
	ResponseNotes   ResponseType = "notes_response"
	ResponseError   ResponseType = "error"
)

// Segment identifies one logical unit of streamed output text. Final is
// false while streaming; the writer must be closed to mark completion.
type Segment struct {
	ID     string
	Final  bool
	Type   ResponseType
	Model  string
	Intent Intent // optional; empty when the turn was never classified
}

// NewSegmentID generates a fresh segment id with the given prefix.
func NewSegmentID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString()[:8])
}

// SegmentWriter delivers one segment's chunks in generation order. Close
// flushes and marks the segment complete; it must be called exactly once,
// on both success and failure paths.
type SegmentWriter interface {
	Write(ctx context.Context, chunk string) error
	Close(ctx context.Context) error
}

// Sink opens segment writers on a delivery topic. It is the transport
// adapter for response text.
type Sink interface {
	Open(ctx context.Context, topic string, seg Segment) (SegmentWriter, error)
}
