// Package mock provides test doubles for voxd interfaces using function fields.
package mock

import (
	"context"
	"encoding/json"
	"io"

	"voxd"
)

// Interface compliance checks.
var (
	_ voxd.Provider = (*Provider)(nil)
	_ voxd.Stream   = (*Stream)(nil)
)

// Provider is a test double for voxd.Provider.
// Set the function fields for the methods you need.
type Provider struct {
	StreamFn     func(ctx context.Context, req voxd.Request) (voxd.Stream, error)
	StructuredFn func(ctx context.Context, req voxd.StructuredRequest) (json.RawMessage, error)
}

// Stream delegates to StreamFn.
func (p *Provider) Stream(ctx context.Context, req voxd.Request) (voxd.Stream, error) {
	return p.StreamFn(ctx, req)
}

// Structured delegates to StructuredFn.
func (p *Provider) Structured(ctx context.Context, req voxd.StructuredRequest) (json.RawMessage, error) {
	return p.StructuredFn(ctx, req)
}

// Stream is a test double for voxd.Stream.
type Stream struct {
	NextFn  func() (string, error)
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (string, error) {
	return s.NextFn()
}

// Close delegates to CloseFn; a nil CloseFn is a no-op.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// TextStream returns a Stream that yields the given chunks in order and
// then io.EOF.
func TextStream(chunks ...string) *Stream {
	i := 0
	return &Stream{
		NextFn: func() (string, error) {
			if i >= len(chunks) {
				return "", io.EOF
			}
			c := chunks[i]
			i++
			return c, nil
		},
	}
}
