package mock

import (
	"context"

	"voxd"
)

// Interface compliance checks.
var (
	_ voxd.Classifier = (*Classifier)(nil)
	_ voxd.SubAgent   = (*SubAgent)(nil)
	_ voxd.Notifier   = (*Notifier)(nil)
	_ voxd.Sink       = (*Sink)(nil)
)

// Classifier is a test double for voxd.Classifier.
// Set ClassifyFn before calling Classify.
type Classifier struct {
	ClassifyFn func(ctx context.Context, history []voxd.Message, text string) (voxd.Classification, error)
}

// Classify delegates to ClassifyFn.
func (c *Classifier) Classify(ctx context.Context, history []voxd.Message, text string) (voxd.Classification, error) {
	return c.ClassifyFn(ctx, history, text)
}

// SubAgent is a test double for voxd.SubAgent with in-memory sticky state.
type SubAgent struct {
	KindVal   voxd.Kind
	ActiveVal bool
	PendingFn func() bool
	ProcessFn func(ctx context.Context, text string) (voxd.Response, error)
}

// Kind returns KindVal.
func (a *SubAgent) Kind() voxd.Kind { return a.KindVal }

// Active returns ActiveVal.
func (a *SubAgent) Active() bool { return a.ActiveVal }

// Activate sets ActiveVal.
func (a *SubAgent) Activate() { a.ActiveVal = true }

// Pending delegates to PendingFn; a nil PendingFn reports false.
func (a *SubAgent) Pending() bool {
	if a.PendingFn == nil {
		return false
	}
	return a.PendingFn()
}

// Process delegates to ProcessFn and clears ActiveVal when the response
// signals exit, mirroring real sub-agent behavior.
func (a *SubAgent) Process(ctx context.Context, text string) (voxd.Response, error) {
	resp, err := a.ProcessFn(ctx, text)
	if err == nil && resp.ShouldExit() {
		a.ActiveVal = false
	}
	return resp, err
}

// Notifier is a test double for voxd.Notifier that records published
// notifications. Set PublishFn to override the default recording behavior.
type Notifier struct {
	PublishFn func(ctx context.Context, sessionID string, n voxd.Notification) error
	Published []voxd.Notification
}

// Publish records n, or delegates to PublishFn when set.
func (m *Notifier) Publish(ctx context.Context, sessionID string, n voxd.Notification) error {
	if m.PublishFn != nil {
		return m.PublishFn(ctx, sessionID, n)
	}
	m.Published = append(m.Published, n)
	return nil
}

// Sink is a test double for voxd.Sink that records opened segments and
// written chunks per topic.
type Sink struct {
	OpenFn func(ctx context.Context, topic string, seg voxd.Segment) (voxd.SegmentWriter, error)

	Opened []*OpenedSegment
}

// OpenedSegment records one segment opened on a topic, its chunks, and
// whether it was closed.
type OpenedSegment struct {
	Topic   string
	Segment voxd.Segment
	Chunks  []string
	Closed  bool
}

// Open delegates to OpenFn when set; otherwise it records the segment and
// returns a writer that appends chunks to the record.
func (s *Sink) Open(ctx context.Context, topic string, seg voxd.Segment) (voxd.SegmentWriter, error) {
	if s.OpenFn != nil {
		return s.OpenFn(ctx, topic, seg)
	}
	rec := &OpenedSegment{Topic: topic, Segment: seg}
	s.Opened = append(s.Opened, rec)
	return &recordWriter{rec: rec}, nil
}

type recordWriter struct {
	rec *OpenedSegment
}

func (w *recordWriter) Write(_ context.Context, chunk string) error {
	w.rec.Chunks = append(w.rec.Chunks, chunk)
	return nil
}

func (w *recordWriter) Close(_ context.Context) error {
	w.rec.Closed = true
	return nil
}
