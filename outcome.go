package voxd

// Outcome is a sealed interface representing the result of routing one turn.
// The unexported marker method prevents external implementations.
//
// Expected turn results travel as values, never as errors: no exception-style
// control flow crosses the routing/delivery boundary.
type Outcome interface {
	outcome()
}

// DefaultCompletion signals the caller to proceed with ordinary completion
// streaming; routing did not claim the turn.
type DefaultCompletion struct{}

func (DefaultCompletion) outcome() {}

// Override carries a response produced by a sub-agent; it replaces the
// default completion for this turn.
type Override struct {
	Text string
}

func (Override) outcome() {}

// Failure carries a spoken error for this turn. The turn ends; the session
// survives.
type Failure struct {
	Text string
}

func (Failure) outcome() {}

// Interface compliance checks.
var (
	_ Outcome = DefaultCompletion{}
	_ Outcome = Override{}
	_ Outcome = Failure{}
)
