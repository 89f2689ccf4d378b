// Package router implements sticky intent dispatch: once a sub-agent is
// active, later turns skip classification and go directly to it until it
// signals exit.
package router

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"voxd"
)

// Fixed spoken failure texts.
const (
	msgClassificationFailed = "Sorry, I couldn't understand that. Could you try again?"
	msgSubAgentFailed       = "Sorry, I couldn't process that %s request."
)

// Factory constructs a sub-agent of the given kind for the current session.
// The router calls it lazily, the first time an intent routes to that kind.
type Factory func(kind voxd.Kind) voxd.SubAgent

// Router decides, per turn, whether to bypass classification (sticky
// sub-agent active) or classify and dispatch. Turn processing is
// single-writer: the platform serializes turns, so no locking.
type Router struct {
	classifier voxd.Classifier
	factory    Factory
	settings   voxd.Settings
	logger     *zap.Logger

	handles map[voxd.Kind]voxd.SubAgent

	lastIntent       voxd.Intent
	lastResponseType voxd.ResponseType
}

// New creates a Router for one session.
func New(classifier voxd.Classifier, factory Factory, settings voxd.Settings, logger *zap.Logger) *Router {
	return &Router{
		classifier:       classifier,
		factory:          factory,
		settings:         settings,
		logger:           logger,
		handles:          make(map[voxd.Kind]voxd.SubAgent),
		lastResponseType: voxd.ResponseDefault,
	}
}

// Metadata returns the response-type and intent tags for the turn most
// recently routed, consumed by the output streamer.
func (r *Router) Metadata() (voxd.ResponseType, voxd.Intent) {
	return r.lastResponseType, r.lastIntent
}

// Active returns the currently sticky sub-agent, or nil.
func (r *Router) Active() voxd.SubAgent {
	for _, h := range r.handles {
		if h.Active() {
			return h
		}
	}
	return nil
}

// Route processes one user turn. A sticky, enabled sub-agent receives the
// text directly, bypassing classification, so a one-word confirmation is
// never misclassified as small talk. Otherwise the turn is classified and
// dispatched; intents with no enabled sub-agent fall through to the default
// completion path.
func (r *Router) Route(ctx context.Context, session *voxd.Session, text string) voxd.Outcome {
	if agent := r.Active(); agent != nil && r.settings.AgentEnabled(agent.Kind()) {
		r.logger.Debug("sticky dispatch, classification bypassed",
			zap.String("session_id", session.ID),
			zap.String("kind", string(agent.Kind())))
		r.setMetadata(agent.Kind())
		return r.dispatch(ctx, session, agent, text)
	}

	classification, err := r.classifier.Classify(ctx, session.Messages, text)
	if err != nil {
		// No retry at this layer: retries belong to tool calls, not to
		// classification. Conversation state stays untouched.
		r.logger.Error("intent classification failed",
			zap.String("session_id", session.ID),
			zap.Error(err))
		r.lastIntent = ""
		r.lastResponseType = voxd.ResponseError
		if errors.Is(err, voxd.ErrUnknownModel) {
			return voxd.Failure{Text: fmt.Sprintf("Configuration error: %s. Check configuration.", err)}
		}
		return voxd.Failure{Text: msgClassificationFailed}
	}

	r.lastIntent = classification.Intent
	r.lastResponseType = voxd.ResponseDefault

	if kind, ok := subAgentKind(classification.Intent); ok && r.settings.AgentEnabled(kind) {
		r.setMetadata(kind)
		agent := r.handles[kind]
		if agent == nil {
			agent = r.factory(kind)
			r.handles[kind] = agent
			r.logger.Info("sub-agent created",
				zap.String("session_id", session.ID),
				zap.String("kind", string(kind)))
		}
		agent.Activate()
		return r.dispatch(ctx, session, agent, text)
	}

	session.Append(voxd.RoleUser, text)
	return voxd.DefaultCompletion{}
}

// dispatch forwards the turn to a sub-agent and converts its response into
// an Override. Sub-agent errors never escape: they become a spoken failure
// and a log record.
func (r *Router) dispatch(ctx context.Context, session *voxd.Session, agent voxd.SubAgent, text string) voxd.Outcome {
	session.Append(voxd.RoleUser, text)

	resp, err := agent.Process(ctx, text)
	if err != nil {
		r.logger.Error("sub-agent failed",
			zap.String("session_id", session.ID),
			zap.String("kind", string(agent.Kind())),
			zap.Error(err))
		r.lastResponseType = voxd.ResponseError
		return voxd.Failure{Text: fmt.Sprintf(msgSubAgentFailed, agent.Kind())}
	}

	if resp.ShouldExit() {
		r.logger.Info("sub-agent exiting",
			zap.String("session_id", session.ID),
			zap.String("kind", string(agent.Kind())),
			zap.String("reason", resp.ExitReason))
		delete(r.handles, agent.Kind())
	}

	session.Append(voxd.RoleAssistant, resp.HistoryText())
	return voxd.Override{Text: resp.Text}
}

func (r *Router) setMetadata(kind voxd.Kind) {
	switch kind {
	case voxd.KindTask:
		r.lastIntent = voxd.IntentTaskManagement
		r.lastResponseType = voxd.ResponseTask
	case voxd.KindNotes:
		r.lastIntent = voxd.IntentNotes
		r.lastResponseType = voxd.ResponseNotes
	}
}

func subAgentKind(intent voxd.Intent) (voxd.Kind, bool) {
	switch intent {
	case voxd.IntentTaskManagement:
		return voxd.KindTask, true
	case voxd.IntentNotes:
		return voxd.KindNotes, true
	}
	return "", false
}
