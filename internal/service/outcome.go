package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/observability"
)

// Best-effort side effects.
const (
	EffectHistory = "history"
	EffectAudit   = "audit"
	EffectEvent   = "event"
)

// Outcome is the result of one fire-and-forget side effect. It is never
// turned into the error of the operation that produced it.
type Outcome struct {
	Effect string
	Err    error
}

// Failed reports whether the side effect did not complete.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// SideEffects runs best-effort writes and reports their failures through
// logs and metrics.
type SideEffects struct {
	logger     *zap.Logger
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
}

// NewSideEffects builds a SideEffects. Any argument may be nil.
func NewSideEffects(logger *zap.Logger, metrics *observability.Metrics, dispatcher events.Dispatcher) *SideEffects {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SideEffects{logger: logger, metrics: metrics, dispatcher: dispatcher}
}

// Run executes fn and captures its error as an Outcome.
func (s *SideEffects) Run(effect string, fn func() error) Outcome {
	return Outcome{Effect: effect, Err: fn()}
}

// Publish dispatches event, filling in id and timestamp when missing.
func (s *SideEffects) Publish(ctx context.Context, event events.Event) Outcome {
	if s.dispatcher == nil {
		return Outcome{Effect: EffectEvent}
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return Outcome{Effect: EffectEvent, Err: s.dispatcher.Publish(ctx, event)}
}

// Settle logs and counts every failed outcome of operation on entityID.
func (s *SideEffects) Settle(operation, entityID string, outcomes ...Outcome) {
	for _, o := range outcomes {
		if !o.Failed() {
			continue
		}
		s.logger.Warn("side effect failed",
			zap.String("operation", operation),
			zap.String("effect", o.Effect),
			zap.String("entity_id", entityID),
			zap.Error(o.Err))
		s.metrics.RecordSideEffectFailure(o.Effect)
	}
}
