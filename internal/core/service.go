package core

import (
	"context"
	"errors"
	"time"

	"rentledger/internal/infra/persistence/memory"
	"rentledger/pkg/domain"
)

// Service exposes the lease lifecycle operations over a persistent store.
// Every mutating operation runs its preconditions inside the store
// transaction, so they are checked against committed state rather than a
// cached view.
type Service struct {
	store   PersistentStore
	logger  Logger
	clock   Clock
	audit   AuditRecorder
	metrics MetricsRecorder
	tracer  Tracer
	events  *EventBus
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...Option) *Service {
	cfg := defaultServiceOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.events == nil {
		cfg.events = NewEventBus()
	}
	return &Service{
		store:   store,
		logger:  cfg.logger,
		clock:   cfg.clock,
		audit:   cfg.audit,
		metrics: cfg.metrics,
		tracer:  cfg.tracer,
		events:  cfg.events,
	}
}

// NewInMemoryService creates a service and in-memory store with the given rules engine.
func NewInMemoryService(engine *RulesEngine, opts ...Option) *Service {
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore {
	return s.store
}

// Events returns the post-commit event bus.
func (s *Service) Events() *EventBus {
	return s.events
}

func (s *Service) now() time.Time {
	return s.clock.Now()
}

// mutation describes one transactional service call for audit and logging.
type mutation struct {
	op     string
	entity EntityType
	action Action
}

// run executes fn in a transaction and reports the outcome to the configured
// logger, tracer, metrics and audit sinks. fn returns the id of the record it
// wrote.
func (s *Service) run(ctx context.Context, m mutation, fn func(tx Transaction) (string, error)) (Result, error) {
	ctx, span := s.tracer.Start(ctx, m.op)
	started := time.Now()
	var entityID string
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		id, err := fn(tx)
		entityID = id
		return err
	})
	duration := time.Since(started)
	span.End(err)
	s.metrics.Observe(ctx, m.op, err == nil, duration)

	entry := AuditEntry{
		Operation: m.op,
		Entity:    m.entity,
		Action:    m.action,
		EntityID:  entityID,
		Status:    AuditStatusSuccess,
		Duration:  duration,
		Timestamp: s.now(),
	}
	if err != nil {
		entry.Status = AuditStatusError
		entry.Error = err.Error()
		entry.Rejected = isClientError(err)
		var ce domain.ConflictError
		if errors.As(err, &ce) && ce.Reason != nil {
			entry.Reason = ce.Reason.Error()
		}
	}
	s.audit.Record(ctx, entry)

	switch {
	case err == nil:
		for _, v := range res.Violations {
			s.logger.Warn("rule warning", "operation", m.op, "rule", v.Rule, "entity_id", v.EntityID, "message", v.Message)
		}
		s.logger.Debug("operation committed", "operation", m.op, "entity", string(m.entity), "entity_id", entityID, "duration", duration)
	case isClientError(err):
		s.logger.Warn("operation rejected", "operation", m.op, "entity", string(m.entity), "entity_id", entityID, "error", err)
	default:
		s.logger.Error("operation failed", "operation", m.op, "entity", string(m.entity), "entity_id", entityID, "error", err)
	}
	return res, err
}

func isClientError(err error) bool {
	var rv RuleViolationError
	return errors.Is(err, domain.ErrValidation) || domain.IsConflict(err) || domain.IsNotFound(err) || errors.As(err, &rv)
}

func (s *Service) publish(ctx context.Context, evt Event) {
	s.logger.Debug("publishing event", "kind", string(evt.Kind), "unit_id", evt.Unit.ID)
	s.events.Publish(ctx, evt)
}

func checkVersion(entity EntityType, id string, expected, actual int64) error {
	if expected == 0 || expected == actual {
		return nil
	}
	return domain.ConflictError{
		Reason:   domain.ErrVersionMismatch,
		Entity:   entity,
		EntityID: id,
	}
}
