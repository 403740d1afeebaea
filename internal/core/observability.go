package core

import (
	"context"
	"expvar"
	"time"
)

// LedgerStats counts service outcomes under a single expvar map so they show
// up in /debug/vars:
//
//	operations  "<operation>.<status>"
//	writes      "<entity>.<action>", committed writes only
//	conflicts   "<conflict reason>"
//	rejected    "<entity>", writes refused by validation or rules
type LedgerStats struct {
	root       *expvar.Map
	operations *expvar.Map
	writes     *expvar.Map
	conflicts  *expvar.Map
	rejected   *expvar.Map
}

// NewLedgerStats builds the counters. A non-empty name also publishes them;
// expvar panics if the name is already taken.
func NewLedgerStats(name string) *LedgerStats {
	s := &LedgerStats{
		root:       new(expvar.Map).Init(),
		operations: new(expvar.Map).Init(),
		writes:     new(expvar.Map).Init(),
		conflicts:  new(expvar.Map).Init(),
		rejected:   new(expvar.Map).Init(),
	}
	s.root.Set("operations", s.operations)
	s.root.Set("writes", s.writes)
	s.root.Set("conflicts", s.conflicts)
	s.root.Set("rejected", s.rejected)
	if name != "" {
		expvar.Publish(name, s.root)
	}
	return s
}

// Record implements AuditRecorder.
func (s *LedgerStats) Record(_ context.Context, entry AuditEntry) {
	if entry.Operation == "" {
		return
	}
	s.operations.Add(entry.Operation+"."+string(entry.Status), 1)
	switch {
	case entry.Status == AuditStatusSuccess:
		s.writes.Add(string(entry.Entity)+"."+string(entry.Action), 1)
	case entry.Reason != "":
		s.conflicts.Add(entry.Reason, 1)
	case entry.Rejected:
		s.rejected.Add(string(entry.Entity), 1)
	}
}

// Count reads one counter, e.g. Count("writes", "tenant.create").
func (s *LedgerStats) Count(group, key string) int64 {
	m, ok := s.root.Get(group).(*expvar.Map)
	if !ok {
		return 0
	}
	v, ok := m.Get(key).(*expvar.Int)
	if !ok {
		return 0
	}
	return v.Value()
}

// String renders the counters as JSON, as served by /debug/vars.
func (s *LedgerStats) String() string { return s.root.String() }

// MultiAuditRecorder fans audit entries out to several recorders.
type MultiAuditRecorder []AuditRecorder

// Record implements AuditRecorder.
func (m MultiAuditRecorder) Record(ctx context.Context, entry AuditEntry) {
	for _, r := range m {
		if r != nil {
			r.Record(ctx, entry)
		}
	}
}

// LogAuditRecorder writes audit entries to a Logger.
type LogAuditRecorder struct {
	Logger Logger
}

// Record implements AuditRecorder.
func (r LogAuditRecorder) Record(_ context.Context, entry AuditEntry) {
	if r.Logger == nil {
		return
	}
	kv := []any{
		"operation", entry.Operation,
		"entity", string(entry.Entity),
		"action", string(entry.Action),
		"entity_id", entry.EntityID,
		"status", string(entry.Status),
		"duration_ms", float64(entry.Duration) / float64(time.Millisecond),
	}
	if entry.Reason != "" {
		kv = append(kv, "reason", entry.Reason)
	}
	if entry.Error != "" {
		kv = append(kv, "error", entry.Error)
	}
	r.Logger.Info("audit", kv...)
}
