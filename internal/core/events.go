package core

import (
	"context"
	"sync"
)

// EventKind names a post-commit notification.
type EventKind string

const (
	EventTenantAdmitted  EventKind = "tenant_admitted"
	EventTenantRescinded EventKind = "tenant_rescinded"
	EventInvoiceIssued   EventKind = "invoice_issued"
	EventInvoicePaid     EventKind = "invoice_paid"
)

// Event carries committed records to subscribers. Building and Unit are the
// state at commit time; Tenant is set for tenant events and for invoices,
// Invoice only for invoice events.
type Event struct {
	Kind     EventKind
	Building Building
	Unit     Unit
	Tenant   Tenant
	Invoice  Invoice
}

// EventHandler receives events after the originating transaction committed.
// Handlers cannot fail the write and should return quickly.
type EventHandler func(ctx context.Context, evt Event)

// EventBus fans events out to subscribers synchronously in registration order.
type EventBus struct {
	mu       sync.RWMutex
	handlers []EventHandler
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a handler for every event kind.
func (b *EventBus) Subscribe(h EventHandler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.handlers = append(b.handlers, h)
	b.mu.Unlock()
}

// Publish delivers evt to every subscriber.
func (b *EventBus) Publish(ctx context.Context, evt Event) {
	b.mu.RLock()
	handlers := make([]EventHandler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()
	for _, h := range handlers {
		h(ctx, evt)
	}
}
