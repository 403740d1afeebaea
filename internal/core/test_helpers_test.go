package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *steppingClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestService(t *testing.T, opts ...Option) (*Service, *steppingClock) {
	t.Helper()
	clock := &steppingClock{now: testNow}
	all := append([]Option{WithClock(clock)}, opts...)
	return NewInMemoryService(NewDefaultRulesEngine(), all...), clock
}

func seedBuilding(t *testing.T, svc *Service, name string) Building {
	t.Helper()
	b, _, err := svc.RegisterBuilding(context.Background(), BuildingInput{Name: name, Type: "residential", Address: "Main St 1"}, BuildingServices{}, "")
	require.NoError(t, err)
	return b
}

func seedUnit(t *testing.T, svc *Service, buildingID, name string) Unit {
	t.Helper()
	u, _, err := svc.RegisterUnit(context.Background(), Selection{}.WithBuilding(buildingID), UnitInput{Name: name})
	require.NoError(t, err)
	return u
}

func admit(t *testing.T, svc *Service, u Unit, name string) Tenant {
	t.Helper()
	tenant, _, err := svc.AdmitTenant(context.Background(), Selection{}.WithBuilding(u.BuildingID).WithUnit(u.ID), tenantInput(name))
	require.NoError(t, err)
	return tenant
}

func tenantInput(name string) TenantInput {
	return TenantInput{
		Name:        name,
		Document:    "DNI-1",
		Phone:       "555-0100",
		StartDate:   "2024-01-01",
		EndDate:     "2024-12-31",
		MonthlyRent: 500,
	}
}

type recordedEvents struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordedEvents) handle(_ context.Context, evt Event) {
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
}

func (r *recordedEvents) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}
