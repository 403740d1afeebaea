package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"rentledger/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func occupiedUnit(t *testing.T, svc *Service) (Unit, Tenant) {
	t.Helper()
	b := seedBuilding(t, svc, "Sunrise")
	u := seedUnit(t, svc, b.ID, "101")
	return u, admit(t, svc, u, "Ana")
}

func TestIssueInvoiceComputesTotal(t *testing.T) {
	svc, _ := newTestService(t)
	events := &recordedEvents{}
	u, ana := occupiedUnit(t, svc)
	svc.Events().Subscribe(events.handle)

	inv, _, err := svc.IssueInvoice(context.Background(), Selection{UnitID: u.ID, TenantID: ana.ID}, InvoiceDraft{
		Month:       "03",
		Year:        "2024",
		Day:         "5",
		Rent:        "500",
		Electricity: "40.5",
		Water:       "14.5",
		Other:       "n/a",
	})
	require.NoError(t, err)
	assert.Equal(t, 555.0, inv.Total)
	assert.Equal(t, 0.0, inv.LineItems.Other)
	assert.Equal(t, domain.InvoicePending, inv.Status)
	assert.Nil(t, inv.PaidAt)
	assert.Equal(t, fmt.Sprintf("R-%d", testNow.UnixMilli()), inv.Number)
	assert.Equal(t, "Sunrise", inv.BuildingName)
	assert.Equal(t, "101", inv.UnitName)
	assert.Equal(t, "Ana", inv.TenantName)
	assert.Equal(t, ana.ID, inv.TenantID)
	assert.Equal(t, "5", inv.Day)

	require.Len(t, events.events, 1)
	assert.Equal(t, EventInvoiceIssued, events.events[0].Kind)
	assert.Equal(t, inv.ID, events.events[0].Invoice.ID)
}

func TestIssueInvoiceRejectsDuplicatePeriod(t *testing.T) {
	svc, _ := newTestService(t)
	u, _ := occupiedUnit(t, svc)
	sel := Selection{UnitID: u.ID}

	_, _, err := svc.IssueInvoice(context.Background(), sel, InvoiceDraft{Month: "03", Year: "2024", Rent: "500"})
	require.NoError(t, err)

	_, _, err = svc.IssueInvoice(context.Background(), sel, InvoiceDraft{Month: " 03 ", Year: "2024", Rent: "10"})
	assert.ErrorIs(t, err, domain.ErrInvoicePeriodExists)

	_, _, err = svc.IssueInvoice(context.Background(), sel, InvoiceDraft{Month: "03", Year: "2025", Rent: "10"})
	assert.NoError(t, err)

	invoices, err := svc.ListInvoices(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Len(t, invoices, 2)
}

func TestIssueInvoiceRequiresActiveTenant(t *testing.T) {
	svc, _ := newTestService(t)
	b := seedBuilding(t, svc, "Sunrise")
	u := seedUnit(t, svc, b.ID, "101")

	_, _, err := svc.IssueInvoice(context.Background(), Selection{UnitID: u.ID}, InvoiceDraft{Month: "03", Year: "2024"})
	assert.ErrorIs(t, err, domain.ErrNoActiveTenant)

	ana := admit(t, svc, u, "Ana")
	_, _, err = svc.RescindTenant(context.Background(), ana.ID, u.ID)
	require.NoError(t, err)
	bob := admit(t, svc, u, "Bob")

	_, _, err = svc.IssueInvoice(context.Background(), Selection{UnitID: u.ID, TenantID: ana.ID}, InvoiceDraft{Month: "03", Year: "2024"})
	assert.ErrorIs(t, err, domain.ErrNoActiveTenant)

	inv, _, err := svc.IssueInvoice(context.Background(), Selection{UnitID: u.ID, TenantID: bob.ID}, InvoiceDraft{Month: "03", Year: "2024"})
	require.NoError(t, err)
	assert.Equal(t, "Bob", inv.TenantName)

	own, err := svc.ListTenantInvoices(context.Background(), u.ID, bob.ID)
	require.NoError(t, err)
	assert.Len(t, own, 1)
	prior, err := svc.ListTenantInvoices(context.Background(), u.ID, ana.ID)
	require.NoError(t, err)
	assert.Empty(t, prior)
}

func TestIssueInvoiceValidation(t *testing.T) {
	svc, _ := newTestService(t)
	u, _ := occupiedUnit(t, svc)
	sel := Selection{UnitID: u.ID}

	cases := map[string]InvoiceDraft{
		"no month":        {Year: "2024"},
		"no year":         {Month: "03"},
		"day zero":        {Month: "03", Year: "2024", Day: "0"},
		"day too large":   {Month: "03", Year: "2024", Day: "32"},
		"day not numeric": {Month: "03", Year: "2024", Day: "fifth"},
		"negative water":  {Month: "03", Year: "2024", Water: "-1"},
		"unknown status":  {Month: "03", Year: "2024", Status: "void"},
	}
	for name, draft := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := svc.IssueInvoice(context.Background(), sel, draft)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	inv, _, err := svc.IssueInvoice(context.Background(), sel, InvoiceDraft{Month: "02", Year: "2024", Day: "31"})
	require.NoError(t, err, "days past month end are accepted")
	assert.Equal(t, 0.0, inv.Total)
}

func TestIssueInvoiceAsPaid(t *testing.T) {
	svc, _ := newTestService(t)
	u, _ := occupiedUnit(t, svc)

	inv, _, err := svc.IssueInvoice(context.Background(), Selection{UnitID: u.ID}, InvoiceDraft{Month: "03", Year: "2024", Rent: "500", Status: domain.InvoicePaid})
	require.NoError(t, err)
	assert.Equal(t, domain.InvoicePaid, inv.Status)
	require.NotNil(t, inv.PaidAt)
	assert.True(t, inv.PaidAt.Equal(testNow))
}

func TestMarkInvoicePaidRestamps(t *testing.T) {
	svc, clock := newTestService(t)
	u, _ := occupiedUnit(t, svc)
	events := &recordedEvents{}
	svc.Events().Subscribe(events.handle)

	inv, _, err := svc.IssueInvoice(context.Background(), Selection{UnitID: u.ID}, InvoiceDraft{Month: "03", Year: "2024", Rent: "500"})
	require.NoError(t, err)

	paid, _, err := svc.MarkInvoicePaid(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoicePaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.True(t, paid.PaidAt.Equal(testNow))

	clock.Advance(time.Hour)
	again, _, err := svc.MarkInvoicePaid(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoicePaid, again.Status)
	assert.True(t, again.PaidAt.Equal(testNow.Add(time.Hour)))

	_, _, err = svc.MarkInvoicePaid(context.Background(), "missing")
	assert.True(t, domain.IsNotFound(err))
	assert.Equal(t, []EventKind{EventInvoiceIssued, EventInvoicePaid, EventInvoicePaid}, events.kinds())
}
