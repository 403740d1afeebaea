package core

import (
	"context"
	"errors"
	"testing"

	"rentledger/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRulesEngineRegistersPolicies(t *testing.T) {
	assert.Equal(t, []string{
		"single_active_tenant",
		"unit_occupancy",
		"invoice_period_unique",
		"invoice_paid_one_way",
		"name_unique",
	}, NewDefaultRulesEngine().Rules())
}

func blockedBy(t *testing.T, err error) []string {
	t.Helper()
	var rv RuleViolationError
	require.True(t, errors.As(err, &rv), "expected rule violation, got %v", err)
	var names []string
	for _, v := range rv.Result.Violations {
		names = append(names, v.Rule)
	}
	return names
}

func TestRulesBlockSecondActiveTenant(t *testing.T) {
	svc, _ := newTestService(t)
	b := seedBuilding(t, svc, "Sunrise")
	u := seedUnit(t, svc, b.ID, "101")
	admit(t, svc, u, "Ana")

	_, err := svc.Store().RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.CreateTenant(Tenant{BuildingID: b.ID, UnitID: u.ID, Name: "Bob", Status: domain.TenantActive})
		return err
	})
	assert.Contains(t, blockedBy(t, err), "single_active_tenant")
}

func TestRulesBlockOccupancyDrift(t *testing.T) {
	svc, _ := newTestService(t)
	b := seedBuilding(t, svc, "Sunrise")
	u := seedUnit(t, svc, b.ID, "101")

	_, err := svc.Store().RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.UpdateUnit(u.ID, func(unit *Unit) error {
			unit.Status = domain.UnitOccupied
			return nil
		})
		return err
	})
	assert.Equal(t, []string{"unit_occupancy"}, blockedBy(t, err))
}

func TestRulesBlockDuplicateInvoicePeriodAndUnpay(t *testing.T) {
	svc, _ := newTestService(t)
	b := seedBuilding(t, svc, "Sunrise")
	u := seedUnit(t, svc, b.ID, "101")
	ana := admit(t, svc, u, "Ana")
	inv, _, err := svc.IssueInvoice(context.Background(), Selection{UnitID: u.ID}, InvoiceDraft{Month: "03", Year: "2024", Rent: "500"})
	require.NoError(t, err)

	_, err = svc.Store().RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.CreateInvoice(Invoice{BuildingID: b.ID, UnitID: u.ID, TenantID: ana.ID, Month: "03 ", Year: "2024", Status: domain.InvoicePending})
		return err
	})
	assert.Contains(t, blockedBy(t, err), "invoice_period_unique")

	_, _, err = svc.MarkInvoicePaid(context.Background(), inv.ID)
	require.NoError(t, err)
	_, err = svc.Store().RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.UpdateInvoice(inv.ID, func(i *Invoice) error {
			i.Status = domain.InvoicePending
			return nil
		})
		return err
	})
	assert.Equal(t, []string{"invoice_paid_one_way"}, blockedBy(t, err))
}

func TestRulesBlockDuplicateNames(t *testing.T) {
	svc, _ := newTestService(t)
	b := seedBuilding(t, svc, "Sunrise")
	seedUnit(t, svc, b.ID, "101")

	_, err := svc.Store().RunInTransaction(context.Background(), func(tx Transaction) error {
		if _, err := tx.CreateBuilding(Building{Name: "SUNRISE"}); err != nil {
			return err
		}
		_, err := tx.CreateUnit(Unit{BuildingID: b.ID, Name: "101 "})
		return err
	})
	names := blockedBy(t, err)
	assert.Equal(t, []string{"name_unique", "name_unique"}, names)
}
