package core

import (
	"context"
	"testing"

	"rentledger/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionCascade(t *testing.T) {
	sel := Selection{BuildingID: "b1", UnitID: "u1", TenantID: "t1"}

	assert.Equal(t, Selection{BuildingID: "b2"}, sel.WithBuilding("b2"))
	assert.Equal(t, Selection{BuildingID: "b1", UnitID: "u2"}, sel.WithUnit("u2"))
	assert.Equal(t, Selection{BuildingID: "b1", UnitID: "u1", TenantID: "t2"}, sel.WithTenant("t2"))
}

func TestResolveSelection(t *testing.T) {
	svc, _ := newTestService(t)
	b := seedBuilding(t, svc, "Sunrise")
	u := seedUnit(t, svc, b.ID, "101")

	state, err := svc.ResolveSelection(context.Background(), Selection{BuildingID: b.ID})
	require.NoError(t, err)
	require.NotNil(t, state.Building)
	assert.Nil(t, state.Unit)
	assert.False(t, state.CanAdmitTenant)
	assert.False(t, state.CanIssueInvoice)

	state, err = svc.ResolveSelection(context.Background(), Selection{UnitID: u.ID})
	require.NoError(t, err)
	require.NotNil(t, state.Building)
	assert.Equal(t, b.ID, state.Building.ID)
	assert.True(t, state.CanAdmitTenant)
	assert.False(t, state.CanIssueInvoice)
	assert.Nil(t, state.ActiveTenant)

	ana := admit(t, svc, u, "Ana")
	state, err = svc.ResolveSelection(context.Background(), Selection{BuildingID: b.ID, UnitID: u.ID})
	require.NoError(t, err)
	assert.False(t, state.CanAdmitTenant)
	assert.True(t, state.CanIssueInvoice)
	require.NotNil(t, state.ActiveTenant)
	assert.Equal(t, ana.ID, state.ActiveTenant.ID)
	assert.Equal(t, domain.UnitOccupied, state.Unit.Status)

	_, err = svc.ResolveSelection(context.Background(), Selection{UnitID: "missing"})
	assert.True(t, domain.IsNotFound(err))
}
