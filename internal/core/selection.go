package core

import (
	"context"

	"rentledger/pkg/domain"
)

// Selection identifies the building, unit and tenant an operation acts on.
// Narrowing the selection clears the levels below it.
type Selection struct {
	BuildingID string `json:"building_id,omitempty"`
	UnitID     string `json:"unit_id,omitempty"`
	TenantID   string `json:"tenant_id,omitempty"`
}

// WithBuilding selects a building and clears unit and tenant.
func (s Selection) WithBuilding(id string) Selection {
	return Selection{BuildingID: id}
}

// WithUnit selects a unit and clears tenant.
func (s Selection) WithUnit(id string) Selection {
	return Selection{BuildingID: s.BuildingID, UnitID: id}
}

// WithTenant selects a tenant within the current unit.
func (s Selection) WithTenant(id string) Selection {
	s.TenantID = id
	return s
}

// SelectionState is the resolved view of a selection with the actions it
// currently enables.
type SelectionState struct {
	Building        *Building `json:"building,omitempty"`
	Unit            *Unit     `json:"unit,omitempty"`
	ActiveTenant    *Tenant   `json:"active_tenant,omitempty"`
	CanAdmitTenant  bool      `json:"can_admit_tenant"`
	CanIssueInvoice bool      `json:"can_issue_invoice"`
}

// ResolveSelection loads the selected records. A selected unit determines the
// building even when the selection names a different one.
func (s *Service) ResolveSelection(ctx context.Context, sel Selection) (SelectionState, error) {
	var state SelectionState
	err := s.store.View(ctx, func(v TransactionView) error {
		buildingID := sel.BuildingID
		if sel.UnitID != "" {
			unit, ok := v.FindUnit(sel.UnitID)
			if !ok {
				return ErrNotFound{Entity: EntityUnit, ID: sel.UnitID}
			}
			state.Unit = &unit
			buildingID = unit.BuildingID
			if active, ok := activeTenant(v, unit.ID); ok {
				state.ActiveTenant = &active
				state.CanIssueInvoice = true
			} else {
				state.CanAdmitTenant = true
			}
		}
		if buildingID != "" {
			building, ok := v.FindBuilding(buildingID)
			if !ok {
				return ErrNotFound{Entity: EntityBuilding, ID: buildingID}
			}
			state.Building = &building
		}
		return nil
	})
	return state, err
}

func activeTenant(v TransactionView, unitID string) (Tenant, bool) {
	active := v.Tenants(domain.TenantQuery{UnitID: unitID, Status: domain.TenantActive})
	if len(active) == 0 {
		return Tenant{}, false
	}
	return active[0], true
}
