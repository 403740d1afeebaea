package core

import (
	"context"
	"fmt"

	"rentledger/pkg/domain"
)

// NewUnitOccupancyRule requires a unit touched by the transaction to be
// occupied exactly when it has an active tenant.
func NewUnitOccupancyRule() domain.Rule {
	return unitOccupancyRule{}
}

type unitOccupancyRule struct{}

func (unitOccupancyRule) Name() string { return "unit_occupancy" }

func (r unitOccupancyRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	touched := make(map[string]struct{})
	for _, change := range changes {
		switch after := change.After.(type) {
		case domain.Unit:
			touched[after.ID] = struct{}{}
		case domain.Tenant:
			touched[after.UnitID] = struct{}{}
		}
	}
	res := domain.Result{}
	for unitID := range touched {
		unit, ok := view.FindUnit(unitID)
		if !ok {
			continue
		}
		hasActive := len(view.Tenants(domain.TenantQuery{UnitID: unitID, Status: domain.TenantActive})) > 0
		occupied := unit.Status == domain.UnitOccupied
		if hasActive != occupied {
			res.Violations = append(res.Violations, blocking(r.Name(), EntityUnit, unitID,
				fmt.Sprintf("unit %s is %s but active tenant present=%t", unit.Name, unit.Status, hasActive)))
		}
	}
	return res, nil
}
