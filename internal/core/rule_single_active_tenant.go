package core

import (
	"context"
	"fmt"

	"rentledger/pkg/domain"
)

// NewSingleActiveTenantRule rejects states where a unit has more than one
// active tenant.
func NewSingleActiveTenantRule() domain.Rule {
	return singleActiveTenantRule{}
}

type singleActiveTenantRule struct{}

func (singleActiveTenantRule) Name() string { return "single_active_tenant" }

func (r singleActiveTenantRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	active := make(map[string]int)
	for _, t := range view.Tenants(domain.TenantQuery{Status: domain.TenantActive}) {
		active[t.UnitID]++
	}
	res := domain.Result{}
	for _, unit := range view.ListUnits() {
		if n := active[unit.ID]; n > 1 {
			res.Violations = append(res.Violations, blocking(r.Name(), EntityUnit, unit.ID,
				fmt.Sprintf("unit %s (%s) has %d active tenants", unit.Name, unit.ID, n)))
		}
	}
	return res, nil
}
