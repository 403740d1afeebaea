package core

import (
	"context"
	"fmt"

	"rentledger/pkg/domain"
)

// NewNameUniqueRule keeps building names unique and unit names unique within
// their building, ignoring case and surrounding whitespace.
func NewNameUniqueRule() domain.Rule {
	return nameUniqueRule{}
}

type nameUniqueRule struct{}

func (nameUniqueRule) Name() string { return "name_unique" }

func (r nameUniqueRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	buildings := make(map[string]string)
	for _, b := range view.ListBuildings() {
		key := domain.NormalizeName(b.Name)
		if first, dup := buildings[key]; dup {
			res.Violations = append(res.Violations, blocking(r.Name(), EntityBuilding, b.ID,
				fmt.Sprintf("building name %q already used by %s", b.Name, first)))
			continue
		}
		buildings[key] = b.ID
	}
	type unitKey struct{ building, name string }
	units := make(map[unitKey]string)
	for _, u := range view.ListUnits() {
		key := unitKey{u.BuildingID, domain.NormalizeName(u.Name)}
		if first, dup := units[key]; dup {
			res.Violations = append(res.Violations, blocking(r.Name(), EntityUnit, u.ID,
				fmt.Sprintf("unit name %q already used by %s in building %s", u.Name, first, u.BuildingID)))
			continue
		}
		units[key] = u.ID
	}
	return res, nil
}
