package core

import (
	"context"
	"strings"

	"rentledger/pkg/domain"
)

// UnitInput carries the editable fields of a unit. Status is never taken from
// input; admission and rescission own it. A non-zero Version must match the
// stored record on update.
type UnitInput struct {
	Name            string
	Type            string
	ElectricAccount string
	Version         int64
}

// RegisterUnit creates a free unit in the selected building.
func (s *Service) RegisterUnit(ctx context.Context, sel Selection, in UnitInput) (Unit, Result, error) {
	var created Unit
	res, err := s.run(ctx, mutation{op: "register_unit", entity: EntityUnit, action: ActionCreate}, func(tx Transaction) (string, error) {
		if err := requireText("building_id", sel.BuildingID); err != nil {
			return "", err
		}
		if err := requireText("name", in.Name); err != nil {
			return "", err
		}
		if _, ok := tx.FindBuilding(sel.BuildingID); !ok {
			return "", ErrNotFound{Entity: EntityBuilding, ID: sel.BuildingID}
		}
		if err := ensureUnitNameFree(tx, sel.BuildingID, in.Name, ""); err != nil {
			return "", err
		}
		var err error
		created, err = tx.CreateUnit(Unit{
			BuildingID:      sel.BuildingID,
			Name:            strings.TrimSpace(in.Name),
			Type:            unitType(in.Type),
			Status:          domain.UnitFree,
			ElectricAccount: strings.TrimSpace(in.ElectricAccount),
		})
		return created.ID, err
	})
	return created, res, err
}

// UpdateUnit edits name, type and electric account.
func (s *Service) UpdateUnit(ctx context.Context, id string, in UnitInput) (Unit, Result, error) {
	var updated Unit
	res, err := s.run(ctx, mutation{op: "update_unit", entity: EntityUnit, action: ActionUpdate}, func(tx Transaction) (string, error) {
		if err := requireText("name", in.Name); err != nil {
			return id, err
		}
		current, ok := tx.FindUnit(id)
		if !ok {
			return id, ErrNotFound{Entity: EntityUnit, ID: id}
		}
		if err := checkVersion(EntityUnit, id, in.Version, current.Version); err != nil {
			return id, err
		}
		if err := ensureUnitNameFree(tx, current.BuildingID, in.Name, id); err != nil {
			return id, err
		}
		var err error
		updated, err = tx.UpdateUnit(id, func(u *Unit) error {
			u.Name = strings.TrimSpace(in.Name)
			u.Type = unitType(in.Type)
			u.ElectricAccount = strings.TrimSpace(in.ElectricAccount)
			return nil
		})
		return id, err
	})
	return updated, res, err
}

func unitType(t string) string {
	if t = strings.TrimSpace(t); t == "" {
		return domain.DefaultUnitType
	}
	return t
}

func ensureUnitNameFree(v TransactionView, buildingID, name, exceptID string) error {
	key := domain.NormalizeName(name)
	for _, u := range v.Units(domain.UnitQuery{BuildingID: buildingID}) {
		if u.ID == exceptID {
			continue
		}
		if domain.NormalizeName(u.Name) == key {
			return domain.ConflictError{
				Reason:   domain.ErrDuplicateName,
				Entity:   EntityUnit,
				EntityID: u.ID,
				Message:  "a unit named " + strings.TrimSpace(name) + " already exists in this building",
			}
		}
	}
	return nil
}
