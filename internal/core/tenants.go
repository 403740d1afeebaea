package core

import (
	"context"
	"strings"

	"rentledger/pkg/domain"
)

// TenantInput carries the lease fields supplied on admission and edit.
// Dates are YYYY-MM-DD strings. A non-zero Version must match the stored
// record on update.
type TenantInput struct {
	Name        string
	Document    string
	Phone       string
	Email       string
	StartDate   string
	EndDate     string
	MonthlyRent float64
	Notes       string
	Version     int64
}

func (in TenantInput) validate() error {
	if err := requireText("name", in.Name); err != nil {
		return err
	}
	if err := requireText("start_date", in.StartDate); err != nil {
		return err
	}
	if err := requireText("end_date", in.EndDate); err != nil {
		return err
	}
	if !isFinite(in.MonthlyRent) || in.MonthlyRent <= 0 {
		return domain.ValidationError{Field: "monthly_rent", Message: "must be a number greater than zero"}
	}
	return nil
}

func (in TenantInput) apply(t *Tenant) {
	t.Name = strings.TrimSpace(in.Name)
	t.Document = strings.TrimSpace(in.Document)
	t.Phone = strings.TrimSpace(in.Phone)
	t.Email = strings.TrimSpace(in.Email)
	t.StartDate = strings.TrimSpace(in.StartDate)
	t.EndDate = strings.TrimSpace(in.EndDate)
	t.MonthlyRent = in.MonthlyRent
	t.Notes = strings.TrimSpace(in.Notes)
}

// AdmitTenant creates an active tenant on the selected unit and marks the
// unit occupied. A unit that already has an active tenant is rejected with
// ErrUnitOccupied and nothing is created; if its status had drifted to free
// it is set back to occupied.
func (s *Service) AdmitTenant(ctx context.Context, sel Selection, in TenantInput) (Tenant, Result, error) {
	var (
		created  Tenant
		unit     Unit
		building Building
		drifted  bool
	)
	res, err := s.run(ctx, mutation{op: "admit_tenant", entity: EntityTenant, action: ActionCreate}, func(tx Transaction) (string, error) {
		if err := requireText("unit_id", sel.UnitID); err != nil {
			return "", err
		}
		if err := in.validate(); err != nil {
			return "", err
		}
		current, ok := tx.FindUnit(sel.UnitID)
		if !ok {
			return "", ErrNotFound{Entity: EntityUnit, ID: sel.UnitID}
		}
		if existing, ok := activeTenant(tx, current.ID); ok {
			drifted = current.Status != domain.UnitOccupied
			return "", domain.ConflictError{
				Reason:   domain.ErrUnitOccupied,
				Entity:   EntityUnit,
				EntityID: current.ID,
				Message:  "unit " + current.Name + " already has an active tenant: " + existing.Name,
			}
		}
		building, _ = tx.FindBuilding(current.BuildingID)

		tenant := Tenant{
			BuildingID: current.BuildingID,
			UnitID:     current.ID,
			Status:     domain.TenantActive,
		}
		in.apply(&tenant)
		var err error
		if created, err = tx.CreateTenant(tenant); err != nil {
			return "", err
		}
		unit, err = tx.UpdateUnit(current.ID, func(u *Unit) error {
			u.Status = domain.UnitOccupied
			return nil
		})
		return created.ID, err
	})
	if drifted {
		s.reassertOccupied(ctx, sel.UnitID)
	}
	if err != nil {
		return Tenant{}, res, err
	}
	s.publish(ctx, Event{Kind: EventTenantAdmitted, Building: building, Unit: unit, Tenant: created})
	return created, res, nil
}

func (s *Service) reassertOccupied(ctx context.Context, unitID string) {
	_, _ = s.run(ctx, mutation{op: "reassert_unit_occupied", entity: EntityUnit, action: ActionUpdate}, func(tx Transaction) (string, error) {
		_, err := tx.UpdateUnit(unitID, func(u *Unit) error {
			u.Status = domain.UnitOccupied
			return nil
		})
		return unitID, err
	})
}

// UpdateTenant edits lease fields. Status is left unchanged, so rescinded
// tenants can still be corrected.
func (s *Service) UpdateTenant(ctx context.Context, id string, in TenantInput) (Tenant, Result, error) {
	var updated Tenant
	res, err := s.run(ctx, mutation{op: "update_tenant", entity: EntityTenant, action: ActionUpdate}, func(tx Transaction) (string, error) {
		if err := in.validate(); err != nil {
			return id, err
		}
		current, ok := tx.FindTenant(id)
		if !ok {
			return id, ErrNotFound{Entity: EntityTenant, ID: id}
		}
		if err := checkVersion(EntityTenant, id, in.Version, current.Version); err != nil {
			return id, err
		}
		var err error
		updated, err = tx.UpdateTenant(id, func(t *Tenant) error {
			in.apply(t)
			return nil
		})
		return id, err
	})
	if err != nil {
		return Tenant{}, res, err
	}
	return updated, res, nil
}

// RescindTenant ends an active lease today and frees the unit. unitID may be
// empty; when set it must be the tenant's unit.
func (s *Service) RescindTenant(ctx context.Context, tenantID, unitID string) (Tenant, Result, error) {
	var (
		rescinded Tenant
		unit      Unit
		building  Building
	)
	res, err := s.run(ctx, mutation{op: "rescind_tenant", entity: EntityTenant, action: ActionUpdate}, func(tx Transaction) (string, error) {
		current, ok := tx.FindTenant(tenantID)
		if !ok {
			return tenantID, ErrNotFound{Entity: EntityTenant, ID: tenantID}
		}
		if unitID != "" && current.UnitID != unitID {
			return tenantID, domain.ValidationError{Field: "unit_id", Message: "does not match the tenant's unit"}
		}
		if current.Status != domain.TenantActive {
			return tenantID, domain.ConflictError{
				Reason:   domain.ErrTenantNotActive,
				Entity:   EntityTenant,
				EntityID: tenantID,
			}
		}
		now := s.now()
		var err error
		rescinded, err = tx.UpdateTenant(tenantID, func(t *Tenant) error {
			t.Status = domain.TenantRescinded
			t.EndDate = now.Format(domain.DateLayout)
			t.RescindedAt = &now
			return nil
		})
		if err != nil {
			return tenantID, err
		}
		unit, err = tx.UpdateUnit(current.UnitID, func(u *Unit) error {
			u.Status = domain.UnitFree
			return nil
		})
		if err != nil {
			return tenantID, err
		}
		building, _ = tx.FindBuilding(unit.BuildingID)
		return tenantID, nil
	})
	if err != nil {
		return Tenant{}, res, err
	}
	s.publish(ctx, Event{Kind: EventTenantRescinded, Building: building, Unit: unit, Tenant: rescinded})
	return rescinded, res, nil
}
