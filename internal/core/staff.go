package core

import (
	"context"
	"strings"
)

// StaffInput carries staff fields. A nil Active defaults to true on create
// and leaves the flag unchanged on update.
type StaffInput struct {
	Name       string
	Phone      string
	MonthlyPay float64
	Notes      string
	Active     *bool
}

func (in StaffInput) validate() error {
	if err := requireText("name", in.Name); err != nil {
		return err
	}
	return requireNonNegative("monthly_pay", in.MonthlyPay)
}

// CreateStaff adds a staff member to the selected building.
func (s *Service) CreateStaff(ctx context.Context, sel Selection, in StaffInput) (Staff, Result, error) {
	var created Staff
	res, err := s.run(ctx, mutation{op: "create_staff", entity: EntityStaff, action: ActionCreate}, func(tx Transaction) (string, error) {
		if err := requireText("building_id", sel.BuildingID); err != nil {
			return "", err
		}
		if err := in.validate(); err != nil {
			return "", err
		}
		active := true
		if in.Active != nil {
			active = *in.Active
		}
		var err error
		created, err = tx.CreateStaff(Staff{
			BuildingID: sel.BuildingID,
			Name:       strings.TrimSpace(in.Name),
			Phone:      strings.TrimSpace(in.Phone),
			MonthlyPay: in.MonthlyPay,
			Notes:      strings.TrimSpace(in.Notes),
			Active:     active,
		})
		return created.ID, err
	})
	return created, res, err
}

// UpdateStaff edits a staff member.
func (s *Service) UpdateStaff(ctx context.Context, id string, in StaffInput) (Staff, Result, error) {
	var updated Staff
	res, err := s.run(ctx, mutation{op: "update_staff", entity: EntityStaff, action: ActionUpdate}, func(tx Transaction) (string, error) {
		if err := in.validate(); err != nil {
			return id, err
		}
		var err error
		updated, err = tx.UpdateStaff(id, func(st *Staff) error {
			st.Name = strings.TrimSpace(in.Name)
			st.Phone = strings.TrimSpace(in.Phone)
			st.MonthlyPay = in.MonthlyPay
			st.Notes = strings.TrimSpace(in.Notes)
			if in.Active != nil {
				st.Active = *in.Active
			}
			return nil
		})
		return id, err
	})
	return updated, res, err
}

// SetStaffActive sets the active flag.
func (s *Service) SetStaffActive(ctx context.Context, id string, active bool) (Staff, Result, error) {
	return s.updateStaffFlag(ctx, "set_staff_active", id, func(bool) bool { return active })
}

// ToggleStaffActive flips the active flag.
func (s *Service) ToggleStaffActive(ctx context.Context, id string) (Staff, Result, error) {
	return s.updateStaffFlag(ctx, "toggle_staff_active", id, func(current bool) bool { return !current })
}

func (s *Service) updateStaffFlag(ctx context.Context, op, id string, next func(bool) bool) (Staff, Result, error) {
	var updated Staff
	res, err := s.run(ctx, mutation{op: op, entity: EntityStaff, action: ActionUpdate}, func(tx Transaction) (string, error) {
		var err error
		updated, err = tx.UpdateStaff(id, func(st *Staff) error {
			st.Active = next(st.Active)
			return nil
		})
		return id, err
	})
	return updated, res, err
}

// DeleteStaff removes a staff member.
func (s *Service) DeleteStaff(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, mutation{op: "delete_staff", entity: EntityStaff, action: ActionDelete}, func(tx Transaction) (string, error) {
		return id, tx.DeleteStaff(id)
	})
}
