package core

import (
	"context"

	"rentledger/pkg/domain"
)

// ListBuildings returns every building in creation order.
func (s *Service) ListBuildings(ctx context.Context) ([]Building, error) {
	var out []Building
	err := s.store.View(ctx, func(v TransactionView) error {
		out = v.ListBuildings()
		return nil
	})
	return out, err
}

// GetBuilding returns one building.
func (s *Service) GetBuilding(ctx context.Context, id string) (Building, error) {
	var out Building
	err := s.store.View(ctx, func(v TransactionView) error {
		b, ok := v.FindBuilding(id)
		if !ok {
			return ErrNotFound{Entity: EntityBuilding, ID: id}
		}
		out = b
		return nil
	})
	return out, err
}

// ListUnits returns the units of a building.
func (s *Service) ListUnits(ctx context.Context, buildingID string) ([]Unit, error) {
	var out []Unit
	err := s.store.View(ctx, func(v TransactionView) error {
		if _, ok := v.FindBuilding(buildingID); !ok {
			return ErrNotFound{Entity: EntityBuilding, ID: buildingID}
		}
		out = v.Units(domain.UnitQuery{BuildingID: buildingID})
		return nil
	})
	return out, err
}

// GetUnit returns one unit.
func (s *Service) GetUnit(ctx context.Context, id string) (Unit, error) {
	var out Unit
	err := s.store.View(ctx, func(v TransactionView) error {
		u, ok := v.FindUnit(id)
		if !ok {
			return ErrNotFound{Entity: EntityUnit, ID: id}
		}
		out = u
		return nil
	})
	return out, err
}

// ListTenants returns every tenant, active or rescinded, that held the unit.
func (s *Service) ListTenants(ctx context.Context, unitID string) ([]Tenant, error) {
	var out []Tenant
	err := s.store.View(ctx, func(v TransactionView) error {
		if _, ok := v.FindUnit(unitID); !ok {
			return ErrNotFound{Entity: EntityUnit, ID: unitID}
		}
		out = v.Tenants(domain.TenantQuery{UnitID: unitID})
		return nil
	})
	return out, err
}

// ListInvoices returns the invoices of a unit.
func (s *Service) ListInvoices(ctx context.Context, unitID string) ([]Invoice, error) {
	return s.ListTenantInvoices(ctx, unitID, "")
}

// ListTenantInvoices returns the invoices of a unit billed to one tenant. An
// empty tenantID lists all of the unit's invoices.
func (s *Service) ListTenantInvoices(ctx context.Context, unitID, tenantID string) ([]Invoice, error) {
	var out []Invoice
	err := s.store.View(ctx, func(v TransactionView) error {
		if _, ok := v.FindUnit(unitID); !ok {
			return ErrNotFound{Entity: EntityUnit, ID: unitID}
		}
		out = v.Invoices(domain.InvoiceQuery{UnitID: unitID, TenantID: tenantID})
		return nil
	})
	return out, err
}

// ListStaff returns the staff of a building.
func (s *Service) ListStaff(ctx context.Context, buildingID string) ([]Staff, error) {
	var out []Staff
	err := s.store.View(ctx, func(v TransactionView) error {
		out = v.StaffMembers(domain.StaffQuery{BuildingID: buildingID})
		return nil
	})
	return out, err
}

// BuildingSummary aggregates a building's units and staff.
type BuildingSummary struct {
	Building         Building `json:"building"`
	UnitsTotal       int      `json:"units_total"`
	UnitsFree        int      `json:"units_free"`
	UnitsOccupied    int      `json:"units_occupied"`
	StaffTotal       int      `json:"staff_total"`
	ActiveStaffNames []string `json:"active_staff_names"`
	MonthlyPayroll   float64  `json:"monthly_payroll"`
}

// BuildingSummary computes the summary of one building. Payroll counts active
// staff only.
func (s *Service) BuildingSummary(ctx context.Context, buildingID string) (BuildingSummary, error) {
	var out BuildingSummary
	err := s.store.View(ctx, func(v TransactionView) error {
		b, ok := v.FindBuilding(buildingID)
		if !ok {
			return ErrNotFound{Entity: EntityBuilding, ID: buildingID}
		}
		out.Building = b
		for _, u := range v.Units(domain.UnitQuery{BuildingID: buildingID}) {
			out.UnitsTotal++
			if u.Status == domain.UnitOccupied {
				out.UnitsOccupied++
			} else {
				out.UnitsFree++
			}
		}
		out.ActiveStaffNames = []string{}
		for _, st := range v.StaffMembers(domain.StaffQuery{BuildingID: buildingID}) {
			out.StaffTotal++
			if !st.Active {
				continue
			}
			name := st.Name
			if name == "" {
				name = "unnamed"
			}
			out.ActiveStaffNames = append(out.ActiveStaffNames, name)
			out.MonthlyPayroll += st.MonthlyPay
		}
		return nil
	})
	return out, err
}
