package domain

// Queries are equality filters over one collection. Zero-valued fields are
// ignored, so the zero query matches every record.

// BuildingQuery filters buildings.
type BuildingQuery struct {
	NormalizedName string
}

// Matches reports whether b satisfies the query.
func (q BuildingQuery) Matches(b Building) bool {
	return q.NormalizedName == "" || b.NormalizedName == q.NormalizedName
}

// UnitQuery filters units.
type UnitQuery struct {
	BuildingID     string
	NormalizedName string
	Status         UnitStatus
}

// Matches reports whether u satisfies the query.
func (q UnitQuery) Matches(u Unit) bool {
	if q.BuildingID != "" && u.BuildingID != q.BuildingID {
		return false
	}
	if q.NormalizedName != "" && u.NormalizedName != q.NormalizedName {
		return false
	}
	return q.Status == "" || u.Status == q.Status
}

// TenantQuery filters tenants.
type TenantQuery struct {
	BuildingID string
	UnitID     string
	Status     TenantStatus
}

// Matches reports whether t satisfies the query.
func (q TenantQuery) Matches(t Tenant) bool {
	if q.BuildingID != "" && t.BuildingID != q.BuildingID {
		return false
	}
	if q.UnitID != "" && t.UnitID != q.UnitID {
		return false
	}
	return q.Status == "" || t.Status == q.Status
}

// InvoiceQuery filters invoices.
type InvoiceQuery struct {
	BuildingID string
	UnitID     string
	TenantID   string
	Month      string
	Year       string
	Status     InvoiceStatus
}

// Matches reports whether inv satisfies the query.
func (q InvoiceQuery) Matches(inv Invoice) bool {
	switch {
	case q.BuildingID != "" && inv.BuildingID != q.BuildingID:
		return false
	case q.UnitID != "" && inv.UnitID != q.UnitID:
		return false
	case q.TenantID != "" && inv.TenantID != q.TenantID:
		return false
	case q.Month != "" && inv.Month != q.Month:
		return false
	case q.Year != "" && inv.Year != q.Year:
		return false
	case q.Status != "" && inv.Status != q.Status:
		return false
	}
	return true
}

// StaffQuery filters staff members. Active is a pointer so that false can be
// queried explicitly.
type StaffQuery struct {
	BuildingID string
	Active     *bool
}

// Matches reports whether s satisfies the query.
func (q StaffQuery) Matches(s Staff) bool {
	if q.BuildingID != "" && s.BuildingID != q.BuildingID {
		return false
	}
	return q.Active == nil || s.Active == *q.Active
}
