// Package domain defines the persistent records, value types, and rule
// evaluation primitives used by rentledger.
package domain

import (
	"strings"
	"time"
)

// EntityType identifies the type of record stored in the domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityBuilding identifies a building record.
	EntityBuilding EntityType = "building"
	// EntityUnit identifies a rentable unit inside a building.
	EntityUnit EntityType = "unit"
	// EntityTenant identifies a tenant (lease) record.
	EntityTenant EntityType = "tenant"
	// EntityInvoice identifies a monthly invoice record.
	EntityInvoice EntityType = "invoice"
	// EntityStaff identifies a building staff member.
	EntityStaff EntityType = "staff"
)

// UnitStatus is the occupancy state of a unit.
type UnitStatus string

// Unit occupancy states. A unit is occupied iff an active tenant references it.
const (
	UnitFree     UnitStatus = "free"
	UnitOccupied UnitStatus = "occupied"
)

// TenantStatus is the lease state of a tenant.
type TenantStatus string

// Tenant lease states. Rescission is one-way.
const (
	TenantActive    TenantStatus = "active"
	TenantRescinded TenantStatus = "rescinded"
)

// InvoiceStatus is the payment state of an invoice.
type InvoiceStatus string

// Invoice payment states. Payment is one-way.
const (
	InvoicePending InvoiceStatus = "pending"
	InvoicePaid    InvoiceStatus = "paid"
)

// DefaultUnitType is applied when a unit is registered without a type.
const DefaultUnitType = "apartment"

// DateLayout is the calendar date format used for lease dates.
const DateLayout = "2006-01-02"

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all domain records. Version starts at 1 and
// increments on every update.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}

// BuildingServices holds utility account codes for a building.
type BuildingServices struct {
	WaterAccount     string   `json:"water_account,omitempty"`
	InternetAccount  string   `json:"internet_account,omitempty"`
	InternetProvider string   `json:"internet_provider,omitempty"`
	GasAccount       string   `json:"gas_account,omitempty"`
	InternetPrice    *float64 `json:"internet_price,omitempty"`
}

// Building is a managed property.
type Building struct {
	Base
	Name           string           `json:"name"`
	NormalizedName string           `json:"normalized_name"`
	Type           string           `json:"type,omitempty"`
	Address        string           `json:"address,omitempty"`
	Services       BuildingServices `json:"services"`
	MapURL         string           `json:"map_url,omitempty"`
}

// Unit is a rentable space inside a building.
type Unit struct {
	Base
	BuildingID      string     `json:"building_id"`
	Name            string     `json:"name"`
	NormalizedName  string     `json:"normalized_name"`
	Type            string     `json:"type"`
	Status          UnitStatus `json:"status"`
	ElectricAccount string     `json:"electric_account,omitempty"`
}

// Tenant is a lease held by a person on a unit.
type Tenant struct {
	Base
	BuildingID  string       `json:"building_id"`
	UnitID      string       `json:"unit_id"`
	Name        string       `json:"name"`
	Document    string       `json:"document,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Email       string       `json:"email,omitempty"`
	StartDate   string       `json:"start_date"`
	EndDate     string       `json:"end_date"`
	MonthlyRent float64      `json:"monthly_rent"`
	Notes       string       `json:"notes,omitempty"`
	Status      TenantStatus `json:"status"`
	RescindedAt *time.Time   `json:"rescinded_at,omitempty"`
}

// LineItems are the billable amounts of an invoice.
type LineItems struct {
	Rent        float64 `json:"rent"`
	Electricity float64 `json:"electricity"`
	Water       float64 `json:"water"`
	Other       float64 `json:"other"`
}

// Total returns the sum of all line items.
func (l LineItems) Total() float64 {
	return l.Rent + l.Electricity + l.Water + l.Other
}

// Invoice bills a unit's active tenant for one period. Building, unit and
// tenant names are captured at issue time.
type Invoice struct {
	Base
	BuildingID   string        `json:"building_id"`
	BuildingName string        `json:"building_name"`
	UnitID       string        `json:"unit_id"`
	UnitName     string        `json:"unit_name"`
	TenantID     string        `json:"tenant_id"`
	TenantName   string        `json:"tenant_name"`
	Month        string        `json:"month"`
	Year         string        `json:"year"`
	Day          string        `json:"day,omitempty"`
	LineItems    LineItems     `json:"line_items"`
	Total        float64       `json:"total"`
	Notes        string        `json:"notes,omitempty"`
	Status       InvoiceStatus `json:"status"`
	PaidAt       *time.Time    `json:"paid_at,omitempty"`
	Number       string        `json:"number"`
}

// Period returns the billing period key of the invoice.
func (i Invoice) Period() Period {
	return Period{Month: i.Month, Year: i.Year}
}

// Period identifies a billing month.
type Period struct {
	Month string `json:"month"`
	Year  string `json:"year"`
}

// Staff is a person employed at a building.
type Staff struct {
	Base
	BuildingID string  `json:"building_id"`
	Name       string  `json:"name"`
	Phone      string  `json:"phone,omitempty"`
	MonthlyPay float64 `json:"monthly_pay"`
	Notes      string  `json:"notes,omitempty"`
	Active     bool    `json:"active"`
}

// NormalizeName folds a display name into its uniqueness key.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations captured in audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	for _, v := range e.Result.Violations {
		if v.Severity == SeverityBlock {
			return "transaction blocked by rules: " + v.Rule + ": " + v.Message
		}
	}
	return "transaction blocked by rules"
}
