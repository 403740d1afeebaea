package domain

import (
	"context"
	"time"
)

// TransactionView provides read-only access to snapshot data. Listings are
// ordered by creation time.
type TransactionView interface {
	ListBuildings() []Building
	ListUnits() []Unit
	ListTenants() []Tenant
	ListInvoices() []Invoice
	ListStaff() []Staff
	FindBuilding(id string) (Building, bool)
	FindUnit(id string) (Unit, bool)
	FindTenant(id string) (Tenant, bool)
	FindInvoice(id string) (Invoice, bool)
	FindStaff(id string) (Staff, bool)
	Buildings(q BuildingQuery) []Building
	Units(q UnitQuery) []Unit
	Tenants(q TenantQuery) []Tenant
	Invoices(q InvoiceQuery) []Invoice
	StaffMembers(q StaffQuery) []Staff
}

// Transaction exposes the mutations a persistence implementation must support
// within an atomic scope. Reads observe the transaction's own writes.
type Transaction interface {
	TransactionView
	Snapshot() TransactionView
	Now() time.Time
	CreateBuilding(Building) (Building, error)
	UpdateBuilding(id string, mutator func(*Building) error) (Building, error)
	CreateUnit(Unit) (Unit, error)
	UpdateUnit(id string, mutator func(*Unit) error) (Unit, error)
	CreateTenant(Tenant) (Tenant, error)
	UpdateTenant(id string, mutator func(*Tenant) error) (Tenant, error)
	CreateInvoice(Invoice) (Invoice, error)
	UpdateInvoice(id string, mutator func(*Invoice) error) (Invoice, error)
	CreateStaff(Staff) (Staff, error)
	UpdateStaff(id string, mutator func(*Staff) error) (Staff, error)
	DeleteStaff(id string) error
}

// PersistentStore is a minimal abstraction over durable backends.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
}
