// Package memory provides an in-memory implementation of the persistence
// store used for tests, ephemeral environments and as the transactional core
// of the snapshotting backends.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"rentledger/pkg/domain"

	"github.com/google/uuid"
)

// Compile-time contract assertion.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Building aliases domain.Building.
	Building = domain.Building
	// Unit aliases domain.Unit.
	Unit = domain.Unit
	// Tenant aliases domain.Tenant.
	Tenant = domain.Tenant
	// Invoice aliases domain.Invoice.
	Invoice = domain.Invoice
	// Staff aliases domain.Staff.
	Staff = domain.Staff
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView.
	TransactionView = domain.TransactionView
)

type memoryState struct {
	buildings map[string]Building
	units     map[string]Unit
	tenants   map[string]Tenant
	invoices  map[string]Invoice
	staff     map[string]Staff
}

func newMemoryState() memoryState {
	return memoryState{
		buildings: make(map[string]Building),
		units:     make(map[string]Unit),
		tenants:   make(map[string]Tenant),
		invoices:  make(map[string]Invoice),
		staff:     make(map[string]Staff),
	}
}

func (s memoryState) clone() memoryState {
	out := memoryState{
		buildings: make(map[string]Building, len(s.buildings)),
		units:     make(map[string]Unit, len(s.units)),
		tenants:   make(map[string]Tenant, len(s.tenants)),
		invoices:  make(map[string]Invoice, len(s.invoices)),
		staff:     make(map[string]Staff, len(s.staff)),
	}
	for k, v := range s.buildings {
		out.buildings[k] = cloneBuilding(v)
	}
	for k, v := range s.units {
		out.units[k] = v
	}
	for k, v := range s.tenants {
		out.tenants[k] = cloneTenant(v)
	}
	for k, v := range s.invoices {
		out.invoices[k] = cloneInvoice(v)
	}
	for k, v := range s.staff {
		out.staff[k] = v
	}
	return out
}

func cloneBuilding(b Building) Building {
	if b.Services.InternetPrice != nil {
		price := *b.Services.InternetPrice
		b.Services.InternetPrice = &price
	}
	return b
}

func cloneTenant(t Tenant) Tenant {
	t.RescindedAt = cloneTime(t.RescindedAt)
	return t
}

func cloneInvoice(i Invoice) Invoice {
	i.PaidAt = cloneTime(i.PaidAt)
	return i
}

func cloneUnit(u Unit) Unit    { return u }
func cloneStaff(s Staff) Staff { return s }

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// sortedValues returns map values ordered by creation time, then id.
func sortedValues[T any](m map[string]T, base func(T) domain.Base, clone func(T) T) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, clone(v))
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := base(out[i]), base(out[j])
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out
}

func filterValues[T any](values []T, match func(T) bool) []T {
	out := values[:0]
	for _, v := range values {
		if match(v) {
			out = append(out, v)
		}
	}
	return out
}

func buildingBase(b Building) domain.Base { return b.Base }
func unitBase(u Unit) domain.Base         { return u.Base }
func tenantBase(t Tenant) domain.Base     { return t.Base }
func invoiceBase(i Invoice) domain.Base   { return i.Base }
func staffBase(s Staff) domain.Base       { return s.Base }

// Store provides an in-memory transactional store for the domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// SetNowFunc overrides the time source used to stamp records.
func (s *Store) SetNowFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn == nil {
		fn = func() time.Time { return time.Now().UTC() }
	}
	s.nowFn = fn
}

// NowFunc returns the time provider used by the store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// RulesEngine exposes the configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

func newID() string {
	return uuid.NewString()
}

// RunInTransaction executes fn within a transactional copy of the store state.
// The copy is committed only when fn succeeds and no blocking rule fires.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	tx := &transaction{
		state: s.state.clone(),
		now:   s.nowFn(),
	}
	tx.transactionView = transactionView{state: &tx.state}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, transactionView{state: &tx.state}, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(transactionView{state: &snapshot})
}

// transactionView exposes a read-only snapshot of state.
type transactionView struct {
	state *memoryState
}

func (v transactionView) ListBuildings() []Building {
	return sortedValues(v.state.buildings, buildingBase, cloneBuilding)
}

func (v transactionView) ListUnits() []Unit {
	return sortedValues(v.state.units, unitBase, cloneUnit)
}

func (v transactionView) ListTenants() []Tenant {
	return sortedValues(v.state.tenants, tenantBase, cloneTenant)
}

func (v transactionView) ListInvoices() []Invoice {
	return sortedValues(v.state.invoices, invoiceBase, cloneInvoice)
}

func (v transactionView) ListStaff() []Staff {
	return sortedValues(v.state.staff, staffBase, cloneStaff)
}

func (v transactionView) FindBuilding(id string) (Building, bool) {
	b, ok := v.state.buildings[id]
	return cloneBuilding(b), ok
}

func (v transactionView) FindUnit(id string) (Unit, bool) {
	u, ok := v.state.units[id]
	return u, ok
}

func (v transactionView) FindTenant(id string) (Tenant, bool) {
	t, ok := v.state.tenants[id]
	return cloneTenant(t), ok
}

func (v transactionView) FindInvoice(id string) (Invoice, bool) {
	i, ok := v.state.invoices[id]
	return cloneInvoice(i), ok
}

func (v transactionView) FindStaff(id string) (Staff, bool) {
	s, ok := v.state.staff[id]
	return s, ok
}

func (v transactionView) Buildings(q domain.BuildingQuery) []Building {
	return filterValues(v.ListBuildings(), q.Matches)
}

func (v transactionView) Units(q domain.UnitQuery) []Unit {
	return filterValues(v.ListUnits(), q.Matches)
}

func (v transactionView) Tenants(q domain.TenantQuery) []Tenant {
	return filterValues(v.ListTenants(), q.Matches)
}

func (v transactionView) Invoices(q domain.InvoiceQuery) []Invoice {
	return filterValues(v.ListInvoices(), q.Matches)
}

func (v transactionView) StaffMembers(q domain.StaffQuery) []Staff {
	return filterValues(v.ListStaff(), q.Matches)
}

// transaction represents a mutation set applied to a cloned state.
type transaction struct {
	transactionView
	state   memoryState
	changes []Change
	now     time.Time
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView { return tx.transactionView }

// Now returns the timestamp applied to records written by this transaction.
func (tx *transaction) Now() time.Time { return tx.now }

func (tx *transaction) stampCreate(b *domain.Base) {
	if b.ID == "" {
		b.ID = newID()
	}
	b.CreatedAt = tx.now
	b.UpdatedAt = tx.now
	b.Version = 1
}

// stampUpdate restores identity fields a mutator must not change and bumps the version.
func (tx *transaction) stampUpdate(before domain.Base, after *domain.Base) {
	after.ID = before.ID
	after.CreatedAt = before.CreatedAt
	after.UpdatedAt = tx.now
	after.Version = before.Version + 1
}

// CreateBuilding stores a new building within the transaction.
func (tx *transaction) CreateBuilding(b Building) (Building, error) {
	tx.stampCreate(&b.Base)
	if _, exists := tx.state.buildings[b.ID]; exists {
		return Building{}, fmt.Errorf("building %q already exists", b.ID)
	}
	b.NormalizedName = domain.NormalizeName(b.Name)
	tx.state.buildings[b.ID] = cloneBuilding(b)
	tx.recordChange(Change{Entity: domain.EntityBuilding, Action: domain.ActionCreate, After: cloneBuilding(b)})
	return cloneBuilding(b), nil
}

// UpdateBuilding mutates a building using the provided mutator function.
func (tx *transaction) UpdateBuilding(id string, mutator func(*Building) error) (Building, error) {
	current, ok := tx.state.buildings[id]
	if !ok {
		return Building{}, domain.ErrNotFound{Entity: domain.EntityBuilding, ID: id}
	}
	before := cloneBuilding(current)
	current = cloneBuilding(current)
	if err := mutator(&current); err != nil {
		return Building{}, err
	}
	tx.stampUpdate(before.Base, &current.Base)
	current.NormalizedName = domain.NormalizeName(current.Name)
	tx.state.buildings[id] = cloneBuilding(current)
	tx.recordChange(Change{Entity: domain.EntityBuilding, Action: domain.ActionUpdate, Before: before, After: cloneBuilding(current)})
	return cloneBuilding(current), nil
}

// CreateUnit stores a new unit. The owning building must exist.
func (tx *transaction) CreateUnit(u Unit) (Unit, error) {
	if _, ok := tx.state.buildings[u.BuildingID]; !ok {
		return Unit{}, domain.ErrNotFound{Entity: domain.EntityBuilding, ID: u.BuildingID}
	}
	tx.stampCreate(&u.Base)
	if _, exists := tx.state.units[u.ID]; exists {
		return Unit{}, fmt.Errorf("unit %q already exists", u.ID)
	}
	u.NormalizedName = domain.NormalizeName(u.Name)
	if u.Status == "" {
		u.Status = domain.UnitFree
	}
	tx.state.units[u.ID] = u
	tx.recordChange(Change{Entity: domain.EntityUnit, Action: domain.ActionCreate, After: u})
	return u, nil
}

// UpdateUnit mutates an existing unit.
func (tx *transaction) UpdateUnit(id string, mutator func(*Unit) error) (Unit, error) {
	current, ok := tx.state.units[id]
	if !ok {
		return Unit{}, domain.ErrNotFound{Entity: domain.EntityUnit, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return Unit{}, err
	}
	tx.stampUpdate(before.Base, &current.Base)
	current.BuildingID = before.BuildingID
	current.NormalizedName = domain.NormalizeName(current.Name)
	tx.state.units[id] = current
	tx.recordChange(Change{Entity: domain.EntityUnit, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// CreateTenant stores a new tenant. The referenced unit must exist.
func (tx *transaction) CreateTenant(t Tenant) (Tenant, error) {
	if _, ok := tx.state.units[t.UnitID]; !ok {
		return Tenant{}, domain.ErrNotFound{Entity: domain.EntityUnit, ID: t.UnitID}
	}
	tx.stampCreate(&t.Base)
	if _, exists := tx.state.tenants[t.ID]; exists {
		return Tenant{}, fmt.Errorf("tenant %q already exists", t.ID)
	}
	tx.state.tenants[t.ID] = cloneTenant(t)
	tx.recordChange(Change{Entity: domain.EntityTenant, Action: domain.ActionCreate, After: cloneTenant(t)})
	return cloneTenant(t), nil
}

// UpdateTenant mutates an existing tenant. Unit and building references are fixed.
func (tx *transaction) UpdateTenant(id string, mutator func(*Tenant) error) (Tenant, error) {
	current, ok := tx.state.tenants[id]
	if !ok {
		return Tenant{}, domain.ErrNotFound{Entity: domain.EntityTenant, ID: id}
	}
	before := cloneTenant(current)
	current = cloneTenant(current)
	if err := mutator(&current); err != nil {
		return Tenant{}, err
	}
	tx.stampUpdate(before.Base, &current.Base)
	current.UnitID = before.UnitID
	current.BuildingID = before.BuildingID
	tx.state.tenants[id] = cloneTenant(current)
	tx.recordChange(Change{Entity: domain.EntityTenant, Action: domain.ActionUpdate, Before: before, After: cloneTenant(current)})
	return cloneTenant(current), nil
}

// CreateInvoice stores a new invoice. The referenced unit must exist.
func (tx *transaction) CreateInvoice(i Invoice) (Invoice, error) {
	if _, ok := tx.state.units[i.UnitID]; !ok {
		return Invoice{}, domain.ErrNotFound{Entity: domain.EntityUnit, ID: i.UnitID}
	}
	tx.stampCreate(&i.Base)
	if _, exists := tx.state.invoices[i.ID]; exists {
		return Invoice{}, fmt.Errorf("invoice %q already exists", i.ID)
	}
	tx.state.invoices[i.ID] = cloneInvoice(i)
	tx.recordChange(Change{Entity: domain.EntityInvoice, Action: domain.ActionCreate, After: cloneInvoice(i)})
	return cloneInvoice(i), nil
}

// UpdateInvoice mutates an existing invoice.
func (tx *transaction) UpdateInvoice(id string, mutator func(*Invoice) error) (Invoice, error) {
	current, ok := tx.state.invoices[id]
	if !ok {
		return Invoice{}, domain.ErrNotFound{Entity: domain.EntityInvoice, ID: id}
	}
	before := cloneInvoice(current)
	current = cloneInvoice(current)
	if err := mutator(&current); err != nil {
		return Invoice{}, err
	}
	tx.stampUpdate(before.Base, &current.Base)
	tx.state.invoices[id] = cloneInvoice(current)
	tx.recordChange(Change{Entity: domain.EntityInvoice, Action: domain.ActionUpdate, Before: before, After: cloneInvoice(current)})
	return cloneInvoice(current), nil
}

// CreateStaff stores a new staff member. The building must exist.
func (tx *transaction) CreateStaff(st Staff) (Staff, error) {
	if _, ok := tx.state.buildings[st.BuildingID]; !ok {
		return Staff{}, domain.ErrNotFound{Entity: domain.EntityBuilding, ID: st.BuildingID}
	}
	tx.stampCreate(&st.Base)
	if _, exists := tx.state.staff[st.ID]; exists {
		return Staff{}, fmt.Errorf("staff %q already exists", st.ID)
	}
	tx.state.staff[st.ID] = st
	tx.recordChange(Change{Entity: domain.EntityStaff, Action: domain.ActionCreate, After: st})
	return st, nil
}

// UpdateStaff mutates an existing staff member.
func (tx *transaction) UpdateStaff(id string, mutator func(*Staff) error) (Staff, error) {
	current, ok := tx.state.staff[id]
	if !ok {
		return Staff{}, domain.ErrNotFound{Entity: domain.EntityStaff, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return Staff{}, err
	}
	tx.stampUpdate(before.Base, &current.Base)
	current.BuildingID = before.BuildingID
	tx.state.staff[id] = current
	tx.recordChange(Change{Entity: domain.EntityStaff, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteStaff removes a staff member. Staff is the only deletable collection.
func (tx *transaction) DeleteStaff(id string) error {
	current, ok := tx.state.staff[id]
	if !ok {
		return domain.ErrNotFound{Entity: domain.EntityStaff, ID: id}
	}
	delete(tx.state.staff, id)
	tx.recordChange(Change{Entity: domain.EntityStaff, Action: domain.ActionDelete, Before: current})
	return nil
}
