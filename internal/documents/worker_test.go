package documents

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentledger/internal/blob"
	"rentledger/internal/core"
	"rentledger/pkg/domain"
)

type failingBlob struct {
	*blob.Memory
}

func (failingBlob) Put(context.Context, string, io.Reader, blob.PutOptions) (blob.Info, error) {
	return blob.Info{}, errors.New("bucket unavailable")
}

func startWorker(t *testing.T, store blob.Store, opts ...WorkerOption) *Worker {
	t.Helper()
	w := NewWorker(store, opts...)
	w.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, w.Stop(ctx))
	})
	return w
}

func waitForStatus(t *testing.T, w *Worker, want int, status ExportStatus) []ExportRecord {
	t.Helper()
	var records []ExportRecord
	require.Eventually(t, func() bool {
		records = w.List()
		n := 0
		for _, r := range records {
			if r.Status == status {
				n++
			}
		}
		return n == want
	}, 2*time.Second, 10*time.Millisecond)
	return records
}

func leaseFlow(t *testing.T, svc *core.Service) (core.Unit, core.Tenant, core.Invoice) {
	t.Helper()
	ctx := context.Background()
	b, _, err := svc.RegisterBuilding(ctx, core.BuildingInput{Name: "Edificio Sol"}, core.BuildingServices{}, "")
	require.NoError(t, err)
	sel := core.Selection{}.WithBuilding(b.ID)
	u, _, err := svc.RegisterUnit(ctx, sel, core.UnitInput{Name: "101"})
	require.NoError(t, err)
	sel = sel.WithUnit(u.ID)
	tenant, _, err := svc.AdmitTenant(ctx, sel, core.TenantInput{
		Name: "Ana Lopez", StartDate: "2024-01-01", EndDate: "2024-12-31", MonthlyRent: 500,
	})
	require.NoError(t, err)
	inv, _, err := svc.IssueInvoice(ctx, sel, core.InvoiceDraft{Month: "03", Year: "2024", Rent: "500", Water: "15"})
	require.NoError(t, err)
	return u, tenant, inv
}

func TestWorkerExportsOnEvents(t *testing.T) {
	store := blob.NewMemory()
	w := startWorker(t, store)
	svc := core.NewInMemoryService(core.NewDefaultRulesEngine())
	w.Subscribe(svc.Events())

	u, tenant, inv := leaseFlow(t, svc)
	records := waitForStatus(t, w, 2, ExportStatusSucceeded)
	require.Len(t, records, 2)

	contract, err := store.Head(context.Background(), "contracts/"+tenant.ID+"/contract_Ana_Lopez.pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contract.ContentType)
	assert.Equal(t, map[string]string{"kind": "contract", "entity_id": tenant.ID}, contract.Metadata)

	invoiceKey := "invoices/" + u.ID + "/invoice_101_03-2024.pdf"
	before, err := store.Head(context.Background(), invoiceKey)
	require.NoError(t, err)
	assert.Equal(t, "invoice", before.Metadata["kind"])

	_, _, err = svc.MarkInvoicePaid(context.Background(), inv.ID)
	require.NoError(t, err)
	records = waitForStatus(t, w, 3, ExportStatusSucceeded)
	last := records[len(records)-1]
	assert.Equal(t, KindInvoice, last.Kind)
	assert.Equal(t, invoiceKey, last.Key)
	require.NotNil(t, last.Document)
	require.NotNil(t, last.CompletedAt)

	after, err := store.Head(context.Background(), invoiceKey)
	require.NoError(t, err)
	assert.NotEqual(t, before.ETag, after.ETag, "paid invoice replaces the pending document")

	got, ok := w.Get(last.ID)
	require.True(t, ok)
	assert.Equal(t, ExportStatusSucceeded, got.Status)
	_, ok = w.Get("missing")
	assert.False(t, ok)
}

func TestWorkerFailureDoesNotAffectWrites(t *testing.T) {
	w := startWorker(t, failingBlob{blob.NewMemory()})
	svc := core.NewInMemoryService(core.NewDefaultRulesEngine())
	w.Subscribe(svc.Events())

	u, tenant, inv := leaseFlow(t, svc)
	records := waitForStatus(t, w, 2, ExportStatusFailed)
	for _, r := range records {
		assert.Contains(t, r.Error, "bucket unavailable")
		assert.Nil(t, r.Document)
	}

	unit, err := svc.GetUnit(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UnitOccupied, unit.Status)
	tenants, err := svc.ListTenants(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, tenants, 1)
	assert.Equal(t, tenant.ID, tenants[0].ID)
	invoices, err := svc.ListInvoices(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, inv.ID, invoices[0].ID)
}

func TestWorkerQueueFullAndStop(t *testing.T) {
	w := NewWorker(blob.NewMemory(), WithQueueSize(1))
	ctx := context.Background()
	snap := ContractSnapshot{TenantID: "t-1", TenantName: "Ana"}

	first, err := w.EnqueueContract(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, ExportStatusQueued, first.Status)

	_, err = w.EnqueueContract(ctx, snap)
	require.ErrorIs(t, err, ErrQueueFull)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, w.Stop(stopCtx))

	got, ok := w.Get(first.ID)
	require.True(t, ok)
	assert.Equal(t, ExportStatusFailed, got.Status)
	assert.Equal(t, "worker stopped", got.Error)

	records := w.List()
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, ExportStatusFailed, r.Status)
	}
}

func TestWorkerRejectsJobsAfterStop(t *testing.T) {
	w := NewWorker(blob.NewMemory(), WithLogger(nopLogger{}))
	w.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, w.Stop(ctx))

	_, err := w.EnqueueContract(context.Background(), ContractSnapshot{TenantID: "t-1", TenantName: "Ana"})
	require.ErrorIs(t, err, ErrWorkerStopped)

	w.Handle(context.Background(), core.Event{Kind: core.EventInvoiceIssued, Invoice: core.Invoice{UnitID: "u-1", UnitName: "101", Month: "03", Year: "2024"}})
	assert.Empty(t, w.List())
}

func TestWorkerExportsDottedNames(t *testing.T) {
	store := blob.NewMemory()
	w := startWorker(t, store)

	_, err := w.EnqueueContract(context.Background(), ContractSnapshot{TenantID: "t1", TenantName: "Ana S...", IssuedAt: issued})
	require.NoError(t, err)
	_, err = w.EnqueueInvoice(context.Background(), InvoiceSnapshot{UnitID: "u1", UnitName: "Apt..", Month: "03", Year: "2024", IssuedAt: issued}, false)
	require.NoError(t, err)
	waitForStatus(t, w, 2, ExportStatusSucceeded)

	_, err = store.Head(context.Background(), "contracts/t1/contract_Ana_S.pdf")
	require.NoError(t, err)
	_, err = store.Head(context.Background(), "invoices/u1/invoice_Apt._03-2024.pdf")
	require.NoError(t, err)
}

func TestWorkerRejectsDuplicateContract(t *testing.T) {
	store := blob.NewMemory()
	w := startWorker(t, store)
	snap := ContractSnapshot{TenantID: "t-1", TenantName: "Ana", IssuedAt: issued}

	_, err := w.EnqueueContract(context.Background(), snap)
	require.NoError(t, err)
	_, err = w.EnqueueContract(context.Background(), snap)
	require.NoError(t, err)

	records := waitForStatus(t, w, 1, ExportStatusFailed)
	var failed ExportRecord
	for _, r := range records {
		if r.Status == ExportStatusFailed {
			failed = r
		}
	}
	assert.Contains(t, failed.Error, blob.ErrExists.Error())
}

func TestWorkerIgnoresUnrelatedEvents(t *testing.T) {
	w := NewWorker(blob.NewMemory())
	w.Handle(context.Background(), core.Event{Kind: core.EventTenantRescinded})
	assert.Empty(t, w.List())
}
