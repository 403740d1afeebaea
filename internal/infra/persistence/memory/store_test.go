package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentledger/pkg/domain"
)

func seedBuildingUnit(t *testing.T, store *Store) (domain.Building, domain.Unit) {
	t.Helper()
	var b domain.Building
	var u domain.Unit
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var err error
		b, err = tx.CreateBuilding(domain.Building{Name: " Sunrise "})
		if err != nil {
			return err
		}
		u, err = tx.CreateUnit(domain.Unit{BuildingID: b.ID, Name: "101"})
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return b, u
}

func TestStoreRunInTransactionAndSnapshots(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	b, u := seedBuildingUnit(t, store)
	if b.ID == "" || b.Version != 1 || b.NormalizedName != "sunrise" {
		t.Fatalf("unexpected building %+v", b)
	}
	if u.Status != domain.UnitFree || u.NormalizedName != "101" {
		t.Fatalf("unexpected unit %+v", u)
	}

	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, ok := tx.FindTenant("missing"); ok {
			t.Fatalf("expected missing tenant lookup")
		}
		if _, err := tx.CreateTenant(domain.Tenant{UnitID: u.ID, BuildingID: b.ID, Name: "Ana", Status: domain.TenantActive}); err != nil {
			return err
		}
		if len(tx.Snapshot().Tenants(domain.TenantQuery{UnitID: u.ID, Status: domain.TenantActive})) != 1 {
			t.Fatalf("expected transaction to observe its own write")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run transaction: %v", err)
	}

	snapshot := store.ExportState()
	store.ImportState(Snapshot{})
	if err := store.View(ctx, func(v domain.TransactionView) error {
		if len(v.ListTenants()) != 0 {
			t.Fatalf("expected cleared state")
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
	store.ImportState(snapshot)
	_ = store.View(ctx, func(v domain.TransactionView) error {
		if len(v.ListTenants()) != 1 || len(v.ListUnits()) != 1 {
			t.Fatalf("expected restored state")
		}
		return nil
	})
	if store.RulesEngine() == nil || store.NowFunc() == nil {
		t.Fatalf("expected engine and clock")
	}
}

func TestStoreFailedTransactionDiscardsWrites(t *testing.T) {
	store := NewStore(nil)
	_, u := seedBuildingUnit(t, store)
	boom := errors.New("boom")
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.UpdateUnit(u.ID, func(unit *domain.Unit) error {
			unit.Status = domain.UnitOccupied
			return nil
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	_ = store.View(context.Background(), func(v domain.TransactionView) error {
		got, _ := v.FindUnit(u.ID)
		if got.Status != domain.UnitFree {
			t.Fatalf("expected rollback, got %s", got.Status)
		}
		return nil
	})
}

func TestStoreRuleViolation(t *testing.T) {
	store := NewStore(domain.NewRulesEngine())
	store.RulesEngine().Register(blockingRule{})
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, e := tx.CreateBuilding(domain.Building{Name: "Fail"})
		return e
	})
	var rv domain.RuleViolationError
	if !errors.As(err, &rv) {
		t.Fatalf("expected rule violation, got %v", err)
	}
	_ = store.View(context.Background(), func(v domain.TransactionView) error {
		if len(v.ListBuildings()) != 0 {
			t.Fatalf("expected no committed buildings")
		}
		return nil
	})
}

func TestStoreUpdateBumpsVersionAndPreservesIdentity(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	store := NewStore(nil)
	store.SetNowFunc(func() time.Time { return fixed })
	b, u := seedBuildingUnit(t, store)

	store.SetNowFunc(func() time.Time { return fixed.Add(time.Hour) })
	var updated domain.Unit
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateUnit(u.ID, func(unit *domain.Unit) error {
			unit.ID = "hijack"
			unit.BuildingID = "elsewhere"
			unit.Version = 99
			unit.Name = "102"
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != u.ID || updated.BuildingID != b.ID {
		t.Fatalf("identity changed: %+v", updated)
	}
	if updated.Version != 2 || updated.NormalizedName != "102" {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if !updated.CreatedAt.Equal(fixed) || !updated.UpdatedAt.Equal(fixed.Add(time.Hour)) {
		t.Fatalf("unexpected timestamps %+v", updated.Base)
	}
}

func TestStoreReferenceChecksAndStaffDelete(t *testing.T) {
	store := NewStore(nil)
	b, _ := seedBuildingUnit(t, store)
	ctx := context.Background()

	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateUnit(domain.Unit{BuildingID: "missing", Name: "x"})
		return err
	})
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found for missing building, got %v", err)
	}
	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateInvoice(domain.Invoice{UnitID: "missing"})
		return err
	})
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found for missing unit, got %v", err)
	}

	var staffID string
	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		s, err := tx.CreateStaff(domain.Staff{BuildingID: b.ID, Name: "Luis", Active: true})
		staffID = s.ID
		return err
	})
	if err != nil {
		t.Fatalf("create staff: %v", err)
	}
	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteStaff(staffID)
	})
	if err != nil {
		t.Fatalf("delete staff: %v", err)
	}
	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteStaff(staffID)
	})
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestStoreCancelledContext(t *testing.T) {
	store := NewStore(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	_, err := store.RunInTransaction(ctx, func(domain.Transaction) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) || called {
		t.Fatalf("expected cancellation before fn, got %v called=%v", err, called)
	}
}

func TestSnapshotBucketsRoundTrip(t *testing.T) {
	store := NewStore(nil)
	seedBuildingUnit(t, store)
	encoded, err := store.ExportState().EncodeBuckets()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(encoded) != len(Buckets) {
		t.Fatalf("expected %d buckets, got %d", len(Buckets), len(encoded))
	}
	var restored Snapshot
	for bucket, payload := range encoded {
		if err := restored.DecodeBucket(bucket, payload); err != nil {
			t.Fatalf("decode %s: %v", bucket, err)
		}
	}
	if err := restored.DecodeBucket("unknown", []byte(`{}`)); err != nil {
		t.Fatalf("unknown bucket should be ignored: %v", err)
	}
	if err := restored.DecodeBucket("units", []byte(`{bad`)); err == nil {
		t.Fatalf("expected decode error")
	}
	if len(restored.Buildings) != 1 || restored.IsEmpty() {
		t.Fatalf("unexpected restored snapshot %+v", restored)
	}
}

type blockingRule struct{}

func (blockingRule) Name() string { return "block" }

func (blockingRule) Evaluate(context.Context, domain.RuleView, []domain.Change) (domain.Result, error) {
	return domain.Result{Violations: []domain.Violation{{Rule: "block", Severity: domain.SeverityBlock}}}, nil
}
