package domain

import "testing"

func TestTenantQueryMatches(t *testing.T) {
	tenant := Tenant{UnitID: "u1", BuildingID: "b1", Status: TenantActive}
	cases := []struct {
		name  string
		query TenantQuery
		want  bool
	}{
		{"zero", TenantQuery{}, true},
		{"unit", TenantQuery{UnitID: "u1"}, true},
		{"unit and status", TenantQuery{UnitID: "u1", Status: TenantActive}, true},
		{"other status", TenantQuery{UnitID: "u1", Status: TenantRescinded}, false},
		{"other building", TenantQuery{BuildingID: "b2"}, false},
	}
	for _, tc := range cases {
		if got := tc.query.Matches(tenant); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestInvoiceQueryMatchesPeriod(t *testing.T) {
	inv := Invoice{UnitID: "u1", TenantID: "t1", Month: "03", Year: "2024", Status: InvoicePending}
	if !(InvoiceQuery{UnitID: "u1", Month: "03", Year: "2024"}).Matches(inv) {
		t.Fatalf("expected period match")
	}
	if (InvoiceQuery{UnitID: "u1", Month: "04", Year: "2024"}).Matches(inv) {
		t.Fatalf("unexpected month match")
	}
	if (InvoiceQuery{Status: InvoicePaid}).Matches(inv) {
		t.Fatalf("unexpected status match")
	}
	if (InvoiceQuery{TenantID: "t2"}).Matches(inv) {
		t.Fatalf("unexpected tenant match")
	}
	if got := inv.Period(); got != (Period{Month: "03", Year: "2024"}) {
		t.Fatalf("unexpected period %+v", got)
	}
}

func TestUnitAndBuildingQueries(t *testing.T) {
	unit := Unit{BuildingID: "b1", NormalizedName: "101", Status: UnitFree}
	if !(UnitQuery{BuildingID: "b1", NormalizedName: "101"}).Matches(unit) {
		t.Fatalf("expected unit match")
	}
	if (UnitQuery{Status: UnitOccupied}).Matches(unit) {
		t.Fatalf("unexpected unit status match")
	}
	if (BuildingQuery{NormalizedName: "x"}).Matches(Building{NormalizedName: "y"}) {
		t.Fatalf("unexpected building match")
	}
}

func TestStaffQueryActive(t *testing.T) {
	active, inactive := true, false
	staff := Staff{BuildingID: "b1", Active: true}
	if !(StaffQuery{BuildingID: "b1", Active: &active}).Matches(staff) {
		t.Fatalf("expected active match")
	}
	if (StaffQuery{Active: &inactive}).Matches(staff) {
		t.Fatalf("unexpected inactive match")
	}
	if (StaffQuery{BuildingID: "b2"}).Matches(staff) {
		t.Fatalf("unexpected building match")
	}
}
