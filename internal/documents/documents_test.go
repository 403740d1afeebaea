package documents

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"rentledger/internal/blob"
	"rentledger/pkg/domain"
)

var issued = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

func TestFilenamesAndKeys(t *testing.T) {
	assert.Equal(t, "contract_Ana_Maria_Lopez.pdf", ContractFilename("Ana  Maria\tLopez"))
	assert.Equal(t, "contract_tenant.pdf", ContractFilename(""))
	assert.Equal(t, "invoice_101_03-2024.pdf", InvoiceFilename("101", "03", "2024"))
	assert.Equal(t, "invoice_unit_03-2024.pdf", InvoiceFilename("", "03", "2024"))

	assert.Equal(t, "contracts/t-1/contract_Ana_Lopez.pdf", ContractKey(ContractSnapshot{TenantID: "t-1", TenantName: "Ana Lopez"}))
	assert.Equal(t, "invoices/u-1/invoice_A-B_03-2024.pdf", InvoiceKey(InvoiceSnapshot{UnitID: "u-1", UnitName: "A/B", Month: "03", Year: "2024"}))
}

func TestKeysCollapseDotRuns(t *testing.T) {
	cases := []struct {
		name string
		key  string
	}{
		{"contract trailing dots", ContractKey(ContractSnapshot{TenantID: "t1", TenantName: "Ana S..."})},
		{"contract double dots", ContractKey(ContractSnapshot{TenantID: "t1", TenantName: "J.. Doe"})},
		{"invoice unit dots", InvoiceKey(InvoiceSnapshot{UnitID: "u1", UnitName: "Apt...", Month: "03", Year: "2024"})},
		{"invoice period dots", InvoiceKey(InvoiceSnapshot{UnitID: "u1", UnitName: "101", Month: "..", Year: "2024..."})},
		{"traversal", InvoiceKey(InvoiceSnapshot{UnitID: "u1", UnitName: "../../etc", Month: "03", Year: "2024"})},
	}
	for _, tc := range cases {
		assert.NotContains(t, tc.key, "..", tc.name)
		assert.NoError(t, blob.ValidateKey(tc.key), tc.name)
	}
	assert.Equal(t, "contracts/t1/contract_Ana_S.pdf", ContractKey(ContractSnapshot{TenantID: "t1", TenantName: "Ana S..."}))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "01/02/2024", formatISODate("2024-02-01"))
	assert.Equal(t, "soon", formatISODate("soon"))
	assert.Equal(t, "March", monthName("03"))
	assert.Equal(t, "13", monthName("13"))
	assert.Equal(t, "15/03/2024", issueDate(issued))
}

func TestRenderContract(t *testing.T) {
	out, err := RenderContract(ContractSnapshot{
		TenantID:     "t-1",
		BuildingName: "Edificio Sol",
		UnitName:     "101",
		TenantName:   "Ana Peña",
		Document:     "DNI-1",
		StartDate:    "2024-01-01",
		EndDate:      "2024-12-31",
		MonthlyRent:  500,
		Notes:        "Includes parking space. Pets allowed with deposit.",
		IssuedAt:     issued,
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, string(bytes.TrimSpace(out[len(out)-16:])), "%%EOF")
}

func TestRenderInvoice(t *testing.T) {
	snap := InvoiceSnapshot{
		UnitID:       "u-1",
		Number:       "R-1710498600000",
		BuildingName: "Edificio Sol",
		UnitName:     "101",
		TenantName:   "Ana",
		Month:        "03",
		Year:         "2024",
		Day:          "5",
		LineItems:    domain.LineItems{Rent: 500, Electricity: 30, Water: 15, Other: 10},
		Total:        555,
		Status:       domain.InvoicePending,
		IssuedAt:     issued,
	}
	out, err := RenderInvoice(snap)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	snap.Notes = "Paid in cash"
	snap.Status = domain.InvoicePaid
	withNotes, err := RenderInvoice(snap)
	require.NoError(t, err)
	assert.NotEqual(t, out, withNotes)
}

func TestRenderLedger(t *testing.T) {
	paid := issued.Add(time.Hour)
	invoices := []domain.Invoice{
		{Base: domain.Base{ID: "i2"}, Number: "R-2", Month: "04", Year: "2024", TenantName: "Ana",
			LineItems: domain.LineItems{Rent: 500}, Total: 500, Status: domain.InvoicePending},
		{Base: domain.Base{ID: "i1"}, Number: "R-1", Month: "03", Year: "2024", TenantName: "Ana",
			LineItems: domain.LineItems{Rent: 500, Electricity: 30, Water: 15, Other: 10}, Total: 555,
			Status: domain.InvoicePaid, PaidAt: &paid},
	}
	out, err := RenderLedger(domain.Unit{Name: "101"}, invoices)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{ledgerSheet}, f.GetSheetList())
	raw := excelize.Options{RawCellValue: true}
	cell := func(ref string) string {
		v, err := f.GetCellValue(ledgerSheet, ref, raw)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "Number", cell("A1"))
	assert.Equal(t, "R-1", cell("A2"), "oldest period first")
	assert.Equal(t, "03/2024", cell("B2"))
	assert.Equal(t, "paid", cell("J2"))
	assert.Equal(t, "2024-03-15 11:30", cell("K2"))
	assert.Equal(t, "R-2", cell("A3"))
	assert.Equal(t, "TOTAL", cell("A4"))
	assert.Equal(t, "1000", cell("E4"))
	assert.Equal(t, "1055", cell("I4"))
}

func TestRenderLedgerEmpty(t *testing.T) {
	out, err := RenderLedger(domain.Unit{Name: "101"}, nil)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	v, err := f.GetCellValue(ledgerSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "TOTAL", v)
}
