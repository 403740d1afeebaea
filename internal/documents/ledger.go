package documents

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"rentledger/pkg/domain"
)

const ledgerSheet = "Ledger"

var ledgerHeaders = []string{
	"Number", "Period", "Day", "Tenant", "Rent", "Electricity", "Water", "Other", "Total", "Status", "Paid at", "Notes",
}

var ledgerWidths = []float64{18, 10, 6, 24, 12, 12, 12, 12, 12, 10, 20, 40}

// RenderLedger writes a unit's invoices as an XLSX workbook, oldest period
// first, with a totals row.
func RenderLedger(unit domain.Unit, invoices []domain.Invoice) ([]byte, error) {
	rows := make([]domain.Invoice, len(invoices))
	copy(rows, invoices)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		if rows[i].Month != rows[j].Month {
			return rows[i].Month < rows[j].Month
		}
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(ledgerSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.SetDocProps(&excelize.DocProperties{Title: "Ledger " + unit.Name, Creator: "rentledger"}); err != nil {
		return nil, fmt.Errorf("set properties: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	amountFmt := "0.00"
	amountStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &amountFmt})
	if err != nil {
		return nil, fmt.Errorf("amount style: %w", err)
	}

	for col, header := range ledgerHeaders {
		if err := setCell(f, col+1, 1, header); err != nil {
			return nil, err
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(ledgerSheet, name, name, ledgerWidths[col]); err != nil {
			return nil, fmt.Errorf("column width: %w", err)
		}
	}
	if err := f.SetCellStyle(ledgerSheet, "A1", "L1", headerStyle); err != nil {
		return nil, fmt.Errorf("apply header style: %w", err)
	}

	var sums domain.LineItems
	var total float64
	for i, inv := range rows {
		paidAt := ""
		if inv.PaidAt != nil {
			paidAt = inv.PaidAt.UTC().Format("2006-01-02 15:04")
		}
		values := []any{
			inv.Number, inv.Month + "/" + inv.Year, inv.Day, inv.TenantName,
			inv.LineItems.Rent, inv.LineItems.Electricity, inv.LineItems.Water, inv.LineItems.Other,
			inv.Total, string(inv.Status), paidAt, inv.Notes,
		}
		for col, v := range values {
			if err := setCell(f, col+1, i+2, v); err != nil {
				return nil, err
			}
		}
		sums.Rent += inv.LineItems.Rent
		sums.Electricity += inv.LineItems.Electricity
		sums.Water += inv.LineItems.Water
		sums.Other += inv.LineItems.Other
		total += inv.Total
	}

	totalRow := len(rows) + 2
	for col, v := range map[int]any{1: "TOTAL", 5: sums.Rent, 6: sums.Electricity, 7: sums.Water, 8: sums.Other, 9: total} {
		if err := setCell(f, col, totalRow, v); err != nil {
			return nil, err
		}
	}
	first, _ := excelize.CoordinatesToCellName(5, 2)
	last, _ := excelize.CoordinatesToCellName(9, totalRow)
	if err := f.SetCellStyle(ledgerSheet, first, last, amountStyle); err != nil {
		return nil, fmt.Errorf("apply amount style: %w", err)
	}

	if err := f.SetPanes(ledgerSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(ledgerSheet, cell, value); err != nil {
		return fmt.Errorf("set %s: %w", cell, err)
	}
	return nil
}
