package core

import (
	"context"
	"strconv"
	"strings"

	"rentledger/pkg/domain"
)

// InvoiceDraft is the operator's input for a new invoice. Amounts are raw
// text and read through ParseAmount, so blank or unparsable values count as
// zero. Status defaults to pending.
type InvoiceDraft struct {
	Month       string
	Year        string
	Day         string
	Rent        string
	Electricity string
	Water       string
	Other       string
	Notes       string
	Status      domain.InvoiceStatus
}

func (d InvoiceDraft) lineItems() (LineItems, error) {
	items := LineItems{
		Rent:        ParseAmount(d.Rent),
		Electricity: ParseAmount(d.Electricity),
		Water:       ParseAmount(d.Water),
		Other:       ParseAmount(d.Other),
	}
	for _, f := range []struct {
		field string
		value float64
	}{
		{"rent", items.Rent},
		{"electricity", items.Electricity},
		{"water", items.Water},
		{"other", items.Other},
	} {
		if err := requireNonNegative(f.field, f.value); err != nil {
			return LineItems{}, err
		}
	}
	return items, nil
}

// IssueInvoice bills the active tenant of the selected unit for one period.
// If the selection names a tenant it must be that active tenant. A second
// invoice for the same unit, month and year is rejected.
func (s *Service) IssueInvoice(ctx context.Context, sel Selection, draft InvoiceDraft) (Invoice, Result, error) {
	var (
		created  Invoice
		unit     Unit
		tenant   Tenant
		building Building
	)
	res, err := s.run(ctx, mutation{op: "issue_invoice", entity: EntityInvoice, action: ActionCreate}, func(tx Transaction) (string, error) {
		if err := requireText("unit_id", sel.UnitID); err != nil {
			return "", err
		}
		month, year := strings.TrimSpace(draft.Month), strings.TrimSpace(draft.Year)
		if err := requireText("month", month); err != nil {
			return "", err
		}
		if err := requireText("year", year); err != nil {
			return "", err
		}
		day, err := parseDay(draft.Day)
		if err != nil {
			return "", err
		}
		items, err := draft.lineItems()
		if err != nil {
			return "", err
		}
		status := draft.Status
		switch status {
		case "":
			status = domain.InvoicePending
		case domain.InvoicePending, domain.InvoicePaid:
		default:
			return "", domain.ValidationError{Field: "status", Message: "must be pending or paid"}
		}

		var ok bool
		if unit, ok = tx.FindUnit(sel.UnitID); !ok {
			return "", ErrNotFound{Entity: EntityUnit, ID: sel.UnitID}
		}
		if tenant, ok = activeTenant(tx, unit.ID); !ok || (sel.TenantID != "" && sel.TenantID != tenant.ID) {
			return "", domain.ConflictError{
				Reason:   domain.ErrNoActiveTenant,
				Entity:   EntityUnit,
				EntityID: unit.ID,
				Message:  "unit " + unit.Name + " has no active tenant to invoice",
			}
		}
		if existing, found := invoiceForPeriod(tx, unit.ID, month, year); found {
			return "", domain.ConflictError{
				Reason:   domain.ErrInvoicePeriodExists,
				Entity:   EntityInvoice,
				EntityID: existing.ID,
				Message:  "unit " + unit.Name + " already has an invoice for " + month + "/" + year,
			}
		}
		building, _ = tx.FindBuilding(unit.BuildingID)

		now := s.now()
		inv := Invoice{
			BuildingID:   unit.BuildingID,
			BuildingName: building.Name,
			UnitID:       unit.ID,
			UnitName:     unit.Name,
			TenantID:     tenant.ID,
			TenantName:   tenant.Name,
			Month:        month,
			Year:         year,
			Day:          day,
			LineItems:    items,
			Total:        items.Total(),
			Notes:        strings.TrimSpace(draft.Notes),
			Status:       status,
			Number:       "R-" + strconv.FormatInt(now.UnixMilli(), 10),
		}
		if status == domain.InvoicePaid {
			inv.PaidAt = &now
		}
		created, err = tx.CreateInvoice(inv)
		return created.ID, err
	})
	if err != nil {
		return Invoice{}, res, err
	}
	s.publish(ctx, Event{Kind: EventInvoiceIssued, Building: building, Unit: unit, Tenant: tenant, Invoice: created})
	return created, res, nil
}

// MarkInvoicePaid sets an invoice paid and stamps the payment time. Paying an
// already paid invoice re-stamps it.
func (s *Service) MarkInvoicePaid(ctx context.Context, id string) (Invoice, Result, error) {
	var (
		updated  Invoice
		unit     Unit
		tenant   Tenant
		building Building
	)
	res, err := s.run(ctx, mutation{op: "mark_invoice_paid", entity: EntityInvoice, action: ActionUpdate}, func(tx Transaction) (string, error) {
		now := s.now()
		var err error
		updated, err = tx.UpdateInvoice(id, func(inv *Invoice) error {
			inv.Status = domain.InvoicePaid
			inv.PaidAt = &now
			return nil
		})
		if err != nil {
			return id, err
		}
		unit, _ = tx.FindUnit(updated.UnitID)
		tenant, _ = tx.FindTenant(updated.TenantID)
		building, _ = tx.FindBuilding(updated.BuildingID)
		return id, nil
	})
	if err != nil {
		return Invoice{}, res, err
	}
	s.publish(ctx, Event{Kind: EventInvoicePaid, Building: building, Unit: unit, Tenant: tenant, Invoice: updated})
	return updated, res, nil
}

// invoiceForPeriod scans every invoice of the unit rather than relying on a
// filtered query, matching month and year as trimmed text.
func invoiceForPeriod(v TransactionView, unitID, month, year string) (Invoice, bool) {
	for _, inv := range v.Invoices(domain.InvoiceQuery{UnitID: unitID}) {
		if strings.TrimSpace(inv.Month) == month && strings.TrimSpace(inv.Year) == year {
			return inv, true
		}
	}
	return Invoice{}, false
}
