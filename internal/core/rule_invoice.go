package core

import (
	"context"
	"fmt"
	"strings"

	"rentledger/pkg/domain"
)

// NewInvoicePeriodUniqueRule rejects a second invoice for the same unit,
// month and year.
func NewInvoicePeriodUniqueRule() domain.Rule {
	return invoicePeriodUniqueRule{}
}

type invoicePeriodUniqueRule struct{}

func (invoicePeriodUniqueRule) Name() string { return "invoice_period_unique" }

func (r invoicePeriodUniqueRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	type key struct{ unit, month, year string }
	seen := make(map[key]string)
	res := domain.Result{}
	for _, inv := range view.ListInvoices() {
		k := key{inv.UnitID, strings.TrimSpace(inv.Month), strings.TrimSpace(inv.Year)}
		if first, dup := seen[k]; dup {
			res.Violations = append(res.Violations, blocking(r.Name(), EntityInvoice, inv.ID,
				fmt.Sprintf("invoice %s duplicates %s for unit %s period %s/%s", inv.ID, first, inv.UnitID, k.month, k.year)))
			continue
		}
		seen[k] = inv.ID
	}
	return res, nil
}

// NewInvoicePaidOneWayRule rejects updates that move a paid invoice back to
// pending.
func NewInvoicePaidOneWayRule() domain.Rule {
	return invoicePaidOneWayRule{}
}

type invoicePaidOneWayRule struct{}

func (invoicePaidOneWayRule) Name() string { return "invoice_paid_one_way" }

func (r invoicePaidOneWayRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntityInvoice || change.Action != domain.ActionUpdate {
			continue
		}
		before, ok := change.Before.(domain.Invoice)
		if !ok {
			continue
		}
		after, ok := change.After.(domain.Invoice)
		if !ok {
			continue
		}
		if before.Status == domain.InvoicePaid && after.Status != domain.InvoicePaid {
			res.Violations = append(res.Violations, blocking(r.Name(), EntityInvoice, after.ID,
				fmt.Sprintf("invoice %s is paid and cannot return to %s", after.ID, after.Status)))
		}
	}
	return res, nil
}
