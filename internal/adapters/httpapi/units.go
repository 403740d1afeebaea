package httpapi

import (
	"fmt"
	"net/http"

	"rentledger/internal/core"
	"rentledger/internal/documents"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) getUnit(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.GetUnit(r.Context(), vars(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"unit": u})
}

func (h *Handler) updateUnit(w http.ResponseWriter, r *http.Request) {
	var req unitRequest
	if !h.decode(w, r, &req) {
		return
	}
	u, _, err := h.svc.UpdateUnit(r.Context(), vars(r, "id"), req.toInput())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"unit": u})
}

func (h *Handler) resolveSelection(w http.ResponseWriter, r *http.Request) {
	sel := core.Selection{}.WithUnit(vars(r, "id")).WithTenant(r.URL.Query().Get("tenant_id"))
	state, err := h.svc.ResolveSelection(r.Context(), sel)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"selection": state})
}

// unitSelection resolves the unit's building so operations receive a
// complete selection.
func (h *Handler) unitSelection(r *http.Request, unitID string) (core.Selection, error) {
	u, err := h.svc.GetUnit(r.Context(), unitID)
	if err != nil {
		return core.Selection{}, err
	}
	return core.Selection{}.WithBuilding(u.BuildingID).WithUnit(u.ID), nil
}

func (h *Handler) listTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.svc.ListTenants(r.Context(), vars(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tenants": nonNil(tenants)})
}

func (h *Handler) admitTenant(w http.ResponseWriter, r *http.Request) {
	var req tenantRequest
	if !h.decode(w, r, &req) {
		return
	}
	sel, err := h.unitSelection(r, vars(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	t, _, err := h.svc.AdmitTenant(r.Context(), sel, req.toInput())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"tenant": t})
}

func (h *Handler) updateTenant(w http.ResponseWriter, r *http.Request) {
	var req tenantRequest
	if !h.decode(w, r, &req) {
		return
	}
	t, _, err := h.svc.UpdateTenant(r.Context(), vars(r, "id"), req.toInput())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tenant": t})
}

func (h *Handler) rescindTenant(w http.ResponseWriter, r *http.Request) {
	t, _, err := h.svc.RescindTenant(r.Context(), vars(r, "id"), vars(r, "unitID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tenant": t})
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.svc.ListTenantInvoices(r.Context(), vars(r, "id"), r.URL.Query().Get("tenant_id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invoices": nonNil(invoices)})
}

func (h *Handler) issueInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if !h.decode(w, r, &req) {
		return
	}
	sel, err := h.unitSelection(r, vars(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if req.TenantID != "" {
		sel = sel.WithTenant(req.TenantID)
	}
	inv, _, err := h.svc.IssueInvoice(r.Context(), sel, req.toDraft())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"invoice": inv})
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	inv, _, err := h.svc.MarkInvoicePaid(r.Context(), vars(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invoice": inv})
}

func (h *Handler) ledger(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.GetUnit(r.Context(), vars(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	invoices, err := h.svc.ListInvoices(r.Context(), u.ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	data, err := documents.RenderLedger(u, invoices)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "ledger_"+u.Name+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
