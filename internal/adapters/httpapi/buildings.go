package httpapi

import (
	"net/http"

	"rentledger/internal/core"
)

// buildingView adds the derived embeddable map URL.
type buildingView struct {
	core.Building
	MapEmbedURL string `json:"map_embed_url,omitempty"`
}

func viewBuilding(b core.Building) buildingView {
	return buildingView{Building: b, MapEmbedURL: core.EmbedMapURL(b.MapURL)}
}

func (h *Handler) listBuildings(w http.ResponseWriter, r *http.Request) {
	buildings, err := h.svc.ListBuildings(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	out := make([]buildingView, 0, len(buildings))
	for _, b := range buildings {
		out = append(out, viewBuilding(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{"buildings": out})
}

func (h *Handler) registerBuilding(w http.ResponseWriter, r *http.Request) {
	var req buildingRequest
	if !h.decode(w, r, &req) {
		return
	}
	var services core.BuildingServices
	if req.Services != nil {
		services = req.Services.toServices()
	}
	b, _, err := h.svc.RegisterBuilding(r.Context(), req.toInput(), services, req.MapURL)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"building": viewBuilding(b)})
}

func (h *Handler) getBuilding(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.GetBuilding(r.Context(), vars(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"building": viewBuilding(b)})
}

func (h *Handler) updateBuilding(w http.ResponseWriter, r *http.Request) {
	var req buildingRequest
	if !h.decode(w, r, &req) {
		return
	}
	b, _, err := h.svc.UpdateBuilding(r.Context(), vars(r, "id"), req.toInput())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"building": viewBuilding(b)})
}

func (h *Handler) updateServices(w http.ResponseWriter, r *http.Request) {
	var req servicesRequest
	if !h.decode(w, r, &req) {
		return
	}
	b, _, err := h.svc.UpdateBuildingServices(r.Context(), vars(r, "id"), req.toServices())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"building": viewBuilding(b)})
}

func (h *Handler) updateMap(w http.ResponseWriter, r *http.Request) {
	var req mapRequest
	if !h.decode(w, r, &req) {
		return
	}
	b, _, err := h.svc.UpdateBuildingMap(r.Context(), vars(r, "id"), req.MapURL)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"building": viewBuilding(b)})
}

func (h *Handler) buildingSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.BuildingSummary(r.Context(), vars(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summary": summary})
}

func (h *Handler) listUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.svc.ListUnits(r.Context(), vars(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"units": nonNil(units)})
}

func (h *Handler) registerUnit(w http.ResponseWriter, r *http.Request) {
	var req unitRequest
	if !h.decode(w, r, &req) {
		return
	}
	u, _, err := h.svc.RegisterUnit(r.Context(), core.Selection{}.WithBuilding(vars(r, "id")), req.toInput())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"unit": u})
}

func (h *Handler) listStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := h.svc.ListStaff(r.Context(), vars(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"staff": nonNil(staff)})
}

func (h *Handler) createStaff(w http.ResponseWriter, r *http.Request) {
	var req staffRequest
	if !h.decode(w, r, &req) {
		return
	}
	st, _, err := h.svc.CreateStaff(r.Context(), core.Selection{}.WithBuilding(vars(r, "id")), req.toInput())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"staff": st})
}

func (h *Handler) updateStaff(w http.ResponseWriter, r *http.Request) {
	var req staffRequest
	if !h.decode(w, r, &req) {
		return
	}
	st, _, err := h.svc.UpdateStaff(r.Context(), vars(r, "id"), req.toInput())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"staff": st})
}

func (h *Handler) toggleStaff(w http.ResponseWriter, r *http.Request) {
	st, _, err := h.svc.ToggleStaffActive(r.Context(), vars(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"staff": st})
}

func (h *Handler) deleteStaff(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.DeleteStaff(r.Context(), vars(r, "id")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
