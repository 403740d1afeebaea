package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"

	"rentledger/internal/blob"
)

func (h *Handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	if h.docs == nil {
		writeError(w, http.StatusServiceUnavailable, codeUnavailable, "document storage not configured", nil)
		return
	}
	infos, err := h.docs.List(r.Context(), r.URL.Query().Get("prefix"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": nonNil(infos)})
}

func (h *Handler) getDocument(w http.ResponseWriter, r *http.Request) {
	if h.docs == nil {
		writeError(w, http.StatusServiceUnavailable, codeUnavailable, "document storage not configured", nil)
		return
	}
	key := vars(r, "key")
	if err := blob.ValidateKey(key); err != nil {
		h.respondError(w, r, err)
		return
	}
	info, body, err := h.docs.Get(r.Context(), key)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	defer func() { _ = body.Close() }()
	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(key)))
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("document download interrupted", "key", key, "error", err)
	}
}

func (h *Handler) listExports(w http.ResponseWriter, _ *http.Request) {
	if h.exports == nil {
		writeError(w, http.StatusServiceUnavailable, codeUnavailable, "document exports not configured", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"exports": h.exports.List()})
}

func (h *Handler) getExport(w http.ResponseWriter, r *http.Request) {
	if h.exports == nil {
		writeError(w, http.StatusServiceUnavailable, codeUnavailable, "document exports not configured", nil)
		return
	}
	record, ok := h.exports.Get(vars(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, codeNotFound, "export not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"export": record})
}
