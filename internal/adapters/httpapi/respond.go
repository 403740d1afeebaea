package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"rentledger/internal/blob"
	"rentledger/pkg/domain"
)

const (
	codeInvalidPayload = "invalid_payload"
	codeValidation     = "validation_error"
	codeConflict       = "conflict"
	codeNotFound       = "not_found"
	codeRuleViolation  = "rule_violation"
	codeUnavailable    = "unavailable"
	codeInternal       = "internal_server_error"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message, Details: details})
}

// respondError maps service errors onto status codes. Unknown errors are
// logged and hidden behind a generic 500.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve  domain.ValidationError
		ce  domain.ConflictError
		nf  domain.ErrNotFound
		rv  domain.RuleViolationError
		fve validator.ValidationErrors
	)
	switch {
	case errors.As(err, &fve):
		details := make(map[string]string, len(fve))
		for _, fe := range fve {
			details[fe.Field()] = fe.Tag()
		}
		writeError(w, http.StatusBadRequest, codeValidation, "request failed validation", details)
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, codeValidation, ve.Error(), map[string]string{"field": ve.Field})
	case errors.As(err, &ce):
		details := map[string]string{"entity": string(ce.Entity), "entity_id": ce.EntityID}
		if ce.Reason != nil {
			details["reason"] = ce.Reason.Error()
		}
		writeError(w, http.StatusConflict, codeConflict, ce.Error(), details)
	case errors.As(err, &nf):
		writeError(w, http.StatusNotFound, codeNotFound, nf.Error(), nil)
	case errors.Is(err, blob.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "document not found", nil)
	case errors.Is(err, blob.ErrInvalidKey):
		writeError(w, http.StatusBadRequest, codeInvalidPayload, err.Error(), nil)
	case errors.As(err, &rv):
		writeError(w, http.StatusConflict, codeRuleViolation, rv.Error(), rv.Result.Violations)
	default:
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error", nil)
	}
}
