// Package httpapi exposes the lease ledger over JSON/HTTP.
package httpapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"rentledger/internal/blob"
	"rentledger/internal/core"
	"rentledger/internal/documents"
)

// ExportTracker exposes document export jobs.
type ExportTracker interface {
	Get(id string) (documents.ExportRecord, bool)
	List() []documents.ExportRecord
}

// Option customises a Handler.
type Option func(*Handler)

// WithDocuments serves exported documents from store.
func WithDocuments(store blob.Store) Option {
	return func(h *Handler) { h.docs = store }
}

// WithExports serves export job status.
func WithExports(t ExportTracker) Option {
	return func(h *Handler) { h.exports = t }
}

// WithLogger sets the logger for unexpected failures.
func WithLogger(l core.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(m http.Handler) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithCORSOrigins sets the allowed CORS origins. Defaults to "*".
func WithCORSOrigins(origins []string) Option {
	return func(h *Handler) {
		if len(origins) > 0 {
			h.origins = origins
		}
	}
}

// Handler routes API requests to the service.
type Handler struct {
	svc      *core.Service
	docs     blob.Store
	exports  ExportTracker
	metrics  http.Handler
	logger   core.Logger
	origins  []string
	validate *validator.Validate
	handler  http.Handler
}

// NewHandler builds the API handler.
func NewHandler(svc *core.Service, opts ...Option) *Handler {
	h := &Handler{
		svc:      svc,
		logger:   nopLogger{},
		origins:  []string{"*"},
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.handler = cors.New(cors.Options{
		AllowedOrigins: h.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(h.routes())
	return h
}

// ServeHTTP applies CORS and dispatches to the router.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

func (h *Handler) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/buildings", h.listBuildings).Methods(http.MethodGet)
	api.HandleFunc("/buildings", h.registerBuilding).Methods(http.MethodPost)
	api.HandleFunc("/buildings/{id}", h.getBuilding).Methods(http.MethodGet)
	api.HandleFunc("/buildings/{id}", h.updateBuilding).Methods(http.MethodPatch)
	api.HandleFunc("/buildings/{id}/services", h.updateServices).Methods(http.MethodPut)
	api.HandleFunc("/buildings/{id}/map", h.updateMap).Methods(http.MethodPut)
	api.HandleFunc("/buildings/{id}/summary", h.buildingSummary).Methods(http.MethodGet)
	api.HandleFunc("/buildings/{id}/units", h.listUnits).Methods(http.MethodGet)
	api.HandleFunc("/buildings/{id}/units", h.registerUnit).Methods(http.MethodPost)
	api.HandleFunc("/buildings/{id}/staff", h.listStaff).Methods(http.MethodGet)
	api.HandleFunc("/buildings/{id}/staff", h.createStaff).Methods(http.MethodPost)

	api.HandleFunc("/units/{id}", h.getUnit).Methods(http.MethodGet)
	api.HandleFunc("/units/{id}", h.updateUnit).Methods(http.MethodPatch)
	api.HandleFunc("/units/{id}/selection", h.resolveSelection).Methods(http.MethodGet)
	api.HandleFunc("/units/{id}/tenants", h.listTenants).Methods(http.MethodGet)
	api.HandleFunc("/units/{id}/tenants", h.admitTenant).Methods(http.MethodPost)
	api.HandleFunc("/units/{unitID}/tenants/{id}/rescind", h.rescindTenant).Methods(http.MethodPost)
	api.HandleFunc("/units/{id}/invoices", h.listInvoices).Methods(http.MethodGet)
	api.HandleFunc("/units/{id}/invoices", h.issueInvoice).Methods(http.MethodPost)
	api.HandleFunc("/units/{id}/ledger.xlsx", h.ledger).Methods(http.MethodGet)

	api.HandleFunc("/tenants/{id}", h.updateTenant).Methods(http.MethodPatch)
	api.HandleFunc("/invoices/{id}/pay", h.markPaid).Methods(http.MethodPost)

	api.HandleFunc("/staff/{id}", h.updateStaff).Methods(http.MethodPatch)
	api.HandleFunc("/staff/{id}", h.deleteStaff).Methods(http.MethodDelete)
	api.HandleFunc("/staff/{id}/toggle", h.toggleStaff).Methods(http.MethodPost)

	api.HandleFunc("/documents", h.listDocuments).Methods(http.MethodGet)
	api.HandleFunc("/documents/{key:.+}", h.getDocument).Methods(http.MethodGet)
	api.HandleFunc("/exports", h.listExports).Methods(http.MethodGet)
	api.HandleFunc("/exports/{id}", h.getExport).Methods(http.MethodGet)

	notFound := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found", nil)
	})
	notAllowed := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", nil)
	})
	// mux asks the matching subrouter, not the root, for these handlers.
	for _, router := range []*mux.Router{r, api} {
		router.NotFoundHandler = notFound
		router.MethodNotAllowedHandler = notAllowed
	}
	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func vars(r *http.Request, key string) string {
	return mux.Vars(r)[key]
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
