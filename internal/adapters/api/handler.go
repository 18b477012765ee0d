// Package api exposes zone and record management over HTTP.
package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/poyrazK/dnskitchen/internal/core/domain"
	"github.com/poyrazK/dnskitchen/internal/core/ports"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIHandler handles HTTP requests for zone and record management.
type APIHandler struct {
	domains  ports.DomainService
	records  ports.RecordService
	acme     ports.ACMEService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAPIHandler creates and returns a new APIHandler instance.
func NewAPIHandler(domains ports.DomainService, records ports.RecordService, acme ports.ACMEService, logger *slog.Logger) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIHandler{
		domains:  domains,
		records:  records,
		acme:     acme,
		validate: newValidator(),
		logger:   logger,
	}
}

// Router builds the HTTP routes. limiter may be nil.
func (h *APIHandler) Router(verifier *TokenVerifier, limiter *RateLimiter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)

	// Public Routes
	r.Get("/healthz", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1alpha1", func(r chi.Router) {
		if limiter != nil {
			r.Use(RateLimitMiddleware(limiter))
		}
		r.Get("/", h.Alive)

		r.Post("/acme/present", h.ACMEPresent)
		r.Post("/acme/cleanup", h.ACMECleanup)

		r.Route("/namespaces/{namespace}/domains", func(r chi.Router) {
			r.Use(AuthMiddleware(verifier))
			r.Use(RequireRole(domain.MutatingRoles...))

			r.Post("/", h.CreateDomain)
			r.Get("/", h.ListDomains)
			r.Route("/{domain}", func(r chi.Router) {
				r.Get("/", h.GetDomain)
				r.Patch("/", h.UpdateDomain)
				r.Delete("/", h.DeleteDomain)
				r.Post("/import", h.ImportZone)

				r.Post("/records", h.CreateRecord)
				r.Get("/records", h.ListRecords)
				r.Get("/records/{id}", h.GetRecord)
				r.Patch("/records/{id}", h.UpdateRecord)
				r.Delete("/records/{id}", h.DeleteRecord)
			})
		})
	})
	return r
}

// Alive answers the legacy liveness probe.
func (h *APIHandler) Alive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, true)
}

// HealthCheck handles health check requests.
func (h *APIHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "UP"
	details := make(map[string]string)
	checks := h.domains.HealthCheck(r.Context())

	for name, checkErr := range checks {
		if checkErr != nil {
			status = "DEGRADED"
			details[name] = checkErr.Error()
		} else {
			details[name] = "OK"
		}
	}

	code := http.StatusOK
	if status == "DEGRADED" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status":  status,
		"details": details,
	})
}

func (h *APIHandler) CreateDomain(w http.ResponseWriter, r *http.Request) {
	var req createDomainRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	d, err := h.domains.CreateDomain(r.Context(), chi.URLParam(r, "namespace"), req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *APIHandler) ListDomains(w http.ResponseWriter, r *http.Request) {
	filter, page, err := h.listQuery(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.domains.ListDomains(r.Context(), chi.URLParam(r, "namespace"), filter, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *APIHandler) GetDomain(w http.ResponseWriter, r *http.Request) {
	d, err := h.domains.GetDomain(r.Context(), chi.URLParam(r, "namespace"), chi.URLParam(r, "domain"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *APIHandler) UpdateDomain(w http.ResponseWriter, r *http.Request) {
	var req updateDomainRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	patch, err := req.patch()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	d, err := h.domains.UpdateDomain(r.Context(), chi.URLParam(r, "namespace"), chi.URLParam(r, "domain"), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *APIHandler) DeleteDomain(w http.ResponseWriter, r *http.Request) {
	if err := h.domains.DeleteDomain(r.Context(), chi.URLParam(r, "namespace"), chi.URLParam(r, "domain")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) ImportZone(w http.ResponseWriter, r *http.Request) {
	res, err := h.records.ImportZone(r.Context(), chi.URLParam(r, "namespace"), chi.URLParam(r, "domain"),
		io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *APIHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	rec := &domain.Record{
		Name:    req.Name,
		Type:    domain.RecordType(req.Type),
		Content: req.Content,
		TTL:     req.TTL,
	}
	if err := h.records.CreateRecord(r.Context(), chi.URLParam(r, "namespace"), chi.URLParam(r, "domain"), rec); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *APIHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	filter, page, err := h.listQuery(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.records.ListRecords(r.Context(), chi.URLParam(r, "namespace"), chi.URLParam(r, "domain"), filter, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *APIHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := h.records.GetRecord(r.Context(), chi.URLParam(r, "namespace"), chi.URLParam(r, "domain"), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *APIHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	var req updateRecordRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	patch, err := req.patch()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rec, err := h.records.UpdateRecord(r.Context(), chi.URLParam(r, "namespace"), chi.URLParam(r, "domain"), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *APIHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := h.records.DeleteRecord(r.Context(), chi.URLParam(r, "namespace"), chi.URLParam(r, "domain"), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type acmeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ACMEPresent and ACMECleanup answer 200 for every decodable request; the
// outcome is carried in the body.
func (h *APIHandler) ACMEPresent(w http.ResponseWriter, r *http.Request) {
	h.acmeCall(w, r, "present", h.acme.Present)
}

func (h *APIHandler) ACMECleanup(w http.ResponseWriter, r *http.Request) {
	h.acmeCall(w, r, "cleanup", h.acme.Cleanup)
}

func (h *APIHandler) acmeCall(w http.ResponseWriter, r *http.Request, action string, call func(context.Context, domain.ACMEChallenge) error) {
	var ch domain.ACMEChallenge
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&ch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed body: " + err.Error()})
		return
	}
	if err := call(r.Context(), ch); err != nil {
		h.logger.Debug("acme request failed", "action", action, "dnsName", ch.DNSName, "error", err)
		writeJSON(w, http.StatusOK, acmeResponse{Status: "error", Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, acmeResponse{Status: "success"})
}
