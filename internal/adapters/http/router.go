package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/claimbridge/claimbridge/internal/application"
	"github.com/claimbridge/claimbridge/internal/metrics"
	"github.com/claimbridge/claimbridge/internal/ui"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

type Handler struct {
	service *application.ClaimService
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewRouter(service *application.ClaimService, logger *zap.Logger, m *metrics.Metrics) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{service: service, log: logger.Named("http"), metrics: m}
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(h.recoverer)
	r.Use(h.accessLog)
	if m != nil {
		r.Use(h.instrument)
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Get("/healthz", h.handleHealthz)

	r.Route("/api", func(api chi.Router) {
		api.Get("/claims", h.handleAPIListClaims)
		api.Post("/claims", h.handleAPICreateClaim)
		api.Post("/claims/generate", h.handleAPIGenerateClaim)
		api.Get("/claims/{id}", h.handleAPIGetClaim)
		api.Patch("/claims/{id}", h.handleAPIUpdateClaimStatus)
		api.Get("/claims/{id}/notes", h.handleAPIListNotes)
		api.Post("/claims/{id}/notes", h.handleAPICreateNote)
		api.Get("/admins", h.handleAPIListAdmins)
		api.Post("/admins", h.handleAPICreateAdmin)
		api.Post("/init", h.handleAPIInit)
	})

	r.Get("/", h.handleHomeRedirect)
	r.Get("/login", h.handleLoginPage)
	r.Post("/role", h.handleSwitchRole)
	r.Get("/dashboard", h.handleDashboard)
	r.Post("/dashboard/claims", h.handleCreateClaim)
	r.Post("/dashboard/claims/generate", h.handleGenerateClaim)
	r.Post("/dashboard/claims/filter", h.handleFilterClaims)
	r.Get("/dashboard/claims/{id}", h.handleClaimDetail)
	r.Post("/dashboard/claims/{id}/status", h.handleUpdateStatus)
	r.Post("/dashboard/claims/{id}/notes", h.handleAddNote)
	r.With(h.requireSuperAdmin).Get("/dashboard/admin-management", h.handleAdminManagement)
	r.With(h.requireSuperAdmin).Post("/dashboard/admin-management/admins", h.handleCreateAdmin)

	return r
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()
	if err := h.service.Ping(ctx); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) handleHomeRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// parseClaimID accepts positive decimal ids only.
func parseClaimID(r *http.Request) (uint, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func renderHTMLFragments(ctx context.Context, w http.ResponseWriter, status int, fragments ...templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	for _, fragment := range fragments {
		if fragment == nil {
			continue
		}
		_ = fragment.Render(ctx, w)
	}
}

func (h *Handler) renderFlash(ctx context.Context, w http.ResponseWriter, status int, message string) {
	kind := "info"
	if status >= 400 {
		kind = "error"
	}
	renderHTMLFragments(ctx, w, status, ui.Flash(message, kind))
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, page templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.Render(r.Context(), w); err != nil {
		h.log.Error("render page failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
}
