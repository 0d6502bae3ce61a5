package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/claimbridge/claimbridge/internal/application"
	"github.com/claimbridge/claimbridge/internal/domain"
	"github.com/claimbridge/claimbridge/internal/ui"
	"github.com/starfederation/datastar-go/datastar"
	"go.uber.org/zap"
)

// roleCookieName selects the demo identity. It is a convenience switch and
// grants nothing on the API.
const roleCookieName = "claimbridge_role"

func currentIdentity(r *http.Request) domain.Identity {
	c, err := r.Cookie(roleCookieName)
	if err != nil {
		return application.IdentityForRole("")
	}
	return application.IdentityForRole(c.Value)
}

func (h *Handler) setRoleCookie(w http.ResponseWriter, role domain.AdminRole) {
	http.SetCookie(w, &http.Cookie{
		Name:     roleCookieName,
		Value:    string(role),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   30 * 24 * 60 * 60,
	})
}

func (h *Handler) requireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := currentIdentity(r)
		if identity.IsSuperAdmin() {
			next.ServeHTTP(w, r)
			return
		}
		if r.Method == http.MethodGet {
			h.renderPage(w, r, http.StatusForbidden, ui.ForbiddenPage(identity))
			return
		}
		h.renderFlash(r.Context(), w, http.StatusForbidden, "Only super-admins can manage administrators")
	})
}

func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, ui.LoginPage(currentIdentity(r)))
}

func (h *Handler) handleSwitchRole(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	role := domain.AdminRole(r.Form.Get("role"))
	if !role.Valid() {
		role = domain.RoleAdmin
	}
	h.setRoleCookie(w, role)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func filterClaims(claims []domain.Claim, filter string) []domain.Claim {
	if filter == "" || filter == ui.FilterAll {
		return claims
	}
	out := make([]domain.Claim, 0, len(claims))
	for _, c := range claims {
		if string(c.Status) == filter {
			out = append(out, c)
		}
	}
	return out
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	identity := currentIdentity(r)
	filter := r.URL.Query().Get("status")
	if filter == "" {
		filter = ui.FilterAll
	}
	claims, err := h.service.ListClaims(r.Context())
	if err != nil {
		h.renderPage(w, r, http.StatusInternalServerError, ui.NotFoundPage(identity, "Failed to fetch claims"))
		return
	}
	h.renderPage(w, r, http.StatusOK, ui.DashboardPage(identity, filterClaims(claims, filter), filter))
}

type dashboardSignals struct {
	StatusFilter string `json:"statusFilter"`
	ClaimantName string `json:"claimantName"`
	ClaimDate    string `json:"claimDate"`
	ClaimSummary string `json:"claimSummary"`
	ClaimDetails string `json:"claimDetails"`
}

func (h *Handler) renderClaimsTable(w http.ResponseWriter, r *http.Request, filter, message string) {
	claims, err := h.service.ListClaims(r.Context())
	if err != nil {
		h.renderFlash(r.Context(), w, http.StatusInternalServerError, "Failed to fetch claims")
		return
	}
	flash := ui.Flash("", "")
	if message != "" {
		flash = ui.Flash(message, "info")
	}
	renderHTMLFragments(r.Context(), w, http.StatusOK, flash, ui.ClaimsTable(filterClaims(claims, filter)))
}

func (h *Handler) handleFilterClaims(w http.ResponseWriter, r *http.Request) {
	var sig dashboardSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		h.renderFlash(r.Context(), w, http.StatusBadRequest, "invalid signals")
		return
	}
	h.renderClaimsTable(w, r, sig.StatusFilter, "")
}

func (h *Handler) handleCreateClaim(w http.ResponseWriter, r *http.Request) {
	var sig dashboardSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		h.renderFlash(r.Context(), w, http.StatusBadRequest, "invalid signals")
		return
	}
	claim, err := h.service.CreateClaim(r.Context(), domain.CreateClaimInput{
		ClaimantName: sig.ClaimantName,
		Date:         sig.ClaimDate,
		Summary:      sig.ClaimSummary,
		Details:      sig.ClaimDetails,
	})
	if err != nil {
		h.renderServiceFlash(w, r, err, "Failed to create claim")
		return
	}
	h.renderClaimsTable(w, r, sig.StatusFilter, fmt.Sprintf("Created claim #%d for %s", claim.ID, claim.ClaimantName))
}

func (h *Handler) handleGenerateClaim(w http.ResponseWriter, r *http.Request) {
	var sig dashboardSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		h.renderFlash(r.Context(), w, http.StatusBadRequest, "invalid signals")
		return
	}
	claim, err := h.service.GenerateClaim(r.Context())
	if err != nil {
		h.renderServiceFlash(w, r, err, "Error creating fake claim")
		return
	}
	h.renderClaimsTable(w, r, sig.StatusFilter, fmt.Sprintf("Generated claim #%d for %s", claim.ID, claim.ClaimantName))
}

func (h *Handler) handleClaimDetail(w http.ResponseWriter, r *http.Request) {
	identity := currentIdentity(r)
	id, ok := parseClaimID(r)
	if !ok {
		h.renderPage(w, r, http.StatusNotFound, ui.NotFoundPage(identity, "Claim not found"))
		return
	}
	claim, err := h.service.GetClaim(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		h.renderPage(w, r, http.StatusNotFound, ui.NotFoundPage(identity, "Claim not found"))
		return
	}
	if err != nil {
		h.renderPage(w, r, http.StatusInternalServerError, ui.NotFoundPage(identity, "Failed to fetch claim"))
		return
	}
	notes, err := h.service.ListNotes(r.Context(), id)
	if err != nil {
		h.log.Warn("rendering claim without notes", zap.Uint("claim_id", id), zap.Error(err))
	}
	h.renderPage(w, r, http.StatusOK, ui.ClaimDetailPage(identity, claim, notes))
}

type claimDetailSignals struct {
	NewStatus string `json:"newStatus"`
	NoteText  string `json:"noteText"`
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseClaimID(r)
	if !ok {
		h.renderFlash(r.Context(), w, http.StatusBadRequest, "Invalid claim id")
		return
	}
	var sig claimDetailSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		h.renderFlash(r.Context(), w, http.StatusBadRequest, "invalid signals")
		return
	}
	status := domain.ClaimStatus(sig.NewStatus)
	if err := h.service.UpdateClaimStatus(r.Context(), id, status); err != nil {
		h.renderServiceFlash(w, r, err, "Failed to update claim")
		return
	}
	renderHTMLFragments(r.Context(), w, http.StatusOK,
		ui.Flash("Status updated to "+string(status), "info"),
		ui.ClaimStatus(status),
	)
}

func (h *Handler) handleAddNote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseClaimID(r)
	if !ok {
		h.renderFlash(r.Context(), w, http.StatusBadRequest, "Invalid claim id")
		return
	}
	var sig claimDetailSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		h.renderFlash(r.Context(), w, http.StatusBadRequest, "invalid signals")
		return
	}
	identity := currentIdentity(r)
	if _, err := h.service.CreateNote(r.Context(), domain.CreateNoteInput{
		ClaimID:  id,
		AuthorID: strconv.FormatUint(uint64(identity.UserID), 10),
		Note:     sig.NoteText,
	}); err != nil {
		h.renderServiceFlash(w, r, err, "Failed to create note")
		return
	}
	notes, err := h.service.ListNotes(r.Context(), id)
	if err != nil {
		h.renderFlash(r.Context(), w, http.StatusInternalServerError, "Failed to fetch notes")
		return
	}
	renderHTMLFragments(r.Context(), w, http.StatusOK, ui.Flash("Note added", "info"), ui.NotesThread(notes))
}

func (h *Handler) handleAdminManagement(w http.ResponseWriter, r *http.Request) {
	identity := currentIdentity(r)
	admins, err := h.service.ListAdmins(r.Context())
	if err != nil {
		h.renderPage(w, r, http.StatusInternalServerError, ui.NotFoundPage(identity, "Failed to fetch admins"))
		return
	}
	h.renderPage(w, r, http.StatusOK, ui.AdminManagementPage(identity, admins))
}

type adminSignals struct {
	AdminName  string `json:"adminName"`
	AdminEmail string `json:"adminEmail"`
	AdminRole  string `json:"adminRole"`
}

func (h *Handler) handleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	var sig adminSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		h.renderFlash(r.Context(), w, http.StatusBadRequest, "invalid signals")
		return
	}
	admin, err := h.service.CreateAdmin(r.Context(), domain.CreateAdminInput{
		Name:  sig.AdminName,
		Email: sig.AdminEmail,
		Role:  domain.AdminRole(sig.AdminRole),
	})
	if err != nil {
		h.renderServiceFlash(w, r, err, "Failed to create admin (email may already exist)")
		return
	}
	admins, err := h.service.ListAdmins(r.Context())
	if err != nil {
		h.renderFlash(r.Context(), w, http.StatusInternalServerError, "Failed to fetch admins")
		return
	}
	renderHTMLFragments(r.Context(), w, http.StatusOK,
		ui.Flash(fmt.Sprintf("Created %s (%s)", admin.Name, admin.Email), "info"),
		ui.AdminsTable(admins),
	)
}

func (h *Handler) renderServiceFlash(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if msg, ok := domain.ValidationMessage(err); ok {
		h.renderFlash(r.Context(), w, http.StatusBadRequest, msg)
		return
	}
	h.renderFlash(r.Context(), w, http.StatusInternalServerError, fallback)
}
