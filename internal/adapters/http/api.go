package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/claimbridge/claimbridge/internal/domain"
	"go.uber.org/zap"
)

// authorID accepts a JSON string or number. Clients have sent both.
type authorID string

func (a *authorID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = authorID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("author_id must be a string or number")
	}
	*a = authorID(n.String())
	return nil
}

type apiUpdateStatusRequest struct {
	Status domain.ClaimStatus `json:"status"`
}

type apiCreateNoteRequest struct {
	AuthorID authorID `json:"author_id"`
	Note     string   `json:"note"`
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// writeServiceError answers validation failures with their message and
// everything else with the route's generic message.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if msg, ok := domain.ValidationMessage(err); ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	h.log.Debug("request failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", requestIDFromContext(r.Context())),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, fallback)
}

func (h *Handler) handleAPIListClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := h.service.ListClaims(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to fetch claims")
		return
	}
	writeJSON(w, http.StatusOK, claims)
}

func (h *Handler) handleAPICreateClaim(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateClaimInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	claim, err := h.service.CreateClaim(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to create claim")
		return
	}
	writeJSON(w, http.StatusCreated, claim)
}

func (h *Handler) handleAPIGenerateClaim(w http.ResponseWriter, r *http.Request) {
	claim, err := h.service.GenerateClaim(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to generate claim")
		return
	}
	writeJSON(w, http.StatusCreated, claim)
}

func (h *Handler) handleAPIGetClaim(w http.ResponseWriter, r *http.Request) {
	id, ok := parseClaimID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Claim not found")
		return
	}
	claim, err := h.service.GetClaim(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Claim not found")
		return
	}
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to fetch claim")
		return
	}
	writeJSON(w, http.StatusOK, claim)
}

func (h *Handler) handleAPIUpdateClaimStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseClaimID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid claim id")
		return
	}
	var req apiUpdateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.service.UpdateClaimStatus(r.Context(), id, req.Status); err != nil {
		h.writeServiceError(w, r, err, "Failed to update claim")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) handleAPIListNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := parseClaimID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid claim id")
		return
	}
	notes, err := h.service.ListNotes(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to fetch notes")
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *Handler) handleAPICreateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseClaimID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid claim id")
		return
	}
	var req apiCreateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	note, err := h.service.CreateNote(r.Context(), domain.CreateNoteInput{
		ClaimID:  id,
		AuthorID: string(req.AuthorID),
		Note:     req.Note,
	})
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to create note")
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (h *Handler) handleAPIListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.service.ListAdmins(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to fetch admins")
		return
	}
	writeJSON(w, http.StatusOK, admins)
}

func (h *Handler) handleAPICreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAdminInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	admin, err := h.service.CreateAdmin(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to create admin (email may already exist)")
		return
	}
	writeJSON(w, http.StatusCreated, admin)
}

func (h *Handler) handleAPIInit(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Initialize(r.Context()); err != nil {
		h.writeServiceError(w, r, err, "Failed to initialize database")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
