package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foyerhq/foyer/internal/auth"
	"github.com/foyerhq/foyer/internal/user"
)

// handleGetUser returns a user record. Callers may always read their own
// record; anyone else only through a shared organisation.
func (h *handlers) handleGetUser(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	targetID := chi.URLParam(r, "id")

	target, err := h.users.GetByUserID(r.Context(), targetID)
	if err != nil {
		if user.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeAppError(w, err)
		return
	}

	if target.UserID != caller.UserID {
		shared, err := h.orgs.SharesOrganisation(r.Context(), caller.UserID, target.UserID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		if !shared {
			writeError(w, http.StatusForbidden, "user not in your organisation")
			return
		}
	}

	writeSuccess(w, http.StatusOK, "User data retrieved successfully", target.Public())
}
