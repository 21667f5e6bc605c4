package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foyerhq/foyer/internal/auth"
	"github.com/foyerhq/foyer/internal/org"
	"github.com/foyerhq/foyer/internal/user"
	"github.com/foyerhq/foyer/internal/validation"
)

type organisationList struct {
	Organisations []org.Organisation `json:"organisations"`
}

type addUserRequest struct {
	UserID string `json:"userId"`
}

// handleListOrganisations returns every organisation the caller belongs
// to, and nothing else.
func (h *handlers) handleListOrganisations(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())

	orgs, err := h.orgs.ListByUser(r.Context(), caller.UserID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Organisations retrieved successfully", organisationList{
		Organisations: orgs,
	})
}

// handleGetOrganisation returns a single organisation. Organisations the
// caller is not a member of are reported as absent.
func (h *handlers) handleGetOrganisation(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	orgID := chi.URLParam(r, "orgId")

	o, err := h.orgs.GetForMember(r.Context(), orgID, caller.UserID)
	if err != nil {
		if org.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "organisation not found")
			return
		}
		writeAppError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Organisation retrieved successfully", o)
}

// handleCreateOrganisation creates an organisation with the caller as its
// first member.
func (h *handlers) handleCreateOrganisation(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())

	var in org.CreateOrganisationInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if verr := validation.Organisation(validation.OrganisationInput{
		Name:        in.Name,
		Description: in.Description,
	}); verr != nil {
		writeAppError(w, verr)
		return
	}

	o, err := h.orgs.CreateWithMember(r.Context(), in, caller.UserID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Organisation created successfully", o)
}

// handleAddOrganisationUser grants a user membership of an organisation.
// The caller must already be a member; for everyone else the
// organisation does not exist.
func (h *handlers) handleAddOrganisationUser(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	orgID := chi.URLParam(r, "orgId")

	var in addUserRequest
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if verr := validation.MembershipAdd(validation.MembershipInput{UserID: in.UserID}); verr != nil {
		writeAppError(w, verr)
		return
	}

	member, err := h.orgs.IsMember(r.Context(), orgID, caller.UserID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if !member {
		writeError(w, http.StatusNotFound, "organisation not found")
		return
	}

	if _, err := h.users.GetByUserID(r.Context(), in.UserID); err != nil {
		if user.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeAppError(w, err)
		return
	}

	if err := h.orgs.AddMember(r.Context(), orgID, in.UserID); err != nil {
		if errors.Is(err, org.ErrAlreadyMember) {
			writeError(w, http.StatusBadRequest, "user already in organisation")
			return
		}
		writeAppError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "User added to organisation successfully", map[string]any{})
}
