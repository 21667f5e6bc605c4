package api

import (
	"net/http"

	"github.com/foyerhq/foyer/internal/apperror"
	"github.com/foyerhq/foyer/internal/identity"
	"github.com/foyerhq/foyer/internal/user"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authPayload is the data section returned by register and login.
type authPayload struct {
	AccessToken string          `json:"accessToken"`
	User        user.PublicUser `json:"user"`
}

// handleRegister creates a user, their default organisation, and a
// session token in one shot.
func (h *handlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in identity.SignupInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, u, err := h.identity.Signup(r.Context(), in)
	if err != nil {
		writeAppError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.IncSignup()
	}
	writeSuccess(w, http.StatusCreated, "Registration successful", authPayload{
		AccessToken: token,
		User:        u.Public(),
	})
}

// handleLogin authenticates an email/password pair and issues a token.
func (h *handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusUnauthorized, "authentication failed")
		return
	}

	token, u, err := h.identity.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		if h.metrics != nil && apperror.KindOf(err) == apperror.KindAuthentication {
			h.metrics.IncAuthFailure("login")
		}
		writeAppError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.IncAuthSuccess()
	}
	writeSuccess(w, http.StatusOK, "Login successful", authPayload{
		AccessToken: token,
		User:        u.Public(),
	})
}
