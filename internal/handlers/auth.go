package handlers

import (
	"net/http"

	"github.com/supremetuning/tuningcalc/internal/auth"
)

// handleLogin verifies credentials and issues an admin token
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, BadRequest("Username and password are required"))
		return
	}

	token, err := h.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, LoginResponse{
		Token:     token,
		Role:      "admin",
		ExpiresIn: int(auth.TokenExpiry.Seconds()),
	})
}

// handleUpdateCredentials changes the admin username and password
func (h *Handlers) handleUpdateCredentials(w http.ResponseWriter, r *http.Request) {
	var req UpdateCredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Settings.UpdateCredentials(r.Context(), req.CurrentPassword, req.NewUsername, req.NewPassword); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Credentials updated")
}
