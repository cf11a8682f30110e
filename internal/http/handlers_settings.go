package http

import (
	"net/http"

	"bankdash/internal/core"
	applog "bankdash/internal/log"
)

type userView struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type userUpdateRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// handleGetUser returns the profile without credentials.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetUser(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to load user", applog.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "could not load profile")
		return
	}

	writeJSON(w, http.StatusOK, userView{
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
	})
}

// handleUpdateUser moves the editable profile fields. Username and
// password cannot be changed through this endpoint.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req userUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.users.UpdateUser(r.Context(), core.User{
		FirstName: sanitizeInput(req.FirstName),
		LastName:  sanitizeInput(req.LastName),
		Email:     sanitizeInput(req.Email),
		Phone:     sanitizeInput(req.Phone),
	})
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to update user", applog.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "could not update profile")
		return
	}

	s.handleGetUser(w, r)
}
