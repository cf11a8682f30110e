package http

import (
	"net/http"

	applog "bankdash/internal/log"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// handleLogin checks the demo credentials and hands out a session token.
// This is a demo guard, not real authentication: one user, plain-text
// password comparison.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	logger := applog.FromContext(r.Context())

	user, err := s.users.GetUser(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to load user for login",
			applog.FieldOperation, applog.OpLogin, applog.FieldError, err.Error())
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if req.Username != user.Username || req.Password != user.Password {
		logger.WarnContext(r.Context(), "Login rejected",
			applog.FieldOperation, applog.OpLogin, "username", req.Username)
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.sessions.Create(user.Username)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to create session",
			applog.FieldOperation, applog.OpLogin, applog.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "could not create session")
		return
	}

	logger.InfoContext(r.Context(), "User signed in",
		applog.FieldOperation, applog.OpLogin, "username", user.Username)
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		s.sessions.Revoke(token)
	}
	w.WriteHeader(http.StatusNoContent)
}
