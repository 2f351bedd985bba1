package web

import (
	"errors"
	"net/http"

	"github.com/ecinar/route-tracker/internal/user"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	role := user.Role(req.Role)
	if req.Role == "" {
		role = user.RoleSalesPerson
	}

	u, err := s.users.Create(r.Context(), req.Name, req.Email, req.Password, role)
	switch {
	case errors.Is(err, user.ErrEmailTaken):
		apiError(w, http.StatusConflict, "email_taken", "email already registered")
		return
	case err != nil:
		apiError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	token, err := s.tokens.Issue(u.ID, u.Email, u.Name)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "internal", "could not issue token")
		return
	}
	apiJSON(w, http.StatusCreated, authResponse{Token: token, User: u})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := s.users.Authenticate(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, user.ErrInvalidCredentials):
		apiError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
		return
	case err != nil:
		apiError(w, http.StatusInternalServerError, "internal", "login failed")
		return
	}

	token, err := s.tokens.Issue(u.ID, u.Email, u.Name)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "internal", "could not issue token")
		return
	}
	apiJSON(w, http.StatusOK, authResponse{Token: token, User: u})
}
