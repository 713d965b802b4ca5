package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kudzaim/kiosk-commerce/internal/models"
	"github.com/kudzaim/kiosk-commerce/internal/service"
)

type userPayload struct {
	Name   string            `json:"name"`
	Email  string            `json:"email"`
	Role   models.Role       `json:"role"`
	Status models.UserStatus `json:"status"`
}

func (p userPayload) toRequest() service.CreateUserRequest {
	status := p.Status
	if status == "" {
		status = models.UserStatusActive
	}

	return service.CreateUserRequest{
		Name:   p.Name,
		Email:  p.Email,
		Role:   p.Role,
		Status: status,
	}
}

// listUsersHandler returns all accounts, hashes excluded by the model's
// json tags.
func (s *Server) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := s.userService.ListUsers(r.Context())

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    users,
	})
}

// createUserHandler provisions an account. The generated initial password
// appears only in this response.
func (s *Server) createUserHandler(w http.ResponseWriter, r *http.Request) {
	var payload userPayload

	if !s.decodeJSON(w, r, &payload) {
		return
	}

	user, initialPassword, err := s.userService.CreateUser(r.Context(), payload.toRequest())

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusCreated, ApiResponse{
		Success: true,
		Data: map[string]interface{}{
			"user":            user,
			"initialPassword": initialPassword,
		},
	})
}

// getUserHandler returns one account
func (s *Server) getUserHandler(w http.ResponseWriter, r *http.Request) {
	user, err := s.userService.GetUser(r.Context(), mux.Vars(r)["id"])

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    user,
	})
}

// updateUserHandler edits name, email, role and status
func (s *Server) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	var payload userPayload

	if !s.decodeJSON(w, r, &payload) {
		return
	}

	user, err := s.userService.UpdateUser(r.Context(), mux.Vars(r)["id"], payload.toRequest())

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    user,
	})
}

// deleteUserHandler removes an account; the session owner cannot remove
// their own.
func (s *Server) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	actorID := ""
	if claims != nil {
		actorID = claims.Subject
	}

	if err := s.userService.DeleteUser(r.Context(), actorID, mux.Vars(r)["id"]); err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{Success: true})
}

type resetPasswordPayload struct {
	NewPassword string `json:"newPassword"`
}

// resetPasswordHandler stores a new password for the account. Used by the
// admin and by the forced first-login reset flow.
func (s *Server) resetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var payload resetPasswordPayload

	if !s.decodeJSON(w, r, &payload) {
		return
	}

	if err := s.authService.ResetPassword(r.Context(), mux.Vars(r)["id"], payload.NewPassword); err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{Success: true})
}
