package api

import (
	"net/http"
	"time"
)

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginHandler authenticates an admin or staff member and sets the session
// cookie. A first login returns the reset marker instead of a session.
func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload

	if !s.decodeJSON(w, r, &payload) {
		return
	}

	result, err := s.authService.Login(r.Context(), payload.Email, payload.Password)

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	if result.FirstLoginRequired {
		s.respondWithJSON(w, http.StatusOK, ApiResponse{
			Success: true,
			Data: map[string]interface{}{
				"firstLoginRequired": true,
				"userId":             result.UserID,
			},
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   s.config.Env == "production",
	})

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data: map[string]interface{}{
			"user":      result.User,
			"expiresAt": result.ExpiresAt,
		},
	})
}

// logoutHandler clears the session cookie
func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	s.respondWithJSON(w, http.StatusOK, ApiResponse{Success: true})
}

type firstLoginResetPayload struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	NewPassword string `json:"newPassword"`
}

// firstLoginResetHandler completes the forced first-login flow: the caller
// proves the initial credentials once more and supplies the replacement
// password, which also clears the first-login flag.
func (s *Server) firstLoginResetHandler(w http.ResponseWriter, r *http.Request) {
	var payload firstLoginResetPayload

	if !s.decodeJSON(w, r, &payload) {
		return
	}

	result, err := s.authService.Login(r.Context(), payload.Email, payload.Password)

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	if !result.FirstLoginRequired || result.UserID != payload.UserID {
		s.respondWithError(w, http.StatusForbidden, "password reset not required for this account")
		return
	}

	if err := s.authService.ResetPassword(r.Context(), result.UserID, payload.NewPassword); err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{Success: true})
}
