package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/file-vault/internal/apperror"
	"github.com/sakif/file-vault/internal/auth"
	"github.com/sakif/file-vault/internal/model"
	"github.com/sakif/file-vault/internal/service"
)

// AuthHandler exposes sign-up, sign-in and account settings.
//
// HANDLER RESPONSIBILITIES:
//   - HandleSignup / HandleLogin / HandleLogout → manage the session
//   - HandleMe                                  → who is signed in, and where they land
//   - HandleUpdateProfile / HandleChangePassword → settings forms
//   - HandleForgotPassword                      → account lookup for a reset
//
// Routes that act on the signed-in user sit behind auth.RequireSession, so
// currentUser always finds a user in the request context.
type AuthHandler struct {
	auth   *service.AuthService
	policy auth.Policy
	logger *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, policy auth.Policy, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   authService,
		policy: policy,
		logger: logger,
	}
}

// SessionResponse is returned by signup, login and me.
type SessionResponse struct {
	User        *model.User `json:"user"`
	IsAdmin     bool        `json:"isAdmin"`
	LandingPath string      `json:"landingPath"`
}

func (h *AuthHandler) session(user *model.User) SessionResponse {
	return SessionResponse{
		User:        user,
		IsAdmin:     h.policy.IsAdmin(user),
		LandingPath: h.policy.LandingPath(user),
	}
}

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleSignup creates an account and signs it in.
//
// HTTP: POST /api/auth/signup
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.auth.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.session(user))
}

// HandleLogin signs in with email and password.
//
// HTTP: POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.session(user))
}

// HandleLogout clears the session. It succeeds even when nobody is signed in.
//
// HTTP: POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		h.logger.Error("logout failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the signed-in user.
//
// HTTP: GET /api/auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.session(user))
}

type profileRequest struct {
	Name           string `json:"name"`
	ProfilePicture string `json:"profilePicture"`
}

// HandleUpdateProfile changes the signed-in user's name and picture.
//
// HTTP: PUT /api/auth/profile
func (h *AuthHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.auth.UpdateProfile(r.Context(), user.ID, req.Name, req.ProfilePicture)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleChangePassword replaces the signed-in user's password.
//
// HTTP: PUT /api/auth/password
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req service.PasswordChange
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.auth.ChangePassword(r.Context(), user.ID, req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// HandleForgotPassword confirms an account exists for the given email.
//
// HTTP: POST /api/auth/forgot-password
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password reset instructions sent"})
}

// currentUser reads the user placed in the context by auth.LoadSession and
// answers 401 itself when there is none.
func currentUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("sign in required"))
		return nil, false
	}
	return user, true
}
