package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/teamboard/internal/api/shared"
	"github.com/phrazzld/teamboard/internal/platform/logger"
	"github.com/phrazzld/teamboard/internal/service"
)

// AuthHandler handles sign-in and password endpoints.
type AuthHandler struct {
	auth   service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("logger cannot be nil for AuthHandler")
	}
	return &AuthHandler{
		auth:   authService,
		logger: logger.With(slog.String("component", "auth_handler")),
	}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	res, err := h.auth.Login(r.Context(), req.EmployeeID, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to sign in")
		return
	}

	resp := LoginResponse{
		AccessToken:  res.Session.Token,
		TokenType:    res.TokenType,
		IsFirstLogin: res.FirstLogin,
		User:         res.Session.Actor,
	}
	if !res.Session.ExpiresAt.IsZero() {
		resp.ExpiresAt = res.Session.ExpiresAt.UTC().Format(time.RFC3339)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so this only
// drops the caller's cached board.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	h.auth.Logout(r.Context(), s)
	shared.RespondNoContent(w)
}

// ChangePassword handles POST /api/auth/change-password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.auth.ChangePassword(r.Context(), s, req.CurrentPassword, req.NewPassword); err != nil {
		HandleAPIError(w, r, err, "Failed to change password")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Password changed"})
}

// ForgotPassword handles POST /api/auth/forgot-password.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	token, err := h.auth.ForgotPassword(r.Context(), req.EmployeeID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start password reset")
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Info("password reset token issued")
	shared.RespondWithJSON(w, r, http.StatusOK, ForgotPasswordResponse{
		ResetToken: token,
		Message:    "Use the reset token to choose a new password",
	})
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		HandleAPIError(w, r, err, "Failed to reset password")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Password reset"})
}
