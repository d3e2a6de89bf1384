package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mfrancke/seatly/internal/middleware"
	"github.com/mfrancke/seatly/internal/models"
	"github.com/mfrancke/seatly/internal/services"
	pkghttp "github.com/mfrancke/seatly/pkg/http"
)

// AuthServiceInterface is the login gate consumed by the HTTP layer.
type AuthServiceInterface interface {
	Login(ctx context.Context, identifier, password string, meta models.AttemptMetadata) (*services.AuthOutcome, error)
	Status(ctx context.Context, identifier string) (models.LockoutDecision, error)
	AdminUnlock(ctx context.Context, identifier, adminUserID string) error
}

// UserServiceInterface handles registrations.
type UserServiceInterface interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
}

// SessionServiceInterface verifies and revokes sessions.
type SessionServiceInterface interface {
	Verify(ctx context.Context, token string) (*models.User, error)
	Revoke(ctx context.Context, token string) error
}

// AuthHandler handles authentication HTTP requests.
type AuthHandler struct {
	auth     AuthServiceInterface
	users    UserServiceInterface
	sessions SessionServiceInterface
	ipConfig *pkghttp.IPConfig
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth AuthServiceInterface, users UserServiceInterface, sessions SessionServiceInterface, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, sessions: sessions, ipConfig: ipConfig}
}

// Request/response DTOs

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type SignupRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name" validate:"required,max=50"`
	Role      string `json:"role" validate:"omitempty,oneof=admin manager staff"`
}

type LockoutStatusRequest struct {
	Identifier string `json:"identifier" validate:"required"`
}

type UnlockRequest struct {
	Identifier string `json:"identifier" validate:"required"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type LoginResponse struct {
	Message   string       `json:"message"`
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
}

// LockoutInfo is the wire form of a lockout decision, shaped for the
// frontend's countdown display.
type LockoutInfo struct {
	IsLocked          bool   `json:"is_locked"`
	Status            string `json:"status"`
	SecondsRemaining  int    `json:"seconds_remaining"`
	FailedAttempts    int    `json:"failed_attempts"`
	AttemptsRemaining int    `json:"attempts_remaining"`
}

type lockedResponse struct {
	Error       string      `json:"error"`
	Message     string      `json:"message"`
	LockoutInfo LockoutInfo `json:"lockout_info"`
}

type deniedResponse struct {
	Error       string      `json:"error"`
	Message     string      `json:"message"`
	LockoutInfo LockoutInfo `json:"lockout_info"`
}

func decisionToInfo(d models.LockoutDecision) LockoutInfo {
	status := "NONE"
	switch {
	case d.IsLocked:
		status = "LOCKED"
	case d.FailedAttempts > 0:
		status = "WARNING"
	}
	return LockoutInfo{
		IsLocked:          d.IsLocked,
		Status:            status,
		SecondsRemaining:  d.SecondsRemaining,
		FailedAttempts:    d.FailedAttempts,
		AttemptsRemaining: d.AttemptsRemaining,
	}
}

func userToResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	meta := models.AttemptMetadata{
		IPAddress: pkghttp.ExtractClientIP(r, h.ipConfig),
		UserAgent: r.Header.Get("User-Agent"),
	}

	outcome, err := h.auth.Login(r.Context(), req.Username, req.Password, meta)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Username and password are required")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	switch outcome.Kind {
	case services.OutcomeAuthenticated:
		pkghttp.WriteJSON(w, http.StatusOK, LoginResponse{
			Message:   "Login successful",
			User:      userToResponse(outcome.User),
			Token:     outcome.Session.Token,
			ExpiresAt: outcome.Session.ExpiresAt.Format(time.RFC3339),
		})

	case services.OutcomeLocked, services.OutcomeJustLocked:
		info := decisionToInfo(outcome.Decision)
		pkghttp.WriteJSON(w, http.StatusTooManyRequests, lockedResponse{
			Error:       "account_locked",
			Message:     fmt.Sprintf("Account is locked. Try again in %d seconds.", info.SecondsRemaining),
			LockoutInfo: info,
		})

	default: // OutcomeDenied
		info := decisionToInfo(outcome.Decision)
		pkghttp.WriteJSON(w, http.StatusUnauthorized, deniedResponse{
			Error:       "unauthorized",
			Message:     "Invalid credentials",
			LockoutInfo: info,
		})
	}
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.users.Register(r.Context(), services.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "Username or email already exists")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "All fields are required")
		case errors.Is(err, models.ErrInternalServer):
			pkghttp.WriteInternalError(w, "Internal server error")
		default:
			// Password policy failures carry their own message
			pkghttp.WriteBadRequest(w, err.Error())
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user_id": user.ID,
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := pkghttp.BearerToken(r)
	if token == "" {
		pkghttp.WriteBadRequest(w, "Token required")
		return
	}

	if err := h.sessions.Revoke(r.Context(), token); err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Verify handles GET /auth/verify.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := pkghttp.BearerToken(r)
	if token == "" {
		pkghttp.WriteUnauthorized(w, "Token required")
		return
	}

	user, err := h.sessions.Verify(r.Context(), token)
	if err != nil {
		pkghttp.WriteJSON(w, http.StatusUnauthorized, map[string]any{
			"valid":   false,
			"message": "Invalid or expired session",
		})
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{
		"valid": true,
		"user":  userToResponse(user),
	})
}

// LockoutStatus handles POST /auth/lockout-status. It reports the
// current decision for an identifier without counting as an attempt.
func (h *AuthHandler) LockoutStatus(w http.ResponseWriter, r *http.Request) {
	var req LockoutStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	decision, err := h.auth.Status(r.Context(), req.Identifier)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Identifier is required")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{
		"message":      "Lockout status",
		"lockout_info": decisionToInfo(decision),
	})
}

// Unlock handles POST /admin/lockouts/clear. Admin only; routing
// enforces the role.
func (h *AuthHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	var req UnlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	admin := middleware.UserFromContext(r.Context())
	adminID := ""
	if admin != nil {
		adminID = admin.ID
	}

	if err := h.auth.AdminUnlock(r.Context(), req.Identifier, adminID); err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Identifier is required")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Lockout cleared"})
}
