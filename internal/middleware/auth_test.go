package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mfrancke/seatly/internal/models"
)

type stubVerifier struct {
	user *models.User
	err  error
}

func (s *stubVerifier) Verify(ctx context.Context, token string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func TestRequireSession_ValidToken(t *testing.T) {
	verifier := &stubVerifier{user: &models.User{ID: "user-1", Role: models.RoleStaff}}

	var seen *models.User
	handler := RequireSession(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/reservations", nil)
	req.Header.Set("Authorization", "Bearer token_abc")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	if seen == nil || seen.ID != "user-1" {
		t.Errorf("user not placed on context: %+v", seen)
	}
}

func TestRequireSession_MissingToken(t *testing.T) {
	handler := RequireSession(&stubVerifier{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a token")
	}))

	req := httptest.NewRequest("GET", "/reservations", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", w.Code)
	}
}

func TestRequireSession_ExpiredSession(t *testing.T) {
	verifier := &stubVerifier{err: models.ErrSessionExpired}
	handler := RequireSession(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run with an expired session")
	}))

	req := httptest.NewRequest("GET", "/reservations", nil)
	req.Header.Set("Authorization", "Bearer stale_token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", w.Code)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		user     *models.User
		roles    []string
		expected int
	}{
		{"admin allowed", &models.User{ID: "u1", Role: models.RoleAdmin}, []string{models.RoleAdmin}, http.StatusOK},
		{"staff forbidden", &models.User{ID: "u2", Role: models.RoleStaff}, []string{models.RoleAdmin}, http.StatusForbidden},
		{"manager in allowed set", &models.User{ID: "u3", Role: models.RoleManager}, []string{models.RoleAdmin, models.RoleManager}, http.StatusOK},
		{"no user", nil, []string{models.RoleAdmin}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireRole(tt.roles...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("POST", "/admin/lockouts/clear", nil)
			if tt.user != nil {
				req = req.WithContext(WithUser(req.Context(), tt.user))
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.expected {
				t.Errorf("status: got %d, want %d", w.Code, tt.expected)
			}
		})
	}
}
