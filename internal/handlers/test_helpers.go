package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/mfrancke/seatly/internal/models"
	"github.com/mfrancke/seatly/internal/services"
	pkghttp "github.com/mfrancke/seatly/pkg/http"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// WithChiRouteContext adds chi URL parameters to request context for testing
func WithChiRouteContext(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc       func(ctx context.Context, identifier, password string, meta models.AttemptMetadata) (*services.AuthOutcome, error)
	StatusFunc      func(ctx context.Context, identifier string) (models.LockoutDecision, error)
	AdminUnlockFunc func(ctx context.Context, identifier, adminUserID string) error
}

func (m *MockAuthService) Login(ctx context.Context, identifier, password string, meta models.AttemptMetadata) (*services.AuthOutcome, error) {
	if m.LoginFunc == nil {
		return &services.AuthOutcome{Kind: services.OutcomeDenied}, nil
	}
	return m.LoginFunc(ctx, identifier, password, meta)
}

func (m *MockAuthService) Status(ctx context.Context, identifier string) (models.LockoutDecision, error) {
	if m.StatusFunc == nil {
		return models.LockoutDecision{}, nil
	}
	return m.StatusFunc(ctx, identifier)
}

func (m *MockAuthService) AdminUnlock(ctx context.Context, identifier, adminUserID string) error {
	if m.AdminUnlockFunc == nil {
		return nil
	}
	return m.AdminUnlockFunc(ctx, identifier, adminUserID)
}

// MockUserService implements UserServiceInterface for testing
type MockUserService struct {
	RegisterFunc func(ctx context.Context, in services.RegisterInput) (*models.User, error)
}

func (m *MockUserService) Register(ctx context.Context, in services.RegisterInput) (*models.User, error) {
	if m.RegisterFunc == nil {
		return nil, models.ErrConflict
	}
	return m.RegisterFunc(ctx, in)
}

// MockSessionService implements SessionServiceInterface for testing
type MockSessionService struct {
	VerifyFunc func(ctx context.Context, token string) (*models.User, error)
	RevokeFunc func(ctx context.Context, token string) error
}

func (m *MockSessionService) Verify(ctx context.Context, token string) (*models.User, error) {
	if m.VerifyFunc == nil {
		return nil, models.ErrSessionExpired
	}
	return m.VerifyFunc(ctx, token)
}

func (m *MockSessionService) Revoke(ctx context.Context, token string) error {
	if m.RevokeFunc == nil {
		return nil
	}
	return m.RevokeFunc(ctx, token)
}

// MockReservationService implements ReservationServiceInterface for testing
type MockReservationService struct {
	ListFunc   func(ctx context.Context, status string) ([]*models.Reservation, error)
	GetFunc    func(ctx context.Context, id string) (*models.Reservation, error)
	CreateFunc func(ctx context.Context, res *models.Reservation) (*models.Reservation, error)
	UpdateFunc func(ctx context.Context, id string, res *models.Reservation) (*models.Reservation, error)
	DeleteFunc func(ctx context.Context, id string) error
}

func (m *MockReservationService) List(ctx context.Context, status string) ([]*models.Reservation, error) {
	if m.ListFunc == nil {
		return []*models.Reservation{}, nil
	}
	return m.ListFunc(ctx, status)
}

func (m *MockReservationService) Get(ctx context.Context, id string) (*models.Reservation, error) {
	if m.GetFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetFunc(ctx, id)
}

func (m *MockReservationService) Create(ctx context.Context, res *models.Reservation) (*models.Reservation, error) {
	if m.CreateFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.CreateFunc(ctx, res)
}

func (m *MockReservationService) Update(ctx context.Context, id string, res *models.Reservation) (*models.Reservation, error) {
	if m.UpdateFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateFunc(ctx, id, res)
}

func (m *MockReservationService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, id)
}
