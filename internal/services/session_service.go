package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/mfrancke/seatly/internal/models"
)

// SessionRepository persists opaque session tokens.
type SessionRepository interface {
	Create(ctx context.Context, userID, token string, expiresAt time.Time) (*models.Session, error)
	UserForToken(ctx context.Context, token string) (*models.User, error)
	DeleteByToken(ctx context.Context, token string) error
}

// SessionService issues and validates opaque session tokens. Tokens are
// 32 random bytes hex-encoded; everything about a session lives server
// side.
type SessionService struct {
	repo   SessionRepository
	expiry time.Duration
	logger *slog.Logger
	now    func() time.Time
}

func NewSessionService(repo SessionRepository, expiry time.Duration, logger *slog.Logger) *SessionService {
	return &SessionService{
		repo:   repo,
		expiry: expiry,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the service clock. Test use only.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

// Issue mints a new session for the user.
func (s *SessionService) Issue(ctx context.Context, userID string) (*models.Session, error) {
	token, err := generateSessionToken()
	if err != nil {
		return nil, err
	}

	session, err := s.repo.Create(ctx, userID, token, s.now().Add(s.expiry))
	if err != nil {
		s.logger.Error("failed to store session", slog.String("user_id", userID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return session, nil
}

// Verify resolves a bearer token to its user, or ErrSessionExpired.
func (s *SessionService) Verify(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, models.ErrSessionExpired
	}
	return s.repo.UserForToken(ctx, token)
}

// Revoke deletes the session behind a token. Unknown tokens are a no-op.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return models.ErrBadRequest
	}
	return s.repo.DeleteByToken(ctx, token)
}

func generateSessionToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
