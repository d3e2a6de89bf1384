package services_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfrancke/seatly/internal/models"
	"github.com/mfrancke/seatly/internal/services"
)

// MockSessionRepository implements SessionRepository in memory.
type MockSessionRepository struct {
	sessions map[string]*models.Session
	users    map[string]*models.User
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		sessions: make(map[string]*models.Session),
		users:    make(map[string]*models.User),
	}
}

func (m *MockSessionRepository) Create(ctx context.Context, userID, token string, expiresAt time.Time) (*models.Session, error) {
	session := &models.Session{ID: "sess-" + token[:8], UserID: userID, Token: token, ExpiresAt: expiresAt}
	m.sessions[token] = session
	return session, nil
}

func (m *MockSessionRepository) UserForToken(ctx context.Context, token string) (*models.User, error) {
	session, ok := m.sessions[token]
	if !ok {
		return nil, models.ErrSessionExpired
	}
	user, ok := m.users[session.UserID]
	if !ok {
		return nil, models.ErrSessionExpired
	}
	return user, nil
}

func (m *MockSessionRepository) DeleteByToken(ctx context.Context, token string) error {
	delete(m.sessions, token)
	return nil
}

func newSessionService(repo *MockSessionRepository) *services.SessionService {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return services.NewSessionService(repo, 24*time.Hour, logger)
}

func TestSessionServiceIssue(t *testing.T) {
	repo := NewMockSessionRepository()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service := newSessionService(repo).WithClock(func() time.Time { return base })

	session, err := service.Issue(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Len(t, session.Token, 64, "token is 32 random bytes hex encoded")
	assert.Equal(t, base.Add(24*time.Hour), session.ExpiresAt)
	assert.Equal(t, "user-1", session.UserID)
}

func TestSessionServiceIssue_TokensAreUnique(t *testing.T) {
	repo := NewMockSessionRepository()
	service := newSessionService(repo)

	first, err := service.Issue(context.Background(), "user-1")
	require.NoError(t, err)
	second, err := service.Issue(context.Background(), "user-1")
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
}

func TestSessionServiceVerify(t *testing.T) {
	repo := NewMockSessionRepository()
	repo.users["user-1"] = &models.User{ID: "user-1", Username: "alice"}
	service := newSessionService(repo)

	session, err := service.Issue(context.Background(), "user-1")
	require.NoError(t, err)

	user, err := service.Verify(context.Background(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = service.Verify(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrSessionExpired)

	_, err = service.Verify(context.Background(), "nosuchtoken")
	assert.ErrorIs(t, err, models.ErrSessionExpired)
}

func TestSessionServiceRevoke(t *testing.T) {
	repo := NewMockSessionRepository()
	repo.users["user-1"] = &models.User{ID: "user-1"}
	service := newSessionService(repo)

	session, err := service.Issue(context.Background(), "user-1")
	require.NoError(t, err)

	require.NoError(t, service.Revoke(context.Background(), session.Token))

	_, err = service.Verify(context.Background(), session.Token)
	assert.ErrorIs(t, err, models.ErrSessionExpired)

	assert.ErrorIs(t, service.Revoke(context.Background(), ""), models.ErrBadRequest)
}
