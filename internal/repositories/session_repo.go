package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mfrancke/seatly/internal/database"
	"github.com/mfrancke/seatly/internal/models"
)

// SessionRepository stores opaque session tokens keyed by user id.
type SessionRepository struct {
	db  *database.DB
	now func() time.Time
}

func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{db: db, now: time.Now}
}

// WithClock overrides the repository clock. Test use only.
func (r *SessionRepository) WithClock(now func() time.Time) *SessionRepository {
	r.now = now
	return r
}

func (r *SessionRepository) Create(ctx context.Context, userID, token string, expiresAt time.Time) (*models.Session, error) {
	session := &models.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: r.now(),
	}

	query := `
		INSERT INTO user_sessions (id, user_id, session_token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		session.ID, session.UserID, session.Token, session.ExpiresAt, session.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return session, nil
}

// UserForToken resolves a valid session token to its active user.
// Expired or unknown tokens come back as ErrSessionExpired so callers
// cannot distinguish the two cases.
func (r *SessionRepository) UserForToken(ctx context.Context, token string) (*models.User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.password_hash, u.first_name, u.last_name,
		       u.role, u.is_active, u.last_login, u.created_at, u.updated_at
		FROM users u
		JOIN user_sessions s ON u.id = s.user_id
		WHERE s.session_token = $1 AND s.expires_at > $2 AND u.is_active
	`

	user, err := scanUser(r.db.Pool.QueryRow(ctx, query, token, r.now()))
	if err != nil {
		if err == models.ErrNotFound {
			return nil, models.ErrSessionExpired
		}
		return nil, err
	}

	return user, nil
}

// DeleteByToken removes a session on logout. Deleting an unknown token
// is not an error.
func (r *SessionRepository) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM user_sessions WHERE session_token = $1`, token)
	return database.MapPostgresError(err)
}

// DeleteExpired removes sessions past their expiry. Maintenance path.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM user_sessions WHERE expires_at <= $1`, r.now())
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return tag.RowsAffected(), nil
}
