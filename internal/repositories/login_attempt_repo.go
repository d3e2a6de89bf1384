package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mfrancke/seatly/internal/database"
	"github.com/mfrancke/seatly/internal/models"
)

// LoginAttemptRepository is the sole writer of failed_login_attempts.
// Rows are append-only; cleanup happens through the prune paths.
type LoginAttemptRepository struct {
	db  *database.DB
	now func() time.Time
}

// NewLoginAttemptRepository creates a new LoginAttemptRepository.
func NewLoginAttemptRepository(db *database.DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db, now: time.Now}
}

// WithClock overrides the repository clock. Test use only.
func (r *LoginAttemptRepository) WithClock(now func() time.Time) *LoginAttemptRepository {
	r.now = now
	return r
}

// RecordFailure appends a failed attempt for the identifier. Rapid
// duplicates are legitimate distinct events, so there is no dedup.
func (r *LoginAttemptRepository) RecordFailure(ctx context.Context, identifier string, meta models.AttemptMetadata) error {
	query := `
		INSERT INTO failed_login_attempts (id, identifier, occurred_at, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		uuid.New().String(),
		identifier,
		r.now(),
		meta.IPAddress,
		meta.UserAgent,
	)

	return database.MapPostgresError(err)
}

// CountRecent counts attempts for the identifier inside the sliding window.
func (r *LoginAttemptRepository) CountRecent(ctx context.Context, identifier string, window time.Duration) (int, error) {
	query := `
		SELECT COUNT(*) FROM failed_login_attempts
		WHERE identifier = $1 AND occurred_at >= $2
	`

	var count int
	err := r.db.Pool.QueryRow(ctx, query, identifier, r.now().Add(-window)).Scan(&count)
	return count, database.MapPostgresError(err)
}

// PruneOlderThan deletes the identifier's attempts that fell out of the
// window. Called opportunistically, never on the hot read path.
func (r *LoginAttemptRepository) PruneOlderThan(ctx context.Context, identifier string, window time.Duration) error {
	query := `
		DELETE FROM failed_login_attempts
		WHERE identifier = $1 AND occurred_at < $2
	`

	_, err := r.db.Pool.Exec(ctx, query, identifier, r.now().Add(-window))
	return database.MapPostgresError(err)
}

// DeleteExpired removes all attempts older than the retention period,
// regardless of identifier. Maintenance path only.
func (r *LoginAttemptRepository) DeleteExpired(ctx context.Context, retention time.Duration) (int64, error) {
	query := `DELETE FROM failed_login_attempts WHERE occurred_at < $1`

	tag, err := r.db.Pool.Exec(ctx, query, r.now().Add(-retention))
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return tag.RowsAffected(), nil
}

// deleteAttemptsInTx purges every attempt for an identifier as part of a
// lockout transaction. Lives here so all failed_login_attempts SQL stays
// in one file even though LockoutRepository drives the transaction.
func deleteAttemptsInTx(ctx context.Context, tx pgx.Tx, identifier string) error {
	_, err := tx.Exec(ctx, `DELETE FROM failed_login_attempts WHERE identifier = $1`, identifier)
	return err
}
