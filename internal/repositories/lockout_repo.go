package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mfrancke/seatly/internal/database"
	"github.com/mfrancke/seatly/internal/models"
)

// LockoutRepository is the sole writer of account_lockouts and enforces
// the invariant that an identifier has at most one active lockout. The
// invariant is backed by the partial unique index
// uq_account_lockouts_active, not by call ordering.
type LockoutRepository struct {
	db  *database.DB
	now func() time.Time
}

// NewLockoutRepository creates a new LockoutRepository.
func NewLockoutRepository(db *database.DB) *LockoutRepository {
	return &LockoutRepository{db: db, now: time.Now}
}

// WithClock overrides the repository clock. Test use only.
func (r *LockoutRepository) WithClock(now func() time.Time) *LockoutRepository {
	r.now = now
	return r
}

const lockoutColumns = `id, identifier, created_at, locked_until, failed_attempts, is_active, closed_at, closed_reason`

func scanLockout(row pgx.Row) (*models.Lockout, error) {
	var l models.Lockout
	err := row.Scan(
		&l.ID, &l.Identifier, &l.CreatedAt, &l.LockedUntil,
		&l.FailedAttempts, &l.IsActive, &l.ClosedAt, &l.ClosedReason,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ActiveLockout returns the identifier's active, unexpired lockout, or
// nil when there is none. Expired-but-still-active rows are reconciled
// first: the row is closed as auto-expired and the identifier's attempt
// log is purged, all in one transaction so a concurrent caller never
// observes the half-cleaned state.
func (r *LockoutRepository) ActiveLockout(ctx context.Context, identifier string) (*models.Lockout, error) {
	now := r.now()
	var active *models.Lockout

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		closeQuery := `
			UPDATE account_lockouts
			SET is_active = FALSE, closed_at = $2, closed_reason = $3
			WHERE identifier = $1 AND is_active AND locked_until <= $2
		`
		tag, err := tx.Exec(ctx, closeQuery, identifier, now, models.LockoutClosedExpired)
		if err != nil {
			return err
		}

		// A lockout just ran out: the failed attempts that caused it are
		// spent, so the identifier starts from a clean slate.
		if tag.RowsAffected() > 0 {
			if err := deleteAttemptsInTx(ctx, tx, identifier); err != nil {
				return err
			}
		}

		selectQuery := `
			SELECT ` + lockoutColumns + `
			FROM account_lockouts
			WHERE identifier = $1 AND is_active AND locked_until > $2
			ORDER BY created_at DESC
			LIMIT 1
		`
		lockout, err := scanLockout(tx.QueryRow(ctx, selectQuery, identifier, now))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		active = lockout
		return nil
	})
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return active, nil
}

// CreateLockout closes any active lockout for the identifier (reason
// replaced) and opens a new one, atomically. If a concurrent caller wins
// the insert race, the partial unique index rejects ours and the winner's
// lockout is returned instead, so retries never produce a second active
// row.
func (r *LockoutRepository) CreateLockout(ctx context.Context, identifier string, duration time.Duration, failedCount int) (*models.Lockout, error) {
	now := r.now()
	created := &models.Lockout{
		ID:             uuid.New().String(),
		Identifier:     identifier,
		CreatedAt:      now,
		LockedUntil:    now.Add(duration),
		FailedAttempts: failedCount,
		IsActive:       true,
	}

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		closeQuery := `
			UPDATE account_lockouts
			SET is_active = FALSE, closed_at = $2, closed_reason = $3
			WHERE identifier = $1 AND is_active
		`
		if _, err := tx.Exec(ctx, closeQuery, identifier, now, models.LockoutClosedReplaced); err != nil {
			return err
		}

		insertQuery := `
			INSERT INTO account_lockouts (id, identifier, created_at, locked_until, failed_attempts, is_active)
			VALUES ($1, $2, $3, $4, $5, TRUE)
		`
		_, err := tx.Exec(ctx, insertQuery,
			created.ID, created.Identifier, created.CreatedAt,
			created.LockedUntil, created.FailedAttempts,
		)
		return err
	})

	if err != nil {
		if database.IsUniqueViolation(err, "uq_account_lockouts_active") {
			// Lost the race to a concurrent failing login. The winner's
			// lockout covers this identifier; hand it back.
			if winner, lookupErr := r.ActiveLockout(ctx, identifier); lookupErr == nil && winner != nil {
				return winner, nil
			}
		}
		return nil, database.MapPostgresError(err)
	}

	return created, nil
}

// ClearAll closes every active lockout for the identifier with the given
// reason and purges its attempt log. Calling it twice leaves the same
// state as calling it once.
func (r *LockoutRepository) ClearAll(ctx context.Context, identifier, reason string) error {
	now := r.now()

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		closeQuery := `
			UPDATE account_lockouts
			SET is_active = FALSE, closed_at = $2, closed_reason = $3
			WHERE identifier = $1 AND is_active
		`
		if _, err := tx.Exec(ctx, closeQuery, identifier, now, reason); err != nil {
			return err
		}

		return deleteAttemptsInTx(ctx, tx, identifier)
	})

	return database.MapPostgresError(err)
}

// CloseExpired closes every active lockout past its expiry, across all
// identifiers. Maintenance path; the hot path reconciles per identifier
// in ActiveLockout.
func (r *LockoutRepository) CloseExpired(ctx context.Context) (int64, error) {
	query := `
		UPDATE account_lockouts
		SET is_active = FALSE, closed_at = $1, closed_reason = $2
		WHERE is_active AND locked_until <= $1
	`

	tag, err := r.db.Pool.Exec(ctx, query, r.now(), models.LockoutClosedExpired)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return tag.RowsAffected(), nil
}
