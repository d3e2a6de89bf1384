package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mfrancke/seatly/internal/models"
	pkgauth "github.com/mfrancke/seatly/pkg/auth"
	pkglogger "github.com/mfrancke/seatly/pkg/logger"
)

// AttemptLog records and counts failed logins per identifier.
type AttemptLog interface {
	RecordFailure(ctx context.Context, identifier string, meta models.AttemptMetadata) error
	CountRecent(ctx context.Context, identifier string, window time.Duration) (int, error)
	PruneOlderThan(ctx context.Context, identifier string, window time.Duration) error
}

// LockoutStore persists lockout periods and owns the one-active-per-
// identifier invariant.
type LockoutStore interface {
	ActiveLockout(ctx context.Context, identifier string) (*models.Lockout, error)
	CreateLockout(ctx context.Context, identifier string, duration time.Duration, failedCount int) (*models.Lockout, error)
	ClearAll(ctx context.Context, identifier, reason string) error
}

// CredentialStore resolves login identifiers to user records.
type CredentialStore interface {
	GetByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id string) error
}

// SessionIssuer mints opaque session tokens. The auth gate only consumes
// it; session storage is not its concern.
type SessionIssuer interface {
	Issue(ctx context.Context, userID string) (*models.Session, error)
}

// OutcomeKind tags the terminal state of one login attempt.
type OutcomeKind int

const (
	// OutcomeAuthenticated means credentials checked out and a session
	// was issued.
	OutcomeAuthenticated OutcomeKind = iota
	// OutcomeDenied means the credentials were wrong but the identifier
	// is still allowed further attempts.
	OutcomeDenied
	// OutcomeLocked means an existing lockout rejected the attempt before
	// credentials were even checked.
	OutcomeLocked
	// OutcomeJustLocked means this very attempt crossed the threshold and
	// created the lockout.
	OutcomeJustLocked
)

// AuthOutcome is the result of one login attempt. Kind decides which
// fields are meaningful: User and Session for Authenticated, Decision for
// everything else.
type AuthOutcome struct {
	Kind     OutcomeKind
	User     *models.User
	Session  *models.Session
	Decision models.LockoutDecision
}

// AuthService is the login gate. It orders every attempt through
// check-lock, verify-credentials, and (on failure) record-and-re-evaluate,
// and guarantees locked identifiers never reach the credential check.
type AuthService struct {
	users       CredentialStore
	attempts    AttemptLog
	lockouts    LockoutStore
	sessions    SessionIssuer
	policy      *LockoutPolicy
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	now         func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	users CredentialStore,
	attempts AttemptLog,
	lockouts LockoutStore,
	sessions SessionIssuer,
	policy *LockoutPolicy,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AuthService {
	return &AuthService{
		users:       users,
		attempts:    attempts,
		lockouts:    lockouts,
		sessions:    sessions,
		policy:      policy,
		logger:      logger,
		auditLogger: auditLogger,
		now:         time.Now,
	}
}

// WithClock overrides the service clock. Test use only.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// NormalizeIdentifier canonicalizes a login identifier before it touches
// any attempt or lockout row. Usernames and emails are matched
// case-insensitively; without one canonical form, "Alice" and "alice"
// would accumulate attempts in separate buckets.
func NormalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

// Login runs one full login attempt and returns its terminal outcome.
// Storage failures while reading lockout state fail open: the identifier
// is treated as not locked and the credential check proceeds. That keeps
// legitimate users out of infra-outage lockouts at the cost of weakened
// brute-force protection while storage is down; outages never escalate
// into new lockouts either.
func (s *AuthService) Login(ctx context.Context, identifier, password string, meta models.AttemptMetadata) (*AuthOutcome, error) {
	identifier = NormalizeIdentifier(identifier)
	if identifier == "" || password == "" {
		return nil, models.ErrBadRequest
	}

	now := s.now()

	// CHECK_LOCK. A locked identifier is rejected before credentials are
	// verified and its attempt is not recorded.
	active, err := s.lockouts.ActiveLockout(ctx, identifier)
	if err != nil {
		s.logger.Error("lockout check failed, proceeding unlocked", slog.Any("error", err))
		active = nil
	}
	if active != nil {
		decision := s.policy.Evaluate(active, active.FailedAttempts, now)
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_rejected",
			IPAddress:     meta.IPAddress,
			UserAgent:     meta.UserAgent,
			FailureReason: "account_locked",
			Success:       false,
		})
		return &AuthOutcome{Kind: OutcomeLocked, Decision: decision}, nil
	}

	// VERIFY_CREDENTIALS.
	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to look up user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if user != nil && pkgauth.ComparePassword(user.PasswordHash, password) == nil {
		return s.succeed(ctx, identifier, user, meta)
	}

	return s.fail(ctx, identifier, meta)
}

// succeed clears the identifier's lockout state and issues a session.
func (s *AuthService) succeed(ctx context.Context, identifier string, user *models.User, meta models.AttemptMetadata) (*AuthOutcome, error) {
	if err := s.lockouts.ClearAll(ctx, identifier, models.LockoutClosedLoginSuccess); err != nil {
		s.logger.Error("failed to clear lockout state after login", slog.Any("error", err))
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Error("failed to update last login", slog.String("user_id", user.ID), slog.Any("error", err))
	}

	session, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		s.logger.Error("failed to issue session", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		UserID:    user.ID,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Success:   true,
	})

	cfg := s.policy.Config()
	return &AuthOutcome{
		Kind:    OutcomeAuthenticated,
		User:    user,
		Session: session,
		Decision: models.LockoutDecision{
			AttemptsRemaining: cfg.MaxFailedAttempts,
		},
	}, nil
}

// fail records the attempt, re-evaluates the policy with the fresh
// count, and creates a lockout if this attempt crossed the threshold.
func (s *AuthService) fail(ctx context.Context, identifier string, meta models.AttemptMetadata) (*AuthOutcome, error) {
	cfg := s.policy.Config()
	now := s.now()

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     "login_failed",
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
		FailureReason: "invalid_credentials",
		Success:       false,
	})

	if err := s.attempts.RecordFailure(ctx, identifier, meta); err != nil {
		s.logger.Error("failed to record login attempt", slog.Any("error", err))
	}

	count, err := s.attempts.CountRecent(ctx, identifier, cfg.AttemptWindow)
	if err != nil {
		// Degraded read: report not-locked with a full allowance rather
		// than guessing at the count.
		s.logger.Error("failed to count recent attempts", slog.Any("error", err))
		return &AuthOutcome{
			Kind:     OutcomeDenied,
			Decision: models.LockoutDecision{AttemptsRemaining: cfg.MaxFailedAttempts},
		}, nil
	}

	if s.policy.MustLock(nil, count, now) {
		lockout, err := s.lockouts.CreateLockout(ctx, identifier, cfg.LockoutDuration, count)
		if err != nil {
			s.logger.Error("failed to create lockout", slog.Any("error", err))
			return &AuthOutcome{
				Kind:     OutcomeDenied,
				Decision: models.LockoutDecision{FailedAttempts: count},
			}, nil
		}

		s.logger.Warn("account locked after repeated failures",
			slog.Int("failed_attempts", count),
			slog.Duration("lockout_duration", cfg.LockoutDuration))
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "account_locked",
			IPAddress:     meta.IPAddress,
			UserAgent:     meta.UserAgent,
			FailureReason: "too_many_attempts",
			Success:       false,
		})

		return &AuthOutcome{
			Kind:     OutcomeJustLocked,
			Decision: s.policy.Evaluate(lockout, count, now),
		}, nil
	}

	return &AuthOutcome{
		Kind:     OutcomeDenied,
		Decision: s.policy.Evaluate(nil, count, now),
	}, nil
}

// Status answers the lockout-status query for an identifier without
// counting as an attempt. Storage errors report not-locked, same as the
// login path.
func (s *AuthService) Status(ctx context.Context, identifier string) (models.LockoutDecision, error) {
	identifier = NormalizeIdentifier(identifier)
	if identifier == "" {
		return models.LockoutDecision{}, models.ErrBadRequest
	}

	cfg := s.policy.Config()
	now := s.now()

	active, err := s.lockouts.ActiveLockout(ctx, identifier)
	if err != nil {
		s.logger.Error("lockout status read failed, reporting unlocked", slog.Any("error", err))
		return models.LockoutDecision{AttemptsRemaining: cfg.MaxFailedAttempts}, nil
	}
	if active != nil {
		return s.policy.Evaluate(active, active.FailedAttempts, now), nil
	}

	count, err := s.attempts.CountRecent(ctx, identifier, cfg.AttemptWindow)
	if err != nil {
		s.logger.Error("attempt count read failed, reporting unlocked", slog.Any("error", err))
		return models.LockoutDecision{AttemptsRemaining: cfg.MaxFailedAttempts}, nil
	}

	return s.policy.Evaluate(nil, count, now), nil
}

// AdminUnlock clears all lockout state for an identifier on behalf of an
// administrator.
func (s *AuthService) AdminUnlock(ctx context.Context, identifier, adminUserID string) error {
	identifier = NormalizeIdentifier(identifier)
	if identifier == "" {
		return models.ErrBadRequest
	}

	if err := s.lockouts.ClearAll(ctx, identifier, models.LockoutClosedAdmin); err != nil {
		s.logger.Error("admin unlock failed", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction("lockout_cleared", adminUserID, "", map[string]string{
		"identifier": identifier,
	})
	return nil
}
