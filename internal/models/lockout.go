package models

import "time"

// Reasons a lockout stops being active.
const (
	LockoutClosedExpired       = "auto-expired"
	LockoutClosedReplaced      = "replaced"
	LockoutClosedLoginSuccess  = "manual-success"
	LockoutClosedAdmin         = "manual-admin"
)

// Lockout is a timed block on an identifier after too many failed logins.
// At most one lockout per identifier may have IsActive=true; the
// account_lockouts table enforces this with a partial unique index.
type Lockout struct {
	ID             string
	Identifier     string
	CreatedAt      time.Time
	LockedUntil    time.Time
	FailedAttempts int
	IsActive       bool
	ClosedAt       *time.Time
	ClosedReason   *string
}

// ExpiredAt reports whether the lockout window has elapsed at the given time.
func (l *Lockout) ExpiredAt(now time.Time) bool {
	return !l.LockedUntil.After(now)
}

// FailedAttempt is an append-only record of one failed credential check.
type FailedAttempt struct {
	ID         string
	Identifier string
	OccurredAt time.Time
	IPAddress  string
	UserAgent  string
}

// AttemptMetadata carries request-level context for a failed attempt.
type AttemptMetadata struct {
	IPAddress string
	UserAgent string
}

// LockoutDecision is the policy output for a single check. It is computed
// fresh from storage on every request and never cached.
type LockoutDecision struct {
	IsLocked          bool
	SecondsRemaining  int
	FailedAttempts    int
	AttemptsRemaining int
}
