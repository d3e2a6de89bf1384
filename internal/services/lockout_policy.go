package services

import (
	"math"
	"time"

	"github.com/mfrancke/seatly/internal/models"
)

// LockoutConfig holds the lockout thresholds. Values are fixed at
// construction; nothing reads them from package state.
type LockoutConfig struct {
	MaxFailedAttempts int
	LockoutDuration   time.Duration
	AttemptWindow     time.Duration
}

// LockoutPolicy is the pure decision rule for the login gate. It never
// touches storage; callers feed it the freshest reads and it answers
// whether the identifier is allowed, warned, or locked.
type LockoutPolicy struct {
	cfg LockoutConfig
}

// NewLockoutPolicy creates a new LockoutPolicy.
func NewLockoutPolicy(cfg LockoutConfig) *LockoutPolicy {
	return &LockoutPolicy{cfg: cfg}
}

// Config returns the policy constants.
func (p *LockoutPolicy) Config() LockoutConfig {
	return p.cfg
}

// Evaluate computes the decision for one check. Decisions are computed
// fresh per request and must never be cached across requests.
func (p *LockoutPolicy) Evaluate(active *models.Lockout, recentFailed int, now time.Time) models.LockoutDecision {
	if active != nil && !active.ExpiredAt(now) {
		return models.LockoutDecision{
			IsLocked:          true,
			SecondsRemaining:  secondsUntil(active.LockedUntil, now),
			FailedAttempts:    active.FailedAttempts,
			AttemptsRemaining: 0,
		}
	}

	if recentFailed >= p.cfg.MaxFailedAttempts {
		// Threshold reached but no lockout row exists yet. The caller
		// creates one; this decision already reflects the post-lock view.
		return models.LockoutDecision{
			IsLocked:          true,
			SecondsRemaining:  int(p.cfg.LockoutDuration / time.Second),
			FailedAttempts:    recentFailed,
			AttemptsRemaining: 0,
		}
	}

	return models.LockoutDecision{
		IsLocked:          false,
		SecondsRemaining:  0,
		FailedAttempts:    recentFailed,
		AttemptsRemaining: p.cfg.MaxFailedAttempts - recentFailed,
	}
}

// MustLock reports whether the caller should create a lockout now: the
// failure threshold is reached and no unexpired lockout already covers
// the identifier.
func (p *LockoutPolicy) MustLock(active *models.Lockout, recentFailed int, now time.Time) bool {
	if active != nil && !active.ExpiredAt(now) {
		return false
	}
	return recentFailed >= p.cfg.MaxFailedAttempts
}

func secondsUntil(until, now time.Time) int {
	secs := int(math.Ceil(until.Sub(now).Seconds()))
	if secs < 0 {
		return 0
	}
	return secs
}
