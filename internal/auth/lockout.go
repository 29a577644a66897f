// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// =============================================================================
// LOCKOUT CONSTANTS
// =============================================================================

const (
	// DefaultMaxAttempts is the number of consecutive failures before lockout.
	DefaultMaxAttempts = 3

	// DefaultLockoutDuration is how long a locked identifier stays locked.
	DefaultLockoutDuration = 15 * time.Minute
)

// =============================================================================
// ATTEMPT RECORD
// =============================================================================

// AttemptRecord tracks failed sign-ins for one identifier.
type AttemptRecord struct {
	Count        int
	FirstAttempt time.Time
	LastAttempt  time.Time
	Locked       bool
	LockedUntil  time.Time
	LockoutCount int
}

// TimeRemaining returns how long the lock still holds at now.
func (r *AttemptRecord) TimeRemaining(now time.Time) time.Duration {
	if !r.Locked {
		return 0
	}
	if d := r.LockedUntil.Sub(now); d > 0 {
		return d
	}
	return 0
}

// =============================================================================
// LOCKOUT
// =============================================================================

// Lockout locks an identifier after too many consecutive failed sign-ins.
// State is in memory only and resets with the process.
type Lockout struct {
	mu          sync.Mutex
	records     map[string]*AttemptRecord
	maxAttempts int
	duration    time.Duration
	now         func() time.Time
}

// NewLockout creates a lockout policy. Non-positive arguments use defaults.
func NewLockout(maxAttempts int, duration time.Duration) *Lockout {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if duration <= 0 {
		duration = DefaultLockoutDuration
	}
	return &Lockout{
		records:     make(map[string]*AttemptRecord),
		maxAttempts: maxAttempts,
		duration:    duration,
		now:         time.Now,
	}
}

// Check returns ErrLockedOut while identifier is locked. An expired lock is
// cleared.
func (l *Lockout) Check(identifier string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[normalizeIdentifier(identifier)]
	if !ok || !rec.Locked {
		return nil
	}
	now := l.now()
	if remaining := rec.TimeRemaining(now); remaining > 0 {
		return errors.Wrapf(ErrLockedOut, "locked for %s", remaining.Round(time.Second))
	}
	rec.Locked = false
	rec.Count = 0
	rec.LockedUntil = time.Time{}
	return nil
}

// RecordAttempt records a sign-in result. It returns ErrLockedOut when this
// failure triggered the lock.
func (l *Lockout) RecordAttempt(identifier string, success bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := normalizeIdentifier(identifier)
	now := l.now()

	if success {
		delete(l.records, key)
		return nil
	}

	rec, ok := l.records[key]
	if !ok {
		rec = &AttemptRecord{FirstAttempt: now}
		l.records[key] = rec
	}
	rec.Count++
	rec.LastAttempt = now

	if rec.Count >= l.maxAttempts {
		rec.Locked = true
		rec.LockedUntil = now.Add(l.duration)
		rec.LockoutCount++
		log.Warn().
			Str("identifier", maskIdentifier(key)).
			Int("attempts", rec.Count).
			Time("locked_until", rec.LockedUntil).
			Msg("sign-in locked out")
		return errors.Wrapf(ErrLockedOut, "locked for %s", l.duration)
	}
	return nil
}

// IsLocked reports whether identifier is currently locked.
func (l *Lockout) IsLocked(identifier string) bool {
	return l.Check(identifier) != nil
}

// Status returns a copy of the record for identifier, or nil.
func (l *Lockout) Status(identifier string) *AttemptRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[normalizeIdentifier(identifier)]
	if !ok {
		return nil
	}
	cp := *rec
	return &cp
}

// Reset clears identifier.
func (l *Lockout) Reset(identifier string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.records, normalizeIdentifier(identifier))
}

func normalizeIdentifier(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// maskIdentifier keeps logs free of full email addresses.
func maskIdentifier(id string) string {
	at := strings.IndexByte(id, '@')
	if at <= 1 {
		return "***"
	}
	return id[:1] + "***" + id[at:]
}

// =============================================================================
// GUARDED PROVIDER
// =============================================================================

type lockedProvider struct {
	Provider
	lockout *Lockout
}

// WithLockout wraps p so that repeated ErrInvalidCredentials lock the email.
// Transport failures do not count as attempts.
func WithLockout(p Provider, l *Lockout) Provider {
	if l == nil {
		return p
	}
	return &lockedProvider{Provider: p, lockout: l}
}

// SignIn implements Provider.
func (p *lockedProvider) SignIn(ctx context.Context, creds Credentials) (*Session, error) {
	creds = creds.Normalize()
	if err := p.lockout.Check(creds.Email); err != nil {
		return nil, err
	}

	session, err := p.Provider.SignIn(ctx, creds)
	switch {
	case err == nil:
		p.lockout.Reset(creds.Email)
		return session, nil
	case errors.Is(err, ErrInvalidCredentials):
		if lockErr := p.lockout.RecordAttempt(creds.Email, false); lockErr != nil {
			return nil, lockErr
		}
		return nil, err
	default:
		return nil, err
	}
}
