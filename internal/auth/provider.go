// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/jeranaias/loki-tui/internal/config"
)

// User-facing outcomes of the login form.
const (
	MsgSignedIn   = "Welcome back!"
	MsgSignedUp   = "Account created. Welcome!"
	MsgCheckEmail = "Check your email for verification link!"
)

// MinPasswordLength matches the auth backend's default policy.
const MinPasswordLength = 6

var (
	// ErrInvalidCredentials indicates a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid login credentials")

	// ErrUserExists indicates sign-up for an email that is already registered.
	ErrUserExists = errors.New("user already registered")

	// ErrLockedOut indicates too many consecutive failed sign-ins.
	ErrLockedOut = errors.New("too many failed attempts, try again later")

	// ErrInvalidEmail indicates a malformed email address.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrWeakPassword indicates a password shorter than MinPasswordLength.
	ErrWeakPassword = errors.New("password should be at least 6 characters")

	// ErrEmailNotConfirmed indicates sign-in before the email was verified.
	ErrEmailNotConfirmed = errors.New("email not confirmed")
)

// Credentials is what the login form collects. Username is only used on
// sign-up.
type Credentials struct {
	Email    string
	Password string
	Username string
}

// Normalize trims the email and lower-cases it.
func (c Credentials) Normalize() Credentials {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Username = strings.TrimSpace(c.Username)
	return c
}

// Validate checks the fields every provider requires.
func (c Credentials) Validate() error {
	if _, err := mail.ParseAddress(c.Email); err != nil || !strings.Contains(c.Email, "@") {
		return ErrInvalidEmail
	}
	if len([]rune(c.Password)) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Session is an authenticated user.
type Session struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	Username    string    `json:"username,omitempty"`
	AccessToken string    `json:"-"`
	Provider    string    `json:"provider"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IsExpired reports whether the session has passed its expiry. A zero
// expiry never expires.
func (s *Session) IsExpired() bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(s.ExpiresAt)
}

// IsValid reports whether the session can be used.
func (s *Session) IsValid() bool {
	return s != nil && s.UserID != "" && !s.IsExpired()
}

// TimeRemaining returns how long until expiry, or 0.
func (s *Session) TimeRemaining() time.Duration {
	if s == nil || s.ExpiresAt.IsZero() {
		return 0
	}
	if d := time.Until(s.ExpiresAt); d > 0 {
		return d
	}
	return 0
}

// DisplayName prefers the username, then the email.
func (s *Session) DisplayName() string {
	if s.Username != "" {
		return s.Username
	}
	return s.Email
}

// SignUpResult carries the session when the account is usable immediately,
// or NeedsConfirmation when the backend sent a verification email first.
type SignUpResult struct {
	Session           *Session
	NeedsConfirmation bool
}

// Provider is an authentication backend.
type Provider interface {
	Name() string
	SignIn(ctx context.Context, creds Credentials) (*Session, error)
	SignUp(ctx context.Context, creds Credentials) (*SignUpResult, error)
}

// NewProvider builds the provider selected by cfg, wrapped in a lockout
// policy when it checks passwords.
func NewProvider(cfg config.AuthConfig) (Provider, error) {
	lockout := NewLockout(cfg.MaxAttempts, time.Duration(cfg.LockoutMinutes)*time.Minute)

	switch cfg.Provider {
	case config.AuthNone:
		return NoopProvider{}, nil
	case config.AuthSupabase:
		p, err := NewSupabaseProvider(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		if err != nil {
			return nil, err
		}
		return WithLockout(p, lockout), nil
	case config.AuthLocal, "":
		p, err := NewLocalProvider()
		if err != nil {
			return nil, err
		}
		return WithLockout(p, lockout), nil
	default:
		return nil, errors.Errorf("unknown auth provider %q", cfg.Provider)
	}
}

// NoopProvider accepts everything. It backs the "none" auth mode.
type NoopProvider struct{}

// Name implements Provider.
func (NoopProvider) Name() string { return config.AuthNone }

// SignIn implements Provider.
func (NoopProvider) SignIn(_ context.Context, creds Credentials) (*Session, error) {
	creds = creds.Normalize()
	return &Session{UserID: "anonymous", Email: creds.Email, Provider: config.AuthNone, IssuedAt: time.Now()}, nil
}

// SignUp implements Provider.
func (p NoopProvider) SignUp(ctx context.Context, creds Credentials) (*SignUpResult, error) {
	s, _ := p.SignIn(ctx, creds)
	s.Username = creds.Username
	return &SignUpResult{Session: s}, nil
}
