// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/jeranaias/loki-tui/internal/config"
)

// localTokenTTL is the lifetime of tokens minted by LocalProvider.
const localTokenTTL = 24 * time.Hour

const localIssuer = "loki-tui"

// LocalClaims are the JWT claims minted by LocalProvider.
type LocalClaims struct {
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

type localAccount struct {
	id       string
	email    string
	username string
	hash     []byte
}

// LocalProvider keeps accounts in memory for the lifetime of the process.
// Passwords are bcrypt hashed and sessions carry an HS256 token signed with
// a per-process secret.
type LocalProvider struct {
	mu       sync.RWMutex
	accounts map[string]*localAccount
	secret   []byte
	cost     int
	now      func() time.Time
}

// NewLocalProvider creates an empty local account store.
func NewLocalProvider() (*LocalProvider, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, errors.Wrap(err, "generate signing secret")
	}
	return &LocalProvider{
		accounts: make(map[string]*localAccount),
		secret:   secret,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}, nil
}

// Name implements Provider.
func (p *LocalProvider) Name() string { return config.AuthLocal }

// SignUp implements Provider. Local accounts need no confirmation.
func (p *LocalProvider) SignUp(_ context.Context, creds Credentials) (*SignUpResult, error) {
	creds = creds.Normalize()
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), p.cost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	p.mu.Lock()
	if _, exists := p.accounts[creds.Email]; exists {
		p.mu.Unlock()
		return nil, ErrUserExists
	}
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	acct := &localAccount{id: id.String(), email: creds.Email, username: creds.Username, hash: hash}
	p.accounts[creds.Email] = acct
	p.mu.Unlock()

	log.Info().Str("user_id", acct.id).Msg("local account created")

	session, err := p.issue(acct)
	if err != nil {
		return nil, err
	}
	return &SignUpResult{Session: session}, nil
}

// SignIn implements Provider.
func (p *LocalProvider) SignIn(_ context.Context, creds Credentials) (*Session, error) {
	creds = creds.Normalize()

	p.mu.RLock()
	acct, ok := p.accounts[creds.Email]
	p.mu.RUnlock()
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return p.issue(acct)
}

func (p *LocalProvider) issue(acct *localAccount) (*Session, error) {
	now := p.now()
	claims := LocalClaims{
		Email:    acct.email,
		Username: acct.username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    localIssuer,
			Subject:   acct.id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(localTokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, errors.Wrap(err, "sign token")
	}
	return &Session{
		UserID:      acct.id,
		Email:       acct.email,
		Username:    acct.username,
		AccessToken: token,
		Provider:    config.AuthLocal,
		IssuedAt:    now,
		ExpiresAt:   now.Add(localTokenTTL),
	}, nil
}

// Verify checks a token minted by this provider and returns its claims.
func (p *LocalProvider) Verify(token string) (*LocalClaims, error) {
	claims := &LocalClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithIssuer(localIssuer), jwt.WithTimeFunc(p.now))
	if err != nil {
		return nil, errors.Wrap(err, "verify token")
	}
	return claims, nil
}
