// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/loki-tui/internal/config"
)

// supabaseTimeout bounds each auth request.
const supabaseTimeout = 15 * time.Second

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 * 1024

// SupabaseProvider signs users in against a Supabase project's auth API.
type SupabaseProvider struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

// NewSupabaseProvider creates a provider for the project at baseURL.
func NewSupabaseProvider(baseURL, anonKey string) (*SupabaseProvider, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" || anonKey == "" {
		return nil, errors.New("supabase url and anon key are required")
	}
	return &SupabaseProvider{
		baseURL:    baseURL,
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: supabaseTimeout},
	}, nil
}

// Name implements Provider.
func (p *SupabaseProvider) Name() string { return config.AuthSupabase }

type supabaseUser struct {
	ID               string                 `json:"id"`
	Email            string                 `json:"email"`
	EmailConfirmedAt *time.Time             `json:"email_confirmed_at"`
	UserMetadata     map[string]interface{} `json:"user_metadata"`
}

type supabaseSession struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	RefreshToken string       `json:"refresh_token"`
	User         supabaseUser `json:"user"`
}

// supabaseError covers both the legacy and current error shapes.
type supabaseError struct {
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e supabaseError) text() string {
	for _, s := range []string{e.Msg, e.ErrorDescription, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// SignIn implements Provider.
func (p *SupabaseProvider) SignIn(ctx context.Context, creds Credentials) (*Session, error) {
	creds = creds.Normalize()
	body := map[string]string{"email": creds.Email, "password": creds.Password}

	var resp supabaseSession
	if err := p.post(ctx, "/auth/v1/token?grant_type=password", body, &resp); err != nil {
		return nil, err
	}
	return p.toSession(resp)
}

// SignUp implements Provider. Projects with email confirmation enabled
// return a bare user and no session.
func (p *SupabaseProvider) SignUp(ctx context.Context, creds Credentials) (*SignUpResult, error) {
	creds = creds.Normalize()
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	body := map[string]interface{}{
		"email":    creds.Email,
		"password": creds.Password,
		"data":     map[string]string{"username": creds.Username},
	}

	var raw json.RawMessage
	if err := p.post(ctx, "/auth/v1/signup", body, &raw); err != nil {
		return nil, err
	}

	var sess supabaseSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, errors.Wrap(err, "decode signup response")
	}
	if sess.AccessToken == "" {
		return &SignUpResult{NeedsConfirmation: true}, nil
	}
	session, err := p.toSession(sess)
	if err != nil {
		return nil, err
	}
	return &SignUpResult{Session: session}, nil
}

func (p *SupabaseProvider) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("apikey", p.anonKey)
	req.Header.Set("Authorization", "Bearer "+p.anonKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "auth request failed")
	}
	defer resp.Body.Close()

	log.Debug().
		Str("path", strings.SplitN(path, "?", 2)[0]).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("supabase auth response")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrap(err, "decode response")
		}
		return nil
	}
	return p.handleErrorResponse(resp)
}

func (p *SupabaseProvider) handleErrorResponse(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var apiErr supabaseError
	_ = json.Unmarshal(data, &apiErr)
	msg := apiErr.text()

	switch {
	case apiErr.ErrorCode == "invalid_credentials" || apiErr.Error == "invalid_grant":
		if strings.Contains(strings.ToLower(msg), "not confirmed") {
			return ErrEmailNotConfirmed
		}
		return ErrInvalidCredentials
	case apiErr.ErrorCode == "email_not_confirmed":
		return ErrEmailNotConfirmed
	case apiErr.ErrorCode == "user_already_exists" || strings.Contains(strings.ToLower(msg), "already registered"):
		return ErrUserExists
	case apiErr.ErrorCode == "weak_password":
		return ErrWeakPassword
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return errors.Errorf("auth error (HTTP %d): %s", resp.StatusCode, msg)
}

// toSession fills the session from the response, falling back to the
// access token's claims. The token is not verified locally: it came
// straight from the issuer over TLS.
func (p *SupabaseProvider) toSession(resp supabaseSession) (*Session, error) {
	if resp.AccessToken == "" {
		return nil, errors.New("auth response contained no access token")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(resp.AccessToken, claims); err != nil {
		log.Debug().Err(err).Msg("access token claims unreadable")
	}

	session := &Session{
		UserID:      resp.User.ID,
		Email:       resp.User.Email,
		AccessToken: resp.AccessToken,
		Provider:    config.AuthSupabase,
		IssuedAt:    time.Now(),
	}
	if session.UserID == "" {
		session.UserID, _ = claims.GetSubject()
	}
	if session.Email == "" {
		session.Email, _ = claims["email"].(string)
	}
	if name, ok := resp.User.UserMetadata["username"].(string); ok {
		session.Username = name
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		session.ExpiresAt = exp.Time
	} else if resp.ExpiresIn > 0 {
		session.ExpiresAt = session.IssuedAt.Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return session, nil
}
