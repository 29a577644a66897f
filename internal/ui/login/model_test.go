// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package login

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/loki-tui/internal/auth"
	"github.com/jeranaias/loki-tui/internal/ui/components"
	"github.com/jeranaias/loki-tui/internal/ui/styles"
)

// fakeProvider records calls and returns canned results.
type fakeProvider struct {
	signIns  []auth.Credentials
	signUps  []auth.Credentials
	signInFn func(auth.Credentials) (*auth.Session, error)
	signUpFn func(auth.Credentials) (*auth.SignUpResult, error)
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) SignIn(_ context.Context, c auth.Credentials) (*auth.Session, error) {
	f.signIns = append(f.signIns, c)
	return f.signInFn(c)
}

func (f *fakeProvider) SignUp(_ context.Context, c auth.Credentials) (*auth.SignUpResult, error) {
	f.signUps = append(f.signUps, c)
	return f.signUpFn(c)
}

func validSession(email string) *auth.Session {
	return &auth.Session{UserID: "u-1", Email: email, ExpiresAt: time.Now().Add(time.Hour)}
}

func press(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

// submit fills the visible fields, presses enter and feeds back the
// provider result. It returns the messages produced after the result.
func submit(t *testing.T, m Model, username, email, password string) (Model, []tea.Msg) {
	t.Helper()
	m.inputs[fieldUsername].SetValue(username)
	m.inputs[fieldEmail].SetValue(email)
	m.inputs[fieldPassword].SetValue(password)

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		return m, nil
	}
	if !m.Loading() {
		t.Fatal("Expected loading while the provider runs")
	}

	var result resultMsg
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatal("Expected a batch command")
	}
	for _, c := range batch {
		if r, ok := c().(resultMsg); ok {
			result = r
		}
	}

	updated, next := m.Update(result)
	m = updated.(Model)
	if next == nil {
		return m, nil
	}
	return m, []tea.Msg{next()}
}

func TestLogin_SignInSuccess(t *testing.T) {
	p := &fakeProvider{signInFn: func(c auth.Credentials) (*auth.Session, error) {
		return validSession(c.Email), nil
	}}
	m := New(p, styles.NewTheme())

	m, msgs := submit(t, m, "", "  Loki@TVA.gov ", "glorious")

	if len(p.signIns) != 1 || p.signIns[0].Email != "loki@tva.gov" {
		t.Fatalf("Expected normalised sign-in call, got %+v", p.signIns)
	}
	if m.Loading() {
		t.Error("Loading should clear after the result")
	}
	if len(msgs) != 1 {
		t.Fatalf("Expected one message, got %d", len(msgs))
	}
	authed, ok := msgs[0].(AuthenticatedMsg)
	if !ok {
		t.Fatalf("Expected AuthenticatedMsg, got %T", msgs[0])
	}
	if authed.Notice != auth.MsgSignedIn || authed.Session.Email != "loki@tva.gov" {
		t.Errorf("Unexpected result %+v", authed)
	}
	if m.inputs[fieldPassword].Value() != "" {
		t.Error("Password should be cleared")
	}
}

func TestLogin_SignInError(t *testing.T) {
	p := &fakeProvider{signInFn: func(auth.Credentials) (*auth.Session, error) {
		return nil, auth.ErrInvalidCredentials
	}}
	m := New(p, styles.NewTheme())

	m, msgs := submit(t, m, "", "loki@tva.gov", "wrongpass")

	if len(msgs) != 1 {
		t.Fatalf("Expected one message, got %d", len(msgs))
	}
	toast, ok := msgs[0].(components.ToastMsg)
	if !ok || toast.Toast.Kind != components.ToastKindError {
		t.Fatalf("Expected error toast, got %#v", msgs[0])
	}
	if !strings.Contains(m.View(), "Invalid login credentials") {
		t.Error("View should show the error")
	}
}

func TestLogin_ValidationBlocksSubmit(t *testing.T) {
	p := &fakeProvider{}
	m := New(p, styles.NewTheme())

	tests := []struct {
		email, password string
	}{
		{"", "secret123"},
		{"loki@tva.gov", ""},
		{"not-an-email", "secret123"},
		{"loki@tva.gov", "abc"},
	}
	for _, tc := range tests {
		m.inputs[fieldEmail].SetValue(tc.email)
		m.inputs[fieldPassword].SetValue(tc.password)
		m.err = ""

		var cmd tea.Cmd
		m, cmd = press(m, tea.KeyMsg{Type: tea.KeyEnter})
		if cmd != nil {
			t.Errorf("%q/%q: expected no provider call", tc.email, tc.password)
		}
		if m.err == "" {
			t.Errorf("%q/%q: expected an inline error", tc.email, tc.password)
		}
	}
	if len(p.signIns) != 0 {
		t.Error("Provider should not be called for invalid input")
	}
}

func TestLogin_SignUpNeedsConfirmation(t *testing.T) {
	p := &fakeProvider{signUpFn: func(auth.Credentials) (*auth.SignUpResult, error) {
		return &auth.SignUpResult{NeedsConfirmation: true}, nil
	}}
	m := New(p, styles.NewTheme())

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyCtrlT})
	if !m.IsSignUp() || m.focus != fieldUsername {
		t.Fatal("ctrl+t should switch to sign-up with username focused")
	}
	if !strings.Contains(m.View(), "Username") {
		t.Error("Sign-up form should show the username field")
	}

	m, msgs := submit(t, m, "sylvie", "sylvie@tva.gov", "variant1")

	if len(p.signUps) != 1 || p.signUps[0].Username != "sylvie" {
		t.Fatalf("Expected sign-up with username, got %+v", p.signUps)
	}
	if m.IsSignUp() {
		t.Error("Form should return to sign-in after a confirmation email")
	}
	toast, ok := msgs[0].(components.ToastMsg)
	if !ok || toast.Toast.Message != auth.MsgCheckEmail {
		t.Errorf("Expected check-email toast, got %#v", msgs[0])
	}
}

func TestLogin_SignUpWithSession(t *testing.T) {
	p := &fakeProvider{signUpFn: func(c auth.Credentials) (*auth.SignUpResult, error) {
		return &auth.SignUpResult{Session: validSession(c.Email)}, nil
	}}
	m := New(p, styles.NewTheme())
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyCtrlT})

	_, msgs := submit(t, m, "sylvie", "sylvie@tva.gov", "variant1")
	authed, ok := msgs[0].(AuthenticatedMsg)
	if !ok || authed.Notice != auth.MsgSignedUp {
		t.Errorf("Expected AuthenticatedMsg with sign-up notice, got %#v", msgs[0])
	}
}

func TestLogin_FocusCycle(t *testing.T) {
	m := New(&fakeProvider{}, styles.NewTheme())
	if m.focus != fieldEmail {
		t.Fatalf("Sign-in should start on email, got %d", m.focus)
	}
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != fieldPassword {
		t.Errorf("Tab should move to password, got %d", m.focus)
	}
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != fieldEmail {
		t.Errorf("Tab should wrap to email in sign-in mode, got %d", m.focus)
	}
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.focus != fieldPassword {
		t.Errorf("Shift+Tab should wrap backwards, got %d", m.focus)
	}
}

func TestLogin_EscGoesHome(t *testing.T) {
	m := New(&fakeProvider{}, styles.NewTheme())
	_, cmd := press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("Expected navigation")
	}
	if nav, ok := cmd().(components.NavigateMsg); !ok || nav.Route != components.RouteHome {
		t.Errorf("Expected navigation home, got %#v", nav)
	}
}
