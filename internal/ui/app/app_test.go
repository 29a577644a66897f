// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/loki-tui/internal/auth"
	"github.com/jeranaias/loki-tui/internal/cloud"
	"github.com/jeranaias/loki-tui/internal/config"
	"github.com/jeranaias/loki-tui/internal/model"
	"github.com/jeranaias/loki-tui/internal/ui/chat"
	"github.com/jeranaias/loki-tui/internal/ui/components"
	"github.com/jeranaias/loki-tui/internal/ui/login"
)

func echoCompleter() cloud.CompleterFunc {
	return func(ctx context.Context, history []model.Message) (string, error) {
		return "echo", nil
	}
}

func newApp(t *testing.T, provider auth.Provider, mutate func(*config.Config)) *Model {
	t.Helper()
	cfg := config.Default()
	cfg.UI.RevealIntervalMs = 1
	cfg.UI.MarkdownStyle = "notty"
	if mutate != nil {
		mutate(cfg)
	}
	m := New(Options{Config: cfg, Completer: echoCompleter(), Provider: provider})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func validSession() *auth.Session {
	return &auth.Session{UserID: "u-1", Email: "sylvie@tva.gov", Username: "sylvie", ExpiresAt: time.Now().Add(time.Hour)}
}

func TestApp_StartsOnLanding(t *testing.T) {
	m := newApp(t, auth.NoopProvider{}, nil)
	if m.Route() != components.RouteHome {
		t.Errorf("Expected %s, got %s", components.RouteHome, m.Route())
	}
	m.Update(components.NavigateMsg{Route: components.RouteLogin})
	if m.Route() != components.RouteLogin {
		t.Errorf("Expected %s, got %s", components.RouteLogin, m.Route())
	}
	m.Update(components.NavigateMsg{Route: "/nowhere"})
	if m.Route() != components.RouteLogin {
		t.Error("Unknown routes should be ignored")
	}
}

func TestApp_ChatRequiresSession(t *testing.T) {
	p, err := auth.NewLocalProvider()
	if err != nil {
		t.Fatal(err)
	}
	m := newApp(t, p, nil)

	m.Update(components.NavigateMsg{Route: components.RouteChat})
	if m.Route() != components.RouteLogin {
		t.Fatalf("Expected redirect to login, got %s", m.Route())
	}
	if len(m.Toasts()) != 1 {
		t.Errorf("Expected a sign-in toast, got %d", len(m.Toasts()))
	}

	m.Update(login.AuthenticatedMsg{Session: validSession(), Notice: auth.MsgSignedIn})
	if m.Route() != components.RouteChat {
		t.Fatalf("Expected chat after sign-in, got %s", m.Route())
	}
	if m.Session() == nil || m.Session().Email != "sylvie@tva.gov" {
		t.Error("Session should be stored")
	}
	if m.chat.Profile().Name != "sylvie" {
		t.Errorf("Chat profile should use the username, got %q", m.chat.Profile().Name)
	}
}

func TestApp_NoneProviderSkipsGuard(t *testing.T) {
	m := newApp(t, auth.NoopProvider{}, func(c *config.Config) {
		c.UI.StartRoute = components.RouteChat
	})
	if m.Route() != components.RouteChat || !m.inChat {
		t.Fatalf("Expected to start in chat, got %s", m.Route())
	}
	if m.Init() == nil {
		t.Error("Init should return the chat init command")
	}
}

func TestApp_LeavingChatDiscardsConversations(t *testing.T) {
	m := newApp(t, auth.NoopProvider{}, nil)
	m.Update(components.NavigateMsg{Route: components.RouteChat})

	ctrl := m.chat.Controller()
	if cmd := ctrl.Submit("hello"); cmd == nil {
		t.Fatal("Submit should start a turn")
	}
	if ctrl.Phase() != chat.PhaseAwaitingReply {
		t.Fatalf("Expected awaiting, got %s", ctrl.Phase())
	}

	m.Update(components.NavigateMsg{Route: components.RouteHome})
	if m.inChat {
		t.Fatal("Chat should be torn down")
	}
	if ctrl.Phase() != chat.PhaseIdle {
		t.Error("Teardown should return the old controller to idle")
	}

	m.Update(components.NavigateMsg{Route: components.RouteChat})
	conv, _ := m.chat.Controller().Store().Active()
	if m.chat.Controller().Store().Len() != 1 || len(conv.Messages) != 1 {
		t.Error("Re-entering chat should start from a fresh store")
	}
}

func TestApp_StaleChatMessagesDropped(t *testing.T) {
	m := newApp(t, auth.NoopProvider{}, nil)
	m.Update(components.NavigateMsg{Route: components.RouteChat})
	m.Update(components.NavigateMsg{Route: components.RouteHome})

	// A reply arriving after leaving chat goes to the landing screen,
	// which ignores it.
	m.Update(chat.ReplyMsg{Gen: 1, Reply: cloud.Reply{Content: "late"}})
	if m.Route() != components.RouteHome {
		t.Error("Late replies must not change the route")
	}
}

func TestApp_ThemeChange(t *testing.T) {
	m := newApp(t, auth.NoopProvider{}, nil)
	m.Update(components.NavigateMsg{Route: components.RouteChat})

	m.Update(chat.ThemeChangedMsg{Theme: "light"})
	if m.theme.ModeName() != "light" {
		t.Errorf("Expected light theme, got %s", m.theme.ModeName())
	}
	if m.chat.Profile().Theme != model.ThemeLight {
		t.Error("Chat profile should follow the theme")
	}

	m.Update(chat.ThemeChangedMsg{Theme: "dark"})
	if m.theme.ModeName() != "dark" {
		t.Errorf("Expected dark theme, got %s", m.theme.ModeName())
	}
}

func TestApp_ConfigReload(t *testing.T) {
	m := newApp(t, auth.NoopProvider{}, nil)
	m.Update(components.NavigateMsg{Route: components.RouteChat})

	cfg := config.Default()
	cfg.Completion.Model = "gpt-4o"
	cfg.Completion.HistoryMode = config.HistoryFull
	_, cmd := m.Update(ConfigReloadedMsg{Config: cfg})

	if m.cfg.Completion.Model != "gpt-4o" {
		t.Error("Config should be replaced")
	}
	if cmd == nil || len(m.Toasts()) != 1 {
		t.Error("Reload should show a toast and start the toast ticker")
	}
}

func TestApp_SignOut(t *testing.T) {
	p, _ := auth.NewLocalProvider()
	m := newApp(t, p, nil)
	m.Update(login.AuthenticatedMsg{Session: validSession(), Notice: auth.MsgSignedIn})

	m.Update(chat.SignOutMsg{})
	if m.Session() != nil {
		t.Error("Session should be cleared")
	}
	if m.Route() != components.RouteHome {
		t.Errorf("Expected home, got %s", m.Route())
	}
}

func TestApp_ToastSweep(t *testing.T) {
	m := newApp(t, auth.NoopProvider{}, nil)
	toast := components.NewStatusToast("", "hello")
	toast.Duration = time.Millisecond
	toast.CreatedAt = time.Now().Add(-time.Second)

	_, cmd := m.Update(components.ToastMsg{Toast: toast})
	if cmd == nil {
		t.Fatal("First toast should start the ticker")
	}
	_, cmd = m.Update(components.ToastTickMsg{Time: time.Now()})
	if cmd != nil || len(m.Toasts()) != 0 {
		t.Error("Expired toasts should be swept and the ticker stopped")
	}
}

func TestApp_CtrlCQuits(t *testing.T) {
	m := newApp(t, auth.NoopProvider{}, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
}
