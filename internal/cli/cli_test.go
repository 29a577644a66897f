// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/loki-tui/internal/cloud"
	"github.com/jeranaias/loki-tui/internal/config"
	"github.com/jeranaias/loki-tui/internal/model"
)

// isolate points LOKI_HOME at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LOKI_HOME", dir)
	for _, k := range []string{
		"LOKI_API_KEY", "OPENAI_API_KEY", "LOKI_MODEL", "LOKI_BASE_URL",
		"LOKI_HISTORY_MODE", "LOKI_THEME", "LOKI_AUTH_PROVIDER",
		"SUPABASE_URL", "SUPABASE_ANON_KEY", "LOKI_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	ForceColorsEnabled(false)
	t.Cleanup(config.ResetGlobalForTesting)
	return dir
}

// execute runs the command tree with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// =============================================================================
// ROOT / CONFIG COMMANDS
// =============================================================================

func TestVersionCommand(t *testing.T) {
	isolate(t)
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "loki "+Version))
}

func TestConfigInitAndPath(t *testing.T) {
	home := isolate(t)
	want := filepath.Join(home, "config.toml")

	out, err := execute(t, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, want)
	assert.Contains(t, out, "(not created)")

	out, err = execute(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, want)

	info, err := os.Stat(want)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = execute(t, "config", "init")
	assert.Error(t, err, "init refuses to overwrite")
	_, err = execute(t, "config", "init", "--force")
	assert.NoError(t, err)

	out, err = execute(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, want+"\n", out)
}

func TestConfigGet_FlagsOverrideFile(t *testing.T) {
	home := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.toml"),
		[]byte("[completion]\nmodel = \"from-file\"\n"), 0o600))

	out, err := execute(t, "config", "get", "completion.model")
	require.NoError(t, err)
	assert.Equal(t, "from-file\n", out)

	out, err = execute(t, "--model", "from-flag", "config", "get", "completion.model")
	require.NoError(t, err)
	assert.Equal(t, "from-flag\n", out)

	out, err = execute(t, "--history", "FULL", "config", "get", "completion.history_mode")
	require.NoError(t, err)
	assert.Equal(t, config.HistoryFull+"\n", out)

	_, err = execute(t, "config", "get", "completion.api_key")
	assert.Error(t, err)
	_, err = execute(t, "config", "get", "completion.nope")
	assert.Error(t, err)
}

func TestInvalidFlagValueFails(t *testing.T) {
	isolate(t)
	_, err := execute(t, "--history", "sometimes", "config", "show")
	require.Error(t, err)

	var verrs config.ValidateErrors
	assert.True(t, errors.As(err, &verrs))
}

func TestConfigShow_MasksKey(t *testing.T) {
	isolate(t)
	t.Setenv("LOKI_API_KEY", "sk-verysecretkey1234")

	out, err := execute(t, "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "verysecret")
	assert.Contains(t, out, "gpt-3.5-turbo")
}

func TestConfigCheck(t *testing.T) {
	isolate(t)
	out, err := execute(t, "config", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "LOKI_API_KEY")
	assert.Contains(t, out, "defaults")

	t.Setenv("LOKI_API_KEY", "sk-test-key")
	out, err = execute(t, "config", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "fingerprint")
	assert.NotContains(t, out, "[WARN]")
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.Default()
	globalFlags{}.applyOverrides(cfg)
	assert.Equal(t, config.Default(), cfg, "empty flags change nothing")

	globalFlags{route: "/chat", theme: "light", logFile: "-"}.applyOverrides(cfg)
	assert.Equal(t, "/chat", cfg.UI.StartRoute)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.Equal(t, "-", cfg.Logging.File)
}

func TestReloadedKeepsFlagOverrides(t *testing.T) {
	isolate(t)
	env := &environment{flags: globalFlags{model: "pinned"}}

	next := config.Default()
	next.Completion.Model = "from-reload"
	got := env.reloaded(next)
	require.NotNil(t, got)
	assert.Equal(t, "pinned", got.Completion.Model)

	env.flags.history = "sometimes"
	assert.Nil(t, env.reloaded(config.Default()))
}

// =============================================================================
// ASK
// =============================================================================

func TestReadPrompt(t *testing.T) {
	p, err := readPrompt(nil, []string{"how", "are", "you"})
	require.NoError(t, err)
	assert.Equal(t, "how are you", p)

	p, err = readPrompt(strings.NewReader("  from stdin\n"), []string{"-"})
	require.NoError(t, err)
	assert.Equal(t, "from stdin", p)

	_, err = readPrompt(strings.NewReader("   "), []string{"-"})
	assert.Error(t, err)
}

func TestRunAsk(t *testing.T) {
	var sent []model.Message
	completer := cloud.CompleterFunc(func(ctx context.Context, history []model.Message) (string, error) {
		sent = history
		return "Glorious purpose.\n", nil
	})

	var out bytes.Buffer
	err := runAsk(context.Background(), completer, "why?", &out, askOptions{Greeting: model.DefaultGreeting})
	require.NoError(t, err)
	assert.Equal(t, "Glorious purpose.\n", out.String())

	require.Len(t, sent, 2)
	assert.True(t, sent[0].IsAssistant())
	assert.Equal(t, "why?", sent[1].Content)
}

func TestRunAsk_Failures(t *testing.T) {
	failing := cloud.CompleterFunc(func(ctx context.Context, history []model.Message) (string, error) {
		return "", cloud.ErrRateLimited
	})
	err := runAsk(context.Background(), failing, "hi", &bytes.Buffer{}, askOptions{})
	assert.True(t, errors.Is(err, cloud.ErrRateLimited))

	blank := cloud.CompleterFunc(func(ctx context.Context, history []model.Message) (string, error) {
		return "  ", nil
	})
	err = runAsk(context.Background(), blank, "hi", &bytes.Buffer{}, askOptions{})
	require.Error(t, err)
	assert.Equal(t, cloud.NoResponseNotice, err.Error())
}

func TestAskCommand_AgainstServer(t *testing.T) {
	isolate(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","choices":[{"index":0,"message":{"role":"assistant","content":"Hello, Variant."}}],"usage":{"prompt_tokens":3,"completion_tokens":3,"total_tokens":6}}`))
	}))
	defer server.Close()

	t.Setenv("LOKI_BASE_URL", server.URL+"/v1")
	t.Setenv("LOKI_API_KEY", "sk-test-key")

	out, err := execute(t, "ask", "--raw", "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello, Variant.\n", out)
}

func TestAskCommand_NoKey(t *testing.T) {
	isolate(t)
	_, err := execute(t, "ask", "hello")
	assert.True(t, errors.Is(err, cloud.ErrNotConfigured))
}

// =============================================================================
// REPL
// =============================================================================

func newTestRepl(reply func(history []model.Message) (string, error)) (*replSession, *bytes.Buffer) {
	var out bytes.Buffer
	s := newReplSession(cloud.CompleterFunc(func(ctx context.Context, history []model.Message) (string, error) {
		return reply(history)
	}), model.DefaultGreeting, &out)
	return s, &out
}

func TestRepl_Turn(t *testing.T) {
	s, out := newTestRepl(func(history []model.Message) (string, error) {
		return "Burdened with glorious purpose.", nil
	})

	assert.False(t, s.handle(context.Background(), "who are you?"))
	assert.Contains(t, out.String(), "LokiAI: Burdened with glorious purpose.")

	conv, ok := s.store.Active()
	require.True(t, ok)
	require.Len(t, conv.Messages, 3)
	assert.Equal(t, "who are you?", conv.Messages[1].Content)
	assert.True(t, conv.Messages[2].IsAssistant())
}

func TestRepl_FailedTurnCommitsNotice(t *testing.T) {
	s, out := newTestRepl(func(history []model.Message) (string, error) {
		return "", errors.New("connection refused")
	})

	s.handle(context.Background(), "hello")
	assert.Contains(t, out.String(), cloud.ErrorNotice)

	conv, _ := s.store.Active()
	last, ok := conv.LastMessage()
	require.True(t, ok)
	assert.Equal(t, cloud.ErrorNotice, last.Content)
}

func TestRepl_BlankLineIgnored(t *testing.T) {
	calls := 0
	s, _ := newTestRepl(func(history []model.Message) (string, error) {
		calls++
		return "x", nil
	})
	assert.False(t, s.handle(context.Background(), "   "))
	assert.Zero(t, calls)
}

func TestRepl_Commands(t *testing.T) {
	s, out := newTestRepl(func(history []model.Message) (string, error) {
		return "ok", nil
	})
	s.exportDir = t.TempDir()
	ctx := context.Background()

	s.handle(ctx, "/new")
	assert.Equal(t, 2, s.store.Len())
	assert.Contains(t, out.String(), "Timeline 2 started.")

	out.Reset()
	s.handle(ctx, "/list")
	assert.Contains(t, out.String(), " * 2")

	out.Reset()
	s.handle(ctx, "/switch 1")
	assert.Equal(t, 0, s.store.IndexOf(s.store.ActiveID()))
	assert.Contains(t, out.String(), "Switched to 1.")

	out.Reset()
	s.handle(ctx, "/switch 9")
	assert.Contains(t, out.String(), "No timeline 9.")
	s.handle(ctx, "/switch x")
	assert.Contains(t, out.String(), "Not a number")

	out.Reset()
	s.handle(ctx, "/export")
	assert.Contains(t, out.String(), "Exported to "+s.exportDir)
	entries, err := os.ReadDir(s.exportDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	out.Reset()
	s.handle(ctx, "/teleport")
	assert.Contains(t, out.String(), "Unknown command /teleport")

	assert.True(t, s.handle(ctx, "/quit"))
	assert.True(t, s.handle(ctx, "/EXIT"))
}
