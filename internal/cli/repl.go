// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jeranaias/loki-tui/internal/cloud"
	"github.com/jeranaias/loki-tui/internal/config"
	"github.com/jeranaias/loki-tui/internal/model"
	"github.com/jeranaias/loki-tui/internal/storage"
	"github.com/jeranaias/loki-tui/internal/ui/components"
)

// historyFileName holds REPL input history inside the config directory.
const historyFileName = "repl_history"

const replHelp = `Commands:
  /new         start a new timeline
  /list        list timelines
  /switch <n>  switch to timeline n
  /export      save the current timeline as Markdown
  /help        show this help
  /quit        leave`

func newReplCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Chat with LokiAI line by line",
		Long: `Repl is a line-mode chat for terminals without full-screen support.

Timelines live only for the session, like in the full interface.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(cmd.Context(), env, cmd.OutOrStdout())
		},
	}
}

// =============================================================================
// SESSION
// =============================================================================

// replSession is the REPL state without the terminal: tests drive handle
// directly.
type replSession struct {
	store     *storage.ConversationStore
	responder *cloud.Responder
	out       io.Writer
	exportDir string

	// render formats assistant replies; nil prints them raw
	render func(string) string
}

func newReplSession(completer cloud.Completer, greeting string, out io.Writer) *replSession {
	s := &replSession{
		store:     storage.NewConversationStore(greeting),
		responder: cloud.NewResponder(completer),
		out:       out,
	}
	s.store.Create()
	return s
}

// greet prints the seed message of the active conversation.
func (s *replSession) greet() {
	conv, ok := s.store.Active()
	if !ok || conv.IsEmpty() {
		return
	}
	s.printMessage(conv.Messages[0])
}

func (s *replSession) printMessage(msg model.Message) {
	content := msg.Content
	if msg.IsAssistant() && s.render != nil {
		content = s.render(content)
	}
	fmt.Fprintf(s.out, "%s %s\n\n", RenderRole(msg.Role), content)
}

// handle processes one input line and reports whether the user asked to
// leave.
func (s *replSession) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, "/") {
		return s.command(line)
	}
	s.turn(ctx, line)
	return false
}

// turn commits the user message, waits for the reply and commits it too.
// A failed completion still ends with a committed notice.
func (s *replSession) turn(ctx context.Context, text string) {
	id := s.store.ActiveID()
	if err := s.store.Append(id, model.NewUserMessage(text)); err != nil {
		fmt.Fprintln(s.out, ErrorStyle.Render(err.Error()))
		return
	}
	conv, ok := s.store.Get(id)
	if !ok {
		return
	}

	fmt.Fprintln(s.out, DimStyle.Render("LokiAI is thinking..."))
	reply := s.responder.Reply(ctx, conv.Messages)
	msg := model.NewAssistantMessage(reply.Content)
	if err := s.store.Append(id, msg); err != nil {
		log.Error().Err(err).Msg("commit reply")
	}
	s.printMessage(msg)
}

func (s *replSession) command(line string) bool {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case "/quit", "/exit", "/q":
		return true

	case "/help", "/?":
		fmt.Fprintln(s.out, replHelp)

	case "/new":
		s.store.Create()
		fmt.Fprintln(s.out, SuccessStyle.Render(fmt.Sprintf("Timeline %d started.", s.store.Len())))
		s.greet()

	case "/list":
		fmt.Fprintln(s.out, storage.FormatConversationList(s.store.List()))

	case "/switch":
		if len(fields) != 2 {
			fmt.Fprintln(s.out, WarningStyle.Render("Usage: /switch <n>"))
			return false
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			fmt.Fprintln(s.out, WarningStyle.Render("Not a number: "+fields[1]))
			return false
		}
		id, err := s.store.IDAt(n - 1)
		if err == nil {
			err = s.store.SetActive(id)
		}
		if err != nil {
			fmt.Fprintln(s.out, WarningStyle.Render(fmt.Sprintf("No timeline %d.", n)))
			return false
		}
		conv, _ := s.store.Active()
		fmt.Fprintln(s.out, SuccessStyle.Render(fmt.Sprintf("Switched to %d. %s", n, conv.Title)))

	case "/export":
		conv, ok := s.store.Active()
		if !ok {
			return false
		}
		path, err := storage.WriteExport(s.exportDir, conv, time.Now())
		if err != nil {
			fmt.Fprintln(s.out, ErrorStyle.Render("Export failed: "+err.Error()))
			return false
		}
		fmt.Fprintln(s.out, SuccessStyle.Render("Exported to "+path))

	default:
		fmt.Fprintln(s.out, WarningStyle.Render("Unknown command "+fields[0]+". Try /help."))
	}
	return false
}

// =============================================================================
// TERMINAL LOOP
// =============================================================================

func runRepl(ctx context.Context, env *environment, out io.Writer) error {
	client := cloud.NewClient(env.cfg.Completion)
	if !client.IsConfigured() {
		fmt.Fprintln(out, WarningStyle.Render("LOKI_API_KEY is not set; replies will be error notices."))
	}

	s := newReplSession(client, env.cfg.UI.Greeting, out)
	if IsStdoutTTY() {
		md := components.NewMarkdownRenderer(env.cfg.UI.MarkdownStyle)
		width := min(GetTerminalWidth(), MaxMarkdownWidth)
		s.render = func(content string) string {
			return "\n" + md.Render(content, width)
		}
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := replHistoryPath()
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
		defer saveReplHistory(line, historyPath)
	}

	fmt.Fprintln(out, TitleStyle.Render("LokiAI")+DimStyle.Render("  ·  /help for commands"))
	fmt.Fprintln(out, RenderSeparator())
	s.greet()

	for {
		if ctx.Err() != nil {
			return nil
		}
		input, err := line.Prompt("› ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read input")
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if s.handle(ctx, input) {
			return nil
		}
	}
}

func replHistoryPath() string {
	dir, err := config.ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, historyFileName)
}

// saveReplHistory writes the input history with owner-only permissions.
func saveReplHistory(line *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		log.Debug().Err(err).Msg("save repl history")
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}
