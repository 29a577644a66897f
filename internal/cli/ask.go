// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jeranaias/loki-tui/internal/cloud"
	"github.com/jeranaias/loki-tui/internal/model"
	"github.com/jeranaias/loki-tui/internal/ui/components"
)

// askOptions control how a one-shot reply is printed.
type askOptions struct {
	// Pretty renders the reply as Markdown for a terminal
	Pretty        bool
	MarkdownStyle string
	Width         int
	Greeting      string
}

func newAskCommand(env *environment) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "ask <prompt>",
		Short: "Ask LokiAI a single question",
		Long: `Ask sends one message and prints the reply.

Use "-" as the prompt to read it from stdin. Output is rendered as Markdown
when stdout is a terminal and printed raw otherwise.`,
		Example: `  loki ask "How do I deal with a bad day?"
  echo "Tell me about the TVA" | loki ask -`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			client := cloud.NewClient(env.cfg.Completion)
			opts := askOptions{
				Pretty:        !raw && IsStdoutTTY(),
				MarkdownStyle: env.cfg.UI.MarkdownStyle,
				Width:         min(GetTerminalWidth(), MaxMarkdownWidth),
				Greeting:      env.cfg.UI.Greeting,
			}
			return runAsk(cmd.Context(), client, prompt, cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the reply without Markdown rendering")
	return cmd
}

// readPrompt joins args, or reads stdin when the only arg is "-".
func readPrompt(stdin io.Reader, args []string) (string, error) {
	var prompt string
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(io.LimitReader(stdin, 1<<20))
		if err != nil {
			return "", errors.Wrap(err, "read prompt from stdin")
		}
		prompt = string(data)
	} else {
		prompt = strings.Join(args, " ")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt is empty")
	}
	return prompt, nil
}

// runAsk sends prompt as the first user turn of a fresh conversation.
// Unlike the chat screens, failures are returned so the exit code reflects
// them.
func runAsk(ctx context.Context, completer cloud.Completer, prompt string, out io.Writer, opts askOptions) error {
	var history []model.Message
	if opts.Greeting != "" {
		history = append(history, model.NewAssistantMessage(opts.Greeting))
	}
	history = append(history, model.NewUserMessage(prompt))

	content, err := completer.Complete(ctx, history)
	if err != nil {
		return errors.Wrap(err, "ask")
	}
	if strings.TrimSpace(content) == "" {
		return errors.New(cloud.NoResponseNotice)
	}

	if opts.Pretty {
		content = components.NewMarkdownRenderer(opts.MarkdownStyle).Render(content, opts.Width)
	}
	_, err = fmt.Fprintln(out, strings.TrimRight(content, "\n"))
	return err
}
