// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/loki-tui/internal/auth"
	"github.com/jeranaias/loki-tui/internal/cloud"
	"github.com/jeranaias/loki-tui/internal/config"
	"github.com/jeranaias/loki-tui/internal/ui/app"
)

// runTUI starts the full-screen client. The config watcher runs next to the
// program and stops when the program exits.
func runTUI(ctx context.Context, env *environment) error {
	if err := RequiresTTY("start the chat interface"); err != nil {
		return err
	}

	cfg := env.cfg
	client := cloud.NewClient(cfg.Completion)
	if !client.IsConfigured() {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("LOKI_API_KEY is not set; LokiAI will answer with an error notice."))
		log.Warn().Msg("completion API key not configured")
	}

	provider, err := auth.NewProvider(cfg.Auth)
	if err != nil {
		return errors.Wrap(err, "set up sign-in")
	}

	root := app.New(app.Options{
		Config:    cfg,
		Completer: client,
		Client:    client,
		Provider:  provider,
		Counter:   client.Counter(),
	})
	program := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(ctx))

	g, gctx := errgroup.WithContext(ctx)
	watchCtx, stopWatch := context.WithCancel(gctx)

	if env.cfgPath != "" {
		g.Go(func() error {
			err := config.Watch(watchCtx, env.cfgPath, config.DefaultWatchDebounce, func(c *config.Config) {
				if c = env.reloaded(c); c != nil {
					log.Info().Str("path", env.cfgPath).Msg("config reloaded")
					program.Send(app.ConfigReloadedMsg{Config: c})
				}
			})
			if err != nil {
				// Live reload is best effort.
				log.Warn().Err(err).Msg("config watcher stopped")
			}
			return nil
		})
	}

	g.Go(func() error {
		defer stopWatch()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})

	return g.Wait()
}
