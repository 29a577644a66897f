// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jeranaias/loki-tui/internal/config"
	"github.com/jeranaias/loki-tui/internal/logging"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

// skipConfigAnnotation marks commands that must run even when the config
// file is broken.
const skipConfigAnnotation = "loki/skip-config"

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	route      string
	model      string
	history    string
	theme      string
	logLevel   string
	logFile    string
}

// environment is what PersistentPreRunE prepares for the command bodies.
type environment struct {
	flags globalFlags

	cfg     *config.Config
	cfgPath string // file to watch; empty when running on defaults

	logCloser io.Closer
}

// applyOverrides copies flag values over cfg. Flags beat the file and the
// environment.
func (f globalFlags) applyOverrides(cfg *config.Config) {
	if f.route != "" {
		cfg.UI.StartRoute = f.route
	}
	if f.model != "" {
		cfg.Completion.Model = f.model
	}
	if f.history != "" {
		cfg.Completion.HistoryMode = f.history
	}
	if f.theme != "" {
		cfg.UI.Theme = f.theme
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.logFile != "" {
		cfg.Logging.File = f.logFile
	}
}

// load reads the config, applies flag overrides and validates the result.
func (e *environment) load() error {
	config.LoadDotEnv()

	var (
		cfg *config.Config
		err error
	)
	if e.flags.configPath != "" {
		cfg, err = config.LoadFromPath(e.flags.configPath)
		e.cfgPath = e.flags.configPath
	} else {
		cfg, err = config.Load()
		e.cfgPath = config.ResolvePath()
	}
	if err != nil {
		return err
	}

	e.flags.applyOverrides(cfg)
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid flags")
	}
	e.cfg = cfg
	config.SetGlobal(cfg)
	return nil
}

// reloaded applies flag overrides to a config picked up by the watcher.
// It returns nil when the overrides make the config invalid.
func (e *environment) reloaded(cfg *config.Config) *config.Config {
	e.flags.applyOverrides(cfg)
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		log.Warn().Err(err).Msg("ignoring reloaded config")
		return nil
	}
	config.SetGlobal(cfg)
	return cfg
}

func (e *environment) close() {
	if e.logCloser != nil {
		e.logCloser.Close()
		e.logCloser = nil
	}
}

// NewRootCommand builds the loki command tree. Running loki with no
// subcommand starts the full-screen chat client.
func NewRootCommand() *cobra.Command {
	env := &environment{}

	root := &cobra.Command{
		Use:   "loki",
		Short: "LokiAI, your emotional AI companion, in the terminal",
		Long: `LokiAI is a chat companion for the terminal.

Run without arguments for the full-screen interface: landing page, sign in,
and chat with multiple timelines. Use "loki ask" for one-shot questions and
"loki repl" for a line-mode chat that works over plain pipes.

The API key is read from LOKI_API_KEY (or OPENAI_API_KEY). Settings live in
~/.loki/config.toml; run "loki config init" to create it.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipConfigAnnotation] == "true" {
				env.cfg = config.Default()
				logging.Discard()
				return nil
			}
			if err := env.load(); err != nil {
				return err
			}
			closer, err := logging.Init(env.cfg.Logging)
			if err != nil {
				return err
			}
			env.logCloser = closer
			log.Debug().
				Str("command", cmd.CommandPath()).
				Str("config", env.cfgPath).
				Str("model", env.cfg.Completion.Model).
				Str("history_mode", env.cfg.Completion.HistoryMode).
				Msg("starting")
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			env.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), env)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&env.flags.configPath, "config", "c", "", "config file (default ~/.loki/config.toml)")
	pf.StringVar(&env.flags.model, "model", "", "completion model")
	pf.StringVar(&env.flags.history, "history", "", `history sent with each turn: "single" or "full"`)
	pf.StringVar(&env.flags.theme, "theme", "", `color theme: "dark", "light" or "auto"`)
	pf.StringVar(&env.flags.logLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")
	pf.StringVar(&env.flags.logFile, "log-file", "", `log file, "-" for stderr (default ~/.loki/loki.log)`)
	root.Flags().StringVar(&env.flags.route, "route", "", `first screen: "/", "/login" or "/chat"`)

	root.AddCommand(
		newAskCommand(env),
		newReplCommand(env),
		newConfigCommand(env),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		return 1
	}
	return 0
}
