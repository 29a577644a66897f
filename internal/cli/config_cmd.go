// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jeranaias/loki-tui/internal/cloud"
	"github.com/jeranaias/loki-tui/internal/config"
)

func newConfigCommand(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the loki configuration",
	}
	cmd.AddCommand(
		newConfigShowCommand(env),
		newConfigGetCommand(env),
		newConfigCheckCommand(env),
		newConfigPathCommand(),
		newConfigInitCommand(),
	)
	return cmd
}

func newConfigShowCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), env.cfg.String())
			return nil
		},
	}
}

func newConfigGetCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:     "get <key>",
		Short:   "Print one configuration value",
		Example: "  loki config get completion.history_mode",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "completion.api_key" || args[0] == "auth.supabase_anon_key" {
				return errors.New("secrets are not printed; use `loki config check`")
			}
			v, err := env.cfg.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

// newConfigCheckCommand reports whether the pieces needed for chatting are
// in place.
func newConfigCheckCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that LokiAI can reach its services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg := env.cfg

			client := cloud.NewClient(cfg.Completion)
			keyStatus, keyNote := "missing", "set LOKI_API_KEY"
			if client.IsConfigured() {
				keyStatus, keyNote = "ok", "fingerprint "+client.KeyFingerprint()
			}

			source := env.cfgPath
			if source == "" {
				source = "defaults"
			}

			fmt.Fprintln(out, TitleStyle.Render("LokiAI configuration"))
			fmt.Fprintln(out, RenderSeparator())
			fmt.Fprintln(out, RenderLabel("Config source")+RenderStatus("ok")+" "+ValueStyle.Render(source))
			fmt.Fprintln(out, RenderLabel("API key")+RenderStatus(keyStatus)+" "+DimStyle.Render(keyNote))
			fmt.Fprintln(out, RenderLabel("Endpoint")+RenderStatus("ok")+" "+ValueStyle.Render(cfg.Completion.BaseURL))
			fmt.Fprintln(out, RenderLabel("Model")+RenderStatus("ok")+" "+ValueStyle.Render(client.Model()))
			fmt.Fprintln(out, RenderLabel("History mode")+RenderStatus("ok")+" "+ValueStyle.Render(client.HistoryMode()))
			fmt.Fprintln(out, RenderLabel("Sign-in")+RenderStatus("ok")+" "+ValueStyle.Render(cfg.Auth.Provider))
			return nil
		},
	}
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print the config file location",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if path := config.ResolvePath(); path != "" {
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			}
			path, err := config.ConfigPathTOML()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path+" "+DimStyle.Render("(not created)"))
			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a default config.toml",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ConfigPathTOML()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.SaveTOML(config.Default(), path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Wrote ")+path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}
