// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the global zerolog logger.
//
// The TUI owns the terminal, so logs go to a file by default. Commands that
// print plain text may route logs to stderr with File set to "-".
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/loki-tui/internal/config"
)

// DefaultFileName is created inside the config directory.
const DefaultFileName = "loki.log"

// Init points the global logger at the configured destination and level.
// The returned closer releases the log file and is safe to call once.
func Init(cfg config.LoggingConfig) (io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.File == "-" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger()
		return nopCloser{}, nil
	}

	path, err := resolvePath(cfg.File)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "create log directory")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, errors.Wrapf(err, "open log file %s", path)
	}

	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	log.Debug().Str("path", path).Str("level", level.String()).Msg("logging initialised")
	return f, nil
}

// ParseLevel accepts zerolog level names plus "disabled". Empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return zerolog.InfoLevel, nil
	case "disabled", "off":
		return zerolog.Disabled, nil
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel, errors.Wrapf(err, "invalid log level %q", s)
	}
	return level, nil
}

// Discard silences the global logger. Tests use it to keep output clean.
func Discard() {
	log.Logger = zerolog.Nop()
}

func resolvePath(file string) (string, error) {
	if file != "" {
		return file, nil
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultFileName), nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
