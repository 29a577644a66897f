// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection for the loki commands.
//
// The TUI needs a real terminal on both ends; ask and repl degrade to plain
// text when output is piped or NO_COLOR is set.

package cli

import (
	"os"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// IsTTY reports whether stdin is a terminal.
func IsTTY() bool { return isTerminal(os.Stdin) }

// IsStdoutTTY reports whether stdout is a terminal. It decides between
// rendered Markdown and raw text.
func IsStdoutTTY() bool { return isTerminal(os.Stdout) }

const (
	DefaultTerminalWidth = 80
	MinTerminalWidth     = 40

	// MaxMarkdownWidth keeps rendered replies readable on wide terminals
	MaxMarkdownWidth = 100
)

// GetTerminalWidth returns the stdout width clamped to MinTerminalWidth,
// or DefaultTerminalWidth when stdout has no size.
func GetTerminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return max(w, MinTerminalWidth)
	}
	return DefaultTerminalWidth
}

var (
	colorsOnce sync.Once
	colorsOn   bool
)

// ColorsEnabled reports whether output should carry ANSI colors.
// NO_COLOR (https://no-color.org) wins over FORCE_COLOR, which wins over
// TTY detection. The answer is computed once.
func ColorsEnabled() bool {
	colorsOnce.Do(func() {
		switch {
		case os.Getenv("NO_COLOR") != "":
			colorsOn = false
		case os.Getenv("FORCE_COLOR") != "":
			colorsOn = true
		default:
			colorsOn = IsStdoutTTY()
		}
	})
	return colorsOn
}

// ForceColorsEnabled pins the ColorsEnabled answer. Tests only.
func ForceColorsEnabled(enabled bool) {
	colorsOnce = sync.Once{}
	colorsOnce.Do(func() { colorsOn = enabled })
}

// GetColorProfile maps ColorsEnabled onto a termenv profile.
func GetColorProfile() termenv.Profile {
	if ColorsEnabled() {
		return termenv.ColorProfile()
	}
	return termenv.Ascii
}

// RequiresTTY returns an error if stdin or stdout is not a terminal.
func RequiresTTY(operation string) error {
	if !IsTTY() || !IsStdoutTTY() {
		return &TTYRequiredError{Operation: operation}
	}
	return nil
}

// TTYRequiredError is returned when an operation needs a terminal.
type TTYRequiredError struct {
	Operation string
}

func (e *TTYRequiredError) Error() string {
	if e.Operation != "" {
		return "not a terminal; cannot " + e.Operation + " (try `loki ask` for piped use)"
	}
	return "not a terminal; interactive mode not available"
}
