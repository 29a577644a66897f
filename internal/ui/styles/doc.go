// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the LokiAI TUI.

All colors use Lip Gloss AdaptiveColor. ApplyMode picks the dark or light
side explicitly so the settings toggle can flip the whole UI at runtime:

	theme := styles.ApplyMode("light")
	header := theme.Navbar.Render("LokiAI")

# Colors (colors.go)

	LokiGreen  - brand, assistant bubbles, primary buttons
	LokiGold   - section titles, avatars, links
	TVAOrange  - user bubbles
	Rose, Sky  - error and info toasts

# Animations (animations.go)

TypingDots drives the "LokiAI is thinking" spinner and RenderProgressBar
draws the context usage meter in the status bar.
*/
package styles
