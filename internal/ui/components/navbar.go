// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/loki-tui/internal/ui/styles"
)

// =============================================================================
// NAVBAR COMPONENT
// =============================================================================

// Brand is the product name shown in the navbar.
const Brand = "LokiAI"

// NavLink is one entry on the right side of the navbar.
type NavLink struct {
	Key   string // shortcut shown next to the label
	Label string
	Route string
}

// Navbar is the top bar shown on the landing and login screens.
type Navbar struct {
	Links  []NavLink
	Active string // route of the current screen
	Width  int
	theme  *styles.Theme
}

// NewNavbar creates the navbar with the Home and Get Started links.
func NewNavbar(theme *styles.Theme) *Navbar {
	return &Navbar{
		Links: []NavLink{
			{Key: "h", Label: "Home", Route: RouteHome},
			{Key: "g", Label: "Get Started", Route: RouteLogin},
		},
		Width: 80,
		theme: theme,
	}
}

// SetTheme swaps the theme after a light/dark toggle.
func (n *Navbar) SetTheme(theme *styles.Theme) {
	n.theme = theme
}

// View renders the navbar.
func (n *Navbar) View() string {
	width := n.Width
	if width < 30 {
		width = 30
	}

	brand := n.theme.NavBrand.Render("<" + Brand + ">")

	links := make([]string, 0, len(n.Links))
	for _, l := range n.Links {
		text := l.Label + " [" + l.Key + "]"
		if l.Route == n.Active {
			links = append(links, n.theme.NavLinkActive.Render(text))
		} else {
			links = append(links, n.theme.NavLink.Render(text))
		}
	}
	right := strings.Join(links, " ")

	// Navbar padding takes 2 columns
	gap := width - 2 - lipgloss.Width(brand) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return n.theme.Navbar.Width(width).Render(brand + strings.Repeat(" ", gap) + right)
}
