// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import tea "github.com/charmbracelet/bubbletea"

// Routes of the three screens.
const (
	RouteHome  = "/"
	RouteLogin = "/login"
	RouteChat  = "/chat"
)

// NavigateMsg asks the app to switch screens.
type NavigateMsg struct {
	Route string
}

// Navigate returns a command emitting NavigateMsg.
func Navigate(route string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Route: route} }
}
