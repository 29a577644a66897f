// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI pieces shared by the LokiAI screens.

Everything here is a pure render function or a small struct with a View
method; none of it owns Bubble Tea state beyond what it is given.

  - Navbar (navbar.go) - brand and Home / Get Started links
  - RenderMessage (message.go) - chat bubbles, markdown via glamour
  - StatusBar (statusbar.go) - model, history mode, context meter
  - ToastManager (toast.go) - auto-dismissing notifications
*/
package components
