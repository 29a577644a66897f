// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Theme selects the light or dark palette.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// IsDark reports whether t renders on a dark background.
func (t Theme) IsDark() bool {
	return t != ThemeLight
}

// ParseTheme maps a config string onto a Theme. Unknown values are dark.
func ParseTheme(s string) Theme {
	if strings.EqualFold(strings.TrimSpace(s), string(ThemeLight)) {
		return ThemeLight
	}
	return ThemeDark
}

const (
	DefaultProfileName  = "Loki Variant"
	DefaultProfileEmail = "variant@tva.multiverse"

	avatarBaseURL = "https://api.dicebear.com/7.x/avataaars/svg"
)

// Profile is the locally editable user identity shown in the chat view.
// It lives for the process lifetime only.
type Profile struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
	Theme  Theme  `json:"theme"`
}

// NewProfile fills blank fields with the defaults.
func NewProfile(name, email, avatar string, theme Theme) Profile {
	if strings.TrimSpace(name) == "" {
		name = DefaultProfileName
	}
	if strings.TrimSpace(email) == "" {
		email = DefaultProfileEmail
	}
	if avatar == "" {
		avatar = RandomAvatar()
	}
	if theme == "" {
		theme = ThemeDark
	}
	return Profile{Name: name, Email: email, Avatar: avatar, Theme: theme}
}

// Initials returns up to two upper-case initials for compact display.
func (p Profile) Initials() string {
	var out []rune
	for _, f := range strings.Fields(p.Name) {
		for _, r := range f {
			out = append(out, r)
			break
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return strings.ToUpper(string(out))
}

// RandomAvatar returns an avatar URI derived from a random seed.
func RandomAvatar() string {
	seed := uuid.NewString()[:8]
	return avatarBaseURL + "?seed=" + url.QueryEscape(seed)
}
