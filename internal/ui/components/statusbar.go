// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/agrinova-tui/internal/ui/styles"
	"github.com/jeranaias/agrinova-tui/internal/util"
)

// StatusBar is the bottom bar: backend, session state, last request id.
type StatusBar struct {
	BackendURL    string
	Username      string // empty when anonymous
	SignedInFor   string // how long the identity has been set, or ""
	Busy          bool
	LastRequestID string
	Width         int
	theme         *styles.Theme
}

// NewStatusBar creates a new StatusBar component.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{Width: 80, theme: theme}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// View renders the bar. Narrow terminals drop the request id first, then
// shorten the backend URL.
func (s *StatusBar) View() string {
	sep := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")

	parts := []string{s.sessionPart()}
	if s.Busy {
		parts = append(parts, s.theme.PendingStyle.Render(styles.StatusIndicators.Pending+" working"))
	}

	inner := s.Width - s.theme.StatusBar.GetHorizontalFrameSize()
	url := s.BackendURL
	if s.Width >= 100 && s.LastRequestID != "" {
		parts = append(parts, s.theme.ShortcutDsc.Render("req "+s.LastRequestID))
	}

	left := strings.Join(parts, sep)
	room := inner - lipgloss.Width(left) - lipgloss.Width(sep)
	if room < 8 {
		url = ""
	} else {
		url = util.TruncateWidth(url, room)
	}

	line := left
	if url != "" {
		line = s.theme.Label.Render(url) + sep + left
	}
	return s.theme.StatusBar.Width(s.Width).Render(line)
}

func (s *StatusBar) sessionPart() string {
	if s.Username == "" {
		return s.theme.Label.Render("not signed in")
	}
	part := s.theme.SuccessStyle.Render(styles.StatusIndicators.Active + " " + s.Username)
	if s.SignedInFor != "" && s.Width >= 80 {
		part += s.theme.ShortcutDsc.Render(" (" + s.SignedInFor + ")")
	}
	return part
}
