// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/agrinova-tui/internal/ui/styles"
)

// =============================================================================
// PANEL FRAME
// =============================================================================

// Frame draws a titled, bordered box of the given outer width. The focused
// frame uses the focus ring color.
func Frame(theme *styles.Theme, title, body string, width int, focused bool) string {
	st := theme.Panel
	if focused {
		st = theme.PanelFocused
	}
	if width > 0 {
		st = st.Width(width - st.GetHorizontalBorderSize())
	}

	head := theme.PanelTitle.Render(title)
	if focused {
		head = theme.PanelTitle.Render("> " + title)
	}
	return st.Render(head + "\n" + body)
}

// Field renders one labeled input line. view is the widget's own rendering.
func Field(theme *styles.Theme, label, view string, focused bool) string {
	l := theme.Label
	if focused {
		l = l.Foreground(styles.FocusRing).Bold(true)
	}
	return l.Render(label+":") + " " + view
}

// KeyValue renders aligned "label  value" rows.
func KeyValue(theme *styles.Theme, rows [][2]string) string {
	w := 0
	for _, r := range rows {
		if lw := lipgloss.Width(r[0]); lw > w {
			w = lw
		}
	}
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		pad := strings.Repeat(" ", w-lipgloss.Width(r[0]))
		lines = append(lines, theme.Label.Render(r[0]+pad)+"  "+theme.Value.Render(r[1]))
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// NOTICES
// =============================================================================

// NoticeKind selects a notice's color and marker.
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeSuccess
	NoticeError
)

// Notice renders a one-line message. Empty text renders as "".
func Notice(theme *styles.Theme, kind NoticeKind, text string) string {
	if text == "" {
		return ""
	}
	switch kind {
	case NoticeSuccess:
		return theme.SuccessStyle.Render(styles.StatusIndicators.Success + " " + text)
	case NoticeError:
		return theme.ErrorStyle.Render(styles.StatusIndicators.Error + " " + text)
	}
	return theme.Label.Render(text)
}

// ErrorLine renders a panel error, or "" when there is none.
func ErrorLine(theme *styles.Theme, text string) string {
	return Notice(theme, NoticeError, text)
}
