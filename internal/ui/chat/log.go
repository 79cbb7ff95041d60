// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat renders the chatbot conversation for the TUI.
package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/agrinova-tui/internal/panels"
	"github.com/jeranaias/agrinova-tui/internal/ui/styles"
)

// =============================================================================
// LOG VIEW
// =============================================================================

// Log is a scrollable view of the chat panel's entries. Replies are
// rendered as markdown when enabled.
type Log struct {
	viewport viewport.Model
	theme    *styles.Theme
	markdown bool
	renderer *glamour.TermRenderer

	// rendered caches entries by index.
	rendered []string
	pending  string

	// dirty forces the next Sync to set the viewport content.
	dirty bool
}

// NewLog creates an empty log view.
func NewLog(theme *styles.Theme, markdown bool) *Log {
	return &Log{
		viewport: viewport.New(40, 8),
		theme:    theme,
		markdown: markdown,
		dirty:    true,
	}
}

// SetSize resizes the view and re-renders everything.
func (l *Log) SetSize(width, height int) {
	if width < 10 {
		width = 10
	}
	if height < 1 {
		height = 1
	}
	if width == l.viewport.Width && height == l.viewport.Height {
		return
	}
	l.viewport.Width = width
	l.viewport.Height = height
	l.reset()
}

// SetMarkdown toggles markdown rendering of replies.
func (l *Log) SetMarkdown(on bool) {
	if on == l.markdown {
		return
	}
	l.markdown = on
	l.reset()
}

// Markdown reports whether replies are rendered as markdown.
func (l *Log) Markdown() bool { return l.markdown }

func (l *Log) reset() {
	l.renderer = nil
	l.rendered = l.rendered[:0]
	l.dirty = true
}

// Sync renders any new entries and scrolls to the bottom when something
// changed. pending is shown under the last entry, or "" for none.
func (l *Log) Sync(entries []panels.Entry, pending string) {
	if len(entries) < len(l.rendered) {
		l.reset()
	}
	changed := l.dirty || pending != l.pending
	for i := len(l.rendered); i < len(entries); i++ {
		l.rendered = append(l.rendered, l.renderEntry(entries[i]))
		changed = true
	}
	l.pending = pending
	if !changed {
		return
	}
	l.dirty = false

	content := strings.Join(l.rendered, "\n")
	if pending != "" {
		if content != "" {
			content += "\n"
		}
		content += pending
	}
	if content == "" {
		content = l.theme.Hint.Render("Ask the assistant about crops, pests or weather.")
	}
	l.viewport.SetContent(content)
	l.viewport.GotoBottom()
}

// Update handles scrolling keys and the mouse wheel.
func (l *Log) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	l.viewport, cmd = l.viewport.Update(msg)
	return cmd
}

// View renders the visible part of the log.
func (l *Log) View() string {
	return l.viewport.View()
}

func (l *Log) renderEntry(e panels.Entry) string {
	wrap := lipgloss.NewStyle().Width(l.viewport.Width)
	if e.FromUser {
		return wrap.Render(l.theme.ChatUser.Render("You: ") + e.Text)
	}
	prefix := l.theme.ChatBot.Render("Bot: ")
	if !l.markdown {
		return wrap.Render(prefix + e.Text)
	}
	r := l.markdownRenderer()
	if r == nil {
		return wrap.Render(prefix + e.Text)
	}
	out, err := r.Render(e.Text)
	if err != nil {
		return wrap.Render(prefix + e.Text)
	}
	return prefix + "\n" + strings.Trim(out, "\n")
}

func (l *Log) markdownRenderer() *glamour.TermRenderer {
	if l.renderer != nil {
		return l.renderer
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(l.theme.GlamourStyle()),
		glamour.WithWordWrap(l.viewport.Width),
	)
	if err != nil {
		return nil
	}
	l.renderer = r
	return r
}
