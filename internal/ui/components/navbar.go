// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/agrinova-tui/internal/ui/styles"
)

// =============================================================================
// NAVBAR COMPONENT
// =============================================================================

// Brand is the title shown at the left of the navbar.
const Brand = "AGRINOVA"

// Navbar is the top bar. Anonymous users see the auth shortcuts; signed-in
// users see a greeting and the logout shortcut.
type Navbar struct {
	Username   string // empty when anonymous
	SignupMode bool   // highlights "Sign Up" instead of "Login"
	Width      int
	theme      *styles.Theme
}

// NewNavbar creates an anonymous navbar.
func NewNavbar(theme *styles.Theme) *Navbar {
	return &Navbar{Width: 80, theme: theme}
}

// SetWidth updates the navbar width.
func (n *Navbar) SetWidth(width int) {
	n.Width = width
}

// View renders the navbar.
func (n *Navbar) View() string {
	left := n.theme.Brand.Render(Brand)

	var right string
	if n.Username != "" {
		left += "  " + n.theme.Greeting.Render("Hello, "+n.Username)
		right = n.shortcut("Ctrl+L", "Log Out", false)
	} else {
		right = strings.Join([]string{
			n.shortcut("F1", "Login", !n.SignupMode),
			n.shortcut("F2", "Sign Up", n.SignupMode),
		}, "  ")
	}

	inner := n.Width - n.theme.Navbar.GetHorizontalFrameSize()
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return n.theme.Navbar.Width(n.Width).Render(left + strings.Repeat(" ", gap) + right)
}

func (n *Navbar) shortcut(key, desc string, active bool) string {
	d := n.theme.ShortcutDsc
	if active {
		d = n.theme.Value
	}
	return n.theme.ShortcutKey.Render(key) + " " + d.Render(desc)
}
