// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// THEME CREATION TESTS
// =============================================================================

func TestNewTheme_ForcedModes(t *testing.T) {
	dark := NewTheme("dark")
	if !dark.IsDark {
		t.Error("NewTheme(dark) should be dark")
	}
	if dark.GlamourStyle() != "dark" {
		t.Errorf("GlamourStyle() = %q, want dark", dark.GlamourStyle())
	}

	light := NewTheme("LIGHT")
	if light.IsDark {
		t.Error("NewTheme(LIGHT) should be light")
	}
	if light.GlamourStyle() != "light" {
		t.Errorf("GlamourStyle() = %q, want light", light.GlamourStyle())
	}
}

func TestThemeInitStyles(t *testing.T) {
	theme := NewTheme("dark")

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Navbar", theme.Navbar},
		{"StatusBar", theme.StatusBar},
		{"Panel", theme.Panel},
		{"PanelFocused", theme.PanelFocused},
		{"ErrorStyle", theme.ErrorStyle},
		{"SuccessStyle", theme.SuccessStyle},
		{"ChatUser", theme.ChatUser},
	}

	for _, s := range styles {
		if !strings.Contains(s.style.Render("test"), "test") {
			t.Errorf("%s style lost its content", s.name)
		}
	}
}

func TestPanelBorder(t *testing.T) {
	theme := NewTheme("dark")

	out := theme.Panel.Render("x")
	if lipgloss.Height(out) != 3 {
		t.Errorf("panel height = %d, want 3 (border + content)", lipgloss.Height(out))
	}
	if lipgloss.Width(theme.PanelFocused.Render("x")) != lipgloss.Width(out) {
		t.Error("focus must not change panel width")
	}
}

func TestSetSize(t *testing.T) {
	theme := NewTheme("auto")
	theme.SetSize(120, 40)
	if theme.Width != 120 || theme.Height != 40 {
		t.Errorf("SetSize() = %dx%d", theme.Width, theme.Height)
	}
}

func TestStatusIndicatorsAreASCII(t *testing.T) {
	for _, s := range []string{
		StatusIndicators.Success, StatusIndicators.Error,
		StatusIndicators.Pending, StatusIndicators.Active,
	} {
		for _, r := range s {
			if r > 127 {
				t.Errorf("indicator %q is not ASCII", s)
			}
		}
	}
}
