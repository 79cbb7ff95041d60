// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/agrinova-tui/internal/ui/styles"
)

func theme() *styles.Theme { return styles.NewTheme("dark") }

// =============================================================================
// NAVBAR TESTS
// =============================================================================

func TestNavbar_Anonymous(t *testing.T) {
	n := NewNavbar(theme())
	n.SetWidth(60)
	out := n.View()

	for _, want := range []string{"AGRINOVA", "F1", "Login", "F2", "Sign Up"} {
		if !strings.Contains(out, want) {
			t.Errorf("navbar %q missing %q", out, want)
		}
	}
	if strings.Contains(out, "Log Out") {
		t.Error("anonymous navbar should not offer logout")
	}
	if w := lipgloss.Width(out); w != 60 {
		t.Errorf("navbar width = %d, want 60", w)
	}
}

func TestNavbar_SignedIn(t *testing.T) {
	n := NewNavbar(theme())
	n.Username = "alice"
	out := n.View()

	if !strings.Contains(out, "Hello, alice") {
		t.Errorf("navbar %q missing greeting", out)
	}
	if !strings.Contains(out, "Ctrl+L") || !strings.Contains(out, "Log Out") {
		t.Errorf("navbar %q missing logout shortcut", out)
	}
	if strings.Contains(out, "Sign Up") {
		t.Error("signed-in navbar should not offer signup")
	}
}

// =============================================================================
// STATUS BAR TESTS
// =============================================================================

func TestStatusBar_Wide(t *testing.T) {
	s := NewStatusBar(theme())
	s.SetWidth(120)
	s.BackendURL = "http://127.0.0.1:5000"
	s.Username = "alice"
	s.LastRequestID = "b1946ac9"
	out := s.View()

	for _, want := range []string{"http://127.0.0.1:5000", "alice", "req b1946ac9"} {
		if !strings.Contains(out, want) {
			t.Errorf("status bar %q missing %q", out, want)
		}
	}
}

func TestStatusBar_NarrowDropsRequestID(t *testing.T) {
	s := NewStatusBar(theme())
	s.SetWidth(40)
	s.BackendURL = "http://very-long-hostname.example.com:5000"
	s.LastRequestID = "b1946ac9"
	out := s.View()

	if strings.Contains(out, "b1946ac9") {
		t.Error("narrow status bar should drop the request id")
	}
	if !strings.Contains(out, "not signed in") {
		t.Errorf("status bar %q missing session state", out)
	}
	if w := lipgloss.Width(out); w != 40 {
		t.Errorf("status bar width = %d, want 40", w)
	}
}

func TestStatusBar_SignedInFor(t *testing.T) {
	s := NewStatusBar(theme())
	s.SetWidth(100)
	s.Username = "alice"
	s.SignedInFor = "12m"
	if out := s.View(); !strings.Contains(out, "alice (12m)") {
		t.Errorf("status bar %q missing session age", out)
	}

	s.SetWidth(60)
	if out := s.View(); strings.Contains(out, "12m") {
		t.Errorf("narrow status bar %q should drop the session age", out)
	}
}

func TestStatusBar_Busy(t *testing.T) {
	s := NewStatusBar(theme())
	s.Busy = true
	if !strings.Contains(s.View(), "working") {
		t.Error("busy status bar should say so")
	}
}

// =============================================================================
// PANEL TESTS
// =============================================================================

func TestFrame(t *testing.T) {
	th := theme()
	out := Frame(th, "Weather", "Pune", 30, true)

	if !strings.Contains(out, "> Weather") {
		t.Errorf("focused frame %q missing marker", out)
	}
	if w := lipgloss.Width(out); w != 30 {
		t.Errorf("frame width = %d, want 30", w)
	}
	if strings.Contains(Frame(th, "Weather", "", 30, false), ">") {
		t.Error("unfocused frame should not carry the marker")
	}
}

func TestKeyValue_Aligns(t *testing.T) {
	out := KeyValue(theme(), [][2]string{{"City", "Pune"}, {"Humidity", "48%"}})
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if strings.Index(lines[0], "Pune") != strings.Index(lines[1], "48%") {
		t.Errorf("values not aligned:\n%s", out)
	}
}

func TestNotice(t *testing.T) {
	th := theme()
	if Notice(th, NoticeError, "") != "" {
		t.Error("empty notice should render empty")
	}
	if out := Notice(th, NoticeError, "boom"); !strings.Contains(out, "[X] boom") {
		t.Errorf("error notice = %q", out)
	}
	if out := Notice(th, NoticeSuccess, "ok"); !strings.Contains(out, "[OK] ok") {
		t.Errorf("success notice = %q", out)
	}
}

// =============================================================================
// SPINNER TESTS
// =============================================================================

func TestSpinner_StartIsIdempotent(t *testing.T) {
	s := NewSpinner()
	if s.Start() == nil {
		t.Fatal("first Start should schedule a tick")
	}
	if s.Start() != nil {
		t.Error("second Start should not schedule another tick loop")
	}
	s.Stop()
	if s.IsActive() {
		t.Error("Stop should deactivate")
	}
	if _, cmd := s.Update(nil); cmd != nil {
		t.Error("stopped spinner should not tick")
	}
}

func TestSpinner_Label(t *testing.T) {
	s := NewSpinner()
	s.SetShowTimer(false)
	if out := s.Label("Predicting"); !strings.Contains(out, "Predicting...") {
		t.Errorf("Label() = %q", out)
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{42 * time.Second, "42s"},
		{125 * time.Second, "2m 5s"},
	}
	for _, tt := range tests {
		if got := formatElapsed(tt.d); got != tt.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
