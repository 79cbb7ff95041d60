// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"sync"
	"time"

	"github.com/jeranaias/agrinova-tui/internal/api"
	"github.com/jeranaias/agrinova-tui/internal/util"
)

// =============================================================================
// SESSION
// =============================================================================

// Session holds the identity of the current caller, or none.
//
// Every identity write bumps a generation counter. Work that was started
// against an older generation (a slow startup profile lookup, say) can
// check it and step aside instead of overwriting a newer login or logout.
type Session struct {
	mu sync.Mutex

	user      *api.User
	gen       uint64
	changedAt time.Time
}

// New returns an anonymous session.
func New() *Session {
	return &Session{changedAt: time.Now()}
}

// User returns a copy of the current identity, or nil when anonymous.
func (s *Session) User() *api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Authenticated reports whether an identity is set.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// Generation returns the identity generation.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// SignIn sets the identity.
func (s *Session) SignIn(u api.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
	s.bumpLocked()
}

// SignOut clears the identity.
func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.bumpLocked()
}

func (s *Session) bumpLocked() {
	s.gen++
	s.changedAt = time.Now()
}

// =============================================================================
// STARTUP RESOLUTION
// =============================================================================

// ProfileFetcher asks the backend who owns the ambient credential.
type ProfileFetcher interface {
	Profile(ctx context.Context) (*api.User, error)
}

// Resolution is the outcome of a startup identity lookup.
type Resolution struct {
	// Generation is the session generation the lookup was issued against.
	Generation uint64
	User       *api.User
	Err        error
}

// Resolve performs one profile lookup. It does not touch the session so it
// can run off the UI loop; hand the result to Apply.
func Resolve(ctx context.Context, f ProfileFetcher, gen uint64) Resolution {
	user, err := f.Profile(ctx)
	return Resolution{Generation: gen, User: user, Err: err}
}

// Apply installs a successful resolution. It reports whether the session
// changed. Failures leave the session anonymous, and a resolution issued
// before a later identity write is discarded.
func (s *Session) Apply(r Resolution) bool {
	if r.Err != nil || r.User == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Generation != s.gen {
		return false
	}
	u := *r.User
	s.user = &u
	s.bumpLocked()
	return true
}

// =============================================================================
// SESSION STATUS
// =============================================================================

// Status represents the current session status.
type Status struct {
	Authenticated bool
	Username      string
	Generation    uint64
	Since         time.Duration // since the identity last changed
}

// GetStatus returns the current session status.
func (s *Session) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Authenticated: s.user != nil,
		Generation:    s.gen,
		Since:         time.Since(s.changedAt),
	}
	if s.user != nil {
		st.Username = s.user.Username
	}
	return st
}

// FormatDuration returns a human-readable duration string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		secs := int(d.Seconds())
		return util.IntToString(secs) + "s"
	}
	if d >= time.Hour {
		hours := int(d.Hours())
		mins := int(d.Minutes()) % 60
		if mins == 0 {
			return util.IntToString(hours) + "h"
		}
		return util.IntToString(hours) + "h " + util.IntToString(mins) + "m"
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return util.IntToString(mins) + "m"
	}
	return util.IntToString(mins) + "m " + util.IntToString(secs) + "s"
}
