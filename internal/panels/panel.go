// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panels

// =============================================================================
// SEQUENCE TICKETS
// =============================================================================

// Ticket identifies one request issued by a panel.
type Ticket uint64

// Sequencer hands out monotonically increasing tickets. Only the most
// recently issued ticket is current; anything older is stale.
type Sequencer struct {
	seq uint64
}

// Next issues a new current ticket.
func (s *Sequencer) Next() Ticket {
	s.seq++
	return Ticket(s.seq)
}

// Invalidate makes every issued ticket stale.
func (s *Sequencer) Invalidate() {
	s.seq++
}

// Current reports whether t is the latest ticket.
func (s *Sequencer) Current(t Ticket) bool {
	return uint64(t) == s.seq
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError is a local input problem detected before any request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// =============================================================================
// PANEL STATE
// =============================================================================

// State is the request lifecycle shared by the single-result panels.
// At most one of result and err is set, and pending is true only while
// the current ticket is unresolved.
type State[Out any] struct {
	result  *Out
	err     string
	pending bool
	seq     Sequencer
}

// Result returns the last successful result, or nil.
func (p *State[Out]) Result() *Out { return p.result }

// Err returns the error text, or "".
func (p *State[Out]) Err() string { return p.err }

// Pending reports whether the current request is unresolved.
func (p *State[Out]) Pending() bool { return p.pending }

func (p *State[Out]) begin() Ticket {
	p.result = nil
	p.err = ""
	p.pending = true
	return p.seq.Next()
}

// reject records a validation failure. Any request in flight is abandoned.
func (p *State[Out]) reject(msg string) error {
	p.seq.Invalidate()
	p.result = nil
	p.err = msg
	p.pending = false
	return &ValidationError{Message: msg}
}

// resolve applies a completion if t is still current.
func (p *State[Out]) resolve(t Ticket, out *Out, errText string) bool {
	if !p.seq.Current(t) {
		return false
	}
	p.pending = false
	if errText != "" {
		p.result = nil
		p.err = errText
		return true
	}
	p.result = out
	p.err = ""
	return true
}

// clear drops the displayed outcome without touching the request in flight.
func (p *State[Out]) clear() {
	p.result = nil
	p.err = ""
}

// abandon clears the outcome and makes any request in flight stale.
func (p *State[Out]) abandon() {
	p.seq.Invalidate()
	p.clear()
	p.pending = false
}
