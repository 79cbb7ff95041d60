// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panels

import (
	"context"

	"github.com/jeranaias/agrinova-tui/internal/api"
	"github.com/jeranaias/agrinova-tui/internal/util"
)

// ChatSender delivers one chat message.
type ChatSender interface {
	Chat(ctx context.Context, message, language string) (string, error)
}

// Entry is one line of the chat log.
type Entry struct {
	Text     string
	FromUser bool
}

// Chat is the chatbot panel. Its log only grows.
type Chat struct {
	// Language is sent with every message when set.
	Language string

	input   string
	log     []Entry
	err     string
	pending bool
	seq     Sequencer
}

// Input returns the unsent text.
func (c *Chat) Input() string { return c.input }

// SetInput replaces the unsent text.
func (c *Chat) SetInput(s string) { c.input = s }

// Log returns the conversation so far. The slice must not be modified.
func (c *Chat) Log() []Entry { return c.log }

// Err returns the error text, or "".
func (c *Chat) Err() string { return c.err }

// Pending reports whether the latest message is unanswered.
func (c *Chat) Pending() bool { return c.pending }

// Begin sends the current input. Blank input is ignored and ok is false.
// Otherwise the user's entry is appended right away, the input and error
// are cleared, and the returned text should be sent with the ticket.
func (c *Chat) Begin() (t Ticket, text string, ok bool) {
	if util.IsBlank(c.input) {
		return 0, "", false
	}
	text = c.input
	c.log = append(c.log, Entry{Text: text, FromUser: true})
	c.input = ""
	c.err = ""
	c.pending = true
	return c.seq.Next(), text, true
}

// Finish applies the reply to the message sent with t.
//
// A reply is always appended, even for an older ticket, because the
// message it answers is already in the log. Only the current ticket
// clears pending or sets the error, and the user entry is never removed.
func (c *Chat) Finish(t Ticket, reply string, err error) bool {
	current := c.seq.Current(t)
	if err != nil {
		if !current {
			return false
		}
		c.pending = false
		c.err = api.Describe(err, api.FallbackChat)
		return true
	}

	c.log = append(c.log, Entry{Text: reply, FromUser: false})
	if current {
		c.pending = false
	}
	return true
}

// Submit sends text synchronously. Blank text is a no-op.
func (c *Chat) Submit(ctx context.Context, s ChatSender, text string) error {
	c.input = text
	t, msg, ok := c.Begin()
	if !ok {
		return nil
	}
	reply, err := s.Chat(ctx, msg, c.Language)
	c.Finish(t, reply, err)
	return err
}
