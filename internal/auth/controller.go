// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"

	"github.com/jeranaias/agrinova-tui/internal/api"
	"github.com/jeranaias/agrinova-tui/internal/panels"
	"github.com/jeranaias/agrinova-tui/internal/session"
)

// =============================================================================
// MODES AND NOTICES
// =============================================================================

// Mode selects the login or signup field set.
type Mode int

const (
	ModeLogin Mode = iota
	ModeSignup
)

// String returns the mode's display name.
func (m Mode) String() string {
	if m == ModeSignup {
		return "Sign Up"
	}
	return "Login"
}

// NoticeKind distinguishes success notices from errors.
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeSuccess
	NoticeError
)

// Notice is the single message line under the auth form.
type Notice struct {
	Kind NoticeKind
	Text string
}

// User-visible notice text.
const (
	MsgLoginRequired  = "Please enter username/email and password."
	MsgSignupRequired = "Please fill out username, email and password."
	MsgLoggedIn       = "Logged in successfully!"
	MsgRegistered     = "Registered successfully! You can now log in."
	MsgLoggedOut      = "Logged out successfully."
)

// Authenticator is the slice of the API the controller needs.
type Authenticator interface {
	Login(ctx context.Context, usernameOrEmail, password string) (*api.User, error)
	Signup(ctx context.Context, username, email, password string) (string, error)
	Logout(ctx context.Context) error
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the login/signup form and the logout action. It is the
// only writer of the session besides startup resolution.
type Controller struct {
	// Form fields. Identifier is the login "username or email".
	Identifier string
	Username   string
	Email      string
	Password   string

	session *session.Session
	mode    Mode
	notice  Notice

	pending bool
	seq     panels.Sequencer

	loggingOut bool
	logoutSeq  panels.Sequencer
}

// New returns a controller in login mode writing to s.
func New(s *session.Session) *Controller {
	return &Controller{session: s}
}

// Mode returns the active field set.
func (c *Controller) Mode() Mode { return c.mode }

// Notice returns the current notice.
func (c *Controller) Notice() Notice { return c.notice }

// Pending reports whether a login or signup is in flight.
func (c *Controller) Pending() bool { return c.pending }

// LoggingOut reports whether a logout is in flight.
func (c *Controller) LoggingOut() bool { return c.loggingOut }

// SetMode switches the field set and clears the notice. Typed fields are
// kept. A submit in flight stays current: the backend may already have
// issued a session cookie, so its answer is still applied.
func (c *Controller) SetMode(m Mode) {
	c.mode = m
	c.notice = Notice{}
}

// ToggleMode flips between login and signup.
func (c *Controller) ToggleMode() {
	if c.mode == ModeLogin {
		c.SetMode(ModeSignup)
		return
	}
	c.SetMode(ModeLogin)
}

// ClearNotice drops the notice.
func (c *Controller) ClearNotice() {
	c.notice = Notice{}
}

// =============================================================================
// SUBMIT
// =============================================================================

// Request is one login or signup to send.
type Request struct {
	Ticket     panels.Ticket
	Mode       Mode
	Identifier string
	Username   string
	Email      string
	Password   string
}

// Result is the outcome of sending a Request.
type Result struct {
	Ticket panels.Ticket
	Mode   Mode
	User   *api.User
	Err    error
}

// Begin validates the active field set. On success the controller is
// pending and the returned request should be sent.
//
// Every required field only has to be non-empty. Values are sent as typed,
// spaces included, and the backend decides whether they are valid.
func (c *Controller) Begin() (Request, error) {
	c.notice = Notice{}

	if c.mode == ModeLogin {
		if c.Identifier == "" || c.Password == "" {
			return Request{}, c.reject(MsgLoginRequired)
		}
	} else {
		if c.Username == "" || c.Email == "" || c.Password == "" {
			return Request{}, c.reject(MsgSignupRequired)
		}
	}

	c.pending = true
	return Request{
		Ticket:     c.seq.Next(),
		Mode:       c.mode,
		Identifier: c.Identifier,
		Username:   c.Username,
		Email:      c.Email,
		Password:   c.Password,
	}, nil
}

// reject leaves a submit in flight alone; it is still applied when it lands.
func (c *Controller) reject(msg string) error {
	c.notice = Notice{Kind: NoticeError, Text: msg}
	return &panels.ValidationError{Message: msg}
}

// Send performs req. It does not touch the controller.
func Send(ctx context.Context, a Authenticator, req Request) Result {
	res := Result{Ticket: req.Ticket, Mode: req.Mode}
	if req.Mode == ModeLogin {
		res.User, res.Err = a.Login(ctx, req.Identifier, req.Password)
	} else {
		_, res.Err = a.Signup(ctx, req.Username, req.Email, req.Password)
	}
	return res
}

// Finish applies r if its ticket is still current and reports whether
// anything changed.
func (c *Controller) Finish(r Result) bool {
	if !c.seq.Current(r.Ticket) {
		return false
	}
	c.pending = false

	if r.Err != nil {
		c.notice = Notice{Kind: NoticeError, Text: api.Describe(r.Err, api.FallbackAuth)}
		return true
	}

	switch r.Mode {
	case ModeLogin:
		if r.User != nil {
			c.session.SignIn(*r.User)
		}
		c.mode = ModeLogin
		c.Identifier = ""
		c.Password = ""
		c.notice = Notice{Kind: NoticeSuccess, Text: MsgLoggedIn}
	case ModeSignup:
		c.mode = ModeLogin
		c.Identifier = ""
		c.Username = ""
		c.Email = ""
		c.Password = ""
		c.notice = Notice{Kind: NoticeSuccess, Text: MsgRegistered}
	}
	return true
}

// Submit validates, sends and applies synchronously.
func (c *Controller) Submit(ctx context.Context, a Authenticator) error {
	req, err := c.Begin()
	if err != nil {
		return err
	}
	res := Send(ctx, a, req)
	c.Finish(res)
	return res.Err
}

// =============================================================================
// LOGOUT
// =============================================================================

// BeginLogout marks a logout in flight and returns its ticket.
func (c *Controller) BeginLogout() panels.Ticket {
	c.notice = Notice{}
	c.loggingOut = true
	return c.logoutSeq.Next()
}

// FinishLogout applies the outcome of the logout issued with t. The session
// is cleared only when the backend confirmed it.
func (c *Controller) FinishLogout(t panels.Ticket, err error) bool {
	if !c.logoutSeq.Current(t) {
		return false
	}
	c.loggingOut = false

	switch {
	case err == nil:
		c.session.SignOut()
		c.notice = Notice{Kind: NoticeSuccess, Text: MsgLoggedOut}
	case api.IsNetwork(err):
		c.notice = Notice{Kind: NoticeError, Text: api.Describe(err, api.FallbackLogout)}
	default:
		c.notice = Notice{Kind: NoticeError, Text: api.FallbackLogout}
	}
	return true
}

// Logout runs the logout synchronously.
func (c *Controller) Logout(ctx context.Context, a Authenticator) error {
	t := c.BeginLogout()
	err := a.Logout(ctx)
	c.FinishLogout(t, err)
	return err
}
