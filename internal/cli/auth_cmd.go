// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/agrinova-tui/internal/api"
	"github.com/jeranaias/agrinova-tui/internal/auth"
	"github.com/jeranaias/agrinova-tui/internal/session"
)

// =============================================================================
// WHOAMI
// =============================================================================

func newWhoamiCommand(envOf func() *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envOf()
			s := session.New()
			res := session.Resolve(cmd.Context(), env.Client, s.Generation())

			out := cmd.OutOrStdout()
			if s.Apply(res) {
				u := s.User()
				fmt.Fprintf(out, "%s (id %d)\n", u.Username, u.ID)
				return nil
			}
			// Any answer other than a user means anonymous, but a backend
			// that cannot be reached is worth reporting.
			if api.IsNetwork(res.Err) {
				return describe(res.Err, api.FallbackAuth)
			}
			env.Logger.Debug("profile lookup", zap.Error(res.Err))
			fmt.Fprintln(out, "Not signed in.")
			return nil
		},
	}
}

// =============================================================================
// LOGIN / SIGNUP
// =============================================================================

func newLoginCommand(envOf func() *Env) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username-or-email>",
		Short: "Sign in and remember the session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envOf()
			out := cmd.OutOrStdout()
			ask := newPrompter(cmd.InOrStdin(), out)

			c := auth.New(session.New())
			var err error
			if len(args) == 1 {
				c.Identifier = args[0]
			} else if c.Identifier, err = ask.Line("Username or email: "); err != nil {
				return &UsageError{Message: auth.MsgLoginRequired}
			}
			if c.Password = password; c.Password == "" {
				if c.Password, err = ask.Password("Password: "); err != nil {
					return &UsageError{Message: auth.MsgLoginRequired}
				}
			}

			if err := c.Submit(cmd.Context(), env.Client); err != nil {
				return authFailure(c, err)
			}
			fmt.Fprintln(out, SuccessStyle.Render(c.Notice().Text))
			warnNotPersisted(env, cmd.ErrOrStderr())
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func newSignupCommand(envOf func() *Env) *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envOf()
			out := cmd.OutOrStdout()
			ask := newPrompter(cmd.InOrStdin(), out)

			c := auth.New(session.New())
			c.SetMode(auth.ModeSignup)
			c.Username, c.Email, c.Password = username, email, password

			var err error
			if c.Username == "" {
				if c.Username, err = ask.Line("Username: "); err != nil {
					return &UsageError{Message: auth.MsgSignupRequired}
				}
			}
			if c.Email == "" {
				if c.Email, err = ask.Line("Email: "); err != nil {
					return &UsageError{Message: auth.MsgSignupRequired}
				}
			}
			if c.Password == "" {
				if c.Password, err = ask.Password("Password: "); err != nil {
					return &UsageError{Message: auth.MsgSignupRequired}
				}
			}

			if err := c.Submit(cmd.Context(), env.Client); err != nil {
				return authFailure(c, err)
			}
			fmt.Fprintln(out, SuccessStyle.Render(c.Notice().Text))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&username, "username", "", "account name")
	f.StringVar(&email, "email", "", "email address")
	f.StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

// =============================================================================
// LOGOUT
// =============================================================================

func newLogoutCommand(envOf func() *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envOf()
			c := auth.New(session.New())
			if err := c.Logout(cmd.Context(), env.Client); err != nil {
				return authFailure(c, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render(c.Notice().Text))
			return nil
		},
	}
}

// authFailure reports err with the notice the controller settled on.
func authFailure(c *auth.Controller, err error) error {
	if n := c.Notice(); n.Kind == auth.NoticeError && n.Text != "" {
		if _, ok := describe(err, "").(*UsageError); ok {
			return &UsageError{Message: n.Text}
		}
		return &failure{text: n.Text, err: err}
	}
	return describe(err, api.FallbackAuth)
}

func warnNotPersisted(env *Env, w io.Writer) {
	if env.Cookies == nil {
		fmt.Fprintln(w, DimStyle.Render("Session is not saved; set session.persist = true to stay signed in."))
	}
}
