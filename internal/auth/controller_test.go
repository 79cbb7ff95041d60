// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/agrinova-tui/internal/api"
	"github.com/jeranaias/agrinova-tui/internal/apitest"
	"github.com/jeranaias/agrinova-tui/internal/panels"
	"github.com/jeranaias/agrinova-tui/internal/session"
)

func setup(t *testing.T) (*apitest.Server, *api.Client, *Controller, *session.Session) {
	t.Helper()
	srv := apitest.New(t)
	srv.AddUser("alice", "alice@example.com", "wonderland")
	client := api.NewClientWithConfig(&api.ClientConfig{BaseURL: srv.URL})
	sess := session.New()
	return srv, client, New(sess), sess
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestSubmit_LoginValidation(t *testing.T) {
	srv, client, c, _ := setup(t)

	c.Identifier = "alice"
	err := c.Submit(context.Background(), client)

	var verr *panels.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, Notice{Kind: NoticeError, Text: MsgLoginRequired}, c.Notice())
	assert.False(t, c.Pending())
	assert.Empty(t, srv.Requests("/login"))
}

func TestSubmit_SignupValidation(t *testing.T) {
	srv, client, c, _ := setup(t)

	c.SetMode(ModeSignup)
	c.Username = "bob"
	c.Password = "pw"
	err := c.Submit(context.Background(), client)

	require.Error(t, err)
	assert.Equal(t, MsgSignupRequired, c.Notice().Text)
	assert.Empty(t, srv.Requests("/signup"))
}

// =============================================================================
// LOGIN / SIGNUP
// =============================================================================

func TestSubmit_LoginSuccess(t *testing.T) {
	srv, client, c, sess := setup(t)

	c.Identifier = "alice"
	c.Password = "wonderland"
	require.NoError(t, c.Submit(context.Background(), client))

	require.True(t, sess.Authenticated())
	assert.Equal(t, "alice", sess.User().Username)
	assert.Empty(t, c.Identifier)
	assert.Empty(t, c.Password)
	assert.Equal(t, Notice{Kind: NoticeSuccess, Text: MsgLoggedIn}, c.Notice())

	var body map[string]string
	reqs := srv.Requests("/login")
	require.Len(t, reqs, 1)
	require.NoError(t, json.Unmarshal(reqs[0].Body, &body))
	assert.Equal(t, map[string]string{"username_or_email": "alice", "password": "wonderland"}, body)
}

func TestSubmit_LoginRejected(t *testing.T) {
	_, client, c, sess := setup(t)

	c.Identifier = "alice"
	c.Password = "nope"
	require.Error(t, c.Submit(context.Background(), client))

	assert.False(t, sess.Authenticated())
	assert.Equal(t, Notice{Kind: NoticeError, Text: "Invalid username/email or password"}, c.Notice())
	assert.Equal(t, "alice", c.Identifier, "fields kept on failure")
}

func TestSubmit_ServerErrorWithoutBody(t *testing.T) {
	srv, client, c, _ := setup(t)
	srv.Respond("/login", http.StatusBadGateway, "")

	c.Identifier = "alice"
	c.Password = "wonderland"
	require.Error(t, c.Submit(context.Background(), client))
	assert.Equal(t, "An error occurred", c.Notice().Text)
}

func TestSubmit_NetworkErrorIsDistinguishable(t *testing.T) {
	srv, _, c, _ := setup(t)
	url := srv.URL
	srv.Close()
	client := api.NewClientWithConfig(&api.ClientConfig{BaseURL: url})

	c.Identifier = "alice"
	c.Password = "wonderland"
	require.Error(t, c.Submit(context.Background(), client))
	assert.True(t, strings.HasPrefix(c.Notice().Text, "Network error: "), c.Notice().Text)
}

func TestSubmit_SignupFlipsToLoginAndClearsFields(t *testing.T) {
	srv, client, c, sess := setup(t)

	c.Identifier = "leftover"
	c.SetMode(ModeSignup)
	c.Username = "bob"
	c.Email = "bob@example.com"
	c.Password = "builder"
	require.NoError(t, c.Submit(context.Background(), client))

	assert.Equal(t, ModeLogin, c.Mode())
	assert.Equal(t, Notice{Kind: NoticeSuccess, Text: MsgRegistered}, c.Notice())
	assert.Empty(t, c.Identifier)
	assert.Empty(t, c.Username)
	assert.Empty(t, c.Email)
	assert.Empty(t, c.Password)
	assert.False(t, sess.Authenticated(), "signup does not log in")

	reqs := srv.Requests("/signup")
	require.Len(t, reqs, 1)
	assert.False(t, reqs[0].HasCookie)

	// Logging in right after shows empty fields, and fails validation.
	require.Error(t, c.Submit(context.Background(), client))
	assert.Equal(t, MsgLoginRequired, c.Notice().Text)
}

// =============================================================================
// MODE SWITCHING
// =============================================================================

func TestSetMode_ClearsNoticeKeepsFields(t *testing.T) {
	_, client, c, _ := setup(t)
	_ = c.Submit(context.Background(), client) // validation notice
	require.NotEmpty(t, c.Notice().Text)

	c.Identifier = "alice"
	c.Password = "secret"
	c.ToggleMode()

	assert.Equal(t, ModeSignup, c.Mode())
	assert.Equal(t, Notice{}, c.Notice())
	assert.Equal(t, "alice", c.Identifier)
	assert.Equal(t, "secret", c.Password)

	c.ToggleMode()
	assert.Equal(t, ModeLogin, c.Mode())
}

func TestSetMode_InFlightLoginStillApplies(t *testing.T) {
	_, client, c, sess := setup(t)
	ctx := context.Background()

	c.Identifier = "alice"
	c.Password = "wonderland"
	req, err := c.Begin()
	require.NoError(t, err)
	require.True(t, c.Pending())

	c.SetMode(ModeSignup)
	assert.True(t, c.Pending(), "switching mode does not cancel the login")

	res := Send(ctx, client, req)
	require.NoError(t, res.Err)
	assert.True(t, c.Finish(res))
	assert.False(t, c.Pending())
	assert.Equal(t, MsgLoggedIn, c.Notice().Text)
	assert.Equal(t, ModeLogin, c.Mode(), "the form is back on login for the next sign-in")

	// The session agrees with the cookie the backend issued.
	require.True(t, sess.Authenticated())
	u, err := client.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess.User().Username, u.Username)
}

func TestSubmit_ValidationKeepsInFlightLogin(t *testing.T) {
	_, client, c, sess := setup(t)
	ctx := context.Background()

	c.Identifier = "alice"
	c.Password = "wonderland"
	req, err := c.Begin()
	require.NoError(t, err)

	c.SetMode(ModeSignup)
	require.Error(t, c.Submit(ctx, client))
	assert.Equal(t, MsgSignupRequired, c.Notice().Text)

	assert.True(t, c.Finish(Send(ctx, client, req)))
	assert.True(t, sess.Authenticated())
}

func TestSubmit_WhitespaceFieldsAreSent(t *testing.T) {
	srv, client, c, _ := setup(t)

	c.Identifier = " "
	c.Password = " "
	require.Error(t, c.Submit(context.Background(), client))

	assert.Len(t, srv.Requests("/login"), 1, "only empty fields fail locally")
	assert.Equal(t, "Invalid username/email or password", c.Notice().Text)
}

func TestFinish_LatestTicketWins(t *testing.T) {
	_, client, c, sess := setup(t)
	ctx := context.Background()

	c.Identifier = "alice"
	c.Password = "wrong"
	first, err := c.Begin()
	require.NoError(t, err)

	c.Password = "wonderland"
	second, err := c.Begin()
	require.NoError(t, err)

	assert.True(t, c.Finish(Send(ctx, client, second)))
	assert.False(t, c.Finish(Send(ctx, client, first)), "older failure must not overwrite the login")
	assert.True(t, sess.Authenticated())
	assert.Equal(t, MsgLoggedIn, c.Notice().Text)
}

// =============================================================================
// LOGOUT
// =============================================================================

func TestLogout_Success(t *testing.T) {
	_, client, c, sess := setup(t)
	ctx := context.Background()
	c.Identifier = "alice"
	c.Password = "wonderland"
	require.NoError(t, c.Submit(ctx, client))

	require.NoError(t, c.Logout(ctx, client))
	assert.False(t, sess.Authenticated())
	assert.Equal(t, Notice{Kind: NoticeSuccess, Text: MsgLoggedOut}, c.Notice())
	assert.False(t, c.LoggingOut())
}

func TestLogout_RejectedKeepsSession(t *testing.T) {
	srv, client, c, sess := setup(t)
	ctx := context.Background()
	c.Identifier = "alice"
	c.Password = "wonderland"
	require.NoError(t, c.Submit(ctx, client))

	srv.Respond("/logout", http.StatusInternalServerError, `{"error":"db locked"}`)
	require.Error(t, c.Logout(ctx, client))

	assert.True(t, sess.Authenticated(), "no optimistic clearing")
	assert.Equal(t, Notice{Kind: NoticeError, Text: "Logout failed."}, c.Notice())
}

func TestLogout_NetworkError(t *testing.T) {
	_, _, c, sess := setup(t)
	sess.SignIn(api.User{ID: 1, Username: "alice"})

	client := api.NewClientWithConfig(&api.ClientConfig{BaseURL: "http://127.0.0.1:1"})
	require.Error(t, c.Logout(context.Background(), client))

	assert.True(t, sess.Authenticated())
	assert.True(t, strings.HasPrefix(c.Notice().Text, "Network error: "))
}

func TestLogout_StaleCompletionIgnored(t *testing.T) {
	_, _, c, sess := setup(t)
	sess.SignIn(api.User{ID: 1, Username: "alice"})

	first := c.BeginLogout()
	second := c.BeginLogout()

	assert.False(t, c.FinishLogout(first, nil))
	assert.True(t, sess.Authenticated())
	assert.True(t, c.LoggingOut())

	assert.True(t, c.FinishLogout(second, nil))
	assert.False(t, sess.Authenticated())
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "Login", ModeLogin.String())
	assert.Equal(t, "Sign Up", ModeSignup.String())
}
