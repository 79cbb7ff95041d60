// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/agrinova-tui/internal/api"
	"github.com/jeranaias/agrinova-tui/internal/auth"
	"github.com/jeranaias/agrinova-tui/internal/panels"
	"github.com/jeranaias/agrinova-tui/internal/session"
)

// Backend is everything the client asks of the AGRINOVA API.
type Backend interface {
	auth.Authenticator
	session.ProfileFetcher
	panels.Predictor
	panels.WeatherFetcher
	panels.ChatSender
	panels.PriceFetcher
}

// View is the top-level screen.
type View int

const (
	ViewAuth View = iota
	ViewDashboard
)

// String returns the view name used in logs.
func (v View) String() string {
	if v == ViewDashboard {
		return "dashboard"
	}
	return "auth"
}

// =============================================================================
// APP
// =============================================================================

// App wires the session, the auth form and the feature panels to a
// backend. All methods must be called from the update loop; the commands
// they return do the network work elsewhere and report back with the
// messages below.
type App struct {
	Session    *session.Session
	Auth       *auth.Controller
	Prediction *panels.Prediction
	Weather    *panels.Weather
	Chat       *panels.Chat
	Market     *panels.Market

	backend Backend
	ctx     context.Context
	logger  *zap.Logger
}

// New returns an anonymous app. ctx bounds every request the app starts.
func New(ctx context.Context, backend Backend, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := session.New()
	return &App{
		Session:    s,
		Auth:       auth.New(s),
		Prediction: &panels.Prediction{},
		Weather:    &panels.Weather{},
		Chat:       &panels.Chat{},
		Market:     &panels.Market{},
		backend:    backend,
		ctx:        ctx,
		logger:     logger.Named("app"),
	}
}

// View picks the screen from the session alone.
func (a *App) View() View {
	if a.Session.Authenticated() {
		return ViewDashboard
	}
	return ViewAuth
}

// Busy reports whether any request started by the app is unresolved.
func (a *App) Busy() bool {
	return a.Auth.Pending() || a.Auth.LoggingOut() ||
		a.Prediction.Pending() || a.Weather.Pending() ||
		a.Chat.Pending() || a.Market.Pending()
}

// =============================================================================
// MESSAGES
// =============================================================================

// ProfileResolvedMsg carries the startup identity check.
type ProfileResolvedMsg struct {
	Resolution session.Resolution
}

// AuthResultMsg carries a login or signup outcome.
type AuthResultMsg struct {
	Result auth.Result
}

// LogoutResultMsg carries a logout outcome.
type LogoutResultMsg struct {
	Ticket panels.Ticket
	Err    error
}

// PredictionResultMsg carries a classification outcome.
type PredictionResultMsg struct {
	Ticket panels.Ticket
	Result *api.Prediction
	Err    error
}

// WeatherResultMsg carries a weather lookup outcome.
type WeatherResultMsg struct {
	Ticket panels.Ticket
	Result *api.Weather
	Err    error
}

// ChatReplyMsg carries a chatbot reply.
type ChatReplyMsg struct {
	Ticket panels.Ticket
	Reply  string
	Err    error
}

// MarketResultMsg carries a market price lookup outcome.
type MarketResultMsg struct {
	Ticket panels.Ticket
	Quotes []api.MarketQuote
	Err    error
}

// =============================================================================
// COMMANDS
// =============================================================================

// ResolveSession asks the backend who is signed in. A late answer is
// dropped if a login or logout happened meanwhile.
func (a *App) ResolveSession() tea.Cmd {
	ctx, backend, gen := a.ctx, a.backend, a.Session.Generation()
	return func() tea.Msg {
		return ProfileResolvedMsg{Resolution: session.Resolve(ctx, backend, gen)}
	}
}

// SubmitAuth submits the auth form. It returns nil when validation fails;
// the notice already says why.
func (a *App) SubmitAuth() tea.Cmd {
	req, err := a.Auth.Begin()
	if err != nil {
		return nil
	}
	ctx, backend := a.ctx, a.backend
	return func() tea.Msg {
		return AuthResultMsg{Result: auth.Send(ctx, backend, req)}
	}
}

// Logout starts a logout.
func (a *App) Logout() tea.Cmd {
	if !a.Session.Authenticated() {
		return nil
	}
	t := a.Auth.BeginLogout()
	ctx, backend := a.ctx, a.backend
	return func() tea.Msg {
		return LogoutResultMsg{Ticket: t, Err: backend.Logout(ctx)}
	}
}

// SubmitPrediction classifies the selected image.
func (a *App) SubmitPrediction() tea.Cmd {
	req, err := a.Prediction.Begin()
	if err != nil {
		return nil
	}
	ctx, backend := a.ctx, a.backend
	return func() tea.Msg {
		res, err := backend.Predict(ctx, req.Filename, req.Data)
		return PredictionResultMsg{Ticket: req.Ticket, Result: res, Err: err}
	}
}

// SubmitWeather looks up the entered city.
func (a *App) SubmitWeather() tea.Cmd {
	t, city, err := a.Weather.Begin()
	if err != nil {
		return nil
	}
	ctx, backend := a.ctx, a.backend
	return func() tea.Msg {
		res, err := backend.Weather(ctx, city)
		return WeatherResultMsg{Ticket: t, Result: res, Err: err}
	}
}

// SubmitChat sends the chat input. Blank input sends nothing.
func (a *App) SubmitChat() tea.Cmd {
	t, text, ok := a.Chat.Begin()
	if !ok {
		return nil
	}
	ctx, backend, lang := a.ctx, a.backend, a.Chat.Language
	return func() tea.Msg {
		reply, err := backend.Chat(ctx, text, lang)
		return ChatReplyMsg{Ticket: t, Reply: reply, Err: err}
	}
}

// SubmitMarket looks up prices for the entered crop.
func (a *App) SubmitMarket() tea.Cmd {
	q, err := a.Market.Begin()
	if err != nil {
		return nil
	}
	ctx, backend := a.ctx, a.backend
	return func() tea.Msg {
		quotes, err := backend.MarketPrices(ctx, q.Crop, q.Location)
		return MarketResultMsg{Ticket: q.Ticket, Quotes: quotes, Err: err}
	}
}

// =============================================================================
// RESOLUTION
// =============================================================================

// Handle applies a result message. It reports whether msg belonged to the
// app; applied says whether it changed anything, which is false for stale
// results.
func (a *App) Handle(msg tea.Msg) (handled, applied bool) {
	switch msg := msg.(type) {
	case ProfileResolvedMsg:
		r := msg.Resolution
		applied = a.Session.Apply(r)
		if r.Err != nil {
			a.logger.Debug("session resolution failed", zap.Error(r.Err))
		} else if !applied {
			a.logger.Debug("session resolution discarded", zap.Uint64("generation", r.Generation))
		}
		return true, applied

	case AuthResultMsg:
		return true, a.Auth.Finish(msg.Result)

	case LogoutResultMsg:
		return true, a.Auth.FinishLogout(msg.Ticket, msg.Err)

	case PredictionResultMsg:
		return true, a.Prediction.Finish(msg.Ticket, msg.Result, msg.Err)

	case WeatherResultMsg:
		return true, a.Weather.Finish(msg.Ticket, msg.Result, msg.Err)

	case ChatReplyMsg:
		return true, a.Chat.Finish(msg.Ticket, msg.Reply, msg.Err)

	case MarketResultMsg:
		return true, a.Market.Finish(msg.Ticket, msg.Quotes, msg.Err)
	}
	return false, false
}
