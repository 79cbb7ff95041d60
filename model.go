// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/agrinova-tui/internal/api"
	"github.com/jeranaias/agrinova-tui/internal/app"
	"github.com/jeranaias/agrinova-tui/internal/auth"
	"github.com/jeranaias/agrinova-tui/internal/config"
	"github.com/jeranaias/agrinova-tui/internal/panels"
	"github.com/jeranaias/agrinova-tui/internal/session"
	"github.com/jeranaias/agrinova-tui/internal/ui/chat"
	"github.com/jeranaias/agrinova-tui/internal/ui/components"
	"github.com/jeranaias/agrinova-tui/internal/ui/styles"
	"github.com/jeranaias/agrinova-tui/internal/util"
)

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// RequestInfo is what the status bar shows about the API client.
type RequestInfo interface {
	BaseURL() string
	LastRequestID() string
}

// target is one focusable input on the dashboard.
type target int

const (
	targetImage target = iota
	targetCity
	targetChat
	targetCrop
	targetLocation
	targetCount
)

// panelOf maps an input to the panel that owns it.
func panelOf(t target) int {
	switch t {
	case targetImage:
		return 0
	case targetCity:
		return 1
	case targetChat:
		return 2
	}
	return 3
}

// authField is one input of the auth form.
type authField int

const (
	fieldIdentifier authField = iota
	fieldUsername
	fieldEmail
	fieldPassword
)

var (
	loginFields  = []authField{fieldIdentifier, fieldPassword}
	signupFields = []authField{fieldUsername, fieldEmail, fieldPassword}
)

// ConfigReloadedMsg is sent when the config file changes on disk.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// Model is the root bubbletea model.
type Model struct {
	app    *app.App
	client RequestInfo
	cfg    *config.Config
	theme  *styles.Theme

	navbar    *components.Navbar
	statusBar *components.StatusBar
	spinner   components.Spinner
	chatLog   *chat.Log

	// Auth form
	authInputs map[authField]*textinput.Model
	authFocus  int

	// Dashboard
	inputs [targetCount]*textinput.Model
	focus  target

	resolving  bool
	compact    bool
	reloadNote string

	width  int
	height int
}

// NewModel builds the root model around a.
func NewModel(a *app.App, client RequestInfo, cfg *config.Config, theme *styles.Theme) *Model {
	if cfg == nil {
		cfg = config.Default()
	}
	m := &Model{
		app:        a,
		client:     client,
		cfg:        cfg,
		theme:      theme,
		navbar:     components.NewNavbar(theme),
		statusBar:  components.NewStatusBar(theme),
		spinner:    components.NewSpinner(),
		chatLog:    chat.NewLog(theme, cfg.Chat.Markdown),
		authInputs: make(map[authField]*textinput.Model),
		compact:    cfg.UI.Compact,
		width:      100,
		height:     30,
	}
	a.Chat.Language = cfg.Chat.Language

	m.authInputs[fieldIdentifier] = newInput("username or email", false)
	m.authInputs[fieldUsername] = newInput("username", false)
	m.authInputs[fieldEmail] = newInput("email", false)
	m.authInputs[fieldPassword] = newInput("password", true)

	m.inputs[targetImage] = newInput("path/to/leaf.jpg", false)
	m.inputs[targetCity] = newInput("city", false)
	m.inputs[targetChat] = newInput("ask something", false)
	m.inputs[targetCrop] = newInput("crop", false)
	m.inputs[targetLocation] = newInput("location (optional)", false)

	m.resize()
	m.refocus()
	return m
}

func newInput(placeholder string, secret bool) *textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = 256
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '*'
	}
	return &ti
}

// Init resolves the stored session.
func (m *Model) Init() tea.Cmd {
	m.resolving = true
	return tea.Batch(textinput.Blink, m.app.ResolveSession(), m.spinner.Start())
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		return m, m.chatLog.Update(msg)

	case ConfigReloadedMsg:
		m.applyConfig(msg)
		return m, nil

	case app.ProfileResolvedMsg:
		m.resolving = false
	}

	if handled, _ := m.app.Handle(msg); handled {
		return m, m.afterChange()
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// afterChange re-syncs everything derived from app state.
func (m *Model) afterChange() tea.Cmd {
	m.syncAuthInputs()
	m.refocus()
	if m.app.Busy() || m.resolving {
		return m.spinner.Start()
	}
	m.spinner.Stop()
	return nil
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	}

	if m.app.View() == app.ViewAuth {
		return m.handleAuthKey(msg)
	}
	return m.handleDashboardKey(msg)
}

// =============================================================================
// AUTH VIEW
// =============================================================================

func (m *Model) activeAuthFields() []authField {
	if m.app.Auth.Mode() == auth.ModeSignup {
		return signupFields
	}
	return loginFields
}

func (m *Model) handleAuthKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.app.Auth
	switch msg.String() {
	case "ctrl+t":
		c.ToggleMode()
		return m, m.modeChanged()
	case "f1":
		c.SetMode(auth.ModeLogin)
		return m, m.modeChanged()
	case "f2":
		c.SetMode(auth.ModeSignup)
		return m, m.modeChanged()
	case "tab", "down":
		m.authFocus = (m.authFocus + 1) % len(m.activeAuthFields())
		m.refocus()
		return m, nil
	case "shift+tab", "up":
		n := len(m.activeAuthFields())
		m.authFocus = (m.authFocus + n - 1) % n
		m.refocus()
		return m, nil
	case "enter":
		if c.Pending() {
			return m, nil
		}
		cmd := m.app.SubmitAuth()
		return m, tea.Batch(cmd, m.afterChange())
	}

	if c.Pending() {
		return m, nil
	}
	field := m.activeAuthFields()[m.authFocus]
	in := m.authInputs[field]
	updated, cmd := in.Update(msg)
	*in = updated
	m.storeAuthField(field, in.Value())
	return m, cmd
}

func (m *Model) modeChanged() tea.Cmd {
	m.authFocus = 0
	return m.afterChange()
}

func (m *Model) storeAuthField(f authField, v string) {
	c := m.app.Auth
	switch f {
	case fieldIdentifier:
		c.Identifier = v
	case fieldUsername:
		c.Username = v
	case fieldEmail:
		c.Email = v
	case fieldPassword:
		c.Password = v
	}
}

// syncAuthInputs copies the controller's fields back into the widgets,
// which matters after it clears them on success.
func (m *Model) syncAuthInputs() {
	c := m.app.Auth
	values := map[authField]string{
		fieldIdentifier: c.Identifier,
		fieldUsername:   c.Username,
		fieldEmail:      c.Email,
		fieldPassword:   c.Password,
	}
	for f, v := range values {
		if in := m.authInputs[f]; in.Value() != v {
			in.SetValue(v)
		}
	}
	if m.authFocus >= len(m.activeAuthFields()) {
		m.authFocus = 0
	}
}

// =============================================================================
// DASHBOARD
// =============================================================================

func (m *Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+l":
		if m.app.Auth.LoggingOut() {
			return m, nil
		}
		cmd := m.app.Logout()
		return m, tea.Batch(cmd, m.afterChange())
	case "tab":
		m.focus = (m.focus + 1) % targetCount
		m.refocus()
		return m, nil
	case "shift+tab":
		m.focus = (m.focus + targetCount - 1) % targetCount
		m.refocus()
		return m, nil
	case "pgup", "pgdown":
		return m, m.chatLog.Update(msg)
	case "enter":
		if m.focusedPending() {
			return m, nil
		}
		cmd := m.submitFocused()
		return m, tea.Batch(cmd, m.afterChange())
	}

	if m.focusedPending() {
		return m, nil
	}
	in := m.inputs[m.focus]
	before := in.Value()
	updated, cmd := in.Update(msg)
	*in = updated
	if v := in.Value(); v != before {
		m.storeDashboardField(m.focus, v)
	}
	return m, cmd
}

func (m *Model) focusedPending() bool {
	switch panelOf(m.focus) {
	case 0:
		return m.app.Prediction.Pending()
	case 1:
		return m.app.Weather.Pending()
	case 2:
		return m.app.Chat.Pending()
	}
	return m.app.Market.Pending()
}

func (m *Model) submitFocused() tea.Cmd {
	switch panelOf(m.focus) {
	case 0:
		return m.app.SubmitPrediction()
	case 1:
		return m.app.SubmitWeather()
	case 2:
		cmd := m.app.SubmitChat()
		m.inputs[targetChat].SetValue(m.app.Chat.Input())
		return cmd
	}
	return m.app.SubmitMarket()
}

func (m *Model) storeDashboardField(t target, v string) {
	switch t {
	case targetImage:
		m.app.Prediction.Select(strings.TrimSpace(v))
	case targetCity:
		m.app.Weather.SetCity(v)
	case targetChat:
		m.app.Chat.SetInput(v)
	case targetCrop:
		m.app.Market.SetCrop(v)
	case targetLocation:
		m.app.Market.SetLocation(v)
	}
}

// refocus gives keyboard focus to exactly one input of the current view.
func (m *Model) refocus() {
	for _, in := range m.authInputs {
		in.Blur()
	}
	for _, in := range m.inputs {
		in.Blur()
	}
	if m.app.View() == app.ViewAuth {
		m.authInputs[m.activeAuthFields()[m.authFocus]].Focus()
		return
	}
	m.inputs[m.focus].Focus()
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

func (m *Model) applyConfig(msg ConfigReloadedMsg) {
	if msg.Err != nil {
		m.reloadNote = "config reload failed: " + msg.Err.Error()
		return
	}
	m.reloadNote = ""
	m.cfg = msg.Config
	m.compact = msg.Config.UI.Compact
	m.chatLog.SetMarkdown(msg.Config.Chat.Markdown)
	m.app.Chat.Language = msg.Config.Chat.Language
	m.resize()
}

// =============================================================================
// VIEW
// =============================================================================

func (m *Model) columns() int {
	if m.compact || m.width < 80 {
		return 1
	}
	return 2
}

func (m *Model) panelWidth() int {
	return m.width / m.columns()
}

func (m *Model) resize() {
	m.navbar.SetWidth(m.width)
	m.statusBar.SetWidth(m.width)

	inner := m.panelWidth() - 4
	for _, in := range m.inputs {
		in.Width = inner - 12
	}
	for _, in := range m.authInputs {
		in.Width = 40
	}
	logHeight := 8
	if m.compact {
		logHeight = 4
	}
	m.chatLog.SetSize(inner, logHeight)
}

// View renders the navbar, the current screen and the status bar.
func (m *Model) View() string {
	st := m.app.Session.GetStatus()

	m.navbar.Username = st.Username
	m.statusBar.Username = st.Username
	m.statusBar.SignedInFor = ""
	if st.Authenticated {
		m.statusBar.SignedInFor = session.FormatDuration(st.Since)
	}
	m.navbar.SignupMode = m.app.Auth.Mode() == auth.ModeSignup
	m.statusBar.BackendURL = m.client.BaseURL()
	m.statusBar.LastRequestID = m.client.LastRequestID()
	m.statusBar.Busy = m.app.Busy() || m.resolving

	var body string
	if m.app.View() == app.ViewDashboard {
		body = m.viewDashboard()
	} else {
		body = m.viewAuth()
	}
	if m.reloadNote != "" {
		body += "\n" + components.ErrorLine(m.theme, m.reloadNote)
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.navbar.View(), body, m.statusBar.View())
}

func noticeKind(k auth.NoticeKind) components.NoticeKind {
	switch k {
	case auth.NoticeSuccess:
		return components.NoticeSuccess
	case auth.NoticeError:
		return components.NoticeError
	}
	return components.NoticeNone
}

func (m *Model) viewAuth() string {
	c := m.app.Auth
	labels := map[authField]string{
		fieldIdentifier: "Username or email",
		fieldUsername:   "Username",
		fieldEmail:      "Email",
		fieldPassword:   "Password",
	}

	var lines []string
	for i, f := range m.activeAuthFields() {
		lines = append(lines, components.Field(m.theme, labels[f], m.authInputs[f].View(), i == m.authFocus))
	}
	lines = append(lines, "")

	switch {
	case c.Pending():
		lines = append(lines, m.spinner.Label(c.Mode().String()))
	case c.Notice().Text != "":
		n := c.Notice()
		lines = append(lines, components.Notice(m.theme, noticeKind(n.Kind), n.Text))
	case m.resolving:
		lines = append(lines, m.spinner.Label("Checking session"))
	default:
		lines = append(lines, m.theme.Hint.Render("Enter submit  Tab next field  Ctrl+T switch to "+otherMode(c.Mode())))
	}

	width := 56
	if m.width < width {
		width = m.width
	}
	return components.Frame(m.theme, c.Mode().String(), strings.Join(lines, "\n"), width, true)
}

func otherMode(mode auth.Mode) string {
	if mode == auth.ModeLogin {
		return auth.ModeSignup.String()
	}
	return auth.ModeLogin.String()
}

func (m *Model) viewDashboard() string {
	w := m.panelWidth()
	focused := panelOf(m.focus)
	boxes := []string{
		components.Frame(m.theme, "Plant Disease", m.viewPrediction(), w, focused == 0),
		components.Frame(m.theme, "Weather", m.viewWeather(), w, focused == 1),
		components.Frame(m.theme, "Assistant", m.viewChat(), w, focused == 2),
		components.Frame(m.theme, "Market Prices", m.viewMarket(), w, focused == 3),
	}

	if m.columns() == 1 {
		return lipgloss.JoinVertical(lipgloss.Left, boxes...)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, boxes[0], boxes[1]),
		lipgloss.JoinHorizontal(lipgloss.Top, boxes[2], boxes[3]),
	)
}

func (m *Model) field(label string, t target) string {
	return components.Field(m.theme, label, m.inputs[t].View(), m.focus == t)
}

func (m *Model) viewPrediction() string {
	p := m.app.Prediction
	lines := []string{m.field("Image", targetImage)}
	switch {
	case p.Pending():
		lines = append(lines, m.spinner.Label("Predicting"))
	case p.Result() != nil:
		lines = append(lines, components.KeyValue(m.theme, [][2]string{
			{"Disease", p.Result().Label},
			{"Confidence", p.Confidence()},
		}))
	case p.Err() != "":
		lines = append(lines, components.ErrorLine(m.theme, p.Err()))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewWeather() string {
	w := m.app.Weather
	lines := []string{m.field("City", targetCity)}
	switch {
	case w.Pending():
		lines = append(lines, m.spinner.Label("Fetching weather"))
	case w.Result() != nil:
		r := w.Result()
		lines = append(lines, components.KeyValue(m.theme, [][2]string{
			{"City", r.City},
			{"Temperature", util.FloatToStringPrec(r.Temperature, 1) + " °C"},
			{"Conditions", w.Description()},
			{"Humidity", util.FloatToStringPrec(r.Humidity, 0) + "%"},
			{"Wind", util.FloatToStringPrec(r.WindSpeed, 1) + " m/s"},
		}))
	case w.Err() != "":
		lines = append(lines, components.ErrorLine(m.theme, w.Err()))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewChat() string {
	c := m.app.Chat
	pending := ""
	if c.Pending() {
		pending = m.spinner.Label("Thinking")
	}
	m.chatLog.Sync(c.Log(), pending)

	lines := []string{m.chatLog.View(), m.field("Message", targetChat)}
	if c.Err() != "" {
		lines = append(lines, components.ErrorLine(m.theme, c.Err()))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewMarket() string {
	mk := m.app.Market
	lines := []string{m.field("Crop", targetCrop), m.field("Location", targetLocation)}
	switch {
	case mk.Pending():
		lines = append(lines, m.spinner.Label("Fetching prices"))
	case mk.Result() != nil:
		lines = append(lines, renderQuotes(m.theme, mk.Quotes()))
	case mk.Err() != "":
		lines = append(lines, components.ErrorLine(m.theme, mk.Err()))
	}
	return strings.Join(lines, "\n")
}

func renderQuotes(theme *styles.Theme, quotes []api.MarketQuote) string {
	if len(quotes) == 0 {
		return theme.Hint.Render(panels.MsgNoPrices)
	}
	header := theme.Label.Render(util.PadRight("Location", 14) + util.PadRight("Min", 8) + util.PadRight("Modal", 8) + "Max")
	lines := []string{header}
	for _, q := range quotes {
		lines = append(lines, theme.Value.Render(
			util.PadRight(util.TruncateWidth(q.Location, 13), 14)+
				util.PadRight(util.FloatToStringPrec(q.MinPrice, 0), 8)+
				util.PadRight(util.FloatToStringPrec(q.ModalPrice, 0), 8)+
				util.FloatToStringPrec(q.MaxPrice, 0)))
	}
	return strings.Join(lines, "\n")
}
