// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/haven-tui/internal/auth"
	"github.com/jeranaias/haven-tui/internal/chat"
	"github.com/jeranaias/haven-tui/internal/config"
	"github.com/jeranaias/haven-tui/internal/export"
	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/render"
	"github.com/jeranaias/haven-tui/internal/safety"
	"github.com/jeranaias/haven-tui/internal/session"
	"github.com/jeranaias/haven-tui/internal/storage"
)

// =============================================================================
// VIEW STATES
// =============================================================================

type viewState int

const (
	viewLogin viewState = iota
	viewSignup
	viewChat
	viewSafety
)

// Login form field order.
const (
	loginFieldUsername = iota
	loginFieldPassword
	loginFieldCount
)

// Signup form field order.
const (
	signupFieldUsername = iota
	signupFieldPassword
	signupFieldEmail
	signupFieldPhone
	signupFieldEmergency
	signupFieldCount
)

const sidebarWidth = 28

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Deps bundles everything the interface needs. All fields are required
// except Log, which may be nil.
type Deps struct {
	Config    *config.Config
	Store     *storage.Store
	Auth      *auth.Manager
	Chats     *chat.Manager
	Monitor   *safety.Monitor
	Responder chat.Responder
	Exporter  *export.PDFExporter
	Log       *zap.Logger
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// App is the root Bubble Tea model.
type App struct {
	deps  Deps
	cfg   *config.Config
	theme *Theme
	log   *zap.Logger

	tracker  *session.Tracker
	markdown *render.Markdown

	view   viewState
	width  int
	height int
	ready  bool

	// Transient status line. Cleared on the next key press.
	status      string
	statusIsErr bool

	// Login / signup forms
	loginInputs  []textinput.Model
	loginFocus   int
	signupInputs []textinput.Model
	signupFocus  int
	formErr      string

	// Active session
	activeUser model.User
	// Password as typed at login. Feeds the export password; a bcrypt
	// record stores no plain text, so this is the only copy.
	sessionPassword string

	// Chat view
	chats        []*model.ChatSession
	activeChatID string
	sidebarOpen  bool
	sidebarIndex int
	transcript   viewport.Model
	composer     textarea.Model
	spin         spinner.Model
	composing    bool

	// Safety view
	zoneInput   textinput.Model
	addingZone  bool
	zoneIndex   int
	zones       []model.SafetyZone
	alerts      []model.Alert
	nextLevel   model.Level
	scanning    bool
	lockWarning string

	// Pending destructive-action confirmation
	confirmWipe bool
}

// New creates the root model.
func New(deps Deps) *App {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	a := &App{
		deps:        deps,
		cfg:         deps.Config,
		theme:       NewTheme(deps.Config.UI.Theme),
		log:         log,
		tracker:     session.New(time.Duration(deps.Config.Auth.IdleLogoutMins) * time.Minute),
		markdown:    render.New(80),
		view:        viewLogin,
		sidebarOpen: deps.Config.UI.SidebarOpen,
		nextLevel:   model.LevelMedium,
	}

	a.loginInputs = makeLoginInputs()
	a.signupInputs = makeSignupInputs()
	a.loginInputs[loginFieldUsername].Focus()

	a.composer = textarea.New()
	a.composer.Placeholder = "Ask Haven anything about staying safe..."
	a.composer.ShowLineNumbers = false
	a.composer.SetHeight(3)
	a.composer.CharLimit = 4000
	// Enter sends; the composer never inserts its own newlines.
	a.composer.KeyMap.InsertNewline.SetEnabled(false)

	a.transcript = viewport.New(80, 20)

	a.spin = spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(a.theme.Spinner),
	)

	a.zoneInput = textinput.New()
	a.zoneInput.Placeholder = "Neighborhood, address, or place name"
	a.zoneInput.CharLimit = 120

	return a
}

// Init restores a persisted session and starts the idle ticker.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		session.TickCmd(),
		a.restoreSessionCmd(),
	)
}

// restoreSessionCmd logs the persisted active user straight back in.
func (a *App) restoreSessionCmd() tea.Cmd {
	return func() tea.Msg {
		user, err := a.deps.Auth.ActiveUser()
		if err != nil || user == nil {
			return nil
		}
		return authSuccessMsg{user: *user}
	}
}

// =============================================================================
// FORM CONSTRUCTION
// =============================================================================

func makeLoginInputs() []textinput.Model {
	inputs := make([]textinput.Model, loginFieldCount)

	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	inputs[loginFieldUsername] = username

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	inputs[loginFieldPassword] = password

	return inputs
}

func makeSignupInputs() []textinput.Model {
	inputs := make([]textinput.Model, signupFieldCount)

	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	inputs[signupFieldUsername] = username

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	inputs[signupFieldPassword] = password

	email := textinput.New()
	email.Placeholder = "email (optional)"
	email.CharLimit = 128
	inputs[signupFieldEmail] = email

	phone := textinput.New()
	phone.Placeholder = "phone (optional)"
	phone.CharLimit = 32
	inputs[signupFieldPhone] = phone

	emergency := textinput.New()
	emergency.Placeholder = "emergency contact (optional)"
	emergency.CharLimit = 128
	inputs[signupFieldEmergency] = emergency

	return inputs
}

// =============================================================================
// STATE HELPERS
// =============================================================================

// activeChat returns the cached active chat, or nil.
func (a *App) activeChat() *model.ChatSession {
	for _, c := range a.chats {
		if c.ID == a.activeChatID {
			return c
		}
	}
	return nil
}

// refreshChats reloads the chat list and keeps the selection coherent.
func (a *App) refreshChats() error {
	chats, err := a.deps.Chats.List()
	if err != nil {
		return err
	}
	a.chats = chats

	if a.activeChat() == nil && len(a.chats) > 0 {
		a.activeChatID = a.chats[0].ID
	}
	for i, c := range a.chats {
		if c.ID == a.activeChatID {
			a.sidebarIndex = i
		}
	}
	return nil
}

// refreshSafety reloads zones and alerts, clamping the selection.
func (a *App) refreshSafety() error {
	zones, err := a.deps.Monitor.Zones()
	if err != nil {
		return err
	}
	alerts, err := a.deps.Monitor.Alerts()
	if err != nil {
		return err
	}
	a.zones = zones
	a.alerts = alerts
	if a.zoneIndex >= len(a.zones) {
		a.zoneIndex = len(a.zones) - 1
	}
	if a.zoneIndex < 0 {
		a.zoneIndex = 0
	}
	return nil
}

// setStatus sets the transient status line.
func (a *App) setStatus(text string, isErr bool) {
	a.status = text
	a.statusIsErr = isErr
}

// resetToLogin clears all session state and returns to the login view.
func (a *App) resetToLogin() {
	a.view = viewLogin
	a.activeUser = model.User{}
	a.sessionPassword = ""
	a.chats = nil
	a.activeChatID = ""
	a.composing = false
	a.scanning = false
	a.lockWarning = ""
	a.formErr = ""

	a.loginInputs = makeLoginInputs()
	a.loginFocus = loginFieldUsername
	a.loginInputs[loginFieldUsername].Focus()
	a.signupInputs = makeSignupInputs()
	a.signupFocus = signupFieldUsername
	a.composer.Reset()
	a.composer.Blur()
}
