package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/okurt/santral/internal/contacts"
	"github.com/okurt/santral/internal/database/repository"
	"github.com/okurt/santral/internal/engine"
	"github.com/okurt/santral/internal/orchestrator"
)

const appName = "Santral"

const toastLifetime = 4 * time.Second

// ---------------------------------------------------------------------------
// Bubble Tea messages
// ---------------------------------------------------------------------------

// frameMsg is one presented frame: the authoritative screen state plus the
// UI-addressed effects of the transition that produced it.
type frameMsg struct {
	frame   orchestrator.ScreenState
	effects []orchestrator.Effect
}

type clockMsg time.Time

type contactsLoadedMsg struct {
	list []repository.Contact
	err  error
}

type historyLoadedMsg struct {
	rows []repository.CallEntry
	err  error
}

type syncDoneMsg struct {
	count int
	err   error
}

// ---------------------------------------------------------------------------
// Model
// ---------------------------------------------------------------------------

type inputMode int

const (
	inputNone inputMode = iota
	inputDial
	inputTransfer
)

type overlayKind int

const (
	overlayNone overlayKind = iota
	overlayAudio
	overlayLayout
)

type overlayOption struct {
	id      string
	label   string
	current bool
}

type overlayState struct {
	kind    overlayKind
	title   string
	options []overlayOption
	cursor  int
}

type toast struct {
	text     string
	severity orchestrator.Severity
	until    time.Time
}

// ContactSource supplies directory contacts for dial suggestions.
type ContactSource interface {
	List(ctx context.Context) ([]repository.Contact, error)
}

// HistorySource supplies recent call log rows for the idle screen.
type HistorySource interface {
	Recent(ctx context.Context, limit int) ([]repository.CallEntry, error)
}

// DirectorySyncer refreshes the contact directory from the portal.
type DirectorySyncer interface {
	Sync(ctx context.Context) (int, error)
}

// Options wires the model to the rest of the shell. Post is the only
// required field: every user intent leaves through it as a signal.
type Options struct {
	Post     func(orchestrator.Signal)
	Theme    string
	Contacts ContactSource
	History  HistorySource
	Syncer   DirectorySyncer

	// QuitOnFinish exits the program when the last session is dismissed,
	// used by demo mode.
	QuitOnFinish bool
}

// Model is the terminal shell. It is purely reactive: it renders frames
// the dispatcher sends and posts user actions back into the signal queue;
// it never decides what screen is current.
type Model struct {
	opts  Options
	theme Theme
	keys  keyMap

	frame   orchestrator.ScreenState
	ringing bool
	toasts  []toast
	overlay overlayState

	mode    inputMode
	input   textinput.Model
	matches []contacts.Match

	contacts []repository.Contact
	history  []repository.CallEntry

	spin   spinner.Model
	cursor int
	now    time.Time
	width  int
	height int
}

func New(opts Options) Model {
	th := NewTheme(opts.Theme)

	in := textinput.New()
	in.Prompt = "→ "
	in.Placeholder = "extension or sip address"
	in.CharLimit = 64

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(th.Accent)

	return Model{
		opts:   opts,
		theme:  th,
		keys:   defaultKeyMap(),
		input:  in,
		spin:   sp,
		now:    time.Now(),
		width:  80,
		height: 24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		tickClock(),
		m.loadContacts(),
		m.loadHistory(),
	)
}

func tickClock() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return clockMsg(t) })
}

func (m Model) loadContacts() tea.Cmd {
	if m.opts.Contacts == nil {
		return nil
	}
	src := m.opts.Contacts
	return func() tea.Msg {
		list, err := src.List(context.Background())
		return contactsLoadedMsg{list: list, err: err}
	}
}

func (m Model) loadHistory() tea.Cmd {
	if m.opts.History == nil {
		return nil
	}
	src := m.opts.History
	return func() tea.Msg {
		rows, err := src.Recent(context.Background(), 8)
		return historyLoadedMsg{rows: rows, err: err}
	}
}

func (m Model) syncDirectory() tea.Cmd {
	if m.opts.Syncer == nil {
		return nil
	}
	s := m.opts.Syncer
	return func() tea.Msg {
		n, err := s.Sync(context.Background())
		return syncDoneMsg{count: n, err: err}
	}
}

func (m *Model) post(sig orchestrator.Signal) {
	if m.opts.Post != nil {
		m.opts.Post(sig)
	}
}

func (m *Model) pushToast(text string, sev orchestrator.Severity) {
	if text == "" {
		return
	}
	m.toasts = append(m.toasts, toast{text: text, severity: sev, until: m.now.Add(toastLifetime)})
	if len(m.toasts) > 4 {
		m.toasts = m.toasts[len(m.toasts)-4:]
	}
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case clockMsg:
		m.now = time.Time(msg)
		live := m.toasts[:0]
		for _, t := range m.toasts {
			if t.until.After(m.now) {
				live = append(live, t)
			}
		}
		m.toasts = live
		return m, tickClock()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case contactsLoadedMsg:
		if msg.err != nil {
			m.pushToast("contacts unavailable", orchestrator.SeverityError)
			return m, nil
		}
		m.contacts = msg.list
		return m, nil

	case historyLoadedMsg:
		if msg.err == nil {
			m.history = msg.rows
		}
		return m, nil

	case syncDoneMsg:
		if msg.err != nil {
			m.pushToast("directory sync failed", orchestrator.SeverityError)
			return m, nil
		}
		m.pushToast("directory updated", orchestrator.SeveritySuccess)
		return m, m.loadContacts()

	case frameMsg:
		return m.applyFrame(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// applyFrame installs the authoritative frame and executes UI effects.
func (m Model) applyFrame(msg frameMsg) (tea.Model, tea.Cmd) {
	prev := m.frame
	m.frame = msg.frame

	if m.frame.Screen != orchestrator.ScreenIncoming {
		m.ringing = false
	}
	if m.frame.Screen != prev.Screen {
		m.cursor = 0
		if m.mode == inputTransfer {
			m.mode = inputNone
			m.input.Blur()
		}
	}

	var cmds []tea.Cmd
	for _, e := range msg.effects {
		switch e.Kind {
		case orchestrator.EffectToast:
			m.pushToast(e.Text, e.Severity)
		case orchestrator.EffectNotifyIncoming:
			m.ringing = true
		case orchestrator.EffectOpenAudioRoutes:
			m.overlay = audioOverlay(e.Devices)
		case orchestrator.EffectOpenLayoutMenu:
			m.overlay = layoutOverlay()
		case orchestrator.EffectCloseOverlay:
			m.overlay = overlayState{}
		case orchestrator.EffectFinish:
			cmds = append(cmds, m.loadHistory())
			if m.opts.QuitOnFinish {
				cmds = append(cmds, tea.Quit)
			}
		}
	}
	return m, tea.Batch(cmds...)
}

func audioOverlay(devices []engine.AudioDevice) overlayState {
	st := overlayState{kind: overlayAudio, title: "Audio route"}
	for i, d := range devices {
		st.options = append(st.options, overlayOption{id: d.ID, label: d.Name, current: d.Current})
		if d.Current {
			st.cursor = i
		}
	}
	return st
}

func layoutOverlay() overlayState {
	return overlayState{
		kind:  overlayLayout,
		title: "Conference layout",
		options: []overlayOption{
			{id: "grid", label: "Grid"},
			{id: "active-speaker", label: "Active speaker"},
			{id: "audio-only", label: "Audio only"},
		},
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode != inputNone {
		return m.handleInputKey(msg)
	}
	if m.overlay.kind != overlayNone {
		return m.handleOverlayKey(msg)
	}

	k := m.keys
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if key.Matches(msg, k.Quit) && m.frame.Screen == orchestrator.ScreenNoSession {
		return m, tea.Quit
	}

	switch m.frame.Screen {
	case orchestrator.ScreenNoSession:
		switch {
		case key.Matches(msg, k.Dial):
			m.mode = inputDial
			m.matches = nil
			m.input.SetValue("")
			return m, m.input.Focus()
		case msg.String() == "s":
			return m, m.syncDirectory()
		case msg.String() == "r":
			return m, m.loadHistory()
		}

	case orchestrator.ScreenIncoming:
		switch {
		case key.Matches(msg, k.Accept):
			m.post(orchestrator.UserAction{Op: orchestrator.OpAccept})
		case key.Matches(msg, k.Decline):
			m.post(orchestrator.UserAction{Op: orchestrator.OpDecline})
		}

	case orchestrator.ScreenOutgoing:
		if key.Matches(msg, k.HangUp) || key.Matches(msg, k.Back) {
			m.post(orchestrator.UserAction{Op: orchestrator.OpHangUp})
		}

	case orchestrator.ScreenActiveSingle, orchestrator.ScreenActiveConference:
		switch {
		case key.Matches(msg, k.HangUp):
			m.post(orchestrator.UserAction{Op: orchestrator.OpHangUp})
		case key.Matches(msg, k.Mute):
			m.post(orchestrator.UserAction{Op: orchestrator.OpToggleMute})
		case key.Matches(msg, k.Video):
			m.post(orchestrator.UserAction{Op: orchestrator.OpToggleVideo})
		case key.Matches(msg, k.Routes):
			m.post(orchestrator.UserAction{Op: orchestrator.OpOpenAudioRoutes})
		case key.Matches(msg, k.Layout) && m.frame.Screen == orchestrator.ScreenActiveConference:
			m.post(orchestrator.UserAction{Op: orchestrator.OpOpenLayoutMenu})
		case key.Matches(msg, k.FullScreen):
			m.post(orchestrator.UserAction{Op: orchestrator.OpToggleFullScreen})
		case key.Matches(msg, k.Transfer):
			m.mode = inputTransfer
			m.matches = nil
			m.input.SetValue("")
			return m, m.input.Focus()
		case key.Matches(msg, k.List):
			m.post(orchestrator.UserRequestedList{})
		case key.Matches(msg, k.Background):
			m.post(orchestrator.UserAction{Op: orchestrator.OpLeaveHint})
		}

	case orchestrator.ScreenCallsList:
		switch {
		case key.Matches(msg, k.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, k.Down):
			if m.cursor < len(m.frame.Sessions)-1 {
				m.cursor++
			}
		case key.Matches(msg, k.Select):
			if m.cursor < len(m.frame.Sessions) {
				m.post(orchestrator.UserAction{Op: orchestrator.OpSelectCall, SessionID: m.frame.Sessions[m.cursor].ID})
			}
		case key.Matches(msg, k.Dial):
			m.mode = inputDial
			m.matches = nil
			m.input.SetValue("")
			return m, m.input.Focus()
		case key.Matches(msg, k.Back):
			if m.frame.SessionID != "" {
				m.post(orchestrator.UserAction{Op: orchestrator.OpSelectCall, SessionID: m.frame.SessionID})
			}
		}

	case orchestrator.ScreenEnded:
		if key.Matches(msg, k.Select) || key.Matches(msg, k.Back) {
			m.post(orchestrator.UserAction{Op: orchestrator.OpDismissEnded})
		}
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = inputNone
		m.matches = nil
		m.input.Blur()
		return m, nil
	case "tab":
		if len(m.matches) > 0 {
			target := m.matches[0].Contact.Extension
			if target == "" {
				target = m.matches[0].Contact.SIPAddress
			}
			m.input.SetValue(target)
			m.input.CursorEnd()
		}
		return m, nil
	case "enter":
		addr := m.input.Value()
		mode := m.mode
		m.mode = inputNone
		m.matches = nil
		m.input.Blur()
		if addr == "" {
			return m, nil
		}
		if mode == inputTransfer {
			m.post(orchestrator.UserAction{Op: orchestrator.OpTransfer, Address: addr})
		} else {
			m.post(orchestrator.UserAction{Op: orchestrator.OpDial, Address: addr})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == inputDial {
		m.matches = contacts.Search(m.contacts, m.input.Value(), 5)
	}
	return m, cmd
}

func (m Model) handleOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Up):
		if m.overlay.cursor > 0 {
			m.overlay.cursor--
		}
	case key.Matches(msg, k.Down):
		if m.overlay.cursor < len(m.overlay.options)-1 {
			m.overlay.cursor++
		}
	case key.Matches(msg, k.Select):
		if m.overlay.cursor < len(m.overlay.options) {
			opt := m.overlay.options[m.overlay.cursor]
			if m.overlay.kind == overlayAudio {
				m.post(orchestrator.UserAction{Op: orchestrator.OpPickAudioRoute, DeviceID: opt.id})
			} else {
				m.post(orchestrator.UserAction{Op: orchestrator.OpPickLayout, Layout: opt.id})
			}
		}
	case key.Matches(msg, k.Back):
		m.post(orchestrator.UserAction{Op: orchestrator.OpDismissOverlay})
	}
	return m, nil
}
