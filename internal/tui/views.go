package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/okurt/santral/internal/engine"
	"github.com/okurt/santral/internal/orchestrator"
	"github.com/okurt/santral/internal/session"
)

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

func (m Model) View() string {
	if m.frame.PiPActive {
		return m.renderPiP()
	}

	body := m.renderBody()
	if m.frame.FullScreen && m.frame.Screen.Active() {
		return m.composite(body)
	}

	bar := m.renderBar()
	footer := m.renderFooter()
	gap := m.height - lipgloss.Height(bar) - lipgloss.Height(body) - lipgloss.Height(footer)
	if gap < 0 {
		gap = 0
	}
	page := bar + "\n" + body + strings.Repeat("\n", gap+1) + footer
	return m.composite(page)
}

// composite layers toasts and the modal overlay on top of the page.
func (m Model) composite(page string) string {
	if len(m.toasts) == 0 && m.overlay.kind == overlayNone {
		return page
	}
	cv := newCanvas(page, m.width, m.height)
	if len(m.toasts) > 0 {
		stack := m.renderToasts()
		cv.stamp(stack, m.width-widest(splitLines(stack))-1, 1)
	}
	if m.overlay.kind != overlayNone {
		cv.stampCentered(m.renderOverlay())
	}
	return cv.String()
}

func (m Model) renderBody() string {
	switch m.frame.Screen {
	case orchestrator.ScreenIncoming:
		return m.renderIncoming()
	case orchestrator.ScreenOutgoing:
		return m.renderOutgoing()
	case orchestrator.ScreenActiveSingle, orchestrator.ScreenActiveConference:
		return m.renderActive()
	case orchestrator.ScreenCallsList:
		return m.renderCallsList()
	case orchestrator.ScreenEnded:
		return m.renderEnded()
	default:
		return m.renderIdle()
	}
}

// ---------------------------------------------------------------------------
// Chrome
// ---------------------------------------------------------------------------

func (m Model) renderBar() string {
	style := m.theme.Bar
	label := appName
	if m.frame.MultiCall {
		style = m.theme.BarMulti
		label = appName + " · multiple calls"
	}
	if m.ringing {
		label += " ♪"
	}
	if m.frame.Posture == orchestrator.PostureHalfOpen {
		label += " · folded"
	}
	return style.Width(m.width).Render(truncate(label, m.width-2))
}

func (m Model) renderFooter() string {
	var names []string
	switch m.frame.Screen {
	case orchestrator.ScreenIncoming:
		names = []string{"accept", "decline"}
	case orchestrator.ScreenOutgoing:
		names = []string{"hangup"}
	case orchestrator.ScreenActiveSingle:
		names = []string{"hangup", "mute", "video", "routes", "transfer", "fullscreen", "list", "background"}
	case orchestrator.ScreenActiveConference:
		names = []string{"hangup", "mute", "video", "layout", "routes", "list", "background"}
	case orchestrator.ScreenCallsList:
		names = []string{"navigate", "select", "dial", "back"}
	case orchestrator.ScreenEnded:
		names = []string{"select"}
	default:
		names = []string{"dial", "quit"}
	}

	parts := make([]string, 0, len(names))
	for _, b := range m.keys.helpFor(names...) {
		h := b.Help()
		parts = append(parts, m.theme.Selected.Render(h.Key)+" "+m.theme.Footer.Render(h.Desc))
	}
	return " " + strings.Join(parts, m.theme.Footer.Render(" · "))
}

func (m Model) renderToasts() string {
	out := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		style := m.theme.ToastInfo
		switch t.severity {
		case orchestrator.SeveritySuccess:
			style = m.theme.ToastSuccess
		case orchestrator.SeverityError:
			style = m.theme.ToastError
		}
		out = append(out, style.Render(truncate(t.text, m.width/2)))
	}
	return strings.Join(out, "\n")
}

func (m Model) renderOverlay() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render(m.overlay.title) + "\n\n")
	for i, opt := range m.overlay.options {
		line := "  " + opt.label
		if opt.current {
			line += " ●"
		}
		if i == m.overlay.cursor {
			line = m.theme.Selected.Render("▸ " + opt.label)
			if opt.current {
				line += " ●"
			}
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + m.theme.Subtle.Render("enter select · esc close"))
	return m.theme.Box.Render(b.String())
}

// ---------------------------------------------------------------------------
// Screens
// ---------------------------------------------------------------------------

func (m Model) renderIdle() string {
	var b strings.Builder
	b.WriteString("\n  " + m.theme.Title.Render("Ready") + "\n")
	b.WriteString("  " + m.theme.Subtle.Render("no active call") + "\n\n")

	if m.mode == inputDial {
		b.WriteString("  " + m.input.View() + "\n")
		for _, match := range m.matches {
			c := match.Contact
			b.WriteString("    " + m.theme.Subtle.Render(fmt.Sprintf("%s  %s", c.DisplayName, c.Extension)) + "\n")
		}
		b.WriteString("\n")
	}

	if len(m.history) > 0 {
		b.WriteString("  " + m.theme.Title.Render("Recent") + "\n")
		for _, e := range m.history {
			arrow := "↗"
			if e.Direction == "incoming" {
				arrow = "↘"
			}
			line := fmt.Sprintf("  %s %-24s %s", arrow, truncate(e.Remote, 24), e.Outcome)
			if e.Outcome == "missed" || e.Outcome == "failed" {
				b.WriteString(m.theme.ToastError.UnsetBackground().Render(line) + "\n")
			} else {
				b.WriteString(m.theme.Subtle.Render(line) + "\n")
			}
		}
	}
	return b.String()
}

func (m Model) renderIncoming() string {
	s := m.currentView()
	remote := "unknown"
	kind := "Incoming call"
	if s != nil {
		remote = s.Remote
		if s.Video {
			kind = "Incoming video call"
		}
	}
	content := m.theme.Title.Render(kind) + "\n\n" +
		lipgloss.NewStyle().Bold(true).Foreground(colorText).Render(remote) + "\n\n" +
		m.theme.Badge.Render("a accept") + " " + m.theme.BadgeOff.Render("d decline")
	return m.centerBlock(content)
}

func (m Model) renderOutgoing() string {
	s := m.currentView()
	remote := "unknown"
	if s != nil {
		remote = s.Remote
	}
	content := m.theme.Title.Render("Calling") + "\n\n" +
		lipgloss.NewStyle().Bold(true).Foreground(colorText).Render(remote) + "\n\n" +
		m.spin.View() + m.theme.Subtle.Render(" ringing")
	return m.centerBlock(content)
}

func (m Model) renderActive() string {
	s := m.currentView()
	if s == nil {
		return m.centerBlock(m.theme.Subtle.Render("no session"))
	}

	title := "In call"
	if m.frame.Screen == orchestrator.ScreenActiveConference {
		title = "Conference"
	}

	var badges []string
	if s.Muted {
		badges = append(badges, m.theme.Badge.Render("muted"))
	} else {
		badges = append(badges, m.theme.BadgeOff.Render("mic"))
	}
	if s.Video {
		badges = append(badges, m.theme.Badge.Render("video"))
	} else {
		badges = append(badges, m.theme.BadgeOff.Render("audio"))
	}

	content := m.theme.Title.Render(title) + "\n\n" +
		lipgloss.NewStyle().Bold(true).Foreground(colorText).Render(s.Remote) + "\n" +
		m.theme.Subtle.Render(m.duration(s)) + "\n\n" +
		strings.Join(badges, " ")

	if m.mode == inputTransfer {
		content += "\n\n" + m.theme.Subtle.Render("transfer to:") + "\n" + m.input.View()
	}

	block := m.centerBlock(content)
	if m.frame.Posture == orchestrator.PostureHalfOpen {
		// Tabletop posture: content sits above the hinge line.
		hinge := m.theme.Footer.Render(strings.Repeat("─", max(0, m.width)))
		block += "\n" + hinge
	}
	return block
}

func (m Model) renderCallsList() string {
	var b strings.Builder
	b.WriteString("\n  " + m.theme.Title.Render("Calls") + "\n\n")
	for i, v := range m.frame.Sessions {
		marker := "  "
		if i == m.cursor {
			marker = m.theme.Selected.Render("▸ ")
		}
		state := v.Phase.String()
		if v.Phase == engine.PhaseConnected {
			state = m.duration(&v)
		}
		line := fmt.Sprintf("%-26s %-10s", truncate(v.Remote, 26), state)
		if v.Kind == engine.KindConference {
			line += " ⊕"
		}
		if v.Current {
			line += " ●"
		}
		b.WriteString("  " + marker + line + "\n")
	}

	if m.mode == inputDial {
		b.WriteString("\n  " + m.input.View() + "\n")
		for _, match := range m.matches {
			c := match.Contact
			b.WriteString("    " + m.theme.Subtle.Render(fmt.Sprintf("%s  %s", c.DisplayName, c.Extension)) + "\n")
		}
	}
	return b.String()
}

func (m Model) renderEnded() string {
	cause := m.frame.Cause
	style := m.theme.Subtle
	if cause == "" {
		cause = "call ended"
	} else {
		style = lipgloss.NewStyle().Foreground(colorRed)
	}
	content := m.theme.Title.Render("Call ended") + "\n\n" +
		style.Render(cause) + "\n\n" +
		m.theme.Subtle.Render("enter to continue")
	return m.centerBlock(content)
}

// renderPiP is the compact single-line frame shown while the window system
// holds the call in picture-in-picture.
func (m Model) renderPiP() string {
	s := m.currentView()
	if s == nil {
		return m.theme.Bar.Render(appName)
	}
	return m.theme.Bar.Render(fmt.Sprintf("◰ %s · %s", truncate(s.Remote, 24), m.duration(s)))
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (m Model) currentView() *session.View {
	for i := range m.frame.Sessions {
		if m.frame.Sessions[i].ID == m.frame.SessionID {
			return &m.frame.Sessions[i]
		}
	}
	return nil
}

func (m Model) duration(s *session.View) string {
	if s.ConnectedAt.IsZero() {
		return "00:00"
	}
	d := m.now.Sub(s.ConnectedAt).Round(time.Second)
	if d < 0 {
		d = 0
	}
	if d >= time.Hour {
		return fmt.Sprintf("%d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
	}
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func (m Model) centerBlock(content string) string {
	h := m.height - 4
	if m.frame.Posture == orchestrator.PostureHalfOpen {
		h = h/2 - 1
	}
	if h < lipgloss.Height(content) {
		h = lipgloss.Height(content)
	}
	return lipgloss.Place(m.width, h, lipgloss.Center, lipgloss.Center, content)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
