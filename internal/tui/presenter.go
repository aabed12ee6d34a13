package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/okurt/santral/internal/orchestrator"
)

// Presenter forwards dispatcher frames into the Bubble Tea program. Send is
// safe from any goroutine, so the orchestrator loop can call Present
// directly.
type Presenter struct {
	send func(tea.Msg)
}

func NewPresenter(send func(tea.Msg)) *Presenter {
	return &Presenter{send: send}
}

func (p *Presenter) Present(frame orchestrator.ScreenState, effects []orchestrator.Effect) {
	p.send(frameMsg{frame: frame, effects: effects})
}
