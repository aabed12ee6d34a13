package dispatch

import (
	"errors"

	"github.com/okurt/santral/internal/orchestrator"
)

// StaticPermissions answers permission requests from a fixed grant table.
// A terminal host has no OS permission dialog, so grants come from config.
type StaticPermissions struct {
	Camera     bool
	Microphone bool
}

func (p StaticPermissions) Request(name orchestrator.Permission, result func(granted bool)) {
	switch name {
	case orchestrator.PermCamera:
		result(p.Camera)
	case orchestrator.PermMicrophone:
		result(p.Microphone)
	default:
		result(false)
	}
}

// PiPGate is a window-system stand-in: entry succeeds only when enabled.
// The presenter renders the compact frame from the screen state itself.
type PiPGate struct {
	Enabled bool
}

func (g PiPGate) Enter() error {
	if !g.Enabled {
		return errors.New("picture-in-picture disabled")
	}
	return nil
}

func (g PiPGate) Exit() {}
