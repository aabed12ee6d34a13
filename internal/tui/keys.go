package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding the shell understands. Which ones are live
// depends on the presented screen; helpFor picks the footer set.
type keyMap struct {
	Accept     key.Binding
	Decline    key.Binding
	HangUp     key.Binding
	Mute       key.Binding
	Video      key.Binding
	Routes     key.Binding
	Layout     key.Binding
	FullScreen key.Binding
	Transfer   key.Binding
	List       key.Binding
	Dial       key.Binding
	Background key.Binding
	Up         key.Binding
	Down       key.Binding
	Select     key.Binding
	Back       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Accept:     key.NewBinding(key.WithKeys("a", "enter"), key.WithHelp("a", "accept")),
		Decline:    key.NewBinding(key.WithKeys("d", "esc"), key.WithHelp("d", "decline")),
		HangUp:     key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "hang up")),
		Mute:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute")),
		Video:      key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "video")),
		Routes:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "audio")),
		Layout:     key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "layout")),
		FullScreen: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fullscreen")),
		Transfer:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "transfer")),
		List:       key.NewBinding(key.WithKeys("l", "tab"), key.WithHelp("l", "calls")),
		Dial:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new call")),
		Background: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "background")),
		Up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("j/k", "navigate")),
		Down:       key.NewBinding(key.WithKeys("j", "down")),
		Select:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// helpFor returns the footer bindings for one screen's key set.
func (k keyMap) helpFor(names ...string) []key.Binding {
	byName := map[string]key.Binding{
		"accept": k.Accept, "decline": k.Decline, "hangup": k.HangUp,
		"mute": k.Mute, "video": k.Video, "routes": k.Routes,
		"layout": k.Layout, "fullscreen": k.FullScreen, "transfer": k.Transfer,
		"list": k.List, "dial": k.Dial, "background": k.Background,
		"navigate": k.Up, "select": k.Select, "back": k.Back, "quit": k.Quit,
	}
	out := make([]key.Binding, 0, len(names))
	for _, n := range names {
		if b, ok := byName[n]; ok {
			out = append(out, b)
		}
	}
	return out
}
