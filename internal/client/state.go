package client

import "github.com/MrSnakeDoc/navspec/internal/domain"

// Phase is the controller lifecycle stage.
type Phase int

const (
	PhaseInitializing Phase = iota
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is everything the controller knows about the session.
//
// Prefs is nil until the backend returned preferences. Config and Available
// are replaced wholesale on every successful load.
type State struct {
	Phase     Phase
	Prefs     *domain.UserPreferences
	Available []string
	Config    *domain.Configuration
	Err       error
}

// clone copies the state so it can leave the controller goroutine.
func (s State) clone() State {
	out := s
	if s.Prefs != nil {
		p := s.Prefs.Clone()
		out.Prefs = &p
	}
	out.Available = append([]string(nil), s.Available...)
	return out
}

// ActiveConfig returns the selected configuration name, or "" when no
// preferences are loaded.
func (s State) ActiveConfig() string {
	if s.Prefs == nil {
		return ""
	}
	return s.Prefs.ActiveConfig
}

// selectorOptions builds the selector entries, pre-selecting the active
// configuration when it is listed.
func selectorOptions(available []string, active string) []Option {
	opts := make([]Option, 0, len(available))
	for _, name := range available {
		opts = append(opts, Option{
			Value:    name,
			Label:    domain.DisplayName(name),
			Selected: active != "" && name == active,
		})
	}
	return opts
}
