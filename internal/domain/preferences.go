package domain

import (
	"fmt"

	"github.com/goccy/go-json"
)

const (
	// MaxRecentLinks bounds the recently-used-links history.
	MaxRecentLinks = 10

	// DefaultActiveConfig is selected when no preference was ever saved.
	DefaultActiveConfig = "default" + ConfigExt
)

// UserPreferences is the per-user session state persisted by the backend.
//
// Only ActiveConfig and RecentLinks are driven by the dashboard; the other
// fields are carried so a synchronization writes back what it read.
type UserPreferences struct {
	ActiveConfig     string   `json:"active_config"`
	Theme            string   `json:"theme"`
	Layout           string   `json:"layout"`
	ShowDescriptions bool     `json:"show_descriptions"`
	ShowStatus       bool     `json:"show_status"`
	CustomOrder      []string `json:"custom_order"`
	RecentLinks      []string `json:"recent_links"`
}

// UserConfig is the payload of the user-config endpoint.
// Preferences is nil when the backend did not send any.
type UserConfig struct {
	ConfigPath       string           `json:"config_path,omitempty"`
	Preferences      *UserPreferences `json:"preferences"`
	AvailableConfigs []string         `json:"available_configs"`
}

// DefaultPreferences mirrors what a fresh install starts with.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		ActiveConfig:     DefaultActiveConfig,
		Theme:            "light",
		Layout:           "grid",
		ShowDescriptions: true,
		ShowStatus:       true,
		CustomOrder:      []string{},
		RecentLinks:      []string{},
	}
}

// Clone returns a deep copy so snapshots never share slices with live state.
func (p UserPreferences) Clone() UserPreferences {
	out := p
	out.CustomOrder = append(make([]string, 0, len(p.CustomOrder)), p.CustomOrder...)
	out.RecentLinks = append(make([]string, 0, len(p.RecentLinks)), p.RecentLinks...)
	return out
}

// RecordLinkActivation moves name to the front of the recent-links list,
// dropping any earlier occurrence and keeping at most MaxRecentLinks entries.
// The input is not modified.
func RecordLinkActivation(p UserPreferences, name string) UserPreferences {
	recent := make([]string, 0, MaxRecentLinks)
	recent = append(recent, name)
	for _, n := range p.RecentLinks {
		if len(recent) == MaxRecentLinks {
			break
		}
		if n == name {
			continue
		}
		recent = append(recent, n)
	}

	out := p.Clone()
	out.RecentLinks = recent
	return out
}

// SetActiveConfig selects a configuration. Membership in the available list
// is the caller's concern.
func SetActiveConfig(p UserPreferences, name string) UserPreferences {
	out := p.Clone()
	out.ActiveConfig = name
	return out
}

// DecodePreferences parses a stored preference document, keeping defaults
// for any key the document does not carry.
func DecodePreferences(data []byte) (UserPreferences, error) {
	prefs := DefaultPreferences()
	if err := json.Unmarshal(data, &prefs); err != nil {
		return DefaultPreferences(), fmt.Errorf("failed to decode preferences: %w", err)
	}
	if prefs.CustomOrder == nil {
		prefs.CustomOrder = []string{}
	}
	if prefs.RecentLinks == nil {
		prefs.RecentLinks = []string{}
	}
	return prefs, nil
}

// MergePreferences applies a partial update. Unknown keys are ignored, known
// keys overwrite the current value. A key whose value has the wrong type
// fails the whole merge and leaves p untouched.
func MergePreferences(p UserPreferences, patch map[string]json.RawMessage) (UserPreferences, error) {
	out := p.Clone()
	fields := map[string]any{
		"active_config":     &out.ActiveConfig,
		"theme":             &out.Theme,
		"layout":            &out.Layout,
		"show_descriptions": &out.ShowDescriptions,
		"show_status":       &out.ShowStatus,
		"custom_order":      &out.CustomOrder,
		"recent_links":      &out.RecentLinks,
	}

	for key, raw := range patch {
		dst, ok := fields[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return p, fmt.Errorf("invalid value for %s: %w", key, err)
		}
	}

	if out.CustomOrder == nil {
		out.CustomOrder = []string{}
	}
	if out.RecentLinks == nil {
		out.RecentLinks = []string{}
	}
	return out, nil
}
