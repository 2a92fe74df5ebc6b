package client

// Option is one entry of the configuration selector.
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// Surface is the visible page the controller paints on.
//
// SetMain replaces the whole main region. Implementations must be safe for
// use from the controller goroutine; the controller never calls them
// concurrently.
type Surface interface {
	SetSelector(options []Option)
	SetMain(markup string)
	SetTitle(title string)
	SetHeader(text string)
	Notify(message string)
}

// Key is a keyboard chord as reported by the host.
type Key struct {
	// Mod is true when the platform modifier (Ctrl or Cmd) is held.
	Mod  bool   `json:"mod"`
	Name string `json:"key"`
}

// Shortcut identifies what a chord is bound to.
type Shortcut int

const (
	ShortcutNone Shortcut = iota
	ShortcutSearch
	ShortcutRefresh
)

// ShortcutFor resolves a chord. Hosts suppress their default handling for
// anything other than ShortcutNone.
func ShortcutFor(k Key) Shortcut {
	if !k.Mod {
		return ShortcutNone
	}
	switch k.Name {
	case "k":
		return ShortcutSearch
	case "r":
		return ShortcutRefresh
	default:
		return ShortcutNone
	}
}
