package hotkey

import (
	"fmt"
	"strings"
)

type Hotkey interface {
	Register() error
	Unregister()
	Keydown() <-chan struct{}
	Keyup() <-chan struct{}
}

// Combo is a modifier set plus one key, e.g. Ctrl+Shift+Space.
type Combo struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	Super bool
	Key   string // "space" or a single lowercase letter
}

var (
	LauncherCombo = Combo{Ctrl: true, Shift: true, Key: "space"}
	VoiceCombo    = Combo{Ctrl: true, Alt: true, Key: "space"}
)

// ParseCombo reads forms like "ctrl+shift+space" or "Ctrl+Alt+R".
func ParseCombo(s string) (Combo, error) {
	var c Combo
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		last := i == len(parts)-1
		switch {
		case p == "ctrl" || p == "control":
			c.Ctrl = true
		case p == "shift":
			c.Shift = true
		case p == "alt" || p == "option":
			c.Alt = true
		case p == "super" || p == "cmd" || p == "win":
			c.Super = true
		case last && validKey(p):
			c.Key = p
		default:
			return Combo{}, fmt.Errorf("hotkey %q: unsupported key %q", s, p)
		}
	}
	if c.Key == "" {
		return Combo{}, fmt.Errorf("hotkey %q: missing key", s)
	}
	if !c.Ctrl && !c.Shift && !c.Alt && !c.Super {
		return Combo{}, fmt.Errorf("hotkey %q: at least one modifier required", s)
	}
	return c, nil
}

func validKey(k string) bool {
	if k == "space" {
		return true
	}
	return len(k) == 1 && k[0] >= 'a' && k[0] <= 'z'
}

func (c Combo) String() string {
	var parts []string
	if c.Ctrl {
		parts = append(parts, "Ctrl")
	}
	if c.Shift {
		parts = append(parts, "Shift")
	}
	if c.Alt {
		parts = append(parts, "Alt")
	}
	if c.Super {
		parts = append(parts, "Super")
	}
	if c.Key == "space" {
		parts = append(parts, "Space")
	} else {
		parts = append(parts, strings.ToUpper(c.Key))
	}
	return strings.Join(parts, "+")
}
