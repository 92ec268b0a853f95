//go:build linux

package hotkey

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Linux reads /dev/input directly so the combos work under Wayland too.
// The user must be in the input group.

const (
	evKey          = 1
	inputEventSize = 24 // struct input_event on 64-bit

	valRelease = 0
	valPress   = 1
)

// evdev codes for a US layout.
var keyCodes = map[string]uint16{
	"space": 57,
	"q": 16, "w": 17, "e": 18, "r": 19, "t": 20, "y": 21, "u": 22, "i": 23, "o": 24, "p": 25,
	"a": 30, "s": 31, "d": 32, "f": 33, "g": 34, "h": 35, "j": 36, "k": 37, "l": 38,
	"z": 44, "x": 45, "c": 46, "v": 47, "b": 48, "n": 49, "m": 50,
}

type modifier uint8

const (
	evCtrl modifier = 1 << iota
	evShift
	evAlt
	evSuper
)

var modifierCodes = map[uint16]modifier{
	29: evCtrl, 97: evCtrl,
	42: evShift, 54: evShift,
	56: evAlt, 100: evAlt,
	125: evSuper, 126: evSuper,
}

func comboMods(c Combo) modifier {
	var m modifier
	if c.Ctrl {
		m |= evCtrl
	}
	if c.Shift {
		m |= evShift
	}
	if c.Alt {
		m |= evAlt
	}
	if c.Super {
		m |= evSuper
	}
	return m
}

type keyEvent struct {
	code  uint16
	value int32 // 0 release, 1 press, 2 autorepeat
}

// decodeEvents returns the EV_KEY records in buf.
func decodeEvents(buf []byte) []keyEvent {
	var out []keyEvent
	for i := 0; i+inputEventSize <= len(buf); i += inputEventSize {
		if binary.LittleEndian.Uint16(buf[i+16:]) != evKey {
			continue
		}
		out = append(out, keyEvent{
			code:  binary.LittleEndian.Uint16(buf[i+18:]),
			value: int32(binary.LittleEndian.Uint32(buf[i+20:])),
		})
	}
	return out
}

// tracker follows one keyboard's modifier state and reports when the combo
// goes down and comes back up. Modifiers must match exactly.
type tracker struct {
	code uint16
	want modifier
	held modifier
	down bool
}

func (t *tracker) feed(ev keyEvent) (pressed, released bool) {
	if m, ok := modifierCodes[ev.code]; ok {
		switch ev.value {
		case valPress:
			t.held |= m
		case valRelease:
			t.held &^= m
		}
		return false, false
	}
	if ev.code != t.code {
		return false, false
	}
	switch {
	case ev.value == valPress && !t.down && t.held == t.want:
		t.down = true
		return true, false
	case ev.value == valRelease && t.down:
		t.down = false
		return false, true
	}
	return false, false
}

type linuxHotkey struct {
	combo   Combo
	keydown chan struct{}
	keyup   chan struct{}

	mu    sync.Mutex
	files []*os.File
}

func New(c Combo) Hotkey {
	return &linuxHotkey{
		combo:   c,
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
	}
}

var errNoKeyboard = errors.New("no keyboard devices found (is the user in the input group?)")

func (h *linuxHotkey) Register() error {
	code, ok := keyCodes[h.combo.Key]
	if !ok {
		return fmt.Errorf("hotkey %s: no evdev code for %q", h.combo, h.combo.Key)
	}
	keyboards, err := findKeyboards()
	if err != nil {
		return fmt.Errorf("finding keyboards: %w", err)
	}
	if len(keyboards) == 0 {
		return errNoKeyboard
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, path := range keyboards {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		h.files = append(h.files, f)
		go h.read(f, &tracker{code: code, want: comboMods(h.combo)})
	}
	if len(h.files) == 0 {
		return fmt.Errorf("could not open any keyboard device (run: sudo usermod -aG input $USER, then re-login)")
	}
	return nil
}

// read ends when Unregister closes f.
func (h *linuxHotkey) read(f *os.File, t *tracker) {
	buf := make([]byte, inputEventSize*16)
	for {
		n, err := f.Read(buf)
		if err != nil {
			return
		}
		for _, ev := range decodeEvents(buf[:n]) {
			pressed, released := t.feed(ev)
			if pressed {
				notify(h.keydown)
			}
			if released {
				notify(h.keyup)
			}
		}
	}
}

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (h *linuxHotkey) Unregister() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, f := range h.files {
		f.Close()
	}
	h.files = nil
}

func (h *linuxHotkey) Keydown() <-chan struct{} { return h.keydown }
func (h *linuxHotkey) Keyup() <-chan struct{}   { return h.keyup }

func findKeyboards() ([]string, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, err
	}
	var keyboards []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "event") && isKeyboard(e.Name()) {
			keyboards = append(keyboards, filepath.Join("/dev/input", e.Name()))
		}
	}
	return keyboards, nil
}

// isKeyboard treats a device with a long key capability bitmap as a
// keyboard; mice and power buttons report only a few bits.
func isKeyboard(eventName string) bool {
	data, err := os.ReadFile(filepath.Join("/sys/class/input", eventName, "device", "capabilities", "key"))
	if err != nil {
		return false
	}
	return len(strings.TrimSpace(string(data))) > 10
}

func Diagnose() (string, error) {
	keyboards, err := findKeyboards()
	if err != nil {
		return "", fmt.Errorf("cannot scan input devices: %w", err)
	}
	if len(keyboards) == 0 {
		return "", errNoKeyboard
	}
	for _, path := range keyboards {
		if f, err := os.Open(path); err == nil {
			f.Close()
			return fmt.Sprintf("%d keyboard(s) found, opened %s", len(keyboards), path), nil
		}
	}
	return "", fmt.Errorf("found %d keyboard(s) but cannot open any (run: sudo usermod -aG input $USER)", len(keyboards))
}
