package clipboard

import (
	"fmt"
	"sync"
	"time"

	cb "github.com/atotto/clipboard"
	"github.com/micmonay/keybd_event"
)

// Time given to the clipboard owner to publish new contents before the
// paste keystroke is sent.
const settleDelay = 100 * time.Millisecond

var (
	kb     keybd_event.KeyBonding
	kbOnce sync.Once
	kbErr  error
)

func Read() (string, error) {
	return cb.ReadAll()
}

func Copy(text string) error {
	return cb.WriteAll(text)
}

// Init creates the virtual keyboard. On Linux the uinput device needs a
// moment before the first keystroke is seen, so call it early.
func Init() error {
	kbOnce.Do(func() {
		kb, kbErr = keybd_event.NewKeyBonding()
	})
	return kbErr
}

// Paste sends the platform paste shortcut to the focused window.
func Paste() error {
	if err := Init(); err != nil {
		return fmt.Errorf("virtual keyboard: %w", err)
	}
	kb.Clear()
	kb.SetKeys(keybd_event.VK_V)
	setPasteModifier(&kb)
	return kb.Launching()
}

// PasteText copies text and pastes it into the focused window.
func PasteText(text string) error {
	if err := Copy(text); err != nil {
		return fmt.Errorf("copying to clipboard: %w", err)
	}
	time.Sleep(settleDelay)
	if err := Paste(); err != nil {
		return fmt.Errorf("pasting: %w", err)
	}
	return nil
}
