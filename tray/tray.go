// Package tray shows the system tray menu: Show, Record, Quit.
package tray

import (
	"sync"

	"fyne.io/systray"
)

type Menu struct {
	Tooltip  string
	OnShow   func()
	OnRecord func()
	OnQuit   func()
}

var (
	mu        sync.Mutex
	ready     bool
	recording bool
	warning   bool

	mShow   *systray.MenuItem
	mRecord *systray.MenuItem
	mQuit   *systray.MenuItem

	stopOnce sync.Once
	stopCh   = make(chan struct{})
)

func recordTitle(rec bool) string {
	if rec {
		return "Stop Recording"
	}
	return "Start Recording"
}

func onReady(m Menu) func() {
	return func() {
		systray.SetTitle("")
		systray.SetTooltip(m.Tooltip)

		mShow = systray.AddMenuItem("Show", "Show the launcher")
		mRecord = systray.AddMenuItem(recordTitle(false), "Toggle voice capture")
		systray.AddSeparator()
		mQuit = systray.AddMenuItem("Quit", "Quit "+m.Tooltip)

		mu.Lock()
		ready = true
		applyIcon()
		mu.Unlock()

		go handleClicks(m)
	}
}

func handleClicks(m Menu) {
	for {
		select {
		case <-mShow.ClickedCh:
			call(m.OnShow)
		case <-mRecord.ClickedCh:
			call(m.OnRecord)
		case <-mQuit.ClickedCh:
			call(m.OnQuit)
			return
		case <-stopCh:
			return
		}
	}
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

// applyIcon must be called with mu held.
func applyIcon() {
	if !ready {
		return
	}
	switch {
	case recording && warning:
		systray.SetIcon(iconWarn)
	case recording:
		systray.SetIcon(iconRecording)
	default:
		systray.SetTemplateIcon(iconIdle, iconIdle)
	}
	mRecord.SetTitle(recordTitle(recording))
}

// SetRecording switches the icon and the Record item title.
func SetRecording(rec bool) {
	mu.Lock()
	defer mu.Unlock()
	recording = rec
	warning = false
	applyIcon()
}

// SetWarning badges the recording icon, e.g. when the microphone was refused.
func SetWarning(on bool) {
	mu.Lock()
	defer mu.Unlock()
	warning = on
	applyIcon()
}

// Stop removes the tray icon.
func Stop() {
	stopOnce.Do(func() {
		close(stopCh)
		mu.Lock()
		started := ready
		mu.Unlock()
		if started {
			systray.Quit()
		}
	})
}
