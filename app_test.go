package main

import (
	"context"
	"errors"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"vallet/audio"
	"vallet/beep"
	"vallet/config"
	"vallet/encoder"
	"vallet/hotkey"
	"vallet/transcriber"
	"vallet/uistate"
)

func TestMain(m *testing.M) {
	beep.Disable()
	os.Exit(m.Run())
}

// recordingView remembers every host call in order.
type recordingView struct {
	mu    sync.Mutex
	calls []string
	modes []uistate.Mode
	texts []string
}

func (v *recordingView) add(call string) {
	v.mu.Lock()
	v.calls = append(v.calls, call)
	v.mu.Unlock()
}

func (v *recordingView) Resize(s uistate.Size) { v.add("resize:" + string(s)) }
func (v *recordingView) Hide()                 { v.add("hide") }
func (v *recordingView) ClearQuery()           { v.add("clear") }
func (v *recordingView) Show()                 { v.add("show") }
func (v *recordingView) Notice(text string)    { v.add("notice") }

func (v *recordingView) SetListening(on bool) {
	if on {
		v.add("listening")
	} else {
		v.add("idle")
	}
}

func (v *recordingView) SetMode(m uistate.Mode) {
	v.mu.Lock()
	v.modes = append(v.modes, m)
	v.mu.Unlock()
}

func (v *recordingView) Transcription(text string) {
	v.mu.Lock()
	v.texts = append(v.texts, text)
	v.mu.Unlock()
}

func (v *recordingView) has(call string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Contains(v.calls, call)
}

func (v *recordingView) lastMode() (uistate.Mode, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.modes) == 0 {
		return 0, false
	}
	return v.modes[len(v.modes)-1], true
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

type testApp struct {
	*app
	view     *recordingView
	launcher *hotkey.FakeHotkey
	voiceKey *hotkey.FakeHotkey
	audio    *audio.FakeContext
	tr       *transcriber.FakeTranscriber

	mu     sync.Mutex
	pasted []string
}

func newTestApp(t *testing.T, text string) *testApp {
	t.Helper()
	cfg := config.Default()
	cfg.Recording.ResetDelay = 20 * time.Millisecond

	ta := &testApp{
		view:     &recordingView{},
		launcher: hotkey.NewFake(),
		voiceKey: hotkey.NewFake(),
		audio:    audio.NewFakeContext(audio.DeviceInfo{ID: "0", Name: "Fake Mic"}),
		tr:       transcriber.NewFake(text, nil),
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	ta.app = &app{
		cfg:    cfg,
		actx:   ta.audio,
		tr:     ta.tr,
		ctx:    ctx,
		cancel: cancel,
		view:   ta.view,
		paste: func(s string) error {
			ta.mu.Lock()
			ta.pasted = append(ta.pasted, s)
			ta.mu.Unlock()
			return nil
		},
		newHotkey: func(c hotkey.Combo) hotkey.Hotkey {
			if c == hotkey.LauncherCombo {
				return ta.launcher
			}
			return ta.voiceKey
		},
	}
	return ta
}

func (ta *testApp) start(t *testing.T) <-chan error {
	t.Helper()
	errc := make(chan error, 1)
	go func() { errc <- ta.serve(nil) }()
	waitFor(t, "machine", func() bool { return ta.machine.Load() != nil })
	return errc
}

func (ta *testApp) stop(t *testing.T, errc <-chan error) {
	t.Helper()
	ta.quit()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("serve = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func (ta *testApp) pastedText() []string {
	ta.mu.Lock()
	defer ta.mu.Unlock()
	return append([]string(nil), ta.pasted...)
}

func TestVoiceHotkeyEndToEnd(t *testing.T) {
	ta := newTestApp(t, "hello world")
	errc := ta.start(t)

	ta.voiceKey.SimTap()
	waitFor(t, "capture running", func() bool {
		c := ta.audio.Last()
		return c != nil && c.Running()
	})
	dev := ta.audio.Last()
	dev.Emit([]float32{0.5, -0.5})
	dev.Emit([]float32{0.5, -0.5})

	waitFor(t, "listening", func() bool { return ta.view.has("listening") })
	ta.voiceKey.SimTap()

	waitFor(t, "paste", func() bool { return len(ta.pastedText()) == 1 })
	if got := ta.pastedText()[0]; got != "hello world" {
		t.Errorf("pasted %q", got)
	}

	calls := ta.tr.Calls()
	if len(calls) != 1 {
		t.Fatalf("transcriber called %d times", len(calls))
	}
	info, samples, err := encoder.DecodeWAV(calls[0])
	if err != nil {
		t.Fatal(err)
	}
	if info.DataSize != 8 || !slices.Equal(samples, []int16{16384, -16384, 16384, -16384}) {
		t.Errorf("wav = %+v %v", info, samples)
	}

	waitFor(t, "reset hide", func() bool {
		m, ok := ta.view.lastMode()
		return ok && m == uistate.ModeLauncher && ta.view.has("hide")
	})
	if !ta.view.has("resize:recording") {
		t.Error("recording resize never requested")
	}
	if ta.audio.Open() != 0 {
		t.Errorf("%d captures left open", ta.audio.Open())
	}
	ta.stop(t, errc)
}

func TestLauncherHotkeyShowsWindow(t *testing.T) {
	ta := newTestApp(t, "")
	errc := ta.start(t)

	ta.launcher.SimTap()
	waitFor(t, "launcher resize", func() bool { return ta.view.has("resize:launcher") })
	if !ta.view.has("clear") {
		t.Error("query not cleared")
	}
	ta.stop(t, errc)
}

func TestToggleRecording(t *testing.T) {
	ta := newTestApp(t, "")
	ta.toggle() // before serve: ignored

	errc := ta.start(t)
	ta.toggle()
	waitFor(t, "listening", func() bool { return ta.voice.Load().Listening() })
	ta.toggle()
	waitFor(t, "stopped", func() bool { return !ta.voice.Load().Listening() })
	waitFor(t, "idle", func() bool { return ta.view.has("idle") })
	ta.stop(t, errc)
}

func TestVoiceHotkeyAfterToggleStop(t *testing.T) {
	ta := newTestApp(t, "")
	errc := ta.start(t)

	ta.voiceKey.SimTap()
	waitFor(t, "listening", func() bool { return ta.voice.Load().Listening() })
	ta.toggle()
	waitFor(t, "stopped", func() bool { return !ta.voice.Load().Listening() })

	// the next tap starts a new recording instead of stopping the old one
	ta.voiceKey.SimTap()
	waitFor(t, "listening again", func() bool { return ta.voice.Load().Listening() })
	ta.voiceKey.SimTap()
	waitFor(t, "stopped by key", func() bool { return !ta.voice.Load().Listening() })
	ta.stop(t, errc)
}

func TestMicrophoneDeniedLeavesRecordingMode(t *testing.T) {
	ta := newTestApp(t, "")
	ta.audio.Deny(true)
	errc := ta.start(t)

	ta.toggle()
	waitFor(t, "notice in recording mode", func() bool {
		m, ok := ta.view.lastMode()
		return ok && m == uistate.ModeRecording && ta.view.has("notice")
	})
	if ta.voice.Load().Listening() {
		t.Error("listening after denied start")
	}
	ta.stop(t, errc)
}

func TestServeHotkeyFailure(t *testing.T) {
	ta := newTestApp(t, "")
	boom := errors.New("grab failed")
	ta.voiceKey.FailRegister(boom)
	if err := ta.serve(nil); !errors.Is(err, boom) {
		t.Fatalf("serve = %v, want %v", err, boom)
	}
	if ta.launcher.Registered() {
		t.Error("launcher hotkey left registered")
	}
}

func TestTUIKeys(t *testing.T) {
	var posted []uistate.EventKind
	toggles, shows := 0, 0
	m := newTUIModel(tuiActions{
		post:   func(ev uistate.Event) bool { posted = append(posted, ev.Kind); return true },
		toggle: func() { toggles++ },
		show:   func() { shows++ },
	}, "")

	keys := []tea.KeyMsg{
		{Type: tea.KeyEsc},
		{Type: tea.KeyRunes, Runes: []rune("a")},
		{Type: tea.KeyRunes, Runes: []rune("x")},
		{Type: tea.KeyRunes, Runes: []rune("r")},
		{Type: tea.KeyRunes, Runes: []rune("s")},
	}
	var model tea.Model = m
	for _, k := range keys {
		model, _ = model.Update(k)
	}
	want := []uistate.EventKind{uistate.EventEscape, uistate.EventOpenAdmin, uistate.EventHide}
	if !slices.Equal(posted, want) {
		t.Errorf("posted %v, want %v", posted, want)
	}
	if toggles != 1 || shows != 1 {
		t.Errorf("toggles=%d shows=%d", toggles, shows)
	}

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q did not quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not return tea.Quit")
	}
}

func TestTUIView(t *testing.T) {
	var model tea.Model = newTUIModel(tuiActions{}, "ctrl+alt+space voice")
	for _, msg := range []tea.Msg{
		tea.WindowSizeMsg{Width: 100, Height: 40},
		visibleMsg{true},
		modeMsg{uistate.ModeLauncher},
		transcriptionMsg{"dictated text"},
	} {
		model, _ = model.Update(msg)
	}
	out := model.View()
	for _, want := range []string{"dictated text", "Last transcription (#1)", "ctrl+alt+space voice"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}

	model, _ = model.Update(visibleMsg{false})
	if !strings.Contains(model.View(), "window hidden") {
		t.Error("hidden window not reported")
	}
}

func TestWindowCells(t *testing.T) {
	cols, rows := windowCells(uistate.SizeLauncher, 200, 100)
	if cols != 72 || rows != 7 {
		t.Errorf("launcher = %dx%d, want 72x7", cols, rows)
	}
	cols, rows = windowCells(uistate.SizeAdmin, 80, 24)
	if cols != 78 || rows != 22 {
		t.Errorf("admin clamped = %dx%d, want 78x22", cols, rows)
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("the quick brown fox", 10)
	if !slices.Equal(got, []string{"the quick", "brown fox"}) {
		t.Errorf("wrapText = %q", got)
	}
}

func TestWantsGUI(t *testing.T) {
	if !wantsGUI([]string{"-headless", "-gui"}) || wantsGUI([]string{"-guix"}) {
		t.Error("wantsGUI mismatch")
	}
}
