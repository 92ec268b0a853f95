package main

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"vallet/audio"
	"vallet/backend"
	"vallet/beep"
	"vallet/capture"
	"vallet/config"
	"vallet/hotkey"
	"vallet/log"
	"vallet/transcriber"
	"vallet/tray"
	"vallet/uistate"
)

// app holds what the pipeline is built from. The machine, voice and hybrid
// pointers are set by serve and read from UI callbacks that may fire earlier.
type app struct {
	cfg       config.Config
	actx      audio.Context
	device    *audio.DeviceInfo
	tr        transcriber.Transcriber
	paste     func(text string) error
	newHotkey func(hotkey.Combo) hotkey.Hotkey

	ctx    context.Context
	cancel context.CancelFunc
	view   view

	machine atomic.Pointer[uistate.Machine]
	voice   atomic.Pointer[voice]
	hybrid  atomic.Pointer[hotkey.Hybrid]
}

func (a *app) post(ev uistate.Event) bool {
	m := a.machine.Load()
	if m == nil {
		return false
	}
	return m.Post(ev)
}

// show brings the window up and tells the machine it is visible.
func (a *app) show() {
	a.view.Show()
	a.post(uistate.WindowShown())
}

// toggle starts or stops capture depending on whether the mic is open.
func (a *app) toggle() {
	v := a.voice.Load()
	if v == nil {
		return
	}
	if v.Listening() {
		if hy := a.hybrid.Load(); hy != nil {
			hy.Reset()
		}
		a.post(uistate.StopRecording())
	} else {
		a.view.Show()
		a.post(uistate.StartRecording())
	}
}

func (a *app) quit() {
	a.cancel()
}

func (a *app) actions() tuiActions {
	return tuiActions{post: a.post, toggle: a.toggle, show: a.show}
}

// serve runs the pipeline until the app context is cancelled. runView, when
// set, runs alongside and owns the display.
func (a *app) serve(runView func(ctx context.Context) error) error {
	cfg := a.cfg
	launcherCombo, err := hotkey.ParseCombo(cfg.Hotkeys.Launcher)
	if err != nil {
		return err
	}
	voiceCombo, err := hotkey.ParseCombo(cfg.Hotkeys.Voice)
	if err != nil {
		return err
	}

	proc := backend.NewProcessor(a.tr, backend.Options{
		Paste:      a.paste,
		ArchiveDir: cfg.Archive.Dir,
		OnResult:   func(_, text string) { a.view.Transcription(text) },
	})
	disp := backend.NewDispatcher(proc, backend.DefaultQueueSize)
	sess := capture.NewSession(a.actx, capture.Options{
		Device:    a.device,
		FrameSize: cfg.Recording.FrameSize,
		QueueSize: cfg.Recording.Queue,
	})
	vc := &voice{rec: capture.NewRecorder(sess, disp), view: a.view}
	m := uistate.New(a.view, vc,
		uistate.WithResetDelay(cfg.Recording.ResetDelay),
		uistate.WithObserver(a.view.SetMode),
	)
	a.voice.Store(vc)
	a.machine.Store(m)

	launcherKey := a.newHotkey(launcherCombo)
	if err := launcherKey.Register(); err != nil {
		return fmt.Errorf("registering %s: %w", launcherCombo, err)
	}
	defer launcherKey.Unregister()
	voiceKey := a.newHotkey(voiceCombo)
	if err := voiceKey.Register(); err != nil {
		return fmt.Errorf("registering %s: %w", voiceCombo, err)
	}
	defer voiceKey.Unregister()

	g, ctx := errgroup.WithContext(a.ctx)
	hy := hotkey.NewHybrid(ctx, voiceKey, cfg.Hotkeys.HoldThreshold)
	a.hybrid.Store(hy)
	g.Go(func() error { return m.Run(ctx) })
	g.Go(func() error { return disp.Run(ctx) })
	g.Go(func() error { return watchLauncher(ctx, launcherKey, a.show) })
	g.Go(func() error { return watchVoice(ctx, hy, a.view, m) })
	if runView != nil {
		g.Go(func() error {
			defer a.cancel()
			return runView(ctx)
		})
	}

	log.SessionStart(a.tr.Name(), cfg.UI.Host)
	a.view.Show()
	err = g.Wait()
	log.SessionEnd(proc.Count())
	if n := disp.Discard(); n > 0 {
		log.Warnf("%d recordings still queued at shutdown were not transcribed", n)
	}
	if dropped := disp.Dropped(); dropped > 0 {
		log.Warnf("%d recordings dropped on a full queue", dropped)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func watchLauncher(ctx context.Context, hk hotkey.Hotkey, show func()) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hk.Keydown():
			show()
		case <-hk.Keyup():
		}
	}
}

func watchVoice(ctx context.Context, hy *hotkey.Hybrid, v view, m *uistate.Machine) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hy.Start():
			v.Show()
			m.Post(uistate.StartRecording())
		case <-hy.StopChan():
			mode := "push-to-talk"
			if hy.IsToggle() {
				mode = "toggle"
			}
			log.Infof("voice hotkey stop (%s)", mode)
			m.Post(uistate.StopRecording())
		}
	}
}

// voice is the machine's Capturer: the Recorder plus the cues around it.
type voice struct {
	rec       *capture.Recorder
	view      view
	listening atomic.Bool
}

func (v *voice) Start() error {
	if v.rec.Active() {
		return nil
	}
	if err := v.rec.Start(); err != nil {
		beep.PlayError()
		tray.SetRecording(true)
		tray.SetWarning(true)
		v.view.Notice("microphone unavailable")
		return err
	}
	v.listening.Store(true)
	beep.PlayStart()
	tray.SetRecording(true)
	v.view.SetListening(true)
	return nil
}

func (v *voice) Stop() {
	wasListening := v.listening.Swap(false)
	v.rec.Stop()
	tray.SetRecording(false)
	if wasListening {
		v.view.SetListening(false)
	}
}

func (v *voice) Listening() bool {
	return v.listening.Load()
}
