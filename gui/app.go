//go:build gui

package gui

import (
	"runtime"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"vallet/uistate"
)

type Callbacks struct {
	OnReady  func() // runs on its own goroutine once the window exists
	OnShow   func()
	OnEscape func()
	OnAdmin  func()
	OnRecord func()
	OnQuit   func()
}

type App struct {
	cb      Callbacks
	fyneApp fyne.App
	window  fyne.Window
	query   *widget.Entry
	status  *widget.Label
	last    *widget.Label
}

func NewApp(cb Callbacks) *App {
	return &App{cb: cb}
}

// Run owns the calling goroutine until Quit. It must be the main thread.
func (a *App) Run() error {
	a.fyneApp = app.NewWithID("io.vallet.launcher")
	a.fyneApp.Settings().SetTheme(newLauncherTheme())

	if desk, ok := a.fyneApp.(desktop.App); ok {
		menu := fyne.NewMenu("vallet",
			fyne.NewMenuItem("Show", func() { call(a.cb.OnShow) }),
			fyne.NewMenuItem("Record", func() { call(a.cb.OnRecord) }),
		)
		desk.SetSystemTrayMenu(menu)
		desk.SetSystemTrayIcon(theme.MediaRecordIcon())
	}

	if drv, ok := a.fyneApp.Driver().(desktop.Driver); ok {
		a.window = drv.CreateSplashWindow()
	} else {
		a.window = a.fyneApp.NewWindow("vallet")
	}

	a.query = widget.NewEntry()
	a.query.SetPlaceHolder("Search links...")
	a.status = widget.NewLabel("launcher")
	a.last = widget.NewLabel("")
	a.last.Wrapping = fyne.TextWrapWord

	admin := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() { call(a.cb.OnAdmin) })
	mic := widget.NewButtonWithIcon("", theme.MediaRecordIcon(), func() { call(a.cb.OnRecord) })
	top := container.NewBorder(nil, nil, nil, container.NewHBox(mic, admin), a.query)
	a.window.SetContent(container.NewBorder(top, a.status, nil, nil, a.last))
	a.window.SetPadded(true)
	a.window.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape {
			call(a.cb.OnEscape)
		}
	})
	a.window.SetCloseIntercept(func() { call(a.cb.OnEscape) })
	w, h := PixelSize(uistate.SizeLauncher, runtime.GOOS)
	a.window.Resize(fyne.NewSize(w, h))

	if a.cb.OnReady != nil {
		go a.cb.OnReady()
	}
	a.fyneApp.Run()
	call(a.cb.OnQuit)
	return nil
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

func (a *App) Quit() {
	if a.fyneApp != nil {
		fyne.Do(a.fyneApp.Quit)
	}
}

func (a *App) Show() {
	fyne.Do(func() {
		a.window.CenterOnScreen()
		a.window.Show()
		a.window.RequestFocus()
		a.window.Canvas().Focus(a.query)
	})
}

func (a *App) Resize(s uistate.Size) {
	w, h := PixelSize(s, runtime.GOOS)
	fyne.Do(func() {
		a.window.Resize(fyne.NewSize(w, h))
		a.window.CenterOnScreen()
	})
}

func (a *App) Hide() {
	fyne.Do(a.window.Hide)
}

func (a *App) ClearQuery() {
	fyne.Do(func() { a.query.SetText("") })
}

func (a *App) SetMode(m uistate.Mode) {
	fyne.Do(func() { a.status.SetText(m.String()) })
}

func (a *App) SetListening(on bool) {
	fyne.Do(func() {
		if on {
			a.status.SetText("listening...")
		} else {
			a.status.SetText("processing...")
		}
	})
}

func (a *App) Notice(text string) {
	fyne.Do(func() { a.status.SetText("⚠ " + text) })
}

func (a *App) Transcription(text string) {
	fyne.Do(func() { a.last.SetText(text) })
}
