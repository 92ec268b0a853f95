package main

import "vallet/uistate"

// view is the display layer: a uistate.Host for the machine's window
// requests plus the status it shows between them. The TUI, the headless
// logger and the fyne window all implement it.
type view interface {
	uistate.Host
	Show()
	SetMode(m uistate.Mode)
	SetListening(on bool)
	Notice(text string)
	Transcription(text string)
}
