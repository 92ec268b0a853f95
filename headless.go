package main

import (
	"vallet/log"
	"vallet/uistate"
)

// headlessView has no window; requests and status go to the diagnostics log.
type headlessView struct{}

func (headlessView) Resize(s uistate.Size) { log.Infof("window resize: %s", s) }
func (headlessView) Hide()                 { log.Info("window hide") }
func (headlessView) ClearQuery()           {}
func (headlessView) Show()                 { log.Info("window show") }
func (headlessView) SetMode(uistate.Mode)  {}
func (headlessView) SetListening(on bool)  { log.Infof("listening: %v", on) }
func (headlessView) Notice(text string)    { log.Warn(text) }
func (headlessView) Transcription(string)  {}
