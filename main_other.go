//go:build !linux

package main

import (
	"os"
	"runtime"

	"golang.design/x/hotkey/mainthread"
)

// The fyne window must own the main thread, so -gui is detected before
// mainthread takes it for the hotkey backend.
const guiNeedsFlag = true

func init() {
	runtime.LockOSThread()
}

func main() {
	if wantsGUI(os.Args[1:]) {
		os.Exit(run())
	}
	code := 0
	mainthread.Init(func() { code = run() })
	os.Exit(code)
}
