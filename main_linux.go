//go:build linux

package main

import "os"

const guiNeedsFlag = false

func main() {
	os.Exit(run())
}
