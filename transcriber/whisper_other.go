//go:build !windows

package transcriber

import "os/exec"

func hideConsole(*exec.Cmd) {}
