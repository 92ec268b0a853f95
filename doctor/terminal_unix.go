//go:build !windows

package doctor

import (
	"os"
	"os/exec"
)

// resetTerminal undoes any raw mode left behind by the device picker.
func resetTerminal() {
	cmd := exec.Command("stty", "sane")
	cmd.Stdin = os.Stdin
	_ = cmd.Run()
}
