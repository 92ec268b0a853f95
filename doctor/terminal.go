package doctor

import (
	"context"
	"fmt"
	"os"

	"vallet/shutdown"
)

// exitOnInterrupt restores the terminal and exits when the user hits ctrl+c
// in the middle of a prompt.
func exitOnInterrupt() {
	ctx, _ := shutdown.Context(context.Background())
	go func() {
		<-ctx.Done()
		resetTerminal()
		fmt.Fprintln(os.Stderr, "\ninterrupted")
		os.Exit(1)
	}()
}
