package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// shutdownSignals end a long-running command such as watch.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// SignalContext derives a context from parent that is cancelled on the
// first SIGINT or SIGTERM. Calling stop restores default signal handling,
// so a second interrupt kills the process.
func SignalContext(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}
