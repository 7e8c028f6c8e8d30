package sigctx

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Signals stop the storefront gracefully.
var Signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT}

// NotifyContext returns a copy of parent that is canceled on the first of
// [Signals] or when stop is called.
func NotifyContext(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, Signals...)
}
