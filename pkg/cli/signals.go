package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// SetupSignalHandler returns a context cancelled on the first SIGINT or
// SIGTERM, giving the relay listener a chance to drain in-flight
// connections. A second signal skips the drain and exits immediately with
// the conventional 128+signal code.
func SetupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigs
		fmt.Fprintf(os.Stderr, "relay: %s received, draining connections (send again to exit now)\n", sig)
		cancel()

		sig = <-sigs
		fmt.Fprintf(os.Stderr, "relay: %s received again, exiting without drain\n", sig)
		if n, ok := sig.(syscall.Signal); ok {
			os.Exit(128 + int(n))
		}
		os.Exit(ExitFailure)
	}()

	return ctx
}
