//go:build !windows

package main

import (
	"os"
	"os/signal"
	"syscall"
)

// notifyResize sends a resizeEvent on every SIGWINCH until stop is closed
func notifyResize(events chan<- event, stop <-chan struct{}) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGWINCH)
	go func() {
		defer signal.Stop(sig)
		for {
			select {
			case <-sig:
				events <- resizeEvent{}
			case <-stop:
				return
			}
		}
	}()
}
