//go:build windows

package main

// notifyResize does nothing on Windows; there is no SIGWINCH, so the size
// read at startup stays in effect
func notifyResize(events chan<- event, stop <-chan struct{}) {}
