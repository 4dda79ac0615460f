//go:build !linux

package main

// notifyStateChange is a no-op on platforms without a desktop
// notification bus.
func notifyStateChange(enabled bool) {}
