//go:build linux

package main

import (
	"sync"

	"github.com/godbus/dbus/v5"
)

var (
	notifyOnce sync.Once
	notifyConn *dbus.Conn
)

// notifyStateChange posts a desktop notification through
// org.freedesktop.Notifications when the enabled state flips.
func notifyStateChange(enabled bool) {
	notifyOnce.Do(func() {
		conn, err := dbus.SessionBus()
		if err == nil {
			notifyConn = conn
		}
	})
	if notifyConn == nil {
		return
	}

	body := "Vietnamese input off"
	if enabled {
		body = "Vietnamese input on"
	}

	obj := notifyConn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	obj.Call("org.freedesktop.Notifications.Notify", 0,
		"goxkey",             // app name
		uint32(0),            // replaces id
		"input-keyboard",     // icon
		"goxkey",             // summary
		body,                 // body
		[]string{},           // actions
		map[string]dbus.Variant{}, // hints
		int32(2000),          // timeout ms
	)
}
