//go:build linux

package platform

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Notify sends a desktop notification over the Freedesktop.org notifications D-Bus interface.
func Notify(title, body string, opts Options) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("session bus: %w", err)
	}
	defer conn.Close()

	hints := map[string]dbus.Variant{
		"desktop-entry": dbus.MakeVariant("inkwell"),
		"category":      dbus.MakeVariant("transfer.complete"),
	}
	obj := conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	call := obj.Call("org.freedesktop.Notifications.Notify", 0,
		AppName, uint32(0), opts.IconPath, title, body, []string{}, hints, int32(opts.timeout().Milliseconds()))
	return call.Err
}
