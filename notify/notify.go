// Package notify sends desktop notifications for connection events.
// It talks to org.freedesktop.Notifications over the session bus and
// falls back to notify-send when no bus is reachable.
package notify

import (
	"fmt"
	"os/exec"

	"github.com/godbus/dbus/v5"

	"github.com/yllada/remote-manager/common"
	"github.com/yllada/remote-manager/session"
)

// Urgency levels per the freedesktop notification spec.
const (
	urgencyLow      byte = 0
	urgencyNormal   byte = 1
	urgencyCritical byte = 2
)

// Notifier sends desktop notifications. It implements common.Notifier.
type Notifier struct {
	conn *dbus.Conn
	icon string
}

// Compile-time interface satisfaction check.
var _ common.Notifier = (*Notifier)(nil)

// New connects to the session bus. A connection failure is not fatal;
// the notifier falls back to notify-send for every message.
func New() *Notifier {
	conn, err := dbus.SessionBus()
	if err != nil {
		common.LogDebug("Session bus unavailable, using notify-send: %v", err)
		conn = nil
	}
	return &Notifier{conn: conn, icon: "network-server"}
}

// Notify sends a notification with normal urgency.
func (n *Notifier) Notify(title, message string) error {
	return n.send(title, message, n.icon, urgencyNormal)
}

func (n *Notifier) send(title, message, icon string, urgency byte) error {
	if n.conn != nil {
		if err := n.sendDBus(title, message, icon, urgency); err == nil {
			return nil
		}
	}
	return n.sendCommand(title, message, icon, urgency)
}

func (n *Notifier) sendDBus(title, message, icon string, urgency byte) error {
	obj := n.conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(urgency),
	}
	call := obj.Call("org.freedesktop.Notifications.Notify", 0,
		common.AppName, uint32(0), icon, title, message,
		[]string{}, hints, int32(-1))
	return call.Err
}

func (n *Notifier) sendCommand(title, message, icon string, urgency byte) error {
	level := "normal"
	switch urgency {
	case urgencyLow:
		level = "low"
	case urgencyCritical:
		level = "critical"
	}

	cmd := exec.Command("notify-send",
		"--app-name="+common.AppName,
		"--icon="+icon,
		"--urgency="+level,
		title,
		message,
	)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("notify-send: %w", err)
	}
	return nil
}

// NotifyConnected announces a successful connection.
func (n *Notifier) NotifyConnected(profileName string) {
	n.send("Connected", "Connected to "+profileName, "network-server", urgencyLow)
}

// NotifyConnecting announces an attempt in progress.
func (n *Notifier) NotifyConnecting(profileName string) {
	n.send("Connecting", "Connecting to "+profileName+"...", "network-server", urgencyLow)
}

// NotifyFailed announces a failed attempt.
func (n *Notifier) NotifyFailed(profileName, reason string) {
	n.send("Connection Error", profileName+": "+reason, "dialog-error", urgencyCritical)
}

// NotifyDisconnected announces a session returning to idle.
func (n *Notifier) NotifyDisconnected(profileName string) {
	n.send("Disconnected", "Disconnected from "+profileName, "network-server", urgencyLow)
}

// OnTransition returns a state change callback suitable for
// session.Controller.SetOnStateChange. Notification failures are logged
// and dropped.
func (n *Notifier) OnTransition(resolve func(id string) string, lastErr func(id string) error) func(string, session.Status, session.Status) {
	return func(id string, old, status session.Status) {
		name := resolve(id)
		if name == "" {
			name = id
		}
		switch status {
		case session.StatusConnecting:
			n.NotifyConnecting(name)
		case session.StatusConnected:
			n.NotifyConnected(name)
		case session.StatusIdle:
			if err := lastErr(id); err != nil {
				n.NotifyFailed(name, err.Error())
				return
			}
			n.NotifyDisconnected(name)
		}
	}
}
