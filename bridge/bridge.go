// Package bridge abstracts the external, higher-privilege backend that
// actually opens network sessions. The capability is detected once at
// startup with Detect and injected as one of two variants: Native, backed
// by the client binaries found on the system, or Absent, which reports
// every call as unavailable. Consumers never probe for the backend ad hoc.
package bridge

import (
	"context"
	"os/exec"

	"github.com/yllada/remote-manager/common"
	"github.com/yllada/remote-manager/profile"
)

// Bridge is the interface to the native backend.
// Calls block until the underlying client has been handed the session and
// report failure through their error; callers decide how long to wait via
// the context.
type Bridge interface {
	// Available reports whether a native backend was detected.
	Available() bool
	// LaunchRDP opens a remote desktop session against host.
	LaunchRDP(ctx context.Context, host, username, password string) error
	// ToggleVPN drives the VPN client for the given protocol. enable
	// selects the direction of the toggle.
	ToggleVPN(ctx context.Context, protocol profile.Protocol, host string, enable bool) error
}

// Absent is the Bridge variant used when no native backend was detected.
// Every call fails with common.ErrBridgeUnavailable.
type Absent struct{}

// Available always reports false.
func (Absent) Available() bool { return false }

// LaunchRDP fails with common.ErrBridgeUnavailable.
func (Absent) LaunchRDP(ctx context.Context, host, username, password string) error {
	return common.ErrBridgeUnavailable
}

// ToggleVPN fails with common.ErrBridgeUnavailable.
func (Absent) ToggleVPN(ctx context.Context, protocol profile.Protocol, host string, enable bool) error {
	return common.ErrBridgeUnavailable
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// Detect probes the system once for known client binaries and returns the
// matching Bridge variant. Call it at startup and pass the result down;
// the availability of the backend never changes mid-run.
func Detect() Bridge {
	native := &Native{vpnClients: make(map[profile.Protocol]string)}

	for _, candidate := range rdpClients {
		if path, err := lookPath(candidate); err == nil {
			native.rdpClient = path
			native.rdpFlavor = candidate
			break
		}
	}

	for proto, candidate := range vpnClients {
		if path, err := lookPath(candidate.binary); err == nil {
			native.vpnClients[proto] = path
		}
	}

	if native.rdpClient == "" && len(native.vpnClients) == 0 {
		common.LogInfo("no native backend detected, falling back to file export")
		return Absent{}
	}

	common.LogInfo("native backend detected (rdp=%q, vpn clients=%d)",
		native.rdpFlavor, len(native.vpnClients))
	return native
}
