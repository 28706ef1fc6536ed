// Package bridge abstracts the external, higher-privilege backend that
// actually opens network sessions. This file contains the Native variant,
// which drives the RDP and VPN client binaries found on the system.
package bridge

import (
	"context"
	"fmt"

	"os/exec"

	"github.com/yllada/remote-manager/common"
	"github.com/yllada/remote-manager/profile"
)

// rdpClients lists known remote desktop clients in preference order.
var rdpClients = []string{"xfreerdp", "mstsc.exe"}

// vpnClient describes how to drive one VPN client binary.
type vpnClient struct {
	binary string
	// args builds the command line for a connect (enable=true) or
	// disconnect (enable=false) toggle against host.
	args func(host string, enable bool) []string
}

// vpnClients maps each supported protocol to its client invocation.
// Protocols without a scriptable client (Citrix, Parallels) have no entry;
// toggling them reports the bridge as unavailable for that protocol.
var vpnClients = map[profile.Protocol]vpnClient{
	profile.ProtocolOpenVPN: {
		binary: "openvpn3",
		args: func(host string, enable bool) []string {
			if enable {
				return []string{"session-start", "--config", host}
			}
			return []string{"session-manage", "--config", host, "--disconnect"}
		},
	},
	profile.ProtocolFortiClient: {
		binary: "forticlient",
		args: func(host string, enable bool) []string {
			if enable {
				return []string{"vpn", "connect", host}
			}
			return []string{"vpn", "disconnect"}
		},
	},
	profile.ProtocolGlobalProtect: {
		binary: "globalprotect",
		args: func(host string, enable bool) []string {
			if enable {
				return []string{"connect", "--portal", host}
			}
			return []string{"disconnect"}
		},
	},
	profile.ProtocolAnyConnect: {
		binary: "vpn",
		args: func(host string, enable bool) []string {
			if enable {
				return []string{"-s", "connect", host}
			}
			return []string{"-s", "disconnect"}
		},
	},
}

// runCommand is swapped in tests.
var runCommand = func(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Native is the Bridge variant backed by client binaries on the system.
// Construct it with Detect, never directly.
type Native struct {
	rdpClient  string
	rdpFlavor  string
	vpnClients map[profile.Protocol]string
}

// Available always reports true for a detected native backend.
func (n *Native) Available() bool { return true }

// LaunchRDP starts the detected remote desktop client against host.
// The password reaches mstsc.exe only through its own credential prompt;
// xfreerdp receives it on the command line.
func (n *Native) LaunchRDP(ctx context.Context, host, username, password string) error {
	if n.rdpClient == "" {
		return common.ErrBridgeUnavailable
	}

	var args []string
	switch n.rdpFlavor {
	case "xfreerdp":
		args = []string{"/v:" + host, "/cert:ignore"}
		if username != "" {
			args = append(args, "/u:"+username)
		}
		if password != "" {
			args = append(args, "/p:"+password)
		}
	case "mstsc.exe":
		args = []string{"/v:" + host}
	}

	common.LogInfo("launching RDP client %s for %s", n.rdpFlavor, host)
	if err := runCommand(ctx, n.rdpClient, args...); err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrConnectionFailed, n.rdpFlavor, err)
	}
	return nil
}

// ToggleVPN drives the client for the given protocol. Protocols without a
// detected client fail with common.ErrBridgeUnavailable.
func (n *Native) ToggleVPN(ctx context.Context, protocol profile.Protocol, host string, enable bool) error {
	path, ok := n.vpnClients[protocol]
	if !ok {
		return fmt.Errorf("%w: no client for %s", common.ErrBridgeUnavailable, protocol)
	}

	client := vpnClients[protocol]
	args := client.args(host, enable)

	common.LogInfo("toggling VPN %s (enable=%v) via %s", host, enable, client.binary)
	if err := runCommand(ctx, path, args...); err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrConnectionFailed, client.binary, err)
	}
	return nil
}
