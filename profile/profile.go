// Package profile provides the connection profile data model and its store.
// A profile describes a reachable endpoint (RDP host or VPN gateway) plus
// the parameters needed to open a session against it.
package profile

import (
	"strings"
	"time"

	"github.com/yllada/remote-manager/common"
)

// Mode identifies the remote-access mode of a connection profile.
type Mode string

const (
	// ModeRDP is a Remote Desktop Protocol session.
	ModeRDP Mode = "RDP"
	// ModeVPN is a Virtual Private Network tunnel.
	ModeVPN Mode = "VPN"
)

// Valid reports whether the mode is a member of the closed set.
func (m Mode) Valid() bool {
	return m == ModeRDP || m == ModeVPN
}

// ParseMode maps user input to a canonical mode tag, case-insensitively.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(ModeRDP):
		return ModeRDP, true
	case string(ModeVPN):
		return ModeVPN, true
	}
	return "", false
}

// Protocol identifies the VPN client kind used for a VPN-mode profile.
type Protocol string

const (
	ProtocolOpenVPN       Protocol = "OpenVPN"
	ProtocolFortiClient   Protocol = "FortiClient"
	ProtocolGlobalProtect Protocol = "GlobalProtect"
	ProtocolAnyConnect    Protocol = "AnyConnect"
	ProtocolCitrix        Protocol = "Citrix"
	ProtocolParallels     Protocol = "Parallels"
)

// Protocols lists every supported VPN client protocol.
var Protocols = []Protocol{
	ProtocolOpenVPN,
	ProtocolFortiClient,
	ProtocolGlobalProtect,
	ProtocolAnyConnect,
	ProtocolCitrix,
	ProtocolParallels,
}

// Valid reports whether the protocol is a member of the closed set.
// The empty protocol is valid; it means "unspecified".
func (p Protocol) Valid() bool {
	if p == "" {
		return true
	}
	for _, known := range Protocols {
		if p == known {
			return true
		}
	}
	return false
}

// ParseProtocol maps user input to a canonical protocol tag,
// case-insensitively. Empty input parses to the unspecified protocol.
func ParseProtocol(s string) (Protocol, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	for _, known := range Protocols {
		if strings.EqualFold(s, string(known)) {
			return known, true
		}
	}
	return "", false
}

// DefaultRDPPort is the standard Remote Desktop port.
const DefaultRDPPort = 3389

// Profile represents a connection profile.
// Protocol and Gateway are meaningful only under ModeVPN, Domain only under
// ModeRDP; the type does not enforce that structurally. The store validates
// at write time.
type Profile struct {
	// ID is a unique identifier for the profile, assigned at creation.
	ID string `json:"id" yaml:"id"`
	// Name is a human-readable name for the profile.
	Name string `json:"name" yaml:"name"`
	// Mode selects between RDP and VPN.
	Mode Mode `json:"mode" yaml:"mode"`
	// Host is the target hostname or IP address.
	Host string `json:"host" yaml:"host"`
	// Port is the target port. Zero means the mode's default.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`
	// Group is an optional label used to group profiles together.
	Group string `json:"group,omitempty" yaml:"group,omitempty"`
	// Username is an optional inline username, used only when no
	// credential is linked.
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	// Password is an optional inline password, used only when no
	// credential is linked.
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	// SSO indicates single sign-on should be used where supported.
	SSO bool `json:"sso,omitempty" yaml:"sso,omitempty"`
	// LastConnected is the timestamp of the last successful connection.
	LastConnected time.Time `json:"last_connected,omitempty" yaml:"last_connected,omitempty"`
	// Protocol is the VPN client kind. VPN mode only.
	Protocol Protocol `json:"protocol,omitempty" yaml:"protocol,omitempty"`
	// Domain is the authentication domain. RDP mode only.
	Domain string `json:"domain,omitempty" yaml:"domain,omitempty"`
	// Icon is an optional icon tag for display purposes.
	Icon string `json:"icon,omitempty" yaml:"icon,omitempty"`
	// CredentialID is a weak reference into the credential vault.
	// Resolved at use time, never cached; a dangling reference simply
	// resolves to no credential.
	CredentialID string `json:"credential_id,omitempty" yaml:"credential_id,omitempty"`
	// Gateway is the VPN gateway or group string. VPN mode only.
	Gateway string `json:"gateway,omitempty" yaml:"gateway,omitempty"`
}

// Validate checks if the profile has all required fields.
func (p *Profile) Validate() error {
	if p.Name == "" || p.Host == "" {
		return common.ErrInvalidProfile
	}
	if !p.Mode.Valid() {
		return common.ErrInvalidProfile
	}
	if !p.Protocol.Valid() {
		return common.ErrInvalidProfile
	}
	return nil
}

// EffectivePort returns the profile's port, falling back to the mode default.
func (p *Profile) EffectivePort() int {
	if p.Port != 0 {
		return p.Port
	}
	if p.Mode == ModeRDP {
		return DefaultRDPPort
	}
	return 0
}
