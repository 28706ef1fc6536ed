// Package common provides shared constants, types, and utilities
// used across the Remote Manager application.
package common

import "time"

// Application metadata.
const (
	// AppID is the unique identifier for the application.
	AppID = "com.remotemanager.app"
	// AppName is the display name of the application.
	AppName = "Remote Manager"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "remote-manager"
)

// File names used by the application.
const (
	ConfigFileName = "config.yaml"
	// VaultFileName holds credential metadata; secrets live in the keyring.
	VaultFileName = "credentials.yaml"
	// CredentialsFileName is the keyring's encrypted local fallback store.
	CredentialsFileName = ".credentials"
	MirrorFileName      = "mirror.db"
	LogFileName         = "remote-manager.log"
)

// Default timeouts and intervals.
const (
	// SettleDelay models the latency of a connection attempt between
	// the Connecting and Connected states.
	SettleDelay = 2 * time.Second
	// DisplayDelay is how long the Connected state is held before the
	// session machine returns to Idle on its own.
	DisplayDelay = 3 * time.Second
	// BridgeTimeout is the maximum time to wait for a native bridge call.
	BridgeTimeout = 15 * time.Second
	// ConnectionTimeout is the maximum time the CLI waits for a
	// connect attempt to report Connected.
	ConnectionTimeout = 30 * time.Second
)

// Theme values.
const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)
