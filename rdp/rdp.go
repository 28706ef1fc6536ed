// Package rdp serializes connection profiles into the Remote Desktop
// Protocol configuration-file format understood by mstsc.exe and
// compatible clients.
package rdp

import "fmt"

// DefaultUsername is substituted when no credential is linked or the
// linked credential carries no username.
const DefaultUsername = "Administrator"

// FileExtension is the canonical extension for serialized profiles.
const FileExtension = ".rdp"

// template is the canonical key:type:value line sequence. Only the target
// host and the username are substituted; everything else is a fixed default
// encoding a 1920x1080 desktop, compression on, the usual redirections, and
// the gateway disabled. Gateway fields stay empty on purpose.
//
// Host and username are inserted verbatim; values containing the field
// delimiter syntax are not sanitized.
const template = `screen mode id:i:2
use multimon:i:0
desktopwidth:i:1920
desktopheight:i:1080
session bpp:i:32
winposstr:s:0,3,0,0,800,600
full address:s:%s
compression:i:1
keyboardhook:i:2
audiocapturemode:i:0
videoplaybackmode:i:1
connection type:i:7
displayconnectionbar:i:1
username:s:%s
networkautodetect:i:1
bandwidthautodetect:i:1
enableworkspacereconnect:i:0
disable wallpaper:i:0
allow font smoothing:i:1
allow desktop composition:i:1
disable full window drag:i:0
disable menu anims:i:0
disable themes:i:0
disable cursor setting:i:0
bitmapcachepersistenable:i:1
audiomode:i:0
redirectprinters:i:1
redirectcomports:i:0
redirectsmartcards:i:1
redirectclipboard:i:1
redirectposdevices:i:0
autoreconnection enabled:i:1
authentication level:i:2
prompt for credentials:i:0
negotiate security layer:i:1
remoteapplicationmode:i:0
alternate shell:s:
shell working directory:s:
gatewayhostname:s:
gatewayusagemethod:i:4
gatewaycredentialssource:i:4
gatewayprofileusagemethod:i:0
promptcredentialonce:i:1
use redirection server name:i:0
`

// FileContent produces the configuration-file text for the given target
// host and username. The function is total: it never fails for any host or
// username string. An empty username falls back to DefaultUsername.
func FileContent(host, username string) string {
	if username == "" {
		username = DefaultUsername
	}
	return fmt.Sprintf(template, host, username)
}

// FileName returns the download name for a serialized profile,
// "<name>.rdp", falling back to "connection" when the profile has no name.
func FileName(profileName string) string {
	if profileName == "" {
		profileName = "connection"
	}
	return profileName + FileExtension
}
