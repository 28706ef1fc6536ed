// Package cli provides command-line functionality for Remote Manager.
// This allows users to manage connection profiles from the terminal
// without launching the terminal UI.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/yllada/remote-manager/common"
	"github.com/yllada/remote-manager/profile"
	"github.com/yllada/remote-manager/rdp"
	"github.com/yllada/remote-manager/session"
	"github.com/yllada/remote-manager/vault"
)

// CLI represents the command-line interface.
type CLI struct {
	store      *profile.Store
	vault      *vault.Vault
	controller *session.Controller
}

// New creates a new CLI instance over the shared stores and controller.
func New(store *profile.Store, v *vault.Vault, controller *session.Controller) *CLI {
	return &CLI{
		store:      store,
		vault:      v,
		controller: controller,
	}
}

// ListProfiles lists all configured connection profiles.
func (c *CLI) ListProfiles() error {
	profiles := c.store.List()

	if len(profiles) == 0 {
		fmt.Println("No connection profiles configured.")
		fmt.Println("Use --add-host to add one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMODE\tHOST\tGROUP\tLAST CONNECTED")
	fmt.Fprintln(w, "--\t----\t----\t----\t-----\t--------------")

	for _, p := range profiles {
		last := "-"
		if !p.LastConnected.IsZero() {
			last = p.LastConnected.Local().Format("2006-01-02 15:04")
		}

		group := p.Group
		if group == "" {
			group = "-"
		}

		// Truncate ID for display
		shortID := p.ID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID, p.Name, p.Mode, p.Host, group, last)
	}

	w.Flush()
	return nil
}

// Connect connects to a profile by name or ID and waits for the attempt
// to settle.
func (c *CLI) Connect(nameOrID string) error {
	p, ok := c.findProfile(nameOrID)
	if !ok {
		return fmt.Errorf("profile not found: %s", nameOrID)
	}

	fmt.Printf("Connecting to %s...\n", p.Name)

	// The session outlives this call; its display phase must not be
	// cancelled when the poll loop below returns.
	if err := c.controller.Connect(context.Background(), p.ID); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	// Wait for the attempt to establish (with timeout)
	timeout := time.After(common.ConnectionTimeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			return fmt.Errorf("%w: connection attempt", common.ErrTimeout)
		case <-ticker.C:
			switch c.controller.Status(p.ID) {
			case session.StatusConnected:
				fmt.Printf("✓ Connected to %s\n", p.Name)
				return nil
			case session.StatusIdle:
				if err := c.controller.LastError(p.ID); err != nil {
					return fmt.Errorf("connection failed: %w", err)
				}
				// The session already completed its display window.
				fmt.Printf("✓ Connected to %s\n", p.Name)
				return nil
			}
		}
	}
}

// Status shows the state of every profile with an active session.
func (c *CLI) Status() error {
	profiles := c.store.List()

	active := 0
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROFILE\tMODE\tSTATUS")
	fmt.Fprintln(w, "-------\t----\t------")

	for _, p := range profiles {
		status := c.controller.Status(p.ID)
		if status == session.StatusIdle {
			continue
		}
		active++
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, p.Mode, status)
	}

	if active == 0 {
		fmt.Println("No active sessions.")
		return nil
	}

	w.Flush()
	return nil
}

// AddHost creates a connection profile. The mode defaults to RDP and the
// protocol is only relevant for VPN profiles.
func (c *CLI) AddHost(name, host, modeStr, protocolStr, username string) error {
	mode := profile.ModeRDP
	if modeStr != "" {
		parsed, ok := profile.ParseMode(modeStr)
		if !ok {
			return fmt.Errorf("cannot add host: unknown mode %q", modeStr)
		}
		mode = parsed
	}

	protocol, ok := profile.ParseProtocol(protocolStr)
	if !ok {
		return fmt.Errorf("cannot add host: unknown protocol %q", protocolStr)
	}

	draft := profile.Profile{
		Name:     strings.TrimSpace(name),
		Host:     strings.TrimSpace(host),
		Mode:     mode,
		Protocol: protocol,
		Username: strings.TrimSpace(username),
	}

	created, err := c.store.Create(draft)
	if err != nil {
		return fmt.Errorf("cannot add host: %w", err)
	}

	fmt.Printf("✓ Added %s (%s)\n", created.Name, created.ID[:8])
	return nil
}

// AddCredential creates a reusable credential, prompting for the password
// on the terminal.
func (c *CLI) AddCredential(name, username, domain string) error {
	password, err := promptPassword(fmt.Sprintf("Password for %s: ", username))
	if err != nil {
		return fmt.Errorf("cannot read password: %w", err)
	}

	created, err := c.vault.Add(vault.Credential{
		Name:     strings.TrimSpace(name),
		Username: strings.TrimSpace(username),
		Password: password,
		Domain:   strings.TrimSpace(domain),
	})
	if err != nil {
		return fmt.Errorf("cannot add credential: %w", err)
	}

	fmt.Printf("✓ Added credential %s (%s)\n", created.Name, created.ID[:8])
	return nil
}

// RemoveProfile deletes a profile by name or ID.
func (c *CLI) RemoveProfile(nameOrID string) error {
	p, ok := c.findProfile(nameOrID)
	if !ok {
		return fmt.Errorf("profile not found: %s", nameOrID)
	}

	c.store.Delete(p.ID)
	fmt.Printf("✓ Removed %s\n", p.Name)
	return nil
}

// ExportRDP writes the canonical .rdp file for a profile to the given
// directory (or the working directory when empty).
func (c *CLI) ExportRDP(nameOrID, dir string) error {
	p, ok := c.findProfile(nameOrID)
	if !ok {
		return fmt.Errorf("profile not found: %s", nameOrID)
	}
	if p.Mode != profile.ModeRDP {
		return fmt.Errorf("profile %s is not an RDP profile", p.Name)
	}

	username := p.Username
	if cred, ok := c.vault.Resolve(p.CredentialID); ok {
		username = cred.Username
	}
	if username == "" {
		username = rdp.DefaultUsername
	}

	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, rdp.FileName(p.Name))
	if err := os.WriteFile(path, []byte(rdp.FileContent(p.Host, username)), 0600); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}

	fmt.Printf("✓ Wrote %s\n", path)
	return nil
}

// findProfile finds a profile by name, full ID, or ID prefix
// (case-insensitive).
func (c *CLI) findProfile(nameOrID string) (profile.Profile, bool) {
	needle := strings.ToLower(strings.TrimSpace(nameOrID))

	for _, p := range c.store.List() {
		if strings.ToLower(p.Name) == needle ||
			strings.ToLower(p.ID) == needle ||
			(needle != "" && strings.HasPrefix(strings.ToLower(p.ID), needle)) {
			return p, true
		}
	}

	return profile.Profile{}, false
}

// promptPassword reads a password without echoing it. Falls back to a
// plain line read when stdin is not a terminal.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)

	if term.IsTerminal(int(syscall.Stdin)) {
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// PrintHelp prints CLI usage help.
func PrintHelp() {
	fmt.Println(`Remote Manager - Command Line Interface

Usage:
  remote-manager [OPTIONS]

Options:
  --version             Show version and exit
  --verbose             Enable verbose logging
  --list                List all connection profiles
  --connect NAME        Connect to a profile by name or ID
  --status              Show active sessions
  --add-host NAME       Add a connection profile (with --host, --mode,
                        --protocol, --user)
  --add-credential NAME Add a reusable credential (with --user, --domain)
  --remove NAME         Remove a profile by name or ID
  --export-rdp NAME     Write the profile's .rdp file (with --out DIR)
  --help                Show this help message

Examples:
  remote-manager --list
  remote-manager --add-host "Office" --host 10.0.0.5 --user Administrator
  remote-manager --connect "Office"
  remote-manager --export-rdp "Office" --out ~/Desktop

Notes:
  - Run without options to launch the terminal UI
  - Passwords are stored in the system keyring when available`)
}
