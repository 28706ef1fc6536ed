package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yllada/remote-manager/bridge"
	"github.com/yllada/remote-manager/profile"
	"github.com/yllada/remote-manager/session"
	"github.com/yllada/remote-manager/vault"
)

type nopSecrets struct{}

func (nopSecrets) Store(id, secret string) error { return nil }
func (nopSecrets) Get(id string) (string, error) { return "", os.ErrNotExist }
func (nopSecrets) Delete(id string) error        { return nil }

func newTestCLI(t *testing.T) (*CLI, *profile.Store) {
	t.Helper()
	store := profile.NewStore(nil)
	v := vault.New(nil, nopSecrets{})
	controller := session.NewController(store, v, bridge.Absent{}, nil, session.DefaultConfig())
	return New(store, v, controller), store
}

func TestConnectLeavesSessionUncancelled(t *testing.T) {
	store := profile.NewStore(nil)
	v := vault.New(nil, nopSecrets{})
	controller := session.NewController(store, v, bridge.Absent{}, nil, session.Config{
		SettleDelay:   5 * time.Millisecond,
		DisplayDelay:  20 * time.Millisecond,
		BridgeTimeout: 50 * time.Millisecond,
	})
	c := New(store, v, controller)

	created, err := store.Create(profile.Profile{Name: "Office", Host: "10.0.0.5", Mode: profile.ModeRDP})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := c.Connect("office"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	// The display phase keeps running after Connect returns; wait for
	// the machine to come back to Idle on its own.
	deadline := time.After(2 * time.Second)
	for controller.Status(created.ID) != session.StatusIdle {
		select {
		case <-deadline:
			t.Fatal("session did not return to Idle")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := controller.LastError(created.ID); err != nil {
		t.Errorf("LastError() = %v after a successful connect, want nil", err)
	}
}

func TestFindProfileMatchesNameAndIDPrefix(t *testing.T) {
	c, store := newTestCLI(t)
	created, err := store.Create(profile.Profile{Name: "Office", Host: "10.0.0.5", Mode: profile.ModeRDP})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		needle string
		found  bool
	}{
		{"office", true},
		{"  Office  ", true},
		{created.ID, true},
		{created.ID[:8], true},
		{"absent", false},
		{"", false},
	}

	for _, tt := range tests {
		_, ok := c.findProfile(tt.needle)
		if ok != tt.found {
			t.Errorf("findProfile(%q) found = %v, want %v", tt.needle, ok, tt.found)
		}
	}
}

func TestAddHostRejectsInvalidDraft(t *testing.T) {
	c, store := newTestCLI(t)

	if err := c.AddHost("", "10.0.0.5", "", "", ""); err == nil {
		t.Error("AddHost() accepted empty name")
	}
	if err := c.AddHost("Office", "10.0.0.5", "ssh", "", ""); err == nil {
		t.Error("AddHost() accepted unknown mode")
	}
	if len(store.List()) != 0 {
		t.Errorf("store grew to %d entries on rejected adds", len(store.List()))
	}
}

func TestAddHostAcceptsLowercaseModeAndProtocol(t *testing.T) {
	c, store := newTestCLI(t)

	if err := c.AddHost("Office", "10.0.0.5", "rdp", "", "Administrator"); err != nil {
		t.Fatalf("AddHost(mode=rdp) error = %v", err)
	}
	if err := c.AddHost("Corp VPN", "vpn.corp.example", "vpn", "openvpn", ""); err != nil {
		t.Fatalf("AddHost(mode=vpn, protocol=openvpn) error = %v", err)
	}

	profiles := store.List()
	if len(profiles) != 2 {
		t.Fatalf("store has %d profiles, want 2", len(profiles))
	}
	if profiles[0].Mode != profile.ModeRDP {
		t.Errorf("Mode = %q, want %q", profiles[0].Mode, profile.ModeRDP)
	}
	if profiles[1].Mode != profile.ModeVPN || profiles[1].Protocol != profile.ProtocolOpenVPN {
		t.Errorf("VPN profile = mode %q protocol %q, want canonical tags", profiles[1].Mode, profiles[1].Protocol)
	}
}

func TestExportRDPWritesFile(t *testing.T) {
	c, store := newTestCLI(t)
	if _, err := store.Create(profile.Profile{Name: "Office", Host: "10.0.0.5", Mode: profile.ModeRDP, Username: "svc-user"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	dir := t.TempDir()
	if err := c.ExportRDP("office", dir); err != nil {
		t.Fatalf("ExportRDP() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "Office.rdp"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "full address:s:10.0.0.5") {
		t.Error("exported file missing host line")
	}
	if !strings.Contains(string(data), "username:s:svc-user") {
		t.Error("exported file missing username line")
	}
}

func TestExportRDPRejectsVPNProfile(t *testing.T) {
	c, store := newTestCLI(t)
	if _, err := store.Create(profile.Profile{Name: "Corp VPN", Host: "vpn.corp.example", Mode: profile.ModeVPN, Protocol: profile.ProtocolOpenVPN}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := c.ExportRDP("corp vpn", t.TempDir()); err == nil {
		t.Error("ExportRDP() accepted a VPN profile")
	}
}
