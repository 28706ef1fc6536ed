package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yllada/remote-manager/common"
	"github.com/yllada/remote-manager/profile"
	"github.com/yllada/remote-manager/vault"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Theme != common.ThemeAuto {
		t.Errorf("Theme = %q, want %q", cfg.Theme, common.ThemeAuto)
	}
	if len(cfg.Connections) != 0 {
		t.Errorf("Connections length = %d, want 0", len(cfg.Connections))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Theme = common.ThemeDark
	cfg.NativeSync = true
	cfg.Connections = []profile.Profile{
		{ID: "a1", Name: "office", Mode: profile.ModeRDP, Host: "10.0.0.5", Username: "Administrator"},
		{ID: "b2", Name: "corp vpn", Mode: profile.ModeVPN, Host: "vpn.corp.example", Protocol: profile.ProtocolOpenVPN},
	}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Theme != common.ThemeDark {
		t.Errorf("Theme = %q, want %q", loaded.Theme, common.ThemeDark)
	}
	if !loaded.NativeSync {
		t.Error("NativeSync = false, want true")
	}
	if len(loaded.Connections) != 2 {
		t.Fatalf("Connections length = %d, want 2", len(loaded.Connections))
	}
	if loaded.Connections[0].Name != "office" || loaded.Connections[1].Protocol != profile.ProtocolOpenVPN {
		t.Errorf("Connections round trip mismatch: %+v", loaded.Connections)
	}
}

func TestSaveFilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if err := Save(path, Default()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permissions = %o, want 0600", perm)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("theme: dark\nunknown_field: value\n")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() accepted unknown field, want error")
	}
}

func TestLoadInvalidThemeFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("theme: neon\n")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Theme != common.ThemeAuto {
		t.Errorf("Theme = %q, want fallback %q", cfg.Theme, common.ThemeAuto)
	}
}

func TestStoreGetReturnsIsolatedCopy(t *testing.T) {
	store := NewStore(AppConfig{
		Theme:       common.ThemeAuto,
		Connections: []profile.Profile{{ID: "a1", Name: "office", Mode: profile.ModeRDP, Host: "10.0.0.5"}},
	})

	got := store.Get()
	got.Connections[0].Name = "tampered"

	if store.Get().Connections[0].Name != "office" {
		t.Error("mutation of a returned snapshot leaked into the store")
	}
}

func TestStoreUpdateNotifiesSubscribers(t *testing.T) {
	store := NewStore(Default())

	var seen []string
	cancel := store.Subscribe(func(cfg AppConfig) {
		seen = append(seen, cfg.Theme)
	})

	store.Update(func(cfg *AppConfig) { cfg.Theme = common.ThemeDark })
	if len(seen) != 1 || seen[0] != common.ThemeDark {
		t.Fatalf("subscriber saw %v, want [dark]", seen)
	}

	cancel()
	store.Update(func(cfg *AppConfig) { cfg.Theme = common.ThemeLight })
	if len(seen) != 1 {
		t.Errorf("subscriber notified after cancel, saw %v", seen)
	}
}

func TestCredentialsRoundTripOmitsPasswords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")

	in := []vault.Credential{
		{ID: "cred-1", Name: "domain admin", Username: "CORP\\admin", Password: "never-on-disk", Domain: "CORP"},
	}
	if err := SaveCredentials(path, in); err != nil {
		t.Fatalf("SaveCredentials() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if strings.Contains(string(raw), "never-on-disk") {
		t.Error("password leaked into credential metadata file")
	}

	out, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials() error = %v", err)
	}
	if len(out) != 1 || out[0].Username != "CORP\\admin" {
		t.Errorf("LoadCredentials() = %+v", out)
	}
	if out[0].Password != "" {
		t.Errorf("Password = %q after load, want empty", out[0].Password)
	}
}

func TestLoadCredentialsMissingFile(t *testing.T) {
	out, err := LoadCredentials(filepath.Join(t.TempDir(), "credentials.yaml"))
	if err != nil {
		t.Fatalf("LoadCredentials() error = %v", err)
	}
	if len(out) != 0 {
		t.Errorf("LoadCredentials() = %+v, want empty", out)
	}
}

func TestStoreUpdateValidatesTheme(t *testing.T) {
	store := NewStore(Default())

	got := store.Update(func(cfg *AppConfig) { cfg.Theme = "neon" })
	if got.Theme != common.ThemeAuto {
		t.Errorf("Theme = %q, want fallback %q", got.Theme, common.ThemeAuto)
	}
}
