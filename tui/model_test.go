package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yllada/remote-manager/bridge"
	"github.com/yllada/remote-manager/profile"
	"github.com/yllada/remote-manager/session"
	"github.com/yllada/remote-manager/vault"
)

type nopSecrets struct{}

func (nopSecrets) Store(id, secret string) error { return nil }
func (nopSecrets) Get(id string) (string, error) { return "", errors.New("not found") }
func (nopSecrets) Delete(id string) error        { return nil }

func newTestModel(t *testing.T, profiles ...profile.Profile) *Model {
	t.Helper()
	store := profile.NewStore(profiles)
	v := vault.New(nil, nopSecrets{})
	controller := session.NewController(store, v, bridge.Absent{}, nil, session.DefaultConfig())
	m := New(store, controller)
	m.list.SetSize(80, 20)
	return m
}

func TestViewListsProfiles(t *testing.T) {
	m := newTestModel(t,
		profile.Profile{ID: "a1", Name: "Office", Mode: profile.ModeRDP, Host: "10.0.0.5"},
		profile.Profile{ID: "b2", Name: "Corp VPN", Mode: profile.ModeVPN, Host: "vpn.corp.example"},
	)

	view := m.View()
	if !strings.Contains(view, "Office") || !strings.Contains(view, "Corp VPN") {
		t.Errorf("view missing profile names:\n%s", view)
	}
}

func TestTransitionTogglesSpinner(t *testing.T) {
	m := newTestModel(t, profile.Profile{ID: "a1", Name: "Office", Mode: profile.ModeRDP, Host: "10.0.0.5"})

	next, _ := m.Update(transitionMsg{profileID: "a1", status: session.StatusConnecting})
	m = next.(*Model)
	if !m.spinning {
		t.Error("spinner not active after Connecting transition")
	}

	next, _ = m.Update(transitionMsg{profileID: "a1", status: session.StatusConnected})
	m = next.(*Model)
	if m.spinning {
		t.Error("spinner still active after Connected transition")
	}
}

func TestQuitKeyStopsProgram(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("quit key produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit key did not produce tea.Quit")
	}
}
