package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yllada/remote-manager/profile"
	"github.com/yllada/remote-manager/vault"
)

func newTestMirror(t *testing.T) *Mirror {
	t.Helper()
	m, err := Open(filepath.Join(t.TempDir(), "mirror.db"))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestSaveLoadConnections(t *testing.T) {
	m := newTestMirror(t)
	ctx := context.Background()

	stamp := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	in := []profile.Profile{
		{ID: "a1", Name: "office", Mode: profile.ModeRDP, Host: "10.0.0.5", Port: 3390, Group: "hq",
			Username: "Administrator", SSO: true, Domain: "CORP", CredentialID: "cred-1", LastConnected: stamp},
		{ID: "b2", Name: "corp vpn", Mode: profile.ModeVPN, Host: "vpn.corp.example", Protocol: profile.ProtocolFortiClient},
	}

	require.NoError(t, m.SaveConnections(ctx, in))

	out, err := m.LoadConnections(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "a1", out[0].ID)
	assert.Equal(t, profile.ModeRDP, out[0].Mode)
	assert.Equal(t, 3390, out[0].Port)
	assert.True(t, out[0].SSO)
	assert.Equal(t, "cred-1", out[0].CredentialID)
	assert.True(t, stamp.Equal(out[0].LastConnected))

	assert.Equal(t, profile.ProtocolFortiClient, out[1].Protocol)
	assert.True(t, out[1].LastConnected.IsZero())
}

func TestSaveConnectionsReplacesWholesale(t *testing.T) {
	m := newTestMirror(t)
	ctx := context.Background()

	first := []profile.Profile{
		{ID: "a1", Name: "office", Mode: profile.ModeRDP, Host: "10.0.0.5"},
		{ID: "b2", Name: "lab", Mode: profile.ModeRDP, Host: "10.0.0.6"},
	}
	require.NoError(t, m.SaveConnections(ctx, first))

	second := []profile.Profile{
		{ID: "c3", Name: "staging", Mode: profile.ModeRDP, Host: "10.0.0.7"},
	}
	require.NoError(t, m.SaveConnections(ctx, second))

	out, err := m.LoadConnections(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "c3", out[0].ID)
}

func TestLoadConnectionsPreservesOrder(t *testing.T) {
	m := newTestMirror(t)
	ctx := context.Background()

	in := []profile.Profile{
		{ID: "z9", Name: "last-alpha", Mode: profile.ModeRDP, Host: "h1"},
		{ID: "a1", Name: "first-alpha", Mode: profile.ModeRDP, Host: "h2"},
		{ID: "m5", Name: "mid-alpha", Mode: profile.ModeRDP, Host: "h3"},
	}
	require.NoError(t, m.SaveConnections(ctx, in))

	out, err := m.LoadConnections(ctx)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i := range in {
		assert.Equal(t, in[i].ID, out[i].ID)
	}
}

func TestSaveLoadCredentials(t *testing.T) {
	m := newTestMirror(t)
	ctx := context.Background()

	in := []vault.Credential{
		{ID: "cred-1", Name: "domain admin", Username: "CORP\\admin", Password: "never-stored", Domain: "CORP"},
	}
	require.NoError(t, m.SaveCredentials(ctx, in))

	out, err := m.LoadCredentials(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "cred-1", out[0].ID)
	assert.Equal(t, "CORP\\admin", out[0].Username)
	assert.Empty(t, out[0].Password, "password must not survive the mirror")
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.db")

	m, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, m.SaveConnections(context.Background(), []profile.Profile{
		{ID: "a1", Name: "office", Mode: profile.ModeRDP, Host: "10.0.0.5"},
	}))
	require.NoError(t, m.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	out, err := reopened.LoadConnections(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
}
