// Package session coordinates connection attempts. Each connection profile
// owns a small cyclic state machine (Idle, Connecting, Connected, back to
// Idle) driven by the Controller, which delegates the network action to the
// native bridge and falls back to serializing an RDP file when no bridge
// is present.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/yllada/remote-manager/bridge"
	"github.com/yllada/remote-manager/common"
	"github.com/yllada/remote-manager/profile"
	"github.com/yllada/remote-manager/rdp"
	"github.com/yllada/remote-manager/vault"
)

// Status represents the state of a profile's session machine.
type Status int

const (
	// StatusIdle indicates no pending operation.
	StatusIdle Status = iota
	// StatusConnecting indicates a connection attempt is in flight.
	StatusConnecting
	// StatusConnected indicates the attempt settled successfully.
	StatusConnected
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusConnecting:
		return "Connecting..."
	case StatusConnected:
		return "Connected"
	default:
		return "Unknown"
	}
}

// ArtifactSink receives serialized profile files on the fallback path.
type ArtifactSink interface {
	// Emit delivers a downloadable artifact with the given name.
	Emit(name string, content []byte) error
}

// Config holds timing configuration for the controller.
type Config struct {
	// SettleDelay is how long Connecting lasts before the machine
	// advances to Connected.
	SettleDelay time.Duration
	// DisplayDelay is how long Connected is held before the machine
	// returns to Idle on its own.
	DisplayDelay time.Duration
	// BridgeTimeout bounds the wait on a native bridge call.
	BridgeTimeout time.Duration
}

// DefaultConfig returns the production timing configuration.
func DefaultConfig() Config {
	return Config{
		SettleDelay:   common.SettleDelay,
		DisplayDelay:  common.DisplayDelay,
		BridgeTimeout: common.BridgeTimeout,
	}
}

// Controller drives one session machine per connection profile.
// Its only writes to the profile store are the LastConnected stamps; the
// stamp is always observable before the machine reports Connected.
type Controller struct {
	store  *profile.Store
	vault  *vault.Vault
	bridge bridge.Bridge
	sink   ArtifactSink
	config Config

	mu       sync.RWMutex
	states   map[string]Status
	lastErr  map[string]error
	onChange func(profileID string, oldState, newState Status)
}

// NewController creates a controller over the given collaborators.
// sink may be nil when no fallback delivery is wanted.
func NewController(store *profile.Store, v *vault.Vault, b bridge.Bridge, sink ArtifactSink, config Config) *Controller {
	return &Controller{
		store:   store,
		vault:   v,
		bridge:  b,
		sink:    sink,
		config:  config,
		states:  make(map[string]Status),
		lastErr: make(map[string]error),
	}
}

// SetOnStateChange sets a callback invoked on every state transition.
// The callback runs synchronously on the machine's goroutine, after the
// transition is observable through Status.
func (c *Controller) SetOnStateChange(callback func(profileID string, oldState, newState Status)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = callback
}

// Status returns the current state of the profile's machine.
// Unknown profiles are Idle.
func (c *Controller) Status(profileID string) Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.states[profileID]
}

// LastError returns the error that sent the machine back to Idle on its
// most recent failed attempt, or nil after a clean cycle.
func (c *Controller) LastError(profileID string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr[profileID]
}

// Connect starts a connection attempt for the profile. The only valid
// trigger state is Idle: a repeated call while the machine is Connecting
// or Connected is rejected with common.ErrAlreadyConnected and leaves the
// machine untouched. Once started the attempt runs to completion on its
// own goroutine; cancelling ctx aborts it and returns the machine to Idle.
func (c *Controller) Connect(ctx context.Context, profileID string) error {
	p, ok := c.store.Get(profileID)
	if !ok {
		return common.ErrProfileNotFound
	}

	c.mu.Lock()
	if c.states[profileID] != StatusIdle {
		c.mu.Unlock()
		return common.ErrAlreadyConnected
	}
	c.states[profileID] = StatusConnecting
	delete(c.lastErr, profileID)
	callback := c.onChange
	c.mu.Unlock()

	if callback != nil {
		callback(profileID, StatusIdle, StatusConnecting)
	}

	go c.run(ctx, p)
	return nil
}

// run executes one full cycle of the session machine.
func (c *Controller) run(ctx context.Context, p profile.Profile) {
	common.LogInfo("connecting to %s (%s %s)", p.Name, p.Mode, p.Host)

	username, password := c.resolveIdentity(p)

	if c.bridge.Available() {
		if err := c.dispatch(ctx, p, username, password); err != nil {
			common.LogError("bridge call failed for %s: %v", p.Name, err)
			c.fail(p.ID, err)
			return
		}
	}

	if err := c.wait(ctx, c.config.SettleDelay); err != nil {
		c.fail(p.ID, err)
		return
	}

	// The stamp must be observable before the machine reports Connected.
	now := time.Now()
	if _, err := c.store.Update(p.ID, func(target *profile.Profile) {
		target.LastConnected = now
	}); err != nil {
		common.LogWarn("could not stamp last connection for %s: %v", p.Name, err)
	}

	c.transition(p.ID, StatusConnecting, StatusConnected)

	if !c.bridge.Available() && p.Mode == profile.ModeRDP {
		c.emitFallback(p, username)
	}

	if err := c.wait(ctx, c.config.DisplayDelay); err != nil {
		c.fail(p.ID, err)
		return
	}

	c.transition(p.ID, StatusConnected, StatusIdle)
}

// dispatch issues exactly one bridge call appropriate to the profile's
// mode and waits for its outcome, bounded by the bridge timeout.
func (c *Controller) dispatch(ctx context.Context, p profile.Profile, username, password string) error {
	callCtx, cancel := context.WithTimeout(ctx, c.config.BridgeTimeout)
	defer cancel()

	switch p.Mode {
	case profile.ModeVPN:
		return c.bridge.ToggleVPN(callCtx, p.Protocol, p.Host, false)
	default:
		return c.bridge.LaunchRDP(callCtx, p.Host, username, password)
	}
}

// resolveIdentity picks the username/password for the attempt: the linked
// vault credential when one resolves, otherwise the profile's inline
// fields. A dangling credential reference is not an error.
func (c *Controller) resolveIdentity(p profile.Profile) (string, string) {
	if p.CredentialID != "" && c.vault != nil {
		if cred, ok := c.vault.Resolve(p.CredentialID); ok {
			return cred.Username, cred.Password
		}
		common.LogDebug("credential %s for %s no longer exists, using inline identity", p.CredentialID, p.Name)
	}
	return p.Username, p.Password
}

// emitFallback serializes the profile and hands it to the artifact sink.
// This is the sole fallback path when no native backend is present.
func (c *Controller) emitFallback(p profile.Profile, username string) {
	if c.sink == nil {
		return
	}

	name := rdp.FileName(p.Name)
	content := rdp.FileContent(p.Host, username)
	if err := c.sink.Emit(name, []byte(content)); err != nil {
		common.LogError("failed to emit %s: %v", name, err)
		return
	}
	common.LogInfo("emitted fallback profile %s", name)
}

// fail records the error and returns the machine to Idle.
func (c *Controller) fail(profileID string, err error) {
	c.mu.Lock()
	old := c.states[profileID]
	c.states[profileID] = StatusIdle
	c.lastErr[profileID] = err
	callback := c.onChange
	c.mu.Unlock()

	if callback != nil && old != StatusIdle {
		callback(profileID, old, StatusIdle)
	}
}

// transition moves the machine to the new state and fires the callback.
func (c *Controller) transition(profileID string, old, new Status) {
	c.mu.Lock()
	c.states[profileID] = new
	callback := c.onChange
	c.mu.Unlock()

	if callback != nil {
		callback(profileID, old, new)
	}
}

// wait sleeps for the given delay, aborting with common.ErrCancelled when
// the context is done first.
func (c *Controller) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return common.ErrCancelled
	case <-timer.C:
		return nil
	}
}
