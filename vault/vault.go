// Package vault provides the credential vault: a store of reusable named
// credential identities. Connection profiles reference vault entries by
// identifier only; the vault owns the entries, profiles never do.
package vault

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yllada/remote-manager/common"
)

// Credential represents a stored credential identity.
// The password is held in memory and mirrored to the secret store; it is
// never written by the metadata persister.
type Credential struct {
	// ID is a unique identifier for the credential, assigned at Add.
	ID string `json:"id" yaml:"id"`
	// Name is a human-readable name for the credential.
	Name string `json:"name" yaml:"name"`
	// Username is the account name. Required.
	Username string `json:"username" yaml:"username"`
	// Password is the optional secret. Stored through the secret store,
	// never serialized with the metadata.
	Password string `json:"-" yaml:"-"`
	// Domain is the optional authentication domain.
	Domain string `json:"domain,omitempty" yaml:"domain,omitempty"`
}

// Validate checks if the credential has all required fields.
func (c *Credential) Validate() error {
	if c.Name == "" || c.Username == "" {
		return common.ErrInvalidCredential
	}
	return nil
}

// Persister receives the full credential sequence after every mutation.
// Passwords are already stripped from what it sees.
type Persister func(creds []Credential) error

// Vault owns the set of credential identities.
// Like the profile store it applies every mutation as a full copy-on-write
// replacement of its sequence and serializes writers with a mutex.
type Vault struct {
	mu      sync.RWMutex
	creds   []Credential
	secrets common.SecretStore
	persist Persister
}

// New creates a vault seeded with the given credentials. When a secret
// store is provided, passwords missing from the seed are hydrated from it
// and future passwords are mirrored into it. secrets may be nil.
func New(seed []Credential, secrets common.SecretStore) *Vault {
	v := &Vault{secrets: secrets}
	v.creds = make([]Credential, len(seed))
	copy(v.creds, seed)

	if secrets != nil {
		for i := range v.creds {
			if v.creds[i].Password != "" {
				continue
			}
			if pw, err := secrets.Get(v.creds[i].ID); err == nil {
				v.creds[i].Password = pw
			}
		}
	}
	return v
}

// SetPersister sets the function invoked with the credential metadata after
// every mutation. Pass nil to disable persistence.
func (v *Vault) SetPersister(p Persister) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.persist = p
}

// List returns a snapshot copy of the credential sequence.
func (v *Vault) List() []Credential {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.snapshot()
}

// Add validates the draft, assigns a fresh identifier, and appends the
// credential. Drafts with an empty name or username are rejected with
// common.ErrInvalidCredential and the sequence is left unchanged.
func (v *Vault) Add(draft Credential) (Credential, error) {
	if err := draft.Validate(); err != nil {
		return Credential{}, err
	}

	draft.ID = uuid.NewString()

	if draft.Password != "" && v.secrets != nil {
		if err := v.secrets.Store(draft.ID, draft.Password); err != nil {
			common.LogWarn("failed to store secret for credential %s: %v", draft.Name, err)
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	next := make([]Credential, 0, len(v.creds)+1)
	next = append(next, v.creds...)
	next = append(next, draft)
	v.replace(next)

	return draft, nil
}

// Remove deletes the credential with the ID and returns a snapshot of the
// updated sequence. Removing an absent ID is a no-op. Profiles that still
// reference the removed identifier are left dangling; resolving them later
// yields "no credential", never an error.
func (v *Vault) Remove(id string) []Credential {
	if v.secrets != nil {
		if err := v.secrets.Delete(id); err != nil {
			common.LogDebug("no stored secret to delete for %s: %v", id, err)
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	next := make([]Credential, 0, len(v.creds))
	removed := false
	for _, c := range v.creds {
		if c.ID == id && !removed {
			removed = true
			continue
		}
		next = append(next, c)
	}
	if removed {
		v.replace(next)
	}
	return v.snapshot()
}

// Resolve looks up a credential by identifier. Absence is a first-class
// result: a missing or dangling identifier returns ok=false and never an
// error.
func (v *Vault) Resolve(id string) (Credential, bool) {
	if id == "" {
		return Credential{}, false
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, c := range v.creds {
		if c.ID == id {
			return c, true
		}
	}
	return Credential{}, false
}

// replace installs the new sequence and notifies the persister with a
// password-stripped copy. Callers must hold the write lock.
func (v *Vault) replace(next []Credential) {
	v.creds = next
	if v.persist != nil {
		meta := v.snapshot()
		for i := range meta {
			meta[i].Password = ""
		}
		if err := v.persist(meta); err != nil {
			common.LogError("failed to persist credentials: %v", err)
		}
	}
}

// snapshot returns a copy of the current sequence.
// Callers must hold at least the read lock.
func (v *Vault) snapshot() []Credential {
	out := make([]Credential, len(v.creds))
	copy(out, v.creds)
	return out
}
