package keyring

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
)

// newLocalKeyring returns a store pinned to local file mode with a fixed
// key, bypassing the system keyring probe.
func newLocalKeyring(t *testing.T) *Keyring {
	t.Helper()
	return &Keyring{
		useLocal:   true,
		localStore: make(map[string]string),
		localFile:  filepath.Join(t.TempDir(), ".credentials"),
		key:        bytes.Repeat([]byte{0x42}, 32),
	}
}

func TestLocalStoreRoundTrip(t *testing.T) {
	k := newLocalKeyring(t)

	if err := k.Store("cred-1", "s3cret"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	got, err := k.Get("cred-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "s3cret" {
		t.Errorf("Get() = %q, want %q", got, "s3cret")
	}
}

func TestLocalStoreSurvivesReload(t *testing.T) {
	k := newLocalKeyring(t)
	if err := k.Store("cred-1", "persisted"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	// A fresh instance with the same file and key must see the secret.
	reloaded := &Keyring{
		useLocal:   true,
		localStore: make(map[string]string),
		localFile:  k.localFile,
		key:        k.key,
	}
	reloaded.loadLocalStore()

	got, err := reloaded.Get("cred-1")
	if err != nil {
		t.Fatalf("Get() after reload error = %v", err)
	}
	if got != "persisted" {
		t.Errorf("Get() after reload = %q, want %q", got, "persisted")
	}
}

func TestGetMissingReturnsErrNotFound(t *testing.T) {
	k := newLocalKeyring(t)

	_, err := k.Get("absent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteRemovesSecret(t *testing.T) {
	k := newLocalKeyring(t)
	if err := k.Store("cred-1", "s3cret"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	if err := k.Delete("cred-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if k.Exists("cred-1") {
		t.Error("Exists() = true after delete")
	}
}

func TestStoreRejectsEmptyInputs(t *testing.T) {
	k := newLocalKeyring(t)

	if err := k.Store("", "secret"); err == nil {
		t.Error("Store() accepted empty ID")
	}
	if err := k.Store("cred-1", ""); err == nil {
		t.Error("Store() accepted empty secret")
	}
	if _, err := k.Get(""); err == nil {
		t.Error("Get() accepted empty ID")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	k := newLocalKeyring(t)

	plaintext := []byte(`{"cred-1":"value"}`)
	encrypted, err := k.encrypt(plaintext)
	if err != nil {
		t.Fatalf("encrypt() error = %v", err)
	}
	if bytes.Contains(encrypted, []byte("value")) {
		t.Error("ciphertext contains plaintext")
	}

	decrypted, err := k.decrypt(encrypted)
	if err != nil {
		t.Fatalf("decrypt() error = %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("decrypt() = %q, want %q", decrypted, plaintext)
	}
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	k := newLocalKeyring(t)
	encrypted, err := k.encrypt([]byte("payload"))
	if err != nil {
		t.Fatalf("encrypt() error = %v", err)
	}

	other := newLocalKeyring(t)
	other.key = bytes.Repeat([]byte{0x13}, 32)

	if _, err := other.decrypt(encrypted); err == nil {
		t.Error("decrypt() with wrong key succeeded")
	}
}

func TestDeriveKeyIsStable(t *testing.T) {
	a := deriveKey()
	b := deriveKey()
	if len(a) != 32 {
		t.Fatalf("key length = %d, want 32", len(a))
	}
	if !bytes.Equal(a, b) {
		t.Error("deriveKey() is not deterministic on the same machine")
	}
}
