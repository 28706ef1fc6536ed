// Package keyring provides secure credential storage.
// It uses the system keyring when available, falling back to
// encrypted local file storage when not.
package keyring

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/hkdf"

	"github.com/yllada/remote-manager/common"
)

const (
	// serviceName is the identifier used in the system keyring.
	serviceName = "remote-manager"
)

// Common errors returned by keyring operations.
var (
	ErrNotFound    = errors.New("credential not found")
	ErrAccess      = errors.New("keyring access denied")
	ErrUnavailable = errors.New("keyring service unavailable")
)

// Keyring stores secrets in the system keyring, falling back to an
// AES-GCM encrypted local file when the system service is unavailable.
// It implements common.SecretStore.
type Keyring struct {
	mu         sync.RWMutex
	useLocal   bool
	localStore map[string]string
	localFile  string
	key        []byte
}

// New probes the system keyring once and returns a ready store.
func New() (*Keyring, error) {
	k := &Keyring{}

	testKey := "remote-manager-test-init"
	if err := keyring.Set(serviceName, testKey, "test"); err == nil {
		keyring.Delete(serviceName, testKey)
		return k, nil
	}

	if err := k.initLocal(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCredentialStorage, err)
	}
	return k, nil
}

func (k *Keyring) initLocal() error {
	k.useLocal = true

	dir, err := common.GetConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	k.localFile = filepath.Join(dir, common.CredentialsFileName)
	k.key = deriveKey()

	k.localStore = make(map[string]string)
	k.loadLocalStore()
	return nil
}

// deriveKey expands machine-specific data into an AES-256 key.
func deriveKey() []byte {
	hostname, _ := os.Hostname()
	secret := fmt.Sprintf("remote-manager-%s-%s-%d", hostname, machineID(), os.Getuid())

	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(serviceName))
	key := make([]byte, 32)
	if _, err := io.ReadFull(kdf, key); err != nil {
		// HKDF over SHA-256 cannot fail for a 32-byte read.
		hash := sha256.Sum256([]byte(secret))
		return hash[:]
	}
	return key
}

func machineID() string {
	data, err := os.ReadFile("/etc/machine-id")
	if err == nil {
		return strings.TrimSpace(string(data))
	}
	// Fallback
	return "default-machine-id"
}

func (k *Keyring) loadLocalStore() {
	data, err := os.ReadFile(k.localFile)
	if err != nil {
		return
	}

	decrypted, err := k.decrypt(data)
	if err != nil {
		return
	}

	json.Unmarshal(decrypted, &k.localStore)
}

func (k *Keyring) saveLocalStore() error {
	k.mu.RLock()
	data, err := json.Marshal(k.localStore)
	k.mu.RUnlock()
	if err != nil {
		return err
	}

	encrypted, err := k.encrypt(data)
	if err != nil {
		return err
	}

	return os.WriteFile(k.localFile, encrypted, 0600)
}

func (k *Keyring) encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(k.key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return []byte(base64.StdEncoding.EncodeToString(ciphertext)), nil
}

func (k *Keyring) decrypt(data []byte) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(k.key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// Store saves a secret under the given identifier.
func (k *Keyring) Store(id string, secret string) error {
	if id == "" {
		return errors.New("credential ID cannot be empty")
	}
	if secret == "" {
		return errors.New("secret cannot be empty")
	}

	if k.useLocal {
		k.mu.Lock()
		k.localStore[id] = secret
		k.mu.Unlock()
		return k.saveLocalStore()
	}

	if err := keyring.Set(serviceName, id, secret); err != nil {
		// Fallback to local storage
		if lerr := k.initLocal(); lerr != nil {
			return fmt.Errorf("%w: %v", common.ErrCredentialStorage, err)
		}
		k.mu.Lock()
		k.localStore[id] = secret
		k.mu.Unlock()
		return k.saveLocalStore()
	}
	return nil
}

// Get retrieves the secret stored under the given identifier.
func (k *Keyring) Get(id string) (string, error) {
	if id == "" {
		return "", errors.New("credential ID cannot be empty")
	}

	if k.useLocal {
		k.mu.RLock()
		secret, exists := k.localStore[id]
		k.mu.RUnlock()
		if !exists {
			return "", ErrNotFound
		}
		return secret, nil
	}

	secret, err := keyring.Get(serviceName, id)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		k.mu.RLock()
		secret, exists := k.localStore[id]
		k.mu.RUnlock()
		if exists {
			return secret, nil
		}
		return "", ErrNotFound
	}
	return secret, nil
}

// Delete removes the secret stored under the given identifier.
func (k *Keyring) Delete(id string) error {
	if id == "" {
		return errors.New("credential ID cannot be empty")
	}

	if k.useLocal {
		k.mu.Lock()
		delete(k.localStore, id)
		k.mu.Unlock()
		return k.saveLocalStore()
	}

	keyring.Delete(serviceName, id)
	return nil
}

// Exists reports whether a secret is stored under the given identifier.
func (k *Keyring) Exists(id string) bool {
	_, err := k.Get(id)
	return err == nil
}
