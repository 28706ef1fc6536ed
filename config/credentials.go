package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yllada/remote-manager/common"
	"github.com/yllada/remote-manager/vault"
)

// credentialsFile wraps the sequence for YAML round-tripping.
type credentialsFile struct {
	Credentials []vault.Credential `yaml:"credentials"`
}

// LoadCredentials reads the persisted credential metadata. Secrets are
// never in this file; they live in the keyring. A missing file yields an
// empty sequence.
func LoadCredentials(path string) ([]vault.Credential, error) {
	if !common.FileExists(path) {
		return nil, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfigLoad, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var wrapped credentialsFile
	if err := decoder.Decode(&wrapped); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfigLoad, err)
	}
	return wrapped.Credentials, nil
}

// SaveCredentials writes credential metadata with restrictive permissions.
func SaveCredentials(path string, creds []vault.Credential) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfigSave, err)
	}

	data, err := yaml.Marshal(credentialsFile{Credentials: creds})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfigSave, err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfigSave, err)
	}
	return nil
}

// CredentialsPath returns the standard location of the credential
// metadata file.
func CredentialsPath() (string, error) {
	dir, err := common.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, common.VaultFileName), nil
}
