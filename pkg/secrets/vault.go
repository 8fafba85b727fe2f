package secrets

import (
	"encoding/json"
	"fmt"
	"os"
)

// Credentials is a stored WiFi network login.
type Credentials struct {
	SSID     string `json:"ssid"`
	Password string `json:"password"`
}

// Vault keeps exactly one encrypted WiFi credential record.
type Vault struct {
	path string
	keys *KeyStore
}

// NewVault returns a vault writing to path, sealed with keys.
func NewVault(path string, keys *KeyStore) *Vault {
	return &Vault{path: path, keys: keys}
}

// Save encrypts and stores the credentials, replacing any previous record.
func (v *Vault) Save(ssid, password string) error {
	plaintext, err := json.Marshal(Credentials{SSID: ssid, Password: password})
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	ciphertext, err := v.keys.Encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	if err := writeFileAtomic(v.path, ciphertext); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// Load returns the stored credentials, or nil when there are none or the
// file cannot be decrypted.
func (v *Vault) Load() *Credentials {
	ciphertext, err := os.ReadFile(v.path)
	if err != nil {
		return nil
	}

	plaintext, err := v.keys.Decrypt(ciphertext)
	if err != nil {
		return nil
	}

	var creds Credentials
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return nil
	}
	return &creds
}

// Clear deletes the stored credentials.
func (v *Vault) Clear() error {
	if err := removeIfExists(v.path); err != nil {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}
