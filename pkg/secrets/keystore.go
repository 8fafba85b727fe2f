package secrets

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"filippo.io/age"
)

// ErrNoKey is returned when decrypting before any key was created.
var ErrNoKey = errors.New("no encryption key")

// KeyStore owns the process-wide age identity used for at-rest encryption.
// The identity file is created lazily on the first encryption.
type KeyStore struct {
	path string

	mu       sync.Mutex
	identity *age.X25519Identity
}

// NewKeyStore returns a key store backed by the identity file at path.
func NewKeyStore(path string) *KeyStore {
	return &KeyStore{path: path}
}

// Path returns the identity file path.
func (k *KeyStore) Path() string {
	return k.path
}

// Encrypt seals plaintext, creating the identity file if needed.
func (k *KeyStore) Encrypt(plaintext []byte) ([]byte, error) {
	identity, err := k.loadOrCreate()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, identity.Recipient())
	if err != nil {
		return nil, fmt.Errorf("failed to create age encryptor: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("failed to write plaintext: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize encryption: %w", err)
	}
	return buf.Bytes(), nil
}

// Decrypt opens ciphertext. It never creates an identity; without one it
// returns ErrNoKey.
func (k *KeyStore) Decrypt(ciphertext []byte) ([]byte, error) {
	identity, err := k.load()
	if err != nil {
		return nil, err
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read plaintext: %w", err)
	}
	return plaintext, nil
}

func (k *KeyStore) load() (*age.X25519Identity, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.loadLocked()
}

func (k *KeyStore) loadLocked() (*age.X25519Identity, error) {
	if k.identity != nil {
		return k.identity, nil
	}

	data, err := os.ReadFile(k.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoKey
		}
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	identity, err := age.ParseX25519Identity(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse key file: %w", err)
	}
	k.identity = identity
	return identity, nil
}

func (k *KeyStore) loadOrCreate() (*age.X25519Identity, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	identity, err := k.loadLocked()
	if err == nil || !errors.Is(err, ErrNoKey) {
		return identity, err
	}

	identity, err = age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(k.path), dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}

	f, err := os.OpenFile(k.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		if os.IsExist(err) {
			// lost a creation race with another process
			return k.loadLocked()
		}
		return nil, fmt.Errorf("failed to create key file: %w", err)
	}
	if _, err := f.WriteString(identity.String() + "\n"); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write key file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to write key file: %w", err)
	}

	k.identity = identity
	return identity, nil
}
