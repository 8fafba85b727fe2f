package secrets

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// K2Size is the required length of a decoded K2 key.
const K2Size = 32

// ErrInvalidK2 is returned for K2 values that are not 32 bytes of base64url.
var ErrInvalidK2 = errors.New("invalid K2")

// K2Metadata describes the stored K2 key. The key itself is never in it.
type K2Metadata struct {
	KID       string `json:"kid"`
	CreatedAt string `json:"created_at"`
}

// K2Store keeps the node's K2 symmetric key, encrypted at rest.
type K2Store struct {
	paths Paths
	keys  *KeyStore
}

// NewK2Store returns a K2 store inside the secret directory.
func NewK2Store(paths Paths, keys *KeyStore) *K2Store {
	return &K2Store{paths: paths, keys: keys}
}

// DecodeK2 decodes a base64url K2 value, padded or not, and checks its size.
func DecodeK2(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return nil, fmt.Errorf("%w: not base64url: %v", ErrInvalidK2, err)
	}
	if len(raw) != K2Size {
		return nil, fmt.Errorf("%w: K2 must be exactly %d bytes, got %d", ErrInvalidK2, K2Size, len(raw))
	}
	return raw, nil
}

// Save validates and stores k2 with its metadata, replacing any earlier key.
func (s *K2Store) Save(k2, kid, createdAt string) error {
	raw, err := DecodeK2(k2)
	if err != nil {
		return err
	}

	ciphertext, err := s.keys.Encrypt(raw)
	if err != nil {
		return fmt.Errorf("failed to encrypt K2: %w", err)
	}
	if err := writeFileAtomic(s.paths.K2(), ciphertext); err != nil {
		return fmt.Errorf("failed to write K2: %w", err)
	}

	meta, err := json.MarshalIndent(K2Metadata{KID: kid, CreatedAt: createdAt}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode K2 metadata: %w", err)
	}
	if err := writeFileAtomic(s.paths.K2Metadata(), meta); err != nil {
		return fmt.Errorf("failed to write K2 metadata: %w", err)
	}
	return nil
}

// Load returns the stored key and metadata, or nil when none is stored or
// it cannot be read back.
func (s *K2Store) Load() ([]byte, *K2Metadata) {
	ciphertext, err := os.ReadFile(s.paths.K2())
	if err != nil {
		return nil, nil
	}
	raw, err := s.keys.Decrypt(ciphertext)
	if err != nil || len(raw) != K2Size {
		return nil, nil
	}

	var meta K2Metadata
	data, err := os.ReadFile(s.paths.K2Metadata())
	if err != nil {
		return nil, nil
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, nil
	}
	return raw, &meta
}

// Has reports whether a K2 key is stored.
func (s *K2Store) Has() bool {
	_, err := os.Stat(s.paths.K2())
	return err == nil
}

// Clear removes the key and its metadata.
func (s *K2Store) Clear() error {
	if err := removeIfExists(s.paths.K2()); err != nil {
		return fmt.Errorf("failed to remove K2: %w", err)
	}
	if err := removeIfExists(s.paths.K2Metadata()); err != nil {
		return fmt.Errorf("failed to remove K2 metadata: %w", err)
	}
	return nil
}
