// Package nodeconfig reads and updates the local device config document
// shared with the node's other services.
package nodeconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Keys written by provisioning.
const (
	KeyRoom             = "room"
	KeyCommandCenterURL = "jarvis_command_center_api_url"
	KeyNodeID           = "node_id"
	KeyNodeKey          = "api_key"
)

// ErrNoConfigPath is returned when an update is requested without a config path.
var ErrNoConfigPath = errors.New("no config path configured")

// Document is the decoded config document. Unknown keys are preserved.
type Document map[string]any

// String returns the value at key when it is a non-empty string.
func (d Document) String(key string) string {
	s, _ := d[key].(string)
	return strings.TrimSpace(s)
}

// Store is a config document at a path. The format follows the extension:
// .yaml and .yml are YAML, anything else is JSON.
type Store struct {
	path string
}

// NewStore returns a store for path. An empty path yields a store whose
// loads are empty and whose updates fail with ErrNoConfigPath.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the document path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(s.path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads the document. A missing file is an empty document.
func (s *Store) Load() (Document, error) {
	doc := Document{}
	if s.path == "" {
		return doc, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return doc, nil
	}

	if s.isYAML() {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", s.path, err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// Update loads the document, applies values, and writes it back atomically.
func (s *Store) Update(values map[string]any) error {
	if s.path == "" {
		return ErrNoConfigPath
	}

	doc, err := s.Load()
	if err != nil {
		return err
	}
	for k, v := range values {
		doc[k] = v
	}

	var data []byte
	if s.isYAML() {
		data, err = yaml.Marshal(map[string]any(doc))
	} else {
		data, err = json.MarshalIndent(doc, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := writeAtomic(s.path, data); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// CommandCenterURL resolves the command-center URL: the override when set,
// otherwise the value persisted in the document.
func (s *Store) CommandCenterURL(override string) string {
	if u := strings.TrimSpace(override); u != "" {
		return u
	}
	doc, err := s.Load()
	if err != nil {
		return ""
	}
	return doc.String(KeyCommandCenterURL)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
