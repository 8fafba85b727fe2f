// Package startup decides at boot whether the node still needs provisioning.
package startup

import (
	"fmt"
	"os"
	"path/filepath"
)

// Marker is the zero-byte file recording that provisioning completed once.
type Marker struct {
	path string
}

// NewMarker returns a marker at path.
func NewMarker(path string) *Marker {
	return &Marker{path: path}
}

// Path returns the marker path.
func (m *Marker) Path() string {
	return m.path
}

// Exists reports whether the marker is present. An unreadable marker
// counts as absent.
func (m *Marker) Exists() bool {
	info, err := os.Stat(m.path)
	return err == nil && info.Mode().IsRegular()
}

// Mark creates the marker with owner-only permissions.
func (m *Marker) Mark() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0700); err != nil {
		return fmt.Errorf("failed to create marker directory: %w", err)
	}
	f, err := os.OpenFile(m.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create marker: %w", err)
	}
	if err := f.Chmod(0600); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to set marker permissions: %w", err)
	}
	return f.Close()
}

// Clear removes the marker so the next boot provisions again.
func (m *Marker) Clear() error {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove marker: %w", err)
	}
	return nil
}
