// Package secrets stores node secrets at rest in a per-user directory,
// encrypted with an age X25519 identity that is created on first use.
package secrets

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultSecretDir = "~/.jarvis"
	keyFileName      = "secrets.key"

	credentialsFileName = "wifi_credentials.enc"
	markerFileName      = ".provisioned"
	k2FileName          = "k2.enc"
	k2MetadataFileName  = "k2_metadata.json"

	dirPerm  = 0700
	filePerm = 0600
)

// Paths locates every file kept in the secret directory.
type Paths struct {
	Dir     string
	KeyFile string
}

// ResolvePaths builds Paths from explicit values, falling back to
// JARVIS_SECRET_DIRECTORY / JARVIS_KEY_FILE and then the defaults.
func ResolvePaths(dir, keyFile string) Paths {
	if dir == "" {
		dir = os.Getenv("JARVIS_SECRET_DIRECTORY")
	}
	if dir == "" {
		dir = defaultSecretDir
	}
	dir = ExpandPath(dir)

	if keyFile == "" {
		keyFile = os.Getenv("JARVIS_KEY_FILE")
	}
	if keyFile == "" {
		keyFile = filepath.Join(dir, keyFileName)
	}

	return Paths{Dir: dir, KeyFile: ExpandPath(keyFile)}
}

// Credentials is the path of the encrypted WiFi credential file.
func (p Paths) Credentials() string { return filepath.Join(p.Dir, credentialsFileName) }

// Marker is the path of the provisioned marker file.
func (p Paths) Marker() string { return filepath.Join(p.Dir, markerFileName) }

// K2 is the path of the encrypted K2 key.
func (p Paths) K2() string { return filepath.Join(p.Dir, k2FileName) }

// K2Metadata is the path of the K2 metadata document.
func (p Paths) K2Metadata() string { return filepath.Join(p.Dir, k2MetadataFileName) }

// ExpandPath expands a leading ~ and any environment variables.
func ExpandPath(path string) string {
	path = os.ExpandEnv(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return path
}

// writeFileAtomic replaces path with data, creating the parent directory
// with owner-only permissions.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(filePerm); err != nil {
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

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
