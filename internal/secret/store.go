// Package secret stores schema source passwords outside the database.
package secret

import (
	"log"
	"path/filepath"
	"runtime"
)

// SecretStore is a pluggable store for sensitive values such as database
// passwords.
type SecretStore interface {
	// Set stores a secret value under the given key.
	Set(key string, value []byte) error

	// Get returns the secret for key, or an empty slice and nil error if
	// the key does not exist.
	Get(key string) ([]byte, error)

	Delete(key string) error
}

// Default returns the macOS Keychain on darwin and a private file under
// dataDir elsewhere.
func Default(dataDir string) SecretStore {
	if runtime.GOOS == "darwin" {
		return NewKeychainStore()
	}
	path := filepath.Join(dataDir, "secrets.json")
	log.Printf("[secret] keychain unavailable, using %s", path)
	return NewFileStore(path)
}
