package secret

import (
	"fmt"
	"os/exec"
	"strings"
)

const keychainService = "drawboard-schema-sources"

// KeychainStore keeps secrets in the macOS login keychain through the
// security(1) tool. Keys become account names under one service entry.
type KeychainStore struct {
	service string
	run     func(args ...string) ([]byte, error)
}

func NewKeychainStore() *KeychainStore {
	return &KeychainStore{service: keychainService, run: runSecurity}
}

func runSecurity(args ...string) ([]byte, error) {
	return exec.Command("security", args...).CombinedOutput()
}

func (k *KeychainStore) item(verb, key string, extra ...string) []string {
	return append([]string{verb, "-a", key, "-s", k.service}, extra...)
}

// Set replaces any value already stored under key.
func (k *KeychainStore) Set(key string, value []byte) error {
	if out, err := k.run(k.item("add-generic-password", key, "-w", string(value), "-U")...); err != nil {
		return fmt.Errorf("keychain set %s: %s: %w", key, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// Get reports a missing item as an empty value.
func (k *KeychainStore) Get(key string) ([]byte, error) {
	out, err := k.run(k.item("find-generic-password", key, "-w")...)
	if err != nil {
		return nil, nil
	}
	return []byte(strings.TrimSpace(string(out))), nil
}

// Delete is a no-op for a missing item.
func (k *KeychainStore) Delete(key string) error {
	_, _ = k.run(k.item("delete-generic-password", key)...)
	return nil
}
