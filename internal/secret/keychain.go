package secret

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

const keychainService = "pagedoc"

// securityItemNotFound is the exit status of `security` for a missing item.
const securityItemNotFound = 44

var errItemNotFound = errors.New("keychain item not found")

// securityFunc runs the macOS `security` tool and returns its stdout.
type securityFunc func(args ...string) ([]byte, error)

// KeychainStore keeps secrets as generic passwords in the login keychain,
// one item per key under the pagedoc service.
type KeychainStore struct {
	service  string
	security securityFunc
}

func NewKeychainStore() *KeychainStore {
	return &KeychainStore{service: keychainService, security: runSecurity}
}

func runSecurity(args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.Command("security", args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err == nil {
		return out, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == securityItemNotFound {
		return nil, errItemNotFound
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	return nil, err
}

// item addresses the keychain entry for key.
func (k *KeychainStore) item(key string, extra ...string) []string {
	return append([]string{"-a", key, "-s", k.service}, extra...)
}

// Set writes value, replacing an existing item.
func (k *KeychainStore) Set(key string, value []byte) error {
	args := append([]string{"add-generic-password"}, k.item(key, "-w", string(value), "-U")...)
	if _, err := k.security(args...); err != nil {
		return fmt.Errorf("keychain set %q: %w", key, err)
	}
	return nil
}

// Get returns nil without error when no item exists for key.
func (k *KeychainStore) Get(key string) ([]byte, error) {
	out, err := k.security(append([]string{"find-generic-password"}, k.item(key, "-w")...)...)
	switch {
	case errors.Is(err, errItemNotFound):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("keychain get %q: %w", key, err)
	}
	return bytes.TrimRight(out, "\r\n"), nil
}

func (k *KeychainStore) Delete(key string) error {
	_, err := k.security(append([]string{"delete-generic-password"}, k.item(key)...)...)
	if err != nil && !errors.Is(err, errItemNotFound) {
		return fmt.Errorf("keychain delete %q: %w", key, err)
	}
	return nil
}
