package secret

import (
	"os"
	"runtime"
	"strings"
)

// SecretStore provides a pluggable interface for storing sensitive data
// such as the remote backend password.
type SecretStore interface {
	// Set stores a secret value under the given key.
	Set(key string, value []byte) error

	// Get retrieves the secret value for the given key.
	// Returns empty slice and nil error if key does not exist.
	Get(key string) ([]byte, error)

	// Delete removes the secret for the given key.
	Delete(key string) error
}

// Store kinds accepted by Open.
const (
	KindKeychain = "keychain"
	KindEnv      = "env"
)

// Open returns the named store. An empty kind picks the keychain on macOS
// and the environment elsewhere.
func Open(kind string) SecretStore {
	switch kind {
	case KindKeychain:
		return NewKeychainStore()
	case KindEnv:
		return EnvStore{}
	}
	if runtime.GOOS == "darwin" {
		return NewKeychainStore()
	}
	return EnvStore{}
}

// EnvStore keeps secrets in PAGEDOC_SECRET_* environment variables, e.g.
// key "prod-db" is read from PAGEDOC_SECRET_PROD_DB.
type EnvStore struct{}

// EnvVar returns the variable holding key.
func EnvVar(key string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, key)
	return "PAGEDOC_SECRET_" + name
}

func (EnvStore) Set(key string, value []byte) error {
	return os.Setenv(EnvVar(key), string(value))
}

func (EnvStore) Get(key string) ([]byte, error) {
	v, ok := os.LookupEnv(EnvVar(key))
	if !ok {
		return nil, nil
	}
	return []byte(v), nil
}

func (EnvStore) Delete(key string) error {
	return os.Unsetenv(EnvVar(key))
}
