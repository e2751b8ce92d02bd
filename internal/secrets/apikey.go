package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// Service groups this app's secrets in the OS keychain.
	Service = "companysift"

	account = "search-api-key"

	// EnvAPIKey overrides the keychain when set.
	EnvAPIKey = "SIFT_API_KEY"
)

// GetAPIKey returns the search API key from the environment or keychain.
// Empty string (no error) means no key is configured.
func GetAPIKey() (string, error) {
	if k := strings.TrimSpace(os.Getenv(EnvAPIKey)); k != "" {
		return k, nil
	}
	k, err := keyring.Get(Service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(k), nil
}

func SetAPIKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("API key is empty")
	}
	return keyring.Set(Service, account, key)
}

func DeleteAPIKey() error {
	err := keyring.Delete(Service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
