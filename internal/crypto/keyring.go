package crypto

import (
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
)

// Keyring stores the history database encryption key
type Keyring interface {
	GetKey() (string, error)
	SetKey(password string) error
	DeleteKey() error
	IsAvailable() bool
}

const (
	ServiceName = "focusclock"
	KeyName     = "db-encryption-key"

	// EnvKey takes precedence over the system keyring
	EnvKey = "FOCUSCLOCK_DB_KEY"
)

var ErrKeyNotFound = errors.New("encryption key not found")

// NewKeyring returns a keyring that reads FOCUSCLOCK_DB_KEY first and
// otherwise uses the OS credential store (Keychain, Secret Service or the
// Windows Credential Manager)
func NewKeyring() Keyring {
	return &systemKeyring{service: ServiceName}
}

type systemKeyring struct {
	service string
}

// GetKey retrieves the encryption key
func (k *systemKeyring) GetKey() (string, error) {
	if key := os.Getenv(EnvKey); key != "" {
		return key, nil
	}

	key, err := keyring.Get(k.service, KeyName)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%w in system keyring", ErrKeyNotFound)
		}
		return "", fmt.Errorf("failed to read key from system keyring: %w", err)
	}

	if key == "" {
		return "", fmt.Errorf("%w: stored key is empty", ErrKeyNotFound)
	}

	return key, nil
}

// SetKey stores the encryption key in the system keyring. Without one the
// caller is told to export the environment variable instead.
func (k *systemKeyring) SetKey(password string) error {
	if password == "" {
		return errors.New("password cannot be empty")
	}

	if err := keyring.Set(k.service, KeyName, password); err != nil {
		return fmt.Errorf("no usable system keyring (%w): please export %s with the password you just entered", err, EnvKey)
	}

	return nil
}

// DeleteKey removes the encryption key from the system keyring
func (k *systemKeyring) DeleteKey() error {
	if err := keyring.Delete(k.service, KeyName); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("%w in system keyring", ErrKeyNotFound)
		}
		return fmt.Errorf("failed to delete key from system keyring: %w", err)
	}

	return nil
}

// IsAvailable reports whether a key can be supplied or stored
func (k *systemKeyring) IsAvailable() bool {
	if os.Getenv(EnvKey) != "" {
		return true
	}

	probe := "__" + k.service + "_availability__"
	if err := keyring.Set(k.service, probe, "ok"); err != nil {
		return false
	}
	_ = keyring.Delete(k.service, probe)
	return true
}
