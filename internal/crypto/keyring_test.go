package crypto

import (
	"errors"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestKeyring_EnvironmentTakesPrecedence(t *testing.T) {
	keyring.MockInit()
	k := NewKeyring()

	if err := k.SetKey("stored"); err != nil {
		t.Fatalf("SetKey() error = %v", err)
	}

	t.Setenv(EnvKey, "from-env")
	got, err := k.GetKey()
	if err != nil {
		t.Fatalf("GetKey() error = %v", err)
	}
	if got != "from-env" {
		t.Errorf("GetKey() = %q, want from-env", got)
	}
}

func TestKeyring_StoreAndDelete(t *testing.T) {
	keyring.MockInit()
	t.Setenv(EnvKey, "")
	k := NewKeyring()

	if _, err := k.GetKey(); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("GetKey() on empty keyring error = %v, want ErrKeyNotFound", err)
	}
	if !k.IsAvailable() {
		t.Fatal("IsAvailable() = false with a working keyring")
	}

	if err := k.SetKey(""); err == nil {
		t.Fatal("SetKey(\"\") succeeded, want error")
	}
	if err := k.SetKey("hunter2"); err != nil {
		t.Fatalf("SetKey() error = %v", err)
	}
	got, err := k.GetKey()
	if err != nil {
		t.Fatalf("GetKey() error = %v", err)
	}
	if got != "hunter2" {
		t.Errorf("GetKey() = %q, want hunter2", got)
	}

	if err := k.DeleteKey(); err != nil {
		t.Fatalf("DeleteKey() error = %v", err)
	}
	if err := k.DeleteKey(); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("second DeleteKey() error = %v, want ErrKeyNotFound", err)
	}
}

func TestKeyring_Unavailable(t *testing.T) {
	keyring.MockInitWithError(errors.New("no secret service"))
	t.Setenv(EnvKey, "")
	k := NewKeyring()

	if k.IsAvailable() {
		t.Error("IsAvailable() = true without keyring or env var")
	}
	if _, err := k.GetKey(); err == nil || errors.Is(err, ErrKeyNotFound) {
		t.Errorf("GetKey() error = %v, want a keyring failure", err)
	}

	err := k.SetKey("hunter2")
	if err == nil {
		t.Fatal("SetKey() succeeded without a keyring")
	}
	if !strings.Contains(err.Error(), EnvKey) {
		t.Errorf("SetKey() error %q does not mention %s", err, EnvKey)
	}
	if strings.Contains(err.Error(), "hunter2") {
		t.Errorf("SetKey() error leaks the password: %q", err)
	}

	t.Setenv(EnvKey, "from-env")
	if !k.IsAvailable() {
		t.Error("IsAvailable() = false with env var set")
	}
}
