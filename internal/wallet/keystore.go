package wallet

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/99designs/keyring"
)

const keychainService = "benchadapter"

// ErrPassphraseNotFound is returned when no passphrase is stored for a reference.
var ErrPassphraseNotFound = errors.New("passphrase not found")

// KeystoreBackend stores wallet passphrases by reference.
type KeystoreBackend interface {
	Store(name, passphrase string) (string, error)
	Retrieve(ref string) (string, error)
	Delete(ref string) error
}

// Keystore wraps OS keychain access.
type Keystore struct {
	ring keyring.Keyring
}

// DefaultKeystore returns a keystore backed by the OS keychain.
func DefaultKeystore() *Keystore {
	cfg := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
	}

	// On Linux without a GUI, fall back to file-based storage.
	if runtime.GOOS == "linux" {
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		ring, _ = keyring.Open(keyring.Config{
			ServiceName:     keychainService,
			AllowedBackends: []keyring.BackendType{keyring.FileBackend},
		})
	}

	return &Keystore{ring: ring}
}

// Store saves a wallet passphrase under name and returns its reference.
func (k *Keystore) Store(name, passphrase string) (string, error) {
	if k.ring == nil {
		return "", fmt.Errorf("keystore not available")
	}
	ref := Ref(name)
	err := k.ring.Set(keyring.Item{
		Key:   ref,
		Data:  []byte(passphrase),
		Label: "benchadapter wallet " + name,
	})
	if err != nil {
		return "", fmt.Errorf("keychain store: %w", err)
	}
	return ref, nil
}

// Retrieve fetches a passphrase by its reference.
func (k *Keystore) Retrieve(ref string) (string, error) {
	if k.ring == nil {
		return "", fmt.Errorf("keystore not available")
	}
	item, err := k.ring.Get(ref)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("%w: %s", ErrPassphraseNotFound, ref)
	}
	if err != nil {
		return "", fmt.Errorf("keychain retrieve: %w", err)
	}
	return string(item.Data), nil
}

// Delete removes a stored passphrase.
func (k *Keystore) Delete(ref string) error {
	if k.ring == nil {
		return nil
	}
	return k.ring.Remove(ref)
}

// InMemoryKeystore keeps passphrases in memory (for tests).
type InMemoryKeystore struct {
	data map[string]string
}

// NewInMemoryKeystore creates an in-memory keystore.
func NewInMemoryKeystore() *InMemoryKeystore {
	return &InMemoryKeystore{data: make(map[string]string)}
}

func (k *InMemoryKeystore) Store(name, passphrase string) (string, error) {
	ref := Ref(name)
	k.data[ref] = passphrase
	return ref, nil
}

func (k *InMemoryKeystore) Retrieve(ref string) (string, error) {
	v, ok := k.data[ref]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrPassphraseNotFound, ref)
	}
	return v, nil
}

func (k *InMemoryKeystore) Delete(ref string) error {
	delete(k.data, ref)
	return nil
}

// Ref returns the keychain reference for a wallet name.
func Ref(name string) string {
	return keychainService + "." + name
}

// ResolvePassphrase returns explicit when set, otherwise the passphrase stored
// under ref. An empty ref with no explicit passphrase yields "".
func ResolvePassphrase(explicit, ref string, ks KeystoreBackend) (string, error) {
	if explicit != "" || ref == "" {
		return explicit, nil
	}
	if ks == nil {
		return "", fmt.Errorf("keystore not available for %s", ref)
	}
	return ks.Retrieve(ref)
}

var (
	_ KeystoreBackend = (*Keystore)(nil)
	_ KeystoreBackend = (*InMemoryKeystore)(nil)
)
