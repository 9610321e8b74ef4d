package wallet

import (
	"crypto/ecdsa"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/benchadapter/internal/keys"
	"github.com/Mohsinsiddi/benchadapter/internal/logger"
	"github.com/Mohsinsiddi/benchadapter/internal/tx"
)

// Errors.
var (
	ErrDecryptWallet = errors.New("decrypt wallet failed")
	ErrNoAccount     = errors.New("wallet has no accounts")
	ErrInvalidKey    = errors.New("invalid private key")
)

// Wallet is the active account with its decrypted private key. The key is
// read-only after construction and never leaves this package.
type Wallet struct {
	account Account
	address keys.Address
	pubKey  []byte
	key     *ecdsa.PrivateKey
}

// Load reads the wallet file at path and decrypts its first account.
func Load(path, passphrase string) (*Wallet, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromFile(f, passphrase)
}

// FromFile decrypts the first account of f. Any failure to recover the key
// is reported as ErrDecryptWallet.
func FromFile(f *File, passphrase string) (*Wallet, error) {
	if len(f.Accounts) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrDecryptWallet, ErrNoAccount)
	}
	acct := f.Accounts[0]

	salt, err := base64.StdEncoding.DecodeString(acct.Salt)
	if err != nil {
		return nil, fmt.Errorf("%w: salt: %v", ErrDecryptWallet, err)
	}
	ct, err := base64.StdEncoding.DecodeString(acct.Key)
	if err != nil {
		return nil, fmt.Errorf("%w: key: %v", ErrDecryptWallet, err)
	}

	key, err := keys.DecryptPrivateKey(ct, passphrase, acct.Address, salt, f.Scrypt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptWallet, err)
	}

	w := &Wallet{
		account: acct,
		address: keys.AddressFromPubKey(&key.PublicKey),
		pubKey:  keys.CompressPubKey(&key.PublicKey),
		key:     key,
	}
	logger.I().Infow("wallet loaded", "address", w.address.Base58(), "label", acct.Label)
	return w, nil
}

// Address returns the account address.
func (w *Wallet) Address() keys.Address { return w.address }

// PublicKey returns the compressed public key.
func (w *Wallet) PublicKey() []byte { return w.pubKey }

// Label returns the account label from the wallet file.
func (w *Wallet) Label() string { return w.account.Label }

// Sign signs a 32-byte digest with the account key.
func (w *Wallet) Sign(digest []byte) ([]byte, error) {
	return keys.Sign(digest, w.key)
}

// SignTx returns a signed copy of t.
func (w *Wallet) SignTx(t *tx.Transaction) (*tx.Transaction, error) {
	return tx.Sign(t, w)
}
