package wallet

import (
	"crypto/ecdsa"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Mohsinsiddi/benchadapter/internal/keys"
)

const (
	fileVersion     = "1.1"
	encAlgorithm    = "aes-256-gcm"
	keyAlgorithm    = "ECDSA"
	keyCurve        = "secp256k1"
	signatureScheme = "SHA256withECDSA"
)

// File is the on-disk wallet format: wallet-level scrypt settings plus one or
// more accounts holding encrypted keys.
type File struct {
	Name     string            `json:"name"`
	Version  string            `json:"version"`
	Scrypt   keys.ScryptParams `json:"scrypt"`
	Accounts []Account         `json:"accounts"`
}

// Account is one encrypted key entry in a wallet file.
type Account struct {
	Address         string            `json:"address"`
	EncAlg          string            `json:"enc-alg"`
	Key             string            `json:"key"`  // base64 ciphertext
	Salt            string            `json:"salt"` // base64
	Algorithm       string            `json:"algorithm"`
	Parameters      AccountParameters `json:"parameters"`
	Label           string            `json:"label"`
	PublicKey       string            `json:"publicKey"`
	SignatureScheme string            `json:"signatureScheme"`
	IsDefault       bool              `json:"isDefault"`
	Lock            bool              `json:"lock"`
}

// AccountParameters describes the key curve.
type AccountParameters struct {
	Curve string `json:"curve"`
}

// NewFile returns an empty wallet file using params for key derivation.
func NewFile(name string, params keys.ScryptParams) *File {
	return &File{
		Name:    name,
		Version: fileVersion,
		Scrypt:  params,
	}
}

// ReadFile parses a wallet file from disk.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading wallet: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing wallet: %w", err)
	}
	return &f, nil
}

// Save writes the wallet file with owner-only permissions.
func (f *File) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// AddAccount encrypts key under passphrase and appends it to the wallet.
// The first account added becomes the default.
func (f *File) AddAccount(hexKey, passphrase, label string) (*Account, error) {
	var (
		key *ecdsa.PrivateKey
		err error
	)
	if hexKey != "" {
		key, err = keys.ParsePrivateKey(hexKey)
	} else {
		key, err = keys.GenerateKey()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	salt, err := keys.NewSalt()
	if err != nil {
		return nil, err
	}
	ct, err := keys.EncryptPrivateKey(key, passphrase, salt, f.Scrypt)
	if err != nil {
		return nil, fmt.Errorf("encrypting key: %w", err)
	}

	acct := Account{
		Address:         keys.AddressFromPubKey(&key.PublicKey).Base58(),
		EncAlg:          encAlgorithm,
		Key:             base64.StdEncoding.EncodeToString(ct),
		Salt:            base64.StdEncoding.EncodeToString(salt),
		Algorithm:       keyAlgorithm,
		Parameters:      AccountParameters{Curve: keyCurve},
		Label:           label,
		PublicKey:       hex.EncodeToString(keys.CompressPubKey(&key.PublicKey)),
		SignatureScheme: signatureScheme,
		IsDefault:       len(f.Accounts) == 0,
	}
	f.Accounts = append(f.Accounts, acct)
	return &f.Accounts[len(f.Accounts)-1], nil
}
