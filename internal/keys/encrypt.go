package keys

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/scrypt"
)

const (
	gcmNonceSize = 12
	aesKeySize   = 32
)

// Errors.
var (
	ErrDecrypt         = errors.New("decrypt private key")
	ErrInvalidKDFParam = errors.New("invalid scrypt parameters")
)

// ScryptParams controls how a passphrase is stretched into an encryption key.
type ScryptParams struct {
	N     int `json:"n"`
	R     int `json:"r"`
	P     int `json:"p"`
	DKLen int `json:"dkLen"`
}

// DefaultScrypt returns the parameters new wallets are written with.
func DefaultScrypt() ScryptParams {
	return ScryptParams{N: 16384, R: 8, P: 8, DKLen: 64}
}

// Validate checks the parameters are usable for key derivation.
func (p ScryptParams) Validate() error {
	if p.N <= 1 || p.N&(p.N-1) != 0 {
		return fmt.Errorf("%w: n must be a power of two > 1, got %d", ErrInvalidKDFParam, p.N)
	}
	if p.R <= 0 || p.P <= 0 {
		return fmt.Errorf("%w: r and p must be positive", ErrInvalidKDFParam)
	}
	if p.DKLen < gcmNonceSize+aesKeySize {
		return fmt.Errorf("%w: dkLen must be at least %d, got %d", ErrInvalidKDFParam, gcmNonceSize+aesKeySize, p.DKLen)
	}
	return nil
}

// NewSalt returns 16 random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// EncryptPrivateKey seals a private key under passphrase. The base58 address
// of the key is bound in as additional data.
func EncryptPrivateKey(key *ecdsa.PrivateKey, passphrase string, salt []byte, params ScryptParams) ([]byte, error) {
	aead, nonce, err := deriveAEAD(passphrase, salt, params)
	if err != nil {
		return nil, err
	}
	addr := AddressFromPubKey(&key.PublicKey).Base58()
	return aead.Seal(nil, nonce, crypto.FromECDSA(key), []byte(addr)), nil
}

// DecryptPrivateKey opens an encrypted key and checks that it belongs to address.
func DecryptPrivateKey(ciphertext []byte, passphrase, address string, salt []byte, params ScryptParams) (*ecdsa.PrivateKey, error) {
	aead, nonce, err := deriveAEAD(passphrase, salt, params)
	if err != nil {
		return nil, err
	}
	plain, err := aead.Open(nil, nonce, ciphertext, []byte(address))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	key, err := crypto.ToECDSA(plain)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	if got := AddressFromPubKey(&key.PublicKey).Base58(); got != address {
		return nil, fmt.Errorf("%w: key belongs to %s, not %s", ErrDecrypt, got, address)
	}
	return key, nil
}

func deriveAEAD(passphrase string, salt []byte, params ScryptParams) (cipher.AEAD, []byte, error) {
	if err := params.Validate(); err != nil {
		return nil, nil, err
	}
	dk, err := scrypt.Key([]byte(passphrase), salt, params.N, params.R, params.P, params.DKLen)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidKDFParam, err)
	}
	block, err := aes.NewCipher(dk[params.DKLen-aesKeySize:])
	if err != nil {
		return nil, nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}
	return aead, dk[:gcmNonceSize], nil
}
