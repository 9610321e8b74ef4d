package tx

import (
	"fmt"

	"github.com/Mohsinsiddi/benchadapter/internal/keys"
)

// Signer signs transaction digests. The private key stays with the signer.
type Signer interface {
	PublicKey() []byte
	Sign(digest []byte) ([]byte, error)
}

// Sign returns a signed copy of t. The input is not modified, and an
// already signed transaction is rejected.
func Sign(t *Transaction, s Signer) (*Transaction, error) {
	if t.Signed() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadySigned, t.HashHex())
	}
	h := t.Hash()
	sig, err := s.Sign(h[:])
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}

	signed := *t
	signed.Payload = append([]byte(nil), t.Payload...)
	signed.Sigs = []Sig{{
		PubKey: append([]byte(nil), s.PublicKey()...),
		Sig:    sig,
	}}
	return &signed, nil
}

// Verify checks every signature on t against its hash and reports whether
// the first signer's key matches the payer.
func Verify(t *Transaction) error {
	if !t.Signed() {
		return ErrNotSigned
	}
	h := t.Hash()
	for i, s := range t.Sigs {
		if !keys.Verify(s.PubKey, h[:], s.Sig) {
			return fmt.Errorf("%w: signature %d does not verify", ErrInvalidTx, i)
		}
	}
	if keys.AddressFromPubKeyBytes(t.Sigs[0].PubKey) != t.Payer {
		return fmt.Errorf("%w: signer is not the payer", ErrInvalidTx)
	}
	return nil
}
