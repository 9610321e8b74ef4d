// Package submit forwards signed transactions to the network and tracks
// their acknowledgement in status records.
package submit

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/benchadapter/internal/logger"
	"github.com/Mohsinsiddi/benchadapter/internal/tx"
)

// ErrSubmissionFailed is the status error when the node rejects a transaction.
var ErrSubmissionFailed = errors.New("submission failed")

// Sender is the part of the network transport used for submission.
type Sender interface {
	SendRawTransaction(ctx context.Context, raw []byte) (int64, error)
}

// Submitter sends transactions, one round trip each, without retrying.
type Submitter struct {
	sender Sender
}

// New returns a Submitter using sender.
func New(sender Sender) *Submitter {
	return &Submitter{sender: sender}
}

// Submit serializes a signed transaction and sends it in the background.
// The returned status carries the transaction hash immediately; its outcome
// is set when the transport answers. An error means nothing was sent.
func (s *Submitter) Submit(ctx context.Context, t *tx.Transaction) (*Status, error) {
	if !t.Signed() {
		return nil, tx.ErrNotSigned
	}
	raw, err := t.Bytes()
	if err != nil {
		return nil, fmt.Errorf("serializing transaction: %w", err)
	}
	return s.SubmitRaw(ctx, t.HashHex(), raw), nil
}

// SubmitRaw sends an already serialized transaction whose hash the caller
// computed.
func (s *Submitter) SubmitRaw(ctx context.Context, hash string, raw []byte) *Status {
	st := newStatus(hash)
	go s.send(ctx, st, raw)
	return st
}

func (s *Submitter) send(ctx context.Context, st *Status, raw []byte) {
	code, err := s.sender.SendRawTransaction(ctx, raw)
	switch {
	case err != nil:
		logger.I().Warnw("transaction not sent", "hash", st.Hash, "error", err)
		st.resolve(code, err)
	case code < 0:
		logger.I().Warnw("transaction rejected", "hash", st.Hash, "code", code)
		st.resolve(code, fmt.Errorf("%w: %s: code %d", ErrSubmissionFailed, st.Hash, code))
	default:
		st.resolve(code, nil)
	}
}
