package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/benchadapter/internal/logger"
)

// ErrPollTimeout is returned when a wait is cancelled or exceeds its timeout
// before the height advances.
var ErrPollTimeout = errors.New("timed out waiting for next block")

// DefaultPollInterval is the pause between height reads.
const DefaultPollInterval = time.Second

// Poller waits for the block height to advance.
type Poller struct {
	reader   HeightReader
	interval time.Duration
	timeout  time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithInterval sets the pause between height reads.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithTimeout bounds each wait. Zero waits until the context is done.
func WithTimeout(d time.Duration) PollerOption {
	return func(p *Poller) {
		p.timeout = d
	}
}

// WithSleep replaces the pause between reads.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) PollerOption {
	return func(p *Poller) {
		p.sleep = fn
	}
}

// NewPoller returns a poller reading heights from r.
func NewPoller(r HeightReader, opts ...PollerOption) *Poller {
	p := &Poller{
		reader:   r,
		interval: DefaultPollInterval,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WaitNextBlock reads a baseline height and returns the first height read
// that is strictly greater. It fails with ErrPollTimeout when ctx is done or
// the configured timeout elapses first.
func (p *Poller) WaitNextBlock(ctx context.Context) (uint64, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	baseline, err := p.reader.BlockHeight(ctx)
	if err != nil {
		return 0, p.readErr(ctx, err)
	}
	logger.I().Debugw("waiting for next block", "baseline", baseline)

	for {
		if ctx.Err() != nil {
			return 0, timeoutErr(ctx)
		}
		h, err := p.reader.BlockHeight(ctx)
		if err != nil {
			return 0, p.readErr(ctx, err)
		}
		if h > baseline {
			logger.I().Debugw("block height advanced", "baseline", baseline, "height", h)
			return h, nil
		}
		if err := p.sleep(ctx, p.interval); err != nil {
			if ctx.Err() == nil {
				return 0, fmt.Errorf("waiting for next block: %w", err)
			}
			return 0, timeoutErr(ctx)
		}
	}
}

func (p *Poller) readErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return timeoutErr(ctx)
	}
	return fmt.Errorf("reading block height: %w", err)
}

func timeoutErr(ctx context.Context) error {
	if cause := ctx.Err(); cause != nil {
		return fmt.Errorf("%w: %w", ErrPollTimeout, cause)
	}
	return ErrPollTimeout
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
