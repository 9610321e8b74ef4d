package chain

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seqReader returns heights in order, repeating the last one.
type seqReader struct {
	mu      sync.Mutex
	heights []uint64
	reads   int
	err     error
}

func (s *seqReader) BlockHeight(context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	i := s.reads
	if i >= len(s.heights) {
		i = len(s.heights) - 1
	}
	s.reads++
	return s.heights[i], nil
}

// countingSleep records sleeps without pausing.
type countingSleep struct {
	calls     int
	durations []time.Duration
}

func (c *countingSleep) sleep(ctx context.Context, d time.Duration) error {
	c.calls++
	c.durations = append(c.durations, d)
	return ctx.Err()
}

func TestWaitNextBlockPollsUntilAdvance(t *testing.T) {
	r := &seqReader{heights: []uint64{100, 100, 100, 101}}
	s := &countingSleep{}
	p := NewPoller(r, WithSleep(s.sleep))

	h, err := p.WaitNextBlock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(101), h)
	assert.Equal(t, 3, r.reads-1, "polls after the baseline read")
	assert.Equal(t, 2, s.calls)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, s.durations)
}

func TestWaitNextBlockImmediateAdvance(t *testing.T) {
	r := &seqReader{heights: []uint64{10, 11}}
	s := &countingSleep{}

	h, err := NewPoller(r, WithSleep(s.sleep)).WaitNextBlock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(11), h)
	assert.Zero(t, s.calls)
}

func TestWaitNextBlockIgnoresLowerHeights(t *testing.T) {
	r := &seqReader{heights: []uint64{50, 49, 50, 52}}
	s := &countingSleep{}

	h, err := NewPoller(r, WithSleep(s.sleep)).WaitNextBlock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(52), h)
	assert.Equal(t, 2, s.calls)
}

func TestWaitNextBlockCustomInterval(t *testing.T) {
	r := &seqReader{heights: []uint64{1, 1, 2}}
	s := &countingSleep{}

	_, err := NewPoller(r, WithSleep(s.sleep), WithInterval(250*time.Millisecond)).WaitNextBlock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{250 * time.Millisecond}, s.durations)
}

func TestWaitNextBlockTimeout(t *testing.T) {
	r := &seqReader{heights: []uint64{7}}
	p := NewPoller(r, WithInterval(5*time.Millisecond), WithTimeout(30*time.Millisecond))

	start := time.Now()
	_, err := p.WaitNextBlock(context.Background())
	assert.ErrorIs(t, err, ErrPollTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestWaitNextBlockCancelled(t *testing.T) {
	r := &seqReader{heights: []uint64{7}}
	ctx, cancel := context.WithCancel(context.Background())
	sleeps := 0
	p := NewPoller(r, WithSleep(func(ctx context.Context, _ time.Duration) error {
		sleeps++
		if sleeps == 3 {
			cancel()
		}
		return ctx.Err()
	}))

	_, err := p.WaitNextBlock(ctx)
	assert.ErrorIs(t, err, ErrPollTimeout)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, sleeps)
}

func TestWaitNextBlockReadError(t *testing.T) {
	r := &seqReader{err: errors.New("node down")}

	_, err := NewPoller(r).WaitNextBlock(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPollTimeout)
	assert.Contains(t, err.Error(), "node down")
}

func TestWaitNextBlockSleepError(t *testing.T) {
	r := &seqReader{heights: []uint64{7}}
	errSleep := errors.New("clock stopped")
	p := NewPoller(r, WithSleep(func(context.Context, time.Duration) error {
		return errSleep
	}))

	_, err := p.WaitNextBlock(context.Background())
	assert.ErrorIs(t, err, errSleep)
	assert.NotErrorIs(t, err, ErrPollTimeout)
}

func TestWaitNextBlockOverRPC(t *testing.T) {
	heights := []uint64{10, 10, 11}
	var mu sync.Mutex
	calls := 0
	srv := rpcHandler(t, func(rpcReq) (interface{}, *rpcErrBody) {
		mu.Lock()
		defer mu.Unlock()
		h := heights[min(calls, len(heights)-1)]
		calls++
		return h, nil
	})
	c := dialTest(t, srv.URL)

	h, err := NewPoller(c, WithInterval(time.Millisecond)).WaitNextBlock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(11), h)
}
