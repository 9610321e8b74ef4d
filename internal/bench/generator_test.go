package bench_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Mohsinsiddi/benchadapter/internal/bench"
	"github.com/Mohsinsiddi/benchadapter/internal/contract"
	"github.com/Mohsinsiddi/benchadapter/internal/submit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSender struct{ code int64 }

func (f fixedSender) SendRawTransaction(context.Context, []byte) (int64, error) {
	return f.code, nil
}

// fakeInvoker submits a dummy payload through a real Submitter.
type fakeInvoker struct {
	sub   *submit.Submitter
	calls atomic.Int64
	err   error
}

func (f *fakeInvoker) Invoke(ctx context.Context, name string, call contract.Call) (*submit.Status, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.sub.SubmitRaw(ctx, "h", []byte{1}), nil
}

var transfer = bench.Workload{Contract: "Token", Call: contract.Call{Func: "transfer", Args: []any{"0a", 1}}}

func TestRunAllSucceed(t *testing.T) {
	inv := &fakeInvoker{sub: submit.New(fixedSender{})}
	g := bench.New(inv, transfer,
		bench.WithTPS(200), bench.WithWorkers(4), bench.WithDuration(100*time.Millisecond))

	r, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, r.RunID)
	assert.Positive(t, r.Submitted)
	assert.Equal(t, r.Submitted, r.Succeeded)
	assert.Zero(t, r.Failed)
	assert.Zero(t, r.Errored)
	assert.Equal(t, inv.calls.Load(), r.Submitted)
	assert.LessOrEqual(t, r.P50Latency, r.P95Latency)
	assert.LessOrEqual(t, r.P95Latency, r.MaxLatency)
	assert.Positive(t, r.TPS())
}

func TestRunTwiceReportsEachRun(t *testing.T) {
	inv := &fakeInvoker{sub: submit.New(fixedSender{})}
	g := bench.New(inv, transfer,
		bench.WithTPS(100), bench.WithWorkers(2), bench.WithDuration(60*time.Millisecond))

	first, err := g.Run(context.Background())
	require.NoError(t, err)
	callsAfterFirst := inv.calls.Load()

	second, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, inv.calls.Load()-callsAfterFirst, second.Submitted)
	assert.Equal(t, second.Submitted, second.Succeeded)
}

func TestRunCountsRejections(t *testing.T) {
	inv := &fakeInvoker{sub: submit.New(fixedSender{code: -1})}
	g := bench.New(inv, transfer,
		bench.WithTPS(100), bench.WithWorkers(2), bench.WithDuration(60*time.Millisecond))

	r, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Positive(t, r.Submitted)
	assert.Equal(t, r.Submitted, r.Failed)
	assert.Zero(t, r.Succeeded)
	assert.Zero(t, r.AvgLatency)
}

func TestRunStopsOnInvokeError(t *testing.T) {
	inv := &fakeInvoker{err: contract.ErrContractNotDeployed}
	g := bench.New(inv, transfer,
		bench.WithTPS(50), bench.WithWorkers(1), bench.WithDuration(5*time.Second))

	start := time.Now()
	r, err := g.Run(context.Background())
	assert.ErrorIs(t, err, contract.ErrContractNotDeployed)
	require.NotNil(t, r)
	assert.Positive(t, r.Errored)
	assert.Less(t, time.Since(start), 2*time.Second, "error must end the run early")
}

func TestRunHonoursCancel(t *testing.T) {
	inv := &fakeInvoker{sub: submit.New(fixedSender{})}
	g := bench.New(inv, transfer, bench.WithTPS(20), bench.WithDuration(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	r, err := g.Run(ctx)
	require.NoError(t, err)
	assert.Less(t, r.Elapsed, time.Minute)
}

func TestRunRejectsInvalidWorkload(t *testing.T) {
	inv := &fakeInvoker{sub: submit.New(fixedSender{})}
	tests := []struct {
		name string
		w    bench.Workload
		opts []bench.Option
	}{
		{"zero tps", transfer, []bench.Option{bench.WithTPS(0)}},
		{"zero workers", transfer, []bench.Option{bench.WithWorkers(0)}},
		{"zero duration", transfer, []bench.Option{bench.WithDuration(0)}},
		{"no contract", bench.Workload{Call: contract.Call{Func: "f"}}, nil},
		{"no func", bench.Workload{Contract: "Token"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bench.New(inv, tt.w, tt.opts...).Run(context.Background())
			assert.ErrorIs(t, err, bench.ErrInvalidWorkload)
		})
	}
	assert.Zero(t, inv.calls.Load())
}

func TestReportTPSZeroElapsed(t *testing.T) {
	r := &bench.Report{Submitted: 5}
	assert.Zero(t, r.TPS())
}
