// Package bench drives contract invocations at a fixed rate and reports
// how the network acknowledged them.
package bench

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Mohsinsiddi/benchadapter/internal/contract"
	"github.com/Mohsinsiddi/benchadapter/internal/logger"
	"github.com/Mohsinsiddi/benchadapter/internal/submit"
)

// maxTicksPerSecond caps the dispatch ticker; higher rates send batches.
const maxTicksPerSecond = 100

// ErrInvalidWorkload is returned for a workload that cannot run.
var ErrInvalidWorkload = errors.New("invalid workload")

// Invoker submits one contract call.
type Invoker interface {
	Invoke(ctx context.Context, name string, call contract.Call) (*submit.Status, error)
}

// Workload is the call repeated by every job.
type Workload struct {
	Contract string
	Call     contract.Call
}

// Generator issues Workload at a target rate for a fixed duration.
type Generator struct {
	invoker  Invoker
	workload Workload
	tps      int
	workers  int
	duration time.Duration

	submitted atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	errored   atomic.Int64

	mu        sync.Mutex
	latencies []time.Duration
}

// Option configures a Generator.
type Option func(*Generator)

// WithTPS sets the target submissions per second.
func WithTPS(tps int) Option {
	return func(g *Generator) { g.tps = tps }
}

// WithWorkers sets the number of concurrent submitters.
func WithWorkers(n int) Option {
	return func(g *Generator) { g.workers = n }
}

// WithDuration sets how long jobs are dispatched.
func WithDuration(d time.Duration) Option {
	return func(g *Generator) { g.duration = d }
}

// New returns a generator with 10 TPS, 4 workers and a 10s window unless
// overridden.
func New(inv Invoker, w Workload, opts ...Option) *Generator {
	g := &Generator{
		invoker:  inv,
		workload: w,
		tps:      10,
		workers:  4,
		duration: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Report summarizes a run.
type Report struct {
	RunID     string
	Submitted int64 // acknowledged status records
	Succeeded int64
	Failed    int64 // rejected by the node or lost in transport
	Errored   int64 // never submitted
	Elapsed   time.Duration

	AvgLatency time.Duration
	P50Latency time.Duration
	P95Latency time.Duration
	MaxLatency time.Duration
}

// TPS is the submitted rate over the elapsed time.
func (r *Report) TPS() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Submitted) / r.Elapsed.Seconds()
}

// Run dispatches jobs until the duration elapses or ctx is done, then
// waits for every in-flight status. An invocation that cannot be built
// stops the run and is returned with the partial report.
func (g *Generator) Run(ctx context.Context) (*Report, error) {
	if g.tps <= 0 || g.workers <= 0 || g.duration <= 0 {
		return nil, fmt.Errorf("%w: tps, workers and duration must be positive", ErrInvalidWorkload)
	}
	if g.workload.Contract == "" || g.workload.Call.Func == "" {
		return nil, fmt.Errorf("%w: contract and func are required", ErrInvalidWorkload)
	}

	g.reset()
	runID := uuid.NewString()
	log := logger.I().With("run", runID)
	log.Infow("bench started", "contract", g.workload.Contract, "func", g.workload.Call.Func,
		"tps", g.tps, "workers", g.workers, "duration", g.duration)

	start := time.Now()
	eg, gctx := errgroup.WithContext(ctx)
	jobs := make(chan struct{}, g.tps)

	eg.Go(func() error {
		defer close(jobs)
		return g.dispatch(gctx, jobs)
	})
	for range g.workers {
		eg.Go(func() error {
			return g.work(gctx, jobs)
		})
	}
	err := eg.Wait()

	r := g.report(runID, time.Since(start))
	log.Infow("bench finished", "submitted", r.Submitted, "succeeded", r.Succeeded,
		"failed", r.Failed, "errored", r.Errored, "tps", r.TPS())
	return r, err
}

// dispatch queues jobPerTick jobs on every tick until the window closes.
func (g *Generator) dispatch(ctx context.Context, jobs chan<- struct{}) error {
	jobsPerTick := max(1, g.tps/maxTicksPerSecond)
	delay := time.Second * time.Duration(jobsPerTick) / time.Duration(g.tps)
	ticker := time.NewTicker(delay)
	defer ticker.Stop()
	window := time.NewTimer(g.duration)
	defer window.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-window.C:
			return nil
		case <-ticker.C:
			for range jobsPerTick {
				select {
				case jobs <- struct{}{}:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}

func (g *Generator) work(ctx context.Context, jobs <-chan struct{}) error {
	for range jobs {
		st, err := g.invoker.Invoke(ctx, g.workload.Contract, g.workload.Call)
		if err != nil {
			g.errored.Add(1)
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("invoke %s.%s: %w", g.workload.Contract, g.workload.Call.Func, err)
		}
		g.submitted.Add(1)
		if err := st.Wait(ctx); err != nil && ctx.Err() != nil {
			// run cancelled before the transport answered
			g.failed.Add(1)
			continue
		}
		if st.Failed() {
			g.failed.Add(1)
			continue
		}
		g.succeeded.Add(1)
		g.mu.Lock()
		g.latencies = append(g.latencies, st.Latency())
		g.mu.Unlock()
	}
	return nil
}

// reset clears counters left by a previous Run.
func (g *Generator) reset() {
	g.submitted.Store(0)
	g.succeeded.Store(0)
	g.failed.Store(0)
	g.errored.Store(0)
	g.mu.Lock()
	g.latencies = nil
	g.mu.Unlock()
}

func (g *Generator) report(runID string, elapsed time.Duration) *Report {
	r := &Report{
		RunID:     runID,
		Submitted: g.submitted.Load(),
		Succeeded: g.succeeded.Load(),
		Failed:    g.failed.Load(),
		Errored:   g.errored.Load(),
		Elapsed:   elapsed,
	}

	g.mu.Lock()
	lat := append([]time.Duration(nil), g.latencies...)
	g.mu.Unlock()
	if len(lat) == 0 {
		return r
	}
	sort.Slice(lat, func(i, j int) bool { return lat[i] < lat[j] })
	var total time.Duration
	for _, l := range lat {
		total += l
	}
	r.AvgLatency = total / time.Duration(len(lat))
	r.P50Latency = percentile(lat, 50)
	r.P95Latency = percentile(lat, 95)
	r.MaxLatency = lat[len(lat)-1]
	return r
}

// percentile returns the nearest-rank percentile of sorted.
func percentile(sorted []time.Duration, p int) time.Duration {
	idx := (p*len(sorted)+99)/100 - 1
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}
