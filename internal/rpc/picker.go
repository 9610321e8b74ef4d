package rpc

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Errors.
var (
	ErrNoHealthyRPC     = errors.New("no healthy RPC endpoint available")
	ErrUnknownAlgorithm = errors.New("unknown selection algorithm")
)

// Algorithm defines how an RPC endpoint is selected.
type Algorithm string

const (
	AlgorithmFastest    Algorithm = "fastest"
	AlgorithmRoundRobin Algorithm = "round-robin"
	AlgorithmFailover   Algorithm = "failover"
)

const (
	// Nodes more than this many blocks behind the highest are never picked.
	staleBlockThreshold = 3
	// DefaultCacheTTL is how long a fastest pick is reused.
	DefaultCacheTTL = 5 * time.Minute
)

// ParseAlgorithm validates a configured algorithm name. Empty means fastest.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(s); a {
	case "":
		return AlgorithmFastest, nil
	case AlgorithmFastest, AlgorithmRoundRobin, AlgorithmFailover:
		return a, nil
	}
	return "", fmt.Errorf("%w %q (want fastest, round-robin or failover)", ErrUnknownAlgorithm, s)
}

// Endpoint represents a single RPC endpoint with its measured attributes.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Healthy     bool // meaningful only when Checked == true
	Checked     bool // true when the endpoint has been health-checked
}

// Picker chooses among probed endpoints. Round-robin keeps a cursor across
// calls; fastest remembers its winner for the cache TTL.
type Picker struct {
	algo Algorithm
	ttl  time.Duration

	mu      sync.Mutex
	cursor  int
	cached  string
	expires time.Time
}

// PickerOption configures a Picker.
type PickerOption func(*Picker)

// WithCacheTTL sets how long a fastest pick is reused. Zero disables the cache.
func WithCacheTTL(d time.Duration) PickerOption {
	return func(p *Picker) {
		p.ttl = d
	}
}

// NewPicker creates a new Picker with the given algorithm.
func NewPicker(algo Algorithm, opts ...PickerOption) *Picker {
	p := &Picker{algo: algo, ttl: DefaultCacheTTL}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Pick selects an endpoint according to the algorithm. Unhealthy and stale
// endpoints are never returned.
func (p *Picker) Pick(endpoints []Endpoint) (*Endpoint, error) {
	candidates := eligible(endpoints)
	if len(candidates) == 0 {
		return nil, ErrNoHealthyRPC
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.algo {
	case AlgorithmRoundRobin:
		e := candidates[p.cursor%len(candidates)]
		p.cursor = (p.cursor + 1) % len(candidates)
		return e, nil
	case AlgorithmFailover:
		return candidates[0], nil
	default:
		return p.fastest(candidates), nil
	}
}

// fastest returns the lowest-latency candidate, preferring the higher block
// on a tie. Callers hold p.mu.
func (p *Picker) fastest(candidates []*Endpoint) *Endpoint {
	if p.cached != "" && time.Now().Before(p.expires) {
		for _, e := range candidates {
			if e.URL == p.cached {
				return e
			}
		}
	}

	ranked := append([]*Endpoint(nil), candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Latency != ranked[j].Latency {
			return ranked[i].Latency < ranked[j].Latency
		}
		return ranked[i].BlockNumber > ranked[j].BlockNumber
	})
	winner := ranked[0]

	if p.ttl > 0 {
		p.cached = winner.URL
		p.expires = time.Now().Add(p.ttl)
	}
	return winner
}

// eligible keeps input order. Once any endpoint has been health-checked,
// checked endpoints must be healthy. Endpoints too far behind the highest
// remaining block are dropped.
func eligible(endpoints []Endpoint) []*Endpoint {
	anyChecked := false
	for _, e := range endpoints {
		if e.Checked {
			anyChecked = true
			break
		}
	}

	var out []*Endpoint
	var best uint64
	for i := range endpoints {
		e := &endpoints[i]
		if anyChecked && e.Checked && !e.Healthy {
			continue
		}
		out = append(out, e)
		best = max(best, e.BlockNumber)
	}

	fresh := out[:0]
	for _, e := range out {
		if best-e.BlockNumber <= staleBlockThreshold {
			fresh = append(fresh, e)
		}
	}
	return fresh
}
