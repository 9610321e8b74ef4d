package rpc

import (
	"context"
	"time"

	"github.com/Mohsinsiddi/benchadapter/internal/chain"
)

// healthTimeout bounds a single probe.
const healthTimeout = 5 * time.Second

// HealthCheck probes a single node and returns whether it's healthy.
// A node is considered healthy if it responds within timeout and its height
// is within staleBlockThreshold of bestBlock (pass 0 to skip recency check).
func HealthCheck(ctx context.Context, url string, bestBlock uint64) (Endpoint, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	latency, blockNum, err := ping(timeoutCtx, url)

	ep := Endpoint{
		URL:         url,
		Latency:     latency,
		BlockNumber: blockNum,
		Healthy:     err == nil,
	}

	if err == nil && bestBlock > 0 && bestBlock > blockNum && bestBlock-blockNum > staleBlockThreshold {
		ep.Healthy = false
	}

	return ep, err
}

func ping(ctx context.Context, url string) (time.Duration, uint64, error) {
	c, err := chain.Dial(ctx, url, chain.WithRequestTimeout(healthTimeout))
	if err != nil {
		return 0, 0, err
	}
	defer c.Close()
	return c.Ping(ctx)
}
