package rpc

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Mohsinsiddi/benchadapter/internal/logger"
)

// ProbeResult holds the result of probing a single endpoint.
type ProbeResult struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Err         error
}

// Probe pings all URLs in parallel and returns results in input order.
func Probe(ctx context.Context, urls []string) []ProbeResult {
	results := make([]ProbeResult, len(urls))
	var g errgroup.Group

	for i, url := range urls {
		g.Go(func() error {
			ep, err := HealthCheck(ctx, url, 0)
			results[i] = ProbeResult{
				URL:         url,
				Latency:     ep.Latency,
				BlockNumber: ep.BlockNumber,
				Err:         err,
			}
			return nil
		})
	}

	g.Wait() //nolint:errcheck // probes record their own errors
	return results
}

// ResultsToEndpoints converts probe results to picker Endpoints.
// All returned endpoints have Checked: true since they have been actively tested.
func ResultsToEndpoints(results []ProbeResult) []Endpoint {
	endpoints := make([]Endpoint, 0, len(results))
	for _, r := range results {
		endpoints = append(endpoints, Endpoint{
			URL:         r.URL,
			Latency:     r.Latency,
			BlockNumber: r.BlockNumber,
			Healthy:     r.Err == nil,
			Checked:     true,
		})
	}
	return endpoints
}

// Best probes urls and returns the best endpoint URL using the given algorithm.
func Best(ctx context.Context, urls []string, algo Algorithm) (string, error) {
	if len(urls) == 1 {
		return urls[0], nil
	}

	results := Probe(ctx, urls)
	for _, r := range results {
		if r.Err != nil {
			logger.I().Debugw("endpoint probe failed", "url", r.URL, "error", r.Err)
		}
	}

	picker := NewPicker(algo)
	winner, err := picker.Pick(ResultsToEndpoints(results))
	if err != nil {
		return "", err
	}
	logger.I().Infow("endpoint chosen", "url", winner.URL, "height", winner.BlockNumber, "latency", winner.Latency)
	return winner.URL, nil
}
