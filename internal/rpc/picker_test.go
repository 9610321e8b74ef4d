package rpc_test

import (
	"testing"
	"time"

	"github.com/Mohsinsiddi/benchadapter/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checked builds an endpoint that has been health-checked (Checked: true).
func checked(url string, latency time.Duration, block uint64, healthy bool) rpc.Endpoint {
	return rpc.Endpoint{URL: url, Latency: latency, BlockNumber: block, Healthy: healthy, Checked: true}
}

// unchecked builds an endpoint with latency/block data but no health-check status.
func unchecked(url string, latency time.Duration, block uint64) rpc.Endpoint {
	return rpc.Endpoint{URL: url, Latency: latency, BlockNumber: block}
}

func TestParseAlgorithm(t *testing.T) {
	for in, want := range map[string]rpc.Algorithm{
		"":            rpc.AlgorithmFastest,
		"fastest":     rpc.AlgorithmFastest,
		"round-robin": rpc.AlgorithmRoundRobin,
		"failover":    rpc.AlgorithmFailover,
	} {
		got, err := rpc.ParseAlgorithm(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := rpc.ParseAlgorithm("random")
	assert.ErrorIs(t, err, rpc.ErrUnknownAlgorithm)
}

func TestPickerSelectsFastest(t *testing.T) {
	endpoints := []rpc.Endpoint{
		unchecked("http://slow.rpc", 200*time.Millisecond, 100),
		unchecked("http://fast.rpc", 30*time.Millisecond, 100),
		unchecked("http://medium.rpc", 80*time.Millisecond, 100),
	}

	winner, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://fast.rpc", winner.URL)
}

func TestPickerDiscardsStaleNodes(t *testing.T) {
	endpoints := []rpc.Endpoint{
		checked("http://fresh.rpc", 50*time.Millisecond, 1000, true),
		checked("http://stale.rpc", 10*time.Millisecond, 990, true), // 10 blocks behind
	}

	for _, algo := range []rpc.Algorithm{rpc.AlgorithmFastest, rpc.AlgorithmFailover, rpc.AlgorithmRoundRobin} {
		picker := rpc.NewPicker(algo)
		for range 2 {
			winner, err := picker.Pick(endpoints)
			require.NoError(t, err)
			assert.Equal(t, "http://fresh.rpc", winner.URL, "%s must skip the stale node", algo)
		}
	}
}

func TestPickerStaleThresholdInclusive(t *testing.T) {
	endpoints := []rpc.Endpoint{
		checked("http://ahead", 50*time.Millisecond, 1003, true),
		checked("http://behind3", 10*time.Millisecond, 1000, true),
	}
	winner, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://behind3", winner.URL)
}

func TestPickerUnhealthyDoesNotSetBestBlock(t *testing.T) {
	// A failed probe reports block 0; it must not make healthy nodes look stale
	// and a down node reporting a high block must not either.
	endpoints := []rpc.Endpoint{
		checked("http://down", 0, 5000, false),
		checked("http://up", 20*time.Millisecond, 100, true),
	}
	winner, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://up", winner.URL)
}

func TestPickerRoundRobinCycles(t *testing.T) {
	endpoints := []rpc.Endpoint{
		checked("http://rpc1", 0, 100, true),
		checked("http://rpc2", 0, 100, true),
		checked("http://rpc3", 0, 100, false),
	}

	picker := rpc.NewPicker(rpc.AlgorithmRoundRobin)
	var urls []string
	for range 4 {
		e, err := picker.Pick(endpoints)
		require.NoError(t, err)
		urls = append(urls, e.URL)
	}
	assert.Equal(t, []string{"http://rpc1", "http://rpc2", "http://rpc1", "http://rpc2"}, urls)
}

func TestPickerFailover(t *testing.T) {
	endpoints := []rpc.Endpoint{
		checked("http://primary", 0, 100, false),
		checked("http://secondary", 0, 100, true),
		checked("http://tertiary", 0, 100, true),
	}

	winner, err := rpc.NewPicker(rpc.AlgorithmFailover).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://secondary", winner.URL, "should failover to secondary when primary is unhealthy")
}

func TestPickerErrorsWhenAllUnhealthy(t *testing.T) {
	endpoints := []rpc.Endpoint{
		checked("http://rpc1", 100*time.Millisecond, 0, false),
		checked("http://rpc2", 200*time.Millisecond, 0, false),
	}

	for _, algo := range []rpc.Algorithm{rpc.AlgorithmFastest, rpc.AlgorithmFailover, rpc.AlgorithmRoundRobin} {
		_, err := rpc.NewPicker(algo).Pick(endpoints)
		assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC, algo)
	}
}

func TestPickerEmptyEndpoints(t *testing.T) {
	_, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(nil)
	assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC)
}

func TestPickerCachesWinner(t *testing.T) {
	picker := rpc.NewPicker(rpc.AlgorithmFastest)
	first, err := picker.Pick([]rpc.Endpoint{
		unchecked("http://a", 30*time.Millisecond, 100),
		unchecked("http://b", 60*time.Millisecond, 100),
	})
	require.NoError(t, err)
	require.Equal(t, "http://a", first.URL)

	// b is now faster, but a is still cached.
	again, err := picker.Pick([]rpc.Endpoint{
		unchecked("http://a", 90*time.Millisecond, 100),
		unchecked("http://b", 10*time.Millisecond, 100),
	})
	require.NoError(t, err)
	assert.Equal(t, "http://a", again.URL)
}

func TestPickerCacheDisabled(t *testing.T) {
	picker := rpc.NewPicker(rpc.AlgorithmFastest, rpc.WithCacheTTL(0))
	_, err := picker.Pick([]rpc.Endpoint{unchecked("http://a", 30*time.Millisecond, 100)})
	require.NoError(t, err)

	winner, err := picker.Pick([]rpc.Endpoint{
		unchecked("http://a", 90*time.Millisecond, 100),
		unchecked("http://b", 10*time.Millisecond, 100),
	})
	require.NoError(t, err)
	assert.Equal(t, "http://b", winner.URL)
}

func TestPickerCachedWinnerGoneIsRecomputed(t *testing.T) {
	picker := rpc.NewPicker(rpc.AlgorithmFastest)
	_, err := picker.Pick([]rpc.Endpoint{unchecked("http://a", 10*time.Millisecond, 100)})
	require.NoError(t, err)

	winner, err := picker.Pick([]rpc.Endpoint{
		checked("http://a", 0, 0, false),
		checked("http://b", 40*time.Millisecond, 100, true),
	})
	require.NoError(t, err)
	assert.Equal(t, "http://b", winner.URL)
}

func TestPickerLatencyTieGoesToHigherBlock(t *testing.T) {
	endpoints := []rpc.Endpoint{
		checked("http://local", 0, 100, true),
		checked("http://ahead", 0, 101, true),
	}

	winner, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://ahead", winner.URL)
}
