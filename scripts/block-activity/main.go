// block-activity: reports the current height and the transaction count of
// the most recent blocks on each node given on the command line, so a
// benchmark run can be checked against what the chain actually included.
//
// Run from the module root:
//
//	go run ./scripts/block-activity http://127.0.0.1:20336 http://127.0.0.1:20337
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/Mohsinsiddi/benchadapter/internal/chain"
)

// ── config ────────────────────────────────────────────────────────────────────

const (
	rpcTimeout = 12 * time.Second
	lastBlocks = 10
)

// ── types ─────────────────────────────────────────────────────────────────────

type result struct {
	url    string
	height uint64
	txs    []int // per block, newest first
	err    string
}

// ── main ──────────────────────────────────────────────────────────────────────

func main() {
	urls := os.Args[1:]
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "usage: block-activity <rpc-url>...")
		os.Exit(2)
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []result
	)

	for _, url := range urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
			defer cancel()

			r := result{url: url}
			defer func() {
				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			}()

			client, err := chain.Dial(ctx, url)
			if err != nil {
				r.err = shortErr(err)
				return
			}
			defer client.Close()

			// Quick ping first: skip nodes that don't respond.
			_, height, err := client.Ping(ctx)
			if err != nil {
				r.err = "unreachable"
				return
			}
			r.height = height

			for h := height; h > 0 && len(r.txs) < lastBlocks; h-- {
				hashes, err := client.TxHashesAtHeight(ctx, h-1)
				if err != nil {
					r.err = shortErr(err)
					return
				}
				r.txs = append(r.txs, len(hashes))
			}
		}(url)
	}

	wg.Wait()

	printTable(results)
}

// ── output ────────────────────────────────────────────────────────────────────

func printTable(results []result) {
	sort.Slice(results, func(i, j int) bool { return results[i].url < results[j].url })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "NODE\tHEIGHT\tTXS (NEWEST FIRST)\tTOTAL\tNOTE")
	fmt.Fprintln(w, strings.Repeat("-", 24)+"\t"+
		strings.Repeat("-", 8)+"\t"+
		strings.Repeat("-", 30)+"\t"+
		strings.Repeat("-", 6)+"\t"+
		strings.Repeat("-", 12))

	for _, r := range results {
		counts := make([]string, len(r.txs))
		total := 0
		for i, n := range r.txs {
			counts[i] = fmt.Sprintf("%d", n)
			total += n
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%s\n",
			r.url, r.height, strings.Join(counts, " "), total, r.err)
	}
	w.Flush()
}

// ── helpers ───────────────────────────────────────────────────────────────────

func shortErr(err error) string {
	s := err.Error()
	if len(s) > 30 {
		return s[:30] + "…"
	}
	return s
}
