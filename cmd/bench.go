package cmd

import (
	"fmt"
	"time"

	"github.com/Mohsinsiddi/benchadapter/internal/bench"
	"github.com/Mohsinsiddi/benchadapter/internal/contract"
	"github.com/Mohsinsiddi/benchadapter/internal/ui"
	"github.com/spf13/cobra"
)

var (
	benchArgsFlag     string
	benchTPSFlag      int
	benchWorkersFlag  int
	benchDurationFlag time.Duration
)

var benchCmd = &cobra.Command{
	Use:   "bench [contract] [function]",
	Short: "Drive a fixed-rate invoke workload against a deployed contract",
	Long: `Repeatedly invoke one contract function at a target rate and report
how many submissions the node accepted, along with acknowledgement latency.

Without arguments the workload under "bench" in the config is used.

Examples:
  benchadapter bench Token transfer --args '["AJ3K...", "AUr5...", 1]' --tps 50 --duration 30s`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := bench.Workload{
			Contract: cfg.Bench.Contract,
			Call:     contract.Call{Func: cfg.Bench.Func, Args: cfg.Bench.Args},
		}
		if len(args) > 0 {
			w.Contract = args[0]
		}
		if len(args) > 1 {
			w.Call.Func = args[1]
		}
		if cmd.Flags().Changed("args") {
			callArgs, err := parseArgs(benchArgsFlag)
			if err != nil {
				return err
			}
			w.Call.Args = callArgs
		}

		tps, workers, duration := cfg.Bench.TPS, cfg.Bench.Workers, cfg.Bench.Duration
		if cmd.Flags().Changed("tps") {
			tps = benchTPSFlag
		}
		if cmd.Flags().Changed("workers") {
			workers = benchWorkersFlag
		}
		if cmd.Flags().Changed("duration") {
			duration = benchDurationFlag
		}

		ctx, stop := signalContext(cmd)
		defer stop()

		a, client, err := newAdapter(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		g := bench.New(a, w,
			bench.WithTPS(tps),
			bench.WithWorkers(workers),
			bench.WithDuration(duration),
		)
		spin := ui.NewSpinner(fmt.Sprintf("Invoking %s.%s at %d tx/s for %s…",
			ui.Contract(w.Contract), w.Call.Func, tps, duration))
		spin.Start()
		report, err := g.Run(ctx)
		spin.Stop()
		if report != nil {
			fmt.Fprintln(cmd.OutOrStdout(), renderReport(report))
		}
		return err
	},
}

func renderReport(r *bench.Report) string {
	return ui.KeyValueBlock("Benchmark "+r.RunID, [][2]string{
		{"Submitted", fmt.Sprintf("%d", r.Submitted)},
		{"Accepted", ui.StyleSuccess.Render(fmt.Sprintf("%d", r.Succeeded))},
		{"Rejected", ui.StyleError.Render(fmt.Sprintf("%d", r.Failed))},
		{"Not sent", fmt.Sprintf("%d", r.Errored)},
		{"Elapsed", r.Elapsed.Round(time.Millisecond).String()},
		{"Rate", fmt.Sprintf("%.1f tx/s", r.TPS())},
		{"Latency avg", r.AvgLatency.String()},
		{"Latency p50", r.P50Latency.String()},
		{"Latency p95", r.P95Latency.String()},
		{"Latency max", r.MaxLatency.String()},
	})
}

func init() {
	benchCmd.Flags().StringVar(&benchArgsFlag, "args", "", "JSON array of arguments")
	benchCmd.Flags().IntVar(&benchTPSFlag, "tps", 0, "target submissions per second")
	benchCmd.Flags().IntVar(&benchWorkersFlag, "workers", 0, "concurrent submitters")
	benchCmd.Flags().DurationVar(&benchDurationFlag, "duration", 0, "load window")
}
