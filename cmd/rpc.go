package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/benchadapter/internal/config"
	"github.com/Mohsinsiddi/benchadapter/internal/rpc"
	"github.com/Mohsinsiddi/benchadapter/internal/ui"
	"github.com/spf13/cobra"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Manage node endpoints",
}

var rpcAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add a node JSON-RPC URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.AddURL(args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Added RPC: "+args[0]))
		return nil
	},
}

var rpcRemoveCmd = &cobra.Command{
	Use:   "remove <url>",
	Short: "Remove a node URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RemoveURL(args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Removed RPC: "+args[0]))
		return nil
	},
}

var rpcListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured node URLs",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(cfg.Network.URLs) == 0 {
			fmt.Fprintln(out, ui.Info("No RPCs configured. Add one with: benchadapter rpc add <url>"))
			return nil
		}
		fmt.Fprintln(out, ui.StyleTitle.Render("RPCs ("+cfg.Network.RPCAlgorithm+")"))
		for _, u := range cfg.Network.URLs {
			fmt.Fprintf(out, "  %s\n", u)
		}
		return nil
	},
}

var rpcBenchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Probe every configured node and show latency and height",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.Network.URLs) == 0 {
			return fmt.Errorf("no RPCs configured")
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCRequestTimeout)
		defer cancel()

		results := rpc.Probe(ctx, cfg.Network.URLs)

		t := ui.NewTable([]ui.Column{
			{Title: "RPC URL", Width: 40},
			{Title: "Latency", Width: 12},
			{Title: "Height", Width: 12},
			{Title: "Status", Width: 10},
		})
		for _, r := range results {
			status := "healthy"
			latency := fmt.Sprintf("%dms", r.Latency.Milliseconds())
			height := fmt.Sprintf("%d", r.BlockNumber)
			if r.Err != nil {
				status = "down"
				latency = "-"
				height = "-"
			}
			t.AddRow(ui.Row{r.URL, latency, height, status})
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

var rpcAlgorithmCmd = &cobra.Command{
	Use:   "algorithm <fastest|round-robin|failover>",
	Short: "Set the node selection algorithm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prev := cfg.Network.RPCAlgorithm
		cfg.Network.RPCAlgorithm = args[0]
		if err := cfg.Validate(); err != nil {
			cfg.Network.RPCAlgorithm = prev
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("RPC algorithm set to %q", args[0])))
		return nil
	},
}

func init() {
	rpcCmd.AddCommand(rpcAddCmd, rpcRemoveCmd, rpcListCmd, rpcBenchmarkCmd, rpcAlgorithmCmd)
}
