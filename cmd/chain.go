package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/benchadapter/internal/chain"
	"github.com/Mohsinsiddi/benchadapter/internal/ui"
	"github.com/spf13/cobra"
)

var heightCmd = &cobra.Command{
	Use:   "height",
	Short: "Show the current block height",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()
		client, err := dialNode(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		h, err := client.BlockHeight(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), h)
		return nil
	},
}

var blockCmd = &cobra.Command{
	Use:   "block <height>",
	Short: "List the transaction hashes in a block",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		height, err := parseHeight(args[0])
		if err != nil {
			return err
		}
		ctx, stop := signalContext(cmd)
		defer stop()
		client, err := dialNode(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		hashes, err := client.TxHashesAtHeight(ctx, height)
		if err != nil {
			return fmt.Errorf("fetching block %d: %w", height, err)
		}
		if len(hashes) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Info(fmt.Sprintf("Block %d has no transactions.", height)))
			return nil
		}
		t := ui.NewTable([]ui.Column{
			{Title: "#", Width: 5},
			{Title: "Hash", Width: 64},
		})
		for i, h := range hashes {
			t.AddRow(ui.Row{fmt.Sprintf("%d", i), h})
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		fmt.Fprintln(cmd.OutOrStdout(), ui.Meta(fmt.Sprintf("%d transaction(s) at height %d", len(hashes), height)))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <tx-hash>",
	Short: "Show the execution outcome of a transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()
		client, err := dialNode(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		outcome, err := client.Confirmation(ctx, args[0])
		if err != nil {
			return err
		}
		var line string
		switch outcome {
		case chain.OutcomeSuccess:
			line = ui.Success(outcome.String())
		case chain.OutcomeFailed:
			line = ui.Err(outcome.String())
		default:
			line = ui.Warn(outcome.String())
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
		return nil
	},
}

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Block until the chain produces the next block",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()
		client, err := dialNode(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		p := chain.NewPoller(client,
			chain.WithInterval(cfg.Poll.Interval),
			chain.WithTimeout(cfg.Poll.Timeout),
		)
		spin := ui.NewSpinner("Waiting for the next block…")
		spin.Start()
		h, err := p.WaitNextBlock(ctx)
		spin.Stop()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("New block %s", ui.Val(fmt.Sprintf("%d", h)))))
		return nil
	},
}
