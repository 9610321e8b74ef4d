package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Mohsinsiddi/benchadapter/internal/contract"
	"github.com/Mohsinsiddi/benchadapter/internal/ui"
	"github.com/spf13/cobra"
)

var deployCmd = &cobra.Command{
	Use:   "deploy [descriptor...]",
	Short: "Deploy contracts and register them by name",
	Long: `Deploy each contract descriptor in order. After each deployment the
command waits for the chain to produce the next block.

Without arguments the descriptors listed under "contracts" in the config
are deployed.

Examples:
  benchadapter deploy
  benchadapter deploy ./contracts/token.json ./contracts/vote.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := args
		if len(paths) == 0 {
			paths = cfg.Contracts
		}
		if len(paths) == 0 {
			return fmt.Errorf("no contract descriptors given or configured")
		}
		descs, err := contract.LoadDescriptors(paths)
		if err != nil {
			return err
		}

		ctx, stop := signalContext(cmd)
		defer stop()

		a, client, err := newAdapter(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		for _, d := range descs {
			spin := ui.NewSpinner(fmt.Sprintf("Deploying %s via %s…", ui.Contract(d.Name), client.URL()))
			spin.Start()
			err := a.Deploy(ctx, []contract.Descriptor{d})
			spin.Stop()
			if err != nil {
				return err
			}
			e, _ := a.Registry().Lookup(d.Name)
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("%s deployed at %s (tx %s)",
				ui.Contract(d.Name), ui.Addr(e.Address), ui.Truncate(e.TxHash))))
		}
		return nil
	},
}

// signalContext is cancelled on interrupt.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}
