package cmd

import (
	"fmt"
	"io"

	"github.com/Mohsinsiddi/benchadapter/internal/contract"
	"github.com/Mohsinsiddi/benchadapter/internal/submit"
	"github.com/Mohsinsiddi/benchadapter/internal/ui"
	"github.com/spf13/cobra"
)

var (
	invokeArgsFlag    string
	invokeConfirmFlag bool
	transferHashFlag  string
)

var invokeCmd = &cobra.Command{
	Use:   "invoke <contract> <function>",
	Short: "Call a function on a deployed contract",
	Long: `Bind the arguments to the function's ABI, sign and submit the
transaction, and wait for the node to acknowledge it.

Arguments are a JSON array bound positionally to the declared parameters.

Examples:
  benchadapter invoke Token transfer --args '["AJ3KTuFq...", "AUr5QUfe...", 100]'
  benchadapter invoke Token totalSupply --confirm`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		callArgs, err := parseArgs(invokeArgsFlag)
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

		st, err := a.Invoke(ctx, args[0], contract.Call{Func: args[1], Args: callArgs})
		if err != nil {
			return err
		}
		if err := st.Wait(ctx); err != nil {
			return err
		}
		printStatus(cmd.OutOrStdout(), st)
		if st.Failed() || !invokeConfirmFlag {
			return nil
		}

		spin := ui.NewSpinner("Waiting for the next block…")
		spin.Start()
		height, err := a.WaitNextBlock(ctx)
		spin.Stop()
		if err != nil {
			return err
		}
		outcome, err := a.ConfirmationStatus(ctx, st.Hash)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Info(fmt.Sprintf("Block %d: %s", height, outcome)))
		return nil
	},
}

var transferCmd = &cobra.Command{
	Use:   "transfer <raw-hex>",
	Short: "Submit a transaction serialized elsewhere",
	Long: `Submit a pre-signed, serialized transaction unchanged. --hash names the
transaction in the output only.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := decodeHex(args[0])
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

		st := a.Transfer(ctx, transferHashFlag, raw)
		if err := st.Wait(ctx); err != nil {
			return err
		}
		printStatus(cmd.OutOrStdout(), st)
		return nil
	},
}

func printStatus(w io.Writer, st *submit.Status) {
	result := ui.Success("accepted")
	if st.Failed() {
		result = ui.Err(fmt.Sprintf("rejected (%d)", st.Code()))
	}
	pairs := [][2]string{
		{"Hash", ui.Addr(st.Hash)},
		{"Result", result},
		{"Latency", st.Latency().String()},
	}
	if st.Err() != nil {
		pairs = append(pairs, [2]string{"Error", st.Err().Error()})
	}
	fmt.Fprintln(w, ui.KeyValueBlock("Submission", pairs))
}

func init() {
	invokeCmd.Flags().StringVar(&invokeArgsFlag, "args", "", "JSON array of arguments")
	invokeCmd.Flags().BoolVar(&invokeConfirmFlag, "confirm", false, "wait for the next block and report the execution outcome")
	transferCmd.Flags().StringVar(&transferHashFlag, "hash", "", "transaction hash for display")
}
