package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	regsync "github.com/Mohsinsiddi/benchadapter/internal/sync"
	"github.com/Mohsinsiddi/benchadapter/internal/ui"
	"github.com/spf13/cobra"
)

var syncWatchFlag time.Duration

var contractsCmd = &cobra.Command{
	Use:   "contracts",
	Short: "Inspect and share the contract registry",
}

var contractsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered contracts",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		entries := reg.All()
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Info("No contracts registered."))
			return nil
		}
		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 36},
			{Title: "Functions", Width: 10},
			{Title: "Deployed", Width: 22},
		})
		for _, e := range entries {
			funcs := 0
			if e.ABI != nil {
				funcs = len(e.ABI.Functions)
			}
			t.AddRow(ui.Row{e.Name, e.Address, fmt.Sprintf("%d", funcs), e.DeployedAt})
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

var contractsExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the registry as a deployments manifest",
	Long: `Write every registered contract, with its code and ABI, as a manifest
other hosts can import with "contracts sync". Without a file the manifest
is printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		m, err := regsync.Export(reg)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return err
		}
		if len(args) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		if err := os.WriteFile(args[0], data, 0o644); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Exported %d contract(s) to %s", len(m.Contracts), args[0])))
		return nil
	},
}

var contractsSyncCmd = &cobra.Command{
	Use:   "sync [source]",
	Short: "Import contracts from a deployments manifest",
	Long: `Import contracts deployed by another host from a manifest URL or file.
Defaults to registry.source from the config.

Examples:
  benchadapter contracts sync http://deployer:8080/deployments.json
  benchadapter contracts sync --watch 30s`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := cfg.Registry.Source
		if len(args) == 1 {
			source = args[0]
		}
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		s := regsync.New(reg)

		ctx, stop := signalContext(cmd)
		defer stop()

		if syncWatchFlag > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Info(fmt.Sprintf("Syncing from %s every %s (Ctrl+C to stop)", source, syncWatchFlag)))
			return s.Watch(ctx, source, syncWatchFlag)
		}
		res, err := s.Run(ctx, source)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Imported %d, unchanged %d, skipped %d",
			res.Imported, res.Unchanged, res.Skipped)))
		return nil
	},
}

func init() {
	contractsSyncCmd.Flags().DurationVar(&syncWatchFlag, "watch", 0, "keep syncing at this interval")
	contractsCmd.AddCommand(contractsListCmd, contractsExportCmd, contractsSyncCmd)
}
