package cmd

import (
	"fmt"
	"os"

	"github.com/Mohsinsiddi/benchadapter/internal/keys"
	"github.com/Mohsinsiddi/benchadapter/internal/ui"
	"github.com/Mohsinsiddi/benchadapter/internal/wallet"
	"github.com/spf13/cobra"
)

var (
	walletKeyFlag   string
	walletLabelFlag string
	walletForceFlag bool
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage the signing wallet",
}

var walletCreateCmd = &cobra.Command{
	Use:   "create <passphrase>",
	Short: "Create an encrypted wallet file",
	Long: `Create a wallet file holding one scrypt-encrypted secp256k1 key.

A fresh key is generated unless --key supplies one in hex. The file is written
to wallet.path from the config (default: wallet.dat in the config directory).

Examples:
  benchadapter wallet create s3cret
  benchadapter wallet create s3cret --key 0x4c08...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Wallet.Path
		if _, err := os.Stat(path); err == nil && !walletForceFlag {
			if !ui.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Overwrite wallet %s?", path)) {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Meta("Cancelled."))
				return nil
			}
		}

		f := wallet.NewFile("benchadapter", keys.DefaultScrypt())
		acct, err := f.AddAccount(walletKeyFlag, args[0], walletLabelFlag)
		if err != nil {
			return err
		}
		if err := f.Save(path); err != nil {
			return fmt.Errorf("saving wallet: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Wallet created: "+ui.Addr(acct.Address)))
		fmt.Fprintln(cmd.OutOrStdout(), ui.Meta("File: "+path))
		return nil
	},
}

var walletShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Decrypt the wallet and show its account",
	RunE: func(cmd *cobra.Command, args []string) error {
		pass, err := walletPassphrase()
		if err != nil {
			return err
		}
		w, err := wallet.Load(cfg.Wallet.Path, pass)
		if err != nil {
			return err
		}
		addr := w.Address()
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Wallet", [][2]string{
			{"Address", ui.Addr(addr.Base58())},
			{"Hex", addr.Hex()},
			{"Label", w.Label()},
			{"File", cfg.Wallet.Path},
		}))
		return nil
	},
}

var walletStorePassCmd = &cobra.Command{
	Use:   "store-passphrase <passphrase>",
	Short: "Keep the wallet passphrase in the OS keychain",
	Long: `Store the wallet passphrase in the OS keychain and record its reference
as wallet.passphrase_ref, so the passphrase need not sit in the config file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Check the passphrase before storing it.
		if _, err := wallet.Load(cfg.Wallet.Path, args[0]); err != nil {
			return err
		}
		ref, err := keystore.Store("wallet", args[0])
		if err != nil {
			return err
		}
		cfg.Wallet.PassphraseRef = ref
		cfg.Wallet.Passphrase = ""
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Passphrase stored under "+ui.Val(ref)))
		return nil
	},
}

func init() {
	walletCreateCmd.Flags().StringVar(&walletKeyFlag, "key", "", "hex private key to import")
	walletCreateCmd.Flags().StringVar(&walletLabelFlag, "label", "", "account label")
	walletCreateCmd.Flags().BoolVarP(&walletForceFlag, "force", "f", false, "overwrite without asking")

	walletCmd.AddCommand(walletCreateCmd, walletShowCmd, walletStorePassCmd)
}
