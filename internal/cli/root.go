// Package cli wires the lumixpay command line: the HTTP server and offline tools.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command. Running it without a subcommand starts the
// server.
func NewRootCommand() *cobra.Command {
	serve := NewServeCommand()

	cmd := &cobra.Command{
		Use:           "lumixpay",
		Short:         "LumixPay wallet backend",
		Long:          "HTTP backend for a Stellar testnet wallet with a local activity log.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	cmd.AddCommand(serve)
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
