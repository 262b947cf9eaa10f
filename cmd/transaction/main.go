// Command transaction fetches a transaction by id from an
// Esplora-compatible endpoint and prints its decoded form.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ohallgren/btcconsensus/internal/transaction"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd := newTransactionCmd()
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("transaction command failed")
	}
}

func newTransactionCmd() *cobra.Command {
	var testnet bool
	var fresh bool

	cmd := &cobra.Command{
		Use:   "transaction <txid>",
		Short: "Fetch and print a Bitcoin transaction by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransaction(cmd, args[0], testnet, fresh)
		},
	}

	cmd.Flags().BoolVar(&testnet, "testnet", false, "enable testnet mode")
	cmd.Flags().BoolVar(&fresh, "fresh", true, "bypass the fetcher's in-memory cache")

	return cmd
}

func runTransaction(cmd *cobra.Command, txID string, testnet, fresh bool) error {
	tx, err := transaction.NewTxFetcher().Fetch(txID, testnet, fresh)
	if err != nil {
		log.Error().Err(err).Str("txid", txID).Msg("transaction could not be fetched")
		return fmt.Errorf("fetching transaction %s: %w", txID, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), tx.String())
	return nil
}
