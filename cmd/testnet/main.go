// Command testnet derives a testnet address from a passphrase-based
// secret, the way a user would mint themselves a faucet-ready address
// without ever touching a private key file.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ohallgren/btcconsensus/internal/signatureverification"
	"github.com/ohallgren/btcconsensus/internal/utils"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd := newTestnetCmd()
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("testnet command failed")
	}
}

func newTestnetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "testnet",
		Short: "Derive a testnet address from a passphrase secret",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTestnet(cmd)
		},
	}
}

func runTestnet(cmd *cobra.Command) error {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	fmt.Fprint(cmd.OutOrStdout(), "Type a long secret that only you know: ")

	var data string
	if scanner.Scan() {
		data = scanner.Text()
	}
	fmt.Fprint(cmd.OutOrStdout(), "\n")

	secret := utils.Hash256ToBigInt([]byte(data))

	privKey, err := signatureverification.NewPrivateKey(secret)
	if err != nil {
		return fmt.Errorf("deriving private key from secret: %w", err)
	}

	address := signatureverification.Address(privKey.Point, true, true)

	log.Info().Str("address", address).Msg("derived testnet address")
	fmt.Fprintln(cmd.OutOrStdout(), "The testnet address that is connected to this secret is:")
	fmt.Fprintln(cmd.OutOrStdout(), address)
	fmt.Fprint(cmd.OutOrStdout(), "\n")
	fmt.Fprintln(cmd.OutOrStdout(), "now go to https://coinfaucet.eu/en/btc-testnet/ and enter this address. Press 'Get bitcoins!'")

	return nil
}
