// Command create-testnet-transaction builds, signs, and serializes a
// single-input testnet transaction from -in/-out flags and a secret
// typed at the prompt, ready to broadcast on blockstream.info.
package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ohallgren/btcconsensus/internal/script"
	"github.com/ohallgren/btcconsensus/internal/signatureverification"
	"github.com/ohallgren/btcconsensus/internal/transaction"
	"github.com/ohallgren/btcconsensus/internal/utils"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd := newCreateTestnetTransactionCmd()
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("create-testnet-transaction command failed")
	}
}

func newCreateTestnetTransactionCmd() *cobra.Command {
	var ins, outs []string

	cmd := &cobra.Command{
		Use:   "create-testnet-transaction",
		Short: "Build, sign, and serialize a single-input testnet transaction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCreateTestnetTransaction(cmd, ins, outs)
		},
	}

	cmd.Flags().StringArrayVar(&ins, "in", nil, "Input(s) as <prev_txid_hex>:<prev_index>")
	cmd.Flags().StringArrayVar(&outs, "out", nil, "Output(s) as <amount>:<base58_hash160>")

	return cmd
}

func runCreateTestnetTransaction(cmd *cobra.Command, inFlags, outFlags []string) error {
	txIns := parseTxIns(cmd, inFlags)
	txOuts := parseTxOuts(cmd, outFlags)

	tx := transaction.NewTx(uint32(1), txIns, txOuts, uint32(0), true)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	fmt.Fprint(cmd.OutOrStdout(), "\nType the secret you want to sign this transaction with: ")

	var secret string
	if scanner.Scan() {
		secret = scanner.Text()
	}

	privateKey, err := signatureverification.NewPrivateKey(utils.Hash256ToBigInt([]byte(secret)))
	if err != nil {
		return fmt.Errorf("deriving private key from secret: %w", err)
	}

	if ok := tx.SignInput(uint32(0), privateKey); !ok {
		return fmt.Errorf("signing input 0 failed")
	}

	fmt.Fprintln(cmd.OutOrStdout(), "The following transaction was SIGNED:")
	fmt.Fprintln(cmd.OutOrStdout(), tx.String())

	txBytes, err := tx.Serialize()
	if err != nil {
		return fmt.Errorf("serializing transaction: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "The transaction is:\n\n%s\n\n", hex.EncodeToString(txBytes))
	fmt.Fprintln(cmd.OutOrStdout(), "You can broadcast the transaction at https://blockstream.info/testnet/tx/push")

	return nil
}

// parseTxIns turns "-in <prev_txid_hex>:<prev_index>" flags into
// unsigned TxIns with an empty scriptSig and the default sequence.
func parseTxIns(cmd *cobra.Command, ins []string) []*transaction.TxIn {
	var txIns []*transaction.TxIn

	for _, in := range ins {
		parts := strings.Split(in, ":")
		if len(parts) != 2 {
			log.Warn().Str("arg", in).Msg("invalid -in argument")
			continue
		}

		txID, err := hex.DecodeString(parts[0])
		if err != nil {
			log.Warn().Str("arg", in).Msg("invalid hex encoding in -in argument")
			continue
		}
		index, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			log.Warn().Str("arg", in).Msg("invalid index in -in argument")
			continue
		}

		emptyScriptSig := script.Script{}
		txIn := transaction.NewTxIn(txID, uint32(index), &emptyScriptSig, uint32(0xffffffff))
		txIns = append(txIns, txIn)
	}

	return txIns
}

// parseTxOuts turns "-out <amount>:<base58_hash160>" flags into
// TxOuts paying a standard P2PKH scriptPubkey.
func parseTxOuts(cmd *cobra.Command, outs []string) []*transaction.TxOut {
	var txOuts []*transaction.TxOut

	for _, out := range outs {
		parts := strings.Split(out, ":")
		if len(parts) != 2 {
			log.Warn().Str("arg", out).Msg("invalid -out argument, expected <amount>:<address>")
			continue
		}

		amount, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			log.Warn().Str("arg", out).Msg("invalid amount in -out argument")
			continue
		}

		addressH160, err := utils.DecodeBase58(parts[1])
		if err != nil {
			log.Warn().Str("arg", out).Msg("invalid base58 address in -out argument")
			continue
		}
		scriptPubkey := script.CreateP2pkhScript(addressH160)

		txOut := transaction.NewTxOut(amount, &scriptPubkey)
		txOuts = append(txOuts, txOut)
	}

	return txOuts
}
