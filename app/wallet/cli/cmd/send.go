package cmd

import (
	"fmt"
	"log"
	"net/http"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

var (
	to     string
	amount uint64
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send transaction",
	Run:   sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Account to send value to.")
	sendCmd.Flags().Uint64VarP(&amount, "amount", "m", 0, "Amount to send.")
}

func sendRun(cmd *cobra.Command, args []string) {
	w, err := loadWallet()
	if err != nil {
		log.Fatal(err)
	}

	toID, err := database.ToAccountID(to)
	if err != nil {
		log.Fatal(err)
	}

	var gen genesis.Genesis
	if err := send(http.MethodGet, fmt.Sprintf("%s/v1/genesis", url), nil, &gen); err != nil {
		log.Fatal(err)
	}

	var blocks []database.Block
	if err := send(http.MethodGet, fmt.Sprintf("%s/v1/blocks", url), nil, &blocks); err != nil {
		log.Fatal(err)
	}

	var pool map[string]database.Tx
	if err := send(http.MethodGet, fmt.Sprintf("%s/v1/transaction-pool-map", url), nil, &pool); err != nil {
		log.Fatal(err)
	}

	tx, err := buildTransaction(w, database.ToChain(gen, blocks), pool, toID, amount)
	if err != nil {
		log.Fatal(err)
	}

	if err := send(http.MethodPost, fmt.Sprintf("%s/v1/tx/submit", url), tx, nil); err != nil {
		log.Fatal(err)
	}

	fmt.Println(tx.ID)
}

// buildTransaction updates the wallet's pending transaction with the new
// allocation when it is still spendable, otherwise it creates a new one
// against the current chain balance.
func buildTransaction(w *wallet.Wallet, chain database.Chain, pool map[string]database.Tx, to database.AccountID, amount uint64) (database.Tx, error) {
	balance := w.Balance(chain)

	for _, tx := range pool {
		if tx.Input.Address != w.AccountID() || tx.Input.Amount != balance {
			continue
		}

		if err := w.UpdateTransaction(&tx, to, amount); err != nil {
			return database.Tx{}, err
		}

		return tx, nil
	}

	return w.CreateTransaction(to, amount, chain)
}
