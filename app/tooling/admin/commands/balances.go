package commands

import (
	"fmt"
	"io"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// Balances prints the replayed balance for every known address on the
// chain, or only for the specified account.
func Balances(w io.Writer, chain database.Chain, account string) error {
	accounts := chain.KnownAddresses()
	if account != "" {
		accountID, err := database.ToAccountID(account)
		if err != nil {
			return err
		}
		accounts = []database.AccountID{accountID}
	}

	fmt.Fprintf(w, "LastestBlockHash: %s\n\n", chain.LatestBlock().Hash)

	for _, accountID := range accounts {
		fmt.Fprintf(w, "Account: %s  Balance: %d\n", accountID, chain.Balance(accountID))
	}

	return nil
}
