// Package commands contains the functionality for the set of commands
// currently supported by the admin tool.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
)

var client = http.Client{
	Timeout: 10 * time.Second,
}

// FetchChain retrieves the genesis and the full chain from the node's public
// api at the specified url.
func FetchChain(url string) (database.Chain, error) {
	var gen genesis.Genesis
	if err := get(fmt.Sprintf("%s/v1/genesis", url), &gen); err != nil {
		return database.Chain{}, err
	}

	var blocks []database.Block
	if err := get(fmt.Sprintf("%s/v1/blocks", url), &blocks); err != nil {
		return database.Chain{}, err
	}

	return database.ToChain(gen, blocks), nil
}

// Validate runs every chain rule against the chain and reports the result.
func Validate(w io.Writer, chain database.Chain) error {
	if err := database.ValidateChain(chain); err != nil {
		return err
	}
	fmt.Fprintf(w, "Structure: valid, blocks[%d]\n", chain.Len())

	if err := database.ValidateTransactionData(chain); err != nil {
		return err
	}
	fmt.Fprintln(w, "Transactions: valid")

	return nil
}

func get(url string, v any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: status %d", url, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}
