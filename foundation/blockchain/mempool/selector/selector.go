// Package selector provides different transaction selecting algorithms.
package selector

import (
	"fmt"
	"sort"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// List of different select strategies.
const (
	StrategyOldest  = "oldest"
	StrategyLargest = "largest"
)

// Map of different select strategies with functions.
var strategies = map[string]Func{
	StrategyOldest:  oldestSelect,
	StrategyLargest: largestSelect,
}

// Func defines a function that takes a mempool of transactions grouped by
// sender and selects howMany of them in an order based on the functions
// strategy. All selector functions MUST keep each sender's transactions in
// signing order. Receiving -1 for howMany must return all the transactions in
// the strategies ordering. Ties are broken on the transaction id so the
// result never depends on map iteration order.
type Func func(transactions map[database.AccountID][]database.Tx, howMany int) []database.Tx

// Retrieve returns the specified select strategy function.
func Retrieve(strategy string) (Func, error) {
	fn, exists := strategies[strategy]
	if !exists {
		return nil, fmt.Errorf("strategy %q does not exist", strategy)
	}
	return fn, nil
}

// =============================================================================

// bySigned provides sorting support by the time the transaction was signed.
type bySigned []database.Tx

// Len returns the number of transactions in the list.
func (bs bySigned) Len() int {
	return len(bs)
}

// Less helps to sort the list by timestamp in ascending order to keep the
// transactions in the order they were signed.
func (bs bySigned) Less(i, j int) bool {
	if bs[i].Input.Timestamp == bs[j].Input.Timestamp {
		return bs[i].ID < bs[j].ID
	}
	return bs[i].Input.Timestamp < bs[j].Input.Timestamp
}

// Swap moves transactions in the order of the timestamp value.
func (bs bySigned) Swap(i, j int) {
	bs[i], bs[j] = bs[j], bs[i]
}

// =============================================================================

// byAmount provides sorting support by the value being transferred.
type byAmount []database.Tx

// Len returns the number of transactions in the list.
func (ba byAmount) Len() int {
	return len(ba)
}

// Less helps to sort the list by amount in descending order to pick the
// transactions that move the most value.
func (ba byAmount) Less(i, j int) bool {
	ai, aj := Transferred(ba[i]), Transferred(ba[j])
	if ai == aj {
		return ba[i].ID < ba[j].ID
	}
	return ai > aj
}

// Swap moves transactions in the order of the amount value.
func (ba byAmount) Swap(i, j int) {
	ba[i], ba[j] = ba[j], ba[i]
}

// Transferred returns the value a transaction moves away from the sender,
// which is the output total minus the sender's change.
func Transferred(tx database.Tx) uint64 {
	return tx.Total() - tx.OutputMap[tx.Input.Address]
}

// =============================================================================

// limit trims the list to howMany transactions, -1 meaning all of them.
func limit(txs []database.Tx, howMany int) []database.Tx {
	if howMany < 0 || howMany >= len(txs) {
		return txs
	}
	return txs[:howMany]
}

// sortedSenders returns the senders in a stable order.
func sortedSenders(m map[database.AccountID][]database.Tx) []database.AccountID {
	senders := make([]database.AccountID, 0, len(m))
	for from := range m {
		senders = append(senders, from)
	}
	sort.Slice(senders, func(i, j int) bool { return senders[i] < senders[j] })

	return senders
}
