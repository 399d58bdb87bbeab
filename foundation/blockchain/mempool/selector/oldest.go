package selector

import (
	"sort"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// oldestSelect returns transactions in the order they were signed across
// every sender. Since a sender's transactions are also ordered by signing
// time, the per sender ordering is respected.
var oldestSelect = func(m map[database.AccountID][]database.Tx, howMany int) []database.Tx {
	var final []database.Tx
	for _, from := range sortedSenders(m) {
		final = append(final, m[from]...)
	}

	sort.Sort(bySigned(final))

	return limit(final, howMany)
}
