package selector

import (
	"sort"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// largestSelect returns transactions moving the most value first while
// respecting the signing order for each sender.
var largestSelect = func(m map[database.AccountID][]database.Tx, howMany int) []database.Tx {

	/*
		Bill: {Signed: 2, Amount: 250},
		      {Signed: 1, Amount: 150},
		Pavl: {Signed: 1, Amount: 75},
		Edua: {Signed: 1, Amount: 100},
	*/

	// Sort the transactions per sender by the time they were signed.
	for key := range m {
		if len(m[key]) > 1 {
			sort.Sort(bySigned(m[key]))
		}
	}

	// Pick the first transaction in the slice for each sender. Each iteration
	// represents a new row of selections. Keep doing that until all the
	// transactions have been selected.
	senders := sortedSenders(m)

	var rows [][]database.Tx
	for {
		var row []database.Tx
		for _, key := range senders {
			if len(m[key]) > 0 {
				row = append(row, m[key][0])
				m[key] = m[key][1:]
			}
		}
		if row == nil {
			break
		}
		rows = append(rows, row)
	}

	/*
		0: Bill: {Signed: 1, Amount: 150},
		0: Edua: {Signed: 1, Amount: 100},
		0: Pavl: {Signed: 1, Amount: 75},
		1: Bill: {Signed: 2, Amount: 250},
	*/

	// Sort each row by amount and keep pulling transactions from each row
	// until the requested amount is fulfilled or there are no more.
	var final []database.Tx
	for _, row := range rows {
		sort.Sort(byAmount(row))
		final = append(final, row...)
	}

	return limit(final, howMany)
}
