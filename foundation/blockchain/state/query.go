package state

import (
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// QueryBalance replays the chain to compute the balance for the account.
func (s *State) QueryBalance(accountID database.AccountID) uint64 {
	return s.RetrieveChain().Balance(accountID)
}

// QueryKnownAddresses returns every account that received a transaction.
func (s *State) QueryKnownAddresses() []database.AccountID {
	return s.RetrieveChain().KnownAddresses()
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryValidTransactions returns the pool transactions that pass validation
// in the configured select strategy ordering.
func (s *State) QueryValidTransactions() []database.Tx {
	return s.mempool.ValidTransactions()
}

// QueryValidBlockData checks the data could be mined on top of the current
// chain and still pass the transaction rules a peer applies to the chain.
func (s *State) QueryValidBlockData(data []database.Tx) error {
	return validBlockData(s.RetrieveChain(), data)
}
