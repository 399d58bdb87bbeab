// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"sync"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/mempool/selector"
)

// Mempool represents a cache of unmined transactions organized by
// transaction id. Invalid transactions are kept but never selected for
// mining. They leave the pool when replaced, mined, or deleted.
type Mempool struct {
	pool     map[string]database.Tx
	mu       sync.RWMutex
	selectFn selector.Func
}

// New constructs a new mempool using the default select strategy.
func New() (*Mempool, error) {
	return NewWithStrategy(selector.StrategyOldest)
}

// NewWithStrategy constructs a new mempool with specified select strategy.
func NewWithStrategy(strategy string) (*Mempool, error) {
	selectFn, err := selector.Retrieve(strategy)
	if err != nil {
		return nil, err
	}

	mp := Mempool{
		pool:     make(map[string]database.Tx),
		selectFn: selectFn,
	}

	return &mp, nil
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert adds or replaces a transaction in the mempool by id.
func (mp *Mempool) Upsert(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool[tx.ID] = tx.Clone()

	return len(mp.pool)
}

// Delete removes a transaction from the mempool.
func (mp *Mempool) Delete(id string) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	delete(mp.pool, id)
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]database.Tx)
}

// Copy returns a snapshot of the pool keyed by transaction id.
func (mp *Mempool) Copy() map[string]database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	cpy := make(map[string]database.Tx, len(mp.pool))
	for id, tx := range mp.pool {
		cpy[id] = tx.Clone()
	}

	return cpy
}

// ExistingTransaction returns the pending transaction sent by the specified
// address. When more than one exists, the oldest one is returned.
func (mp *Mempool) ExistingTransaction(address database.AccountID) (database.Tx, bool) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	var found database.Tx
	var exists bool
	for _, tx := range mp.pool {
		if tx.Input.Address != address {
			continue
		}

		if !exists || older(tx, found) {
			found = tx
			exists = true
		}
	}

	if !exists {
		return database.Tx{}, false
	}

	return found.Clone(), true
}

// ValidTransactions uses the configured select strategy to order a
// consistent snapshot of the pool and returns only the transactions that
// pass validation.
func (mp *Mempool) ValidTransactions() []database.Tx {
	return mp.PickValid(-1)
}

// PickValid is like ValidTransactions but returns at most howMany
// transactions. Pass -1 for all of them.
func (mp *Mempool) PickValid(howMany int) []database.Tx {

	// Group the transactions by sender.
	m := make(map[database.AccountID][]database.Tx)
	mp.mu.RLock()
	{
		for _, tx := range mp.pool {
			m[tx.Input.Address] = append(m[tx.Input.Address], tx.Clone())
		}
	}
	mp.mu.RUnlock()

	var valid []database.Tx
	for _, tx := range mp.selectFn(m, -1) {
		if tx.Validate() != nil {
			continue
		}

		valid = append(valid, tx)
		if howMany >= 0 && len(valid) == howMany {
			break
		}
	}

	return valid
}

// ClearBlockchainTransactions removes every transaction whose id appears in
// the specified blocks.
func (mp *Mempool) ClearBlockchainTransactions(blocks []database.Block) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	var removed int
	for _, block := range blocks {
		for _, tx := range block.Data {
			if _, exists := mp.pool[tx.ID]; exists {
				delete(mp.pool, tx.ID)
				removed++
			}
		}
	}

	return removed
}

// =============================================================================

// older reports whether a was signed before b, breaking ties on id.
func older(a database.Tx, b database.Tx) bool {
	if a.Input.Timestamp == b.Input.Timestamp {
		return a.ID < b.ID
	}
	return a.Input.Timestamp < b.Input.Timestamp
}
