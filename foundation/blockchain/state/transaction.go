package state

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// ErrPendingTransaction is returned when a wallet submits a new transaction
// while another one it signed is still waiting in the pool.
var ErrPendingTransaction = errors.New("sender already has a pending transaction")

// =============================================================================

// SubmitWalletTransaction sends amount from the node's own wallet to the
// recipient. If the wallet already has a pending transaction it is updated
// with the new allocation, otherwise a new transaction is created.
func (s *State) SubmitWalletTransaction(to database.AccountID, amount uint64) (database.Tx, error) {
	s.walletMu.Lock()
	defer s.walletMu.Unlock()

	chain := s.RetrieveChain()
	from := s.minerWallet.AccountID()

	tx, exists := s.mempool.ExistingTransaction(from)
	switch {
	case exists && tx.Input.Amount == chain.Balance(from):
		if err := s.minerWallet.UpdateTransaction(&tx, to, amount); err != nil {
			return database.Tx{}, err
		}
		s.evHandler("state: SubmitWalletTransaction: updated: tx[%s]", tx)

	default:

		// A pending transaction built against a balance that is no longer
		// current can never be mined, so it is replaced.
		if exists {
			s.mempool.Delete(tx.ID)
			s.evHandler("state: SubmitWalletTransaction: dropped stale: tx[%s]", tx)
		}

		var err error
		tx, err = s.minerWallet.CreateTransaction(to, amount, chain)
		if err != nil {
			return database.Tx{}, err
		}
		s.evHandler("state: SubmitWalletTransaction: created: tx[%s]", tx)
	}

	s.mempool.Upsert(tx)

	s.Worker.SignalShareTx(tx)
	s.signalMining()

	return tx, nil
}

// UpsertWalletTransaction accepts a signed transaction from a client wallet
// for inclusion. A wallet may only have one pending transaction, which it
// updates and submits again with the same id.
func (s *State) UpsertWalletTransaction(tx database.Tx) error {
	if err := s.validateTransaction(tx); err != nil {
		return err
	}

	chain := s.RetrieveChain()
	if balance := chain.Balance(tx.Input.Address); tx.Input.Amount != balance {
		return fmt.Errorf("%w: tx[%s] input amount %d doesn't match balance %d", database.ErrInvalidTransaction, tx.ID, tx.Input.Amount, balance)
	}

	if existing, exists := s.mempool.ExistingTransaction(tx.Input.Address); exists && existing.ID != tx.ID {
		return fmt.Errorf("%w: pending tx[%s]", ErrPendingTransaction, existing.ID)
	}

	s.mempool.Upsert(tx)
	s.evHandler("state: UpsertWalletTransaction: tx[%s]", tx)

	s.Worker.SignalShareTx(tx)
	s.signalMining()

	return nil
}

// UpsertNodeTransaction accepts a transaction shared by another node for
// inclusion. It is not shared again.
func (s *State) UpsertNodeTransaction(tx database.Tx) error {
	if err := s.validateTransaction(tx); err != nil {
		return err
	}

	s.mempool.Upsert(tx)
	s.evHandler("state: UpsertNodeTransaction: tx[%s]", tx)

	s.signalMining()

	return nil
}

// =============================================================================

// validateTransaction checks a transaction received from outside the node.
func (s *State) validateTransaction(tx database.Tx) error {
	if tx.IsReward() {
		return fmt.Errorf("%w: reward transactions are only created by miners", database.ErrInvalidTransaction)
	}

	if err := tx.Validate(); err != nil {
		return err
	}

	if s.RetrieveChain().Contains(tx.ID) {
		return fmt.Errorf("%w: tx[%s] has already been mined", database.ErrInvalidTransaction, tx.ID)
	}

	return nil
}

// signalMining starts a mining operation when automatic mining is on.
func (s *State) signalMining() {
	if s.autoMine {
		s.Worker.SignalStartMining()
	}
}
