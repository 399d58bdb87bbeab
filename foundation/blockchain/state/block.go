package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// Set of error variables for block production.
var (
	ErrStaleMining    = errors.New("stale mining attempt, the chain advanced")
	ErrNoTransactions = errors.New("no transactions to mine")
)

// =============================================================================

// AddBlock mines a new block holding the specified data on top of the
// latest block and appends it to the chain. The data must pass the same
// transaction rules a peer applies to the chain. Only one block can be
// produced at a time. If the chain is replaced while mining, the work is
// abandoned and ErrStaleMining is returned.
func (s *State) AddBlock(ctx context.Context, data []database.Tx) (database.Block, error) {
	pick := func(chain database.Chain) ([]database.Tx, error) {
		if err := validBlockData(chain, data); err != nil {
			return nil, err
		}
		return data, nil
	}

	return s.addBlock(ctx, pick)
}

// MineTransactions mines a block with the valid pool transactions and a
// reward for the miner wallet. A block is produced even when no
// transactions are pending.
func (s *State) MineTransactions(ctx context.Context) (database.Block, error) {
	s.evHandler("state: MineTransactions: started")
	defer s.evHandler("state: MineTransactions: completed")

	pick := func(chain database.Chain) ([]database.Tx, error) {
		data := s.mineableTransactions(chain)
		return append(data, s.rewardTx()), nil
	}

	return s.addBlock(ctx, pick)
}

// MineNewBlock is used for automatic mining. It only mines when the pool
// holds transactions that can be included, otherwise ErrNoTransactions is
// returned.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: check mempool")

	pick := func(chain database.Chain) ([]database.Tx, error) {
		data := s.mineableTransactions(chain)
		if len(data) == 0 {
			return nil, ErrNoTransactions
		}
		return append(data, s.rewardTx()), nil
	}

	return s.addBlock(ctx, pick)
}

// ReplaceChain replaces the local chain with the specified chain if it is
// strictly longer and passes every validation rule. Any block being mined
// against the old chain is abandoned. The mined transactions are removed
// from the pool.
func (s *State) ReplaceChain(blocks []database.Block) error {
	s.evHandler("state: ReplaceChain: started: blocks[%d]", len(blocks))
	defer s.evHandler("state: ReplaceChain: completed")

	candidate := database.ToChain(s.genesis, blocks)

	if current := s.RetrieveChain(); candidate.Len() <= current.Len() {
		return fmt.Errorf("%w: received[%d], current[%d]", database.ErrChainTooShort, candidate.Len(), current.Len())
	}

	if err := database.ValidateChain(candidate); err != nil {
		s.evHandler("state: ReplaceChain: REJECTED: %s", err)
		return err
	}

	if err := database.ValidateTransactionData(candidate); err != nil {
		s.evHandler("state: ReplaceChain: REJECTED: %s", err)
		return err
	}

	// Abandon any mining taking place against the current chain.
	s.cancelInFlightMining(ErrStaleMining)

	s.mu.Lock()
	{
		// The local chain could have grown while the candidate was validated.
		if candidate.Len() <= s.chain.Len() {
			s.mu.Unlock()
			return fmt.Errorf("%w: received[%d], current[%d]", database.ErrChainTooShort, candidate.Len(), s.chain.Len())
		}

		s.chain = candidate
	}
	s.mu.Unlock()

	removed := s.mempool.ClearBlockchainTransactions(candidate.Blocks)
	s.evHandler("state: ReplaceChain: REPLACED: length[%d]: latestBlk[%s]: removed from mempool[%d]", candidate.Len(), candidate.LatestBlock().Hash, removed)

	s.blockEvent(candidate.LatestBlock())

	return nil
}

// =============================================================================

// addBlock performs the mining for a new block. The block data is picked
// while holding the mining lock, against the chain the block will extend,
// so two miners can never include the same transactions. The mined
// transactions are removed from the pool once the block is appended.
func (s *State) addBlock(ctx context.Context, pick func(chain database.Chain) ([]database.Tx, error)) (database.Block, error) {
	s.miningMu.Lock()
	defer s.miningMu.Unlock()

	ctx, cancel := context.WithCancelCause(ctx)
	s.setCancelMining(cancel)
	defer func() {
		s.setCancelMining(nil)
		cancel(nil)
	}()

	chain := s.RetrieveChain()
	prevBlock := chain.LatestBlock()

	data, err := pick(chain)
	if err != nil {
		return database.Block{}, err
	}

	s.evHandler("state: addBlock: MINING: started: prevBlk[%s]: txs[%d]", prevBlock.Hash, len(data))
	defer s.evHandler("state: addBlock: MINING: completed")

	block, err := database.MineBlock(ctx, database.MineArgs{
		PrevBlock: prevBlock,
		Data:      data,
		MineRate:  s.genesis.MineRate(),
		EvHandler: s.evHandler,
	})
	if err != nil {
		if errors.Is(context.Cause(ctx), ErrStaleMining) {
			return database.Block{}, ErrStaleMining
		}
		return database.Block{}, err
	}

	s.mu.Lock()
	{
		// The chain may have been replaced after the mining work completed.
		if s.chain.LatestBlock().Hash != prevBlock.Hash {
			s.mu.Unlock()
			s.evHandler("state: addBlock: MINING: STALE: prevBlk[%s]", prevBlock.Hash)
			return database.Block{}, ErrStaleMining
		}

		s.chain = s.chain.Append(block)
	}
	s.mu.Unlock()

	removed := s.mempool.ClearBlockchainTransactions([]database.Block{block})
	s.evHandler("state: addBlock: removed from mempool[%d]", removed)

	s.blockEvent(block)
	s.Worker.SignalShareChain()

	return block, nil
}

// mineableTransactions returns the valid pool transactions that can be
// included in the next block on top of the specified chain. A transaction
// whose input amount no longer matches the sender's balance is left behind,
// as is a second transaction from the same sender.
func (s *State) mineableTransactions(chain database.Chain) []database.Tx {
	var data []database.Tx
	senders := make(map[database.AccountID]struct{})
	for _, tx := range s.mempool.ValidTransactions() {
		if _, exists := senders[tx.Input.Address]; exists {
			continue
		}

		if chain.Contains(tx.ID) {
			continue
		}

		if balance := chain.Balance(tx.Input.Address); tx.Input.Amount != balance {
			s.evHandler("state: mineableTransactions: SKIPPED: tx[%s]: input[%d]: balance[%d]", tx, tx.Input.Amount, balance)
			continue
		}

		senders[tx.Input.Address] = struct{}{}
		data = append(data, tx)
	}

	return data
}

// rewardTx constructs the reward paid to this node's miner wallet.
func (s *State) rewardTx() database.Tx {
	return database.NewRewardTx(s.minerWallet.AccountID(), s.genesis.MiningReward)
}

// validBlockData checks the data could be mined on top of the chain and
// still pass the transaction rules a peer applies to the chain.
func validBlockData(chain database.Chain, data []database.Tx) error {
	return database.ValidateTransactionData(chain.Append(database.Block{Data: data}))
}

// setCancelMining registers the function that cancels the in-flight mining.
func (s *State) setCancelMining(cancel context.CancelCauseFunc) {
	s.cancelMu.Lock()
	defer s.cancelMu.Unlock()

	s.cancelMining = cancel
}

// cancelInFlightMining cancels any mining taking place with the cause.
func (s *State) cancelInFlightMining(cause error) {
	s.cancelMu.Lock()
	defer s.cancelMu.Unlock()

	if s.cancelMining != nil {
		s.evHandler("state: cancelInFlightMining: MINING: cancel: %s", cause)
		s.cancelMining(cause)
	}
}

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(block database.Block) {
	blockJSON, err := json.Marshal(block)
	if err != nil {
		blockJSON = fmt.Appendf(nil, "%q", err.Error())
	}

	s.evHandler(`viewer: block: {"hash":%q,"block":%s}`, block.Hash, string(blockJSON))
}
