package database

import (
	"fmt"
	"slices"

	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
)

// Chain is an ordered sequence of blocks starting with the genesis block. A
// Chain value is never modified once constructed. Appending produces a new
// Chain so readers holding an older value are never affected.
type Chain struct {
	Genesis genesis.Genesis
	Blocks  []Block
}

// NewChain constructs a chain containing only the genesis block.
func NewChain(gen genesis.Genesis) Chain {
	return Chain{
		Genesis: gen,
		Blocks:  []Block{Genesis(gen)},
	}
}

// ToChain wraps a sequence of blocks, such as a candidate chain received from
// a peer, for validation and queries. The blocks are copied.
func ToChain(gen genesis.Genesis, blocks []Block) Chain {
	return Chain{
		Genesis: gen,
		Blocks:  slices.Clone(blocks),
	}
}

// Append returns a new chain with the block added to the end.
func (c Chain) Append(block Block) Chain {
	blocks := make([]Block, len(c.Blocks), len(c.Blocks)+1)
	copy(blocks, c.Blocks)

	return Chain{
		Genesis: c.Genesis,
		Blocks:  append(blocks, block),
	}
}

// Len returns the number of blocks in the chain, genesis included.
func (c Chain) Len() int {
	return len(c.Blocks)
}

// LatestBlock returns the last block in the chain.
func (c Chain) LatestBlock() Block {
	if len(c.Blocks) == 0 {
		return Genesis(c.Genesis)
	}

	return c.Blocks[len(c.Blocks)-1]
}

// =============================================================================

// IsValidChain reports whether the chain passes the structural and proof of
// work rules. See ValidateChain for the reason a chain is rejected.
func IsValidChain(chain Chain) bool {
	return ValidateChain(chain) == nil
}

// ValidateChain checks the chain starts with the genesis block, every block
// links to the hash of the block before it, every hash can be recomputed
// from the block's fields, and every block honors the difficulty rules.
func ValidateChain(chain Chain) error {
	if len(chain.Blocks) == 0 {
		return fmt.Errorf("%w: empty chain", ErrInvalidChainStructure)
	}

	if !chain.Blocks[0].Equal(Genesis(chain.Genesis)) {
		return fmt.Errorf("%w: first block is not the genesis block", ErrInvalidChainStructure)
	}

	for i := 1; i < len(chain.Blocks); i++ {
		block := chain.Blocks[i]
		prev := chain.Blocks[i-1]

		if block.LastHash != prev.Hash {
			return fmt.Errorf("%w: blk[%d]: last hash %s doesn't match parent hash %s", ErrInvalidChainStructure, i, block.LastHash, prev.Hash)
		}

		if hash := block.CalculateHash(); block.Hash != hash {
			return fmt.Errorf("%w: blk[%d]: hash %s doesn't match calculated hash %s", ErrInvalidChainStructure, i, block.Hash, hash)
		}

		if block.Difficulty < 1 {
			return fmt.Errorf("%w: blk[%d]: difficulty %d is below 1", ErrInvalidDifficulty, i, block.Difficulty)
		}

		if diff := int64(block.Difficulty) - int64(prev.Difficulty); diff > 1 || diff < -1 {
			return fmt.Errorf("%w: blk[%d]: difficulty jumped from %d to %d", ErrInvalidDifficulty, i, prev.Difficulty, block.Difficulty)
		}

		if !isHashSolved(block.Difficulty, block.Hash) {
			return fmt.Errorf("%w: blk[%d]: hash %s doesn't solve difficulty %d", ErrInvalidChainStructure, i, block.Hash, block.Difficulty)
		}
	}

	return nil
}

// ValidateTransactionData checks the transactions embedded in every block.
// Each block may carry at most one reward transaction paying exactly the
// mining reward. Every other transaction must be valid on its own, its input
// amount must equal the sender's balance replayed over the blocks before it,
// and a sender may only appear once per block. A transaction id may only
// appear once in the whole chain, so a mined transaction can't be replayed.
func ValidateTransactionData(chain Chain) error {
	ids := make(map[string]struct{})

	for i := 1; i < len(chain.Blocks); i++ {
		block := chain.Blocks[i]
		prefix := Chain{Genesis: chain.Genesis, Blocks: chain.Blocks[:i]}

		var rewards int
		senders := make(map[AccountID]struct{}, len(block.Data))

		for _, tx := range block.Data {
			if _, exists := ids[tx.ID]; exists {
				return fmt.Errorf("%w: blk[%d]: tx[%s] was already included in the chain", ErrInvalidTransaction, i, tx.ID)
			}
			ids[tx.ID] = struct{}{}

			if tx.IsReward() {
				rewards++
				if rewards > 1 {
					return fmt.Errorf("%w: blk[%d]: more than one reward transaction", ErrInvalidTransaction, i)
				}

				if err := tx.validateReward(chain.Genesis.MiningReward); err != nil {
					return fmt.Errorf("blk[%d]: %w", i, err)
				}
				continue
			}

			if err := tx.Validate(); err != nil {
				return fmt.Errorf("blk[%d]: %w", i, err)
			}

			if _, exists := senders[tx.Input.Address]; exists {
				return fmt.Errorf("%w: blk[%d]: sender %s has more than one transaction", ErrInvalidTransaction, i, tx.Input.Address)
			}
			senders[tx.Input.Address] = struct{}{}

			if balance := prefix.Balance(tx.Input.Address); tx.Input.Amount != balance {
				return fmt.Errorf("%w: blk[%d]: tx[%s] input amount %d doesn't match balance %d", ErrInvalidTransaction, i, tx.ID, tx.Input.Amount, balance)
			}
		}
	}

	return nil
}

// =============================================================================

// Balance replays the chain to compute the balance for the specified
// account. Walking back from the newest block, every output paying the
// account is added up until the most recent block in which the account sent
// a transaction. That transaction's change already reflects everything
// before it. An account that never sent a transaction starts with the
// genesis starting balance.
func (c Chain) Balance(accountID AccountID) uint64 {
	var total uint64
	var conducted bool

	for i := len(c.Blocks) - 1; i > 0; i-- {
		for _, tx := range c.Blocks[i].Data {
			if tx.Input.Address == accountID {
				conducted = true
			}

			if value, exists := tx.OutputMap[accountID]; exists {
				total += value
			}
		}

		if conducted {
			break
		}
	}

	if conducted {
		return total
	}

	return c.Genesis.StartingBalance + total
}

// KnownAddresses returns the sorted set of every account that has been the
// recipient of a transaction on the chain.
func (c Chain) KnownAddresses() []AccountID {
	set := make(map[AccountID]struct{})
	for _, block := range c.Blocks {
		for _, tx := range block.Data {
			for accountID := range tx.OutputMap {
				set[accountID] = struct{}{}
			}
		}
	}

	addresses := make([]AccountID, 0, len(set))
	for accountID := range set {
		addresses = append(addresses, accountID)
	}
	slices.Sort(addresses)

	return addresses
}

// Contains reports whether a transaction with the specified id has been
// mined into any block of the chain.
func (c Chain) Contains(txID string) bool {
	for _, block := range c.Blocks {
		for _, tx := range block.Data {
			if tx.ID == txID {
				return true
			}
		}
	}

	return false
}
