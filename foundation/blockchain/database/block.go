package database

import (
	"context"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/signature"
)

// Fixed field values of the genesis block. Every node must agree on these
// for chains to be exchanged.
const (
	GenesisTimestamp int64  = 1
	GenesisLastHash  string = "-----"
	GenesisHash      string = "hash-one"
)

// =============================================================================

// Block represents a group of transactions batched together and linked to
// the previous block by its hash.
type Block struct {
	Timestamp  int64  `json:"timestamp"`  // Bitcoin: Time the block was mined, in milliseconds.
	LastHash   string `json:"lastHash"`   // Bitcoin: Hash of the previous block in the chain.
	Hash       string `json:"hash"`       // Hash of this block's fields, including nonce and difficulty.
	Data       []Tx   `json:"data"`       // Ordered transactions included in this block.
	Nonce      uint64 `json:"nonce"`      // Bitcoin: Value identified to solve the hash solution.
	Difficulty uint   `json:"difficulty"` // Number of leading zero bits needed to solve the hash solution.
}

// Genesis returns the fixed first block of every chain. It is not mined.
func Genesis(gen genesis.Genesis) Block {
	return Block{
		Timestamp:  GenesisTimestamp,
		LastHash:   GenesisLastHash,
		Hash:       GenesisHash,
		Data:       []Tx{},
		Nonce:      0,
		Difficulty: gen.Difficulty,
	}
}

// BlockHash is the hash function used both when mining a block and when
// validating one. The two must always cover the same set of fields.
func BlockHash(timestamp int64, lastHash string, data []Tx, nonce uint64, difficulty uint) string {
	if data == nil {
		data = []Tx{}
	}

	return signature.Hash(timestamp, lastHash, data, nonce, difficulty)
}

// CalculateHash recomputes the hash for the block's current fields.
func (b Block) CalculateHash() string {
	return BlockHash(b.Timestamp, b.LastHash, b.Data, b.Nonce, b.Difficulty)
}

// Equal performs an exact field comparison of two blocks.
func (b Block) Equal(other Block) bool {
	if b.Timestamp != other.Timestamp ||
		b.LastHash != other.LastHash ||
		b.Hash != other.Hash ||
		b.Nonce != other.Nonce ||
		b.Difficulty != other.Difficulty ||
		len(b.Data) != len(other.Data) {
		return false
	}

	for i := range b.Data {
		if !b.Data[i].Equal(other.Data[i]) {
			return false
		}
	}

	return true
}

// =============================================================================

// MineArgs represents the set of arguments required to mine a block.
type MineArgs struct {
	PrevBlock Block
	Data      []Tx
	MineRate  time.Duration
	EvHandler func(v string, args ...any)
}

// MineBlock constructs a new Block and performs the work to find a nonce that
// solves the proof of work puzzle. The difficulty is recomputed on every
// attempt from the previous block and the current time. The context is
// checked on every attempt so the search can be cancelled.
func MineBlock(ctx context.Context, args MineArgs) (Block, error) {
	ev := args.EvHandler
	if ev == nil {
		ev = func(string, ...any) {}
	}

	ev("database: MineBlock: MINING: started: prevBlk[%s]: txs[%d]", args.PrevBlock.Hash, len(args.Data))
	defer ev("database: MineBlock: MINING: completed")

	data := args.Data
	if data == nil {
		data = []Tx{}
	}

	nb := Block{
		LastHash: args.PrevBlock.Hash,
		Data:     data,
	}

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: MineBlock: MINING: attempts[%d]", attempts)
		}

		// Did another node find a solution or did we get shutdown.
		if err := ctx.Err(); err != nil {
			ev("database: MineBlock: MINING: CANCELLED: attempts[%d]", attempts)
			return Block{}, err
		}

		nb.Timestamp = time.Now().UnixMilli()
		nb.Difficulty = AdjustDifficulty(args.PrevBlock, nb.Timestamp, args.MineRate)
		nb.Nonce++
		nb.Hash = nb.CalculateHash()

		if isHashSolved(nb.Difficulty, nb.Hash) {
			ev("database: MineBlock: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: difficulty[%d]: attempts[%d]", nb.LastHash, nb.Hash, nb.Difficulty, attempts)
			return nb, nil
		}
	}
}

// AdjustDifficulty returns the difficulty for a block mined at the specified
// timestamp on top of the original block. Blocks mined slower than the mine
// rate lower the difficulty by one, otherwise it is raised by one. The
// difficulty never drops below one.
func AdjustDifficulty(original Block, timestamp int64, mineRate time.Duration) uint {
	difficulty := original.Difficulty
	if difficulty < 1 {
		return 1
	}

	if timestamp-original.Timestamp > mineRate.Milliseconds() {
		if difficulty == 1 {
			return 1
		}
		return difficulty - 1
	}

	return difficulty + 1
}

// isHashSolved checks the hash to make sure it complies with the POW rules.
// The hash needs at least difficulty leading zero bits.
func isHashSolved(difficulty uint, hash string) bool {
	return signature.LeadingZeroBits(hash) >= int(difficulty)
}
