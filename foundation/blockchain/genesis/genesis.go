// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Genesis represents the genesis file. These values are the consensus
// parameters every node on the network must agree on.
type Genesis struct {
	Date            time.Time `json:"date"`
	ChainID         uint16    `json:"chain_id"`         // The chain id represents an unique id for this running instance.
	Difficulty      uint      `json:"difficulty"`       // Initial number of leading zero bits, also used by the genesis block.
	MineRateMS      uint64    `json:"mine_rate_ms"`     // Target time between blocks in milliseconds.
	StartingBalance uint64    `json:"starting_balance"` // Balance of a wallet that never sent a transaction.
	MiningReward    uint64    `json:"mining_reward"`    // Reward for mining a block.
}

// Default returns the genesis values used when no genesis file exists.
func Default() Genesis {
	return Genesis{
		Date:            time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		ChainID:         1,
		Difficulty:      3,
		MineRateMS:      1000,
		StartingBalance: 1000,
		MiningReward:    50,
	}
}

// =============================================================================

// Load opens and consumes the genesis file. If the file does not exist the
// default genesis values are returned.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis: %w", err)
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate checks the consensus parameters are usable.
func (g Genesis) Validate() error {
	if g.Difficulty < 1 {
		return fmt.Errorf("genesis difficulty must be at least 1, got %d", g.Difficulty)
	}

	if g.MineRateMS == 0 {
		return errors.New("genesis mine rate must be greater than zero")
	}

	return nil
}

// MineRate returns the target time between blocks.
func (g Genesis) MineRate() time.Duration {
	return time.Duration(g.MineRateMS) * time.Millisecond
}
