// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"context"
	"sync"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/mempool"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
	"github.com/ardanlabs/powchain/foundation/blockchain/wallet"
)

// EventHandler defines a function that is called when events
// occur in the processing of blocks and transactions.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining, peer updates, and sharing.
type Worker interface {
	Shutdown()
	Sync()
	SignalStartMining()
	SignalShareTx(tx database.Tx)
	SignalShareChain()
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	MinerWallet    *wallet.Wallet
	Host           string
	Genesis        genesis.Genesis
	SelectStrategy string
	KnownPeers     *peer.PeerSet
	AutoMine       bool
	EvHandler      EventHandler
}

// State manages the blockchain held in memory.
type State struct {
	minerWallet *wallet.Wallet
	host        string
	autoMine    bool
	evHandler   EventHandler
	genesis     genesis.Genesis

	mu    sync.RWMutex
	chain database.Chain

	miningMu     sync.Mutex
	cancelMu     sync.Mutex
	cancelMining context.CancelCauseFunc

	walletMu sync.Mutex

	knownPeers *peer.PeerSet
	mempool    *mempool.Mempool

	Worker Worker
}

// New constructs a new blockchain for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, err
	}

	// Construct a mempool with the specified select strategy.
	mempool, err := mempool.NewWithStrategy(cfg.SelectStrategy)
	if err != nil {
		return nil, err
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	// Create the State to provide support for managing the blockchain.
	state := State{
		minerWallet: cfg.MinerWallet,
		host:        cfg.Host,
		autoMine:    cfg.AutoMine,
		evHandler:   ev,
		genesis:     cfg.Genesis,
		chain:       database.NewChain(cfg.Genesis),

		knownPeers: knownPeers,
		mempool:    mempool,

		Worker: nopWorker{},
	}

	// The Worker is replaced by the call to worker.Run which will assign
	// itself and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: Shutdown: started")
	defer s.evHandler("state: Shutdown: completed")

	// Stop all blockchain writing activity.
	s.cancelInFlightMining(context.Canceled)
	s.Worker.Shutdown()

	return nil
}

// =============================================================================

// nopWorker is in place until a real worker is registered.
type nopWorker struct{}

func (nopWorker) Shutdown() {}
func (nopWorker) Sync() {}
func (nopWorker) SignalStartMining() {}
func (nopWorker) SignalShareTx(database.Tx) {}
func (nopWorker) SignalShareChain() {}
