// Package worker implements mining, peer updates, and sharing of
// transactions and chains for the blockchain.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
)

// peerUpdateInterval represents the interval of finding new peer nodes
// and pulling longer chains from them.
const peerUpdateInterval = time.Minute

// =============================================================================

// Worker manages the POW workflows for the blockchain.
type Worker struct {
	state        *state.State
	wg           sync.WaitGroup
	ticker       *time.Ticker
	ctx          context.Context
	cancel       context.CancelFunc
	shut         chan struct{}
	startMining  chan bool
	txSharing    chan database.Tx
	chainSharing chan bool
	evHandler    state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes.
func Run(st *state.State, evHandler state.EventHandler) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	w := Worker{
		state:        st,
		ticker:       time.NewTicker(peerUpdateInterval),
		ctx:          ctx,
		cancel:       cancel,
		shut:         make(chan struct{}),
		startMining:  make(chan bool, 1),
		txSharing:    make(chan database.Tx, maxTxShareRequests),
		chainSharing: make(chan bool, 1),
		evHandler:    evHandler,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Update this node before starting any support G's.
	w.Sync()

	// Load the set of operations we need to run.
	operations := []func(){
		w.peerOperations,
		w.miningOperations,
		w.shareTxOperations,
		w.shareChainOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for range g {
		<-hasStarted
	}

	// Pick up anything pulled from peers during the sync.
	w.SignalStartMining()

	return &w
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutines performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: stop ticker")
	w.ticker.Stop()

	w.evHandler("worker: shutdown: cancel mining")
	w.cancel()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalStartMining starts a mining operation. If there is already a signal
// pending in the channel, just return since a mining operation will start.
func (w *Worker) SignalStartMining() {
	select {
	case w.startMining <- true:
	default:
	}
	w.evHandler("worker: SignalStartMining: mining signaled")
}

// SignalShareTx signals a share transaction operation. If
// maxTxShareRequests signals exist in the channel, we won't send these.
func (w *Worker) SignalShareTx(tx database.Tx) {
	select {
	case w.txSharing <- tx:
		w.evHandler("worker: SignalShareTx: share Tx signaled")
	default:
		w.evHandler("worker: SignalShareTx: queue full, transactions won't be shared.")
	}
}

// SignalShareChain signals a share chain operation. The latest chain is
// read when the operation runs, so pending signals are collapsed into one.
func (w *Worker) SignalShareChain() {
	select {
	case w.chainSharing <- true:
	default:
	}
	w.evHandler("worker: SignalShareChain: share chain signaled")
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
