package worker

import (
	"errors"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/state"
)

// miningOperations handles mining.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for {
		select {
		case <-w.startMining:
			if !w.isShutdown() {
				w.runMiningOperation()
			}
		case <-w.shut:
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}
	}
}

// runMiningOperation mines the pending transactions into a new block. The
// state cancels the operation when the chain is replaced underneath it.
func (w *Worker) runMiningOperation() {
	w.evHandler("worker: runMiningOperation: MINING: started")
	defer w.evHandler("worker: runMiningOperation: MINING: completed")

	t := time.Now()
	block, err := w.state.MineNewBlock(w.ctx)
	duration := time.Since(t)

	w.evHandler("worker: runMiningOperation: MINING: mining duration[%v]", duration)

	if err != nil {
		switch {
		case errors.Is(err, state.ErrNoTransactions):
			w.evHandler("worker: runMiningOperation: MINING: no transactions to mine")
		case errors.Is(err, state.ErrStaleMining):
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: chain replaced")
			w.SignalStartMining()
		case w.ctx.Err() != nil:
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: shutdown")
		default:
			w.evHandler("worker: runMiningOperation: MINING: ERROR: %s", err)
		}
		return
	}

	w.evHandler("worker: runMiningOperation: MINING: SOLVED: blk[%s]: txs[%d]", block.Hash, len(block.Data))

	// After running a mining operation, check if a new operation should
	// be signaled again.
	if length := len(w.state.QueryValidTransactions()); length > 0 {
		w.evHandler("worker: runMiningOperation: MINING: signal new mining operation: Txs[%d]", length)
		w.SignalStartMining()
	}
}
