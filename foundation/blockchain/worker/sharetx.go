package worker

import (
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// maxTxShareRequests represents the max number of pending tx network share
// requests that can be outstanding before share requests are dropped. To keep
// this simple, a buffered channel of this arbitrary number is being used. If
// the channel does become full, requests for new transactions to be shared
// will not be accepted.
const maxTxShareRequests = 100

// =============================================================================

// shareTxOperations handles sharing new transactions.
func (w *Worker) shareTxOperations() {
	w.evHandler("worker: shareTxOperations: G started")
	defer w.evHandler("worker: shareTxOperations: G completed")

	for {
		select {
		case tx := <-w.txSharing:
			if !w.isShutdown() {
				w.runShareTxOperation(tx)
			}
		case <-w.shut:
			w.evHandler("worker: shareTxOperations: received shut signal")
			return
		}
	}
}

// runShareTxOperation shares a new transaction with the known peers.
func (w *Worker) runShareTxOperation(tx database.Tx) {
	w.evHandler("worker: runShareTxOperation: started")
	defer w.evHandler("worker: runShareTxOperation: completed")

	w.state.NetSendTxToPeers(tx)
}

// =============================================================================

// shareChainOperations handles sharing the chain after it grows locally.
func (w *Worker) shareChainOperations() {
	w.evHandler("worker: shareChainOperations: G started")
	defer w.evHandler("worker: shareChainOperations: G completed")

	for {
		select {
		case <-w.chainSharing:
			if !w.isShutdown() {
				w.runShareChainOperation()
			}
		case <-w.shut:
			w.evHandler("worker: shareChainOperations: received shut signal")
			return
		}
	}
}

// runShareChainOperation sends the current chain to the known peers.
func (w *Worker) runShareChainOperation() {
	w.evHandler("worker: runShareChainOperation: started")
	defer w.evHandler("worker: runShareChainOperation: completed")

	w.state.NetSendChainToPeers()
}
