package worker

import (
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
	"github.com/jpillora/backoff"
)

// maxSyncAttempts is the number of times a peer is tried during a sync
// before it is dropped.
const maxSyncAttempts = 3

// Sync updates the peer list, mempool and chain from the known peers.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	for _, pr := range w.state.RetrieveKnownPeers() {

		// Retrieve the status of this peer.
		peerStatus, ok := w.requestStatus(pr)
		if !ok {
			w.state.RemoveKnownPeer(pr)
			continue
		}

		// Add new peers to this nodes list.
		w.addNewPeers(peerStatus.KnownPeers)

		// Retrieve the mempool from the peer.
		pool, err := w.state.NetRequestPeerMempool(pr)
		if err != nil {
			w.evHandler("worker: sync: requestPeerMempool: %s: ERROR: %s", pr.Host, err)
		}
		for _, tx := range pool {
			if err := w.state.UpsertNodeTransaction(tx); err != nil {
				w.evHandler("worker: sync: requestPeerMempool: %s: tx[%s]: WARNING: %s", pr.Host, tx, err)
			}
		}

		// If this peer has a longer chain, we need it.
		w.pullLongerChain(pr, peerStatus)
	}

	w.announce()
}

// requestStatus asks the peer for its status, retrying with an increasing
// delay since peers are often started together.
func (w *Worker) requestStatus(pr peer.Peer) (peer.PeerStatus, bool) {
	bo := backoff.Backoff{
		Min:    500 * time.Millisecond,
		Max:    5 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	for {
		peerStatus, err := w.state.NetRequestPeerStatus(pr)
		if err == nil {
			return peerStatus, true
		}

		attempt := int(bo.Attempt()) + 1
		w.evHandler("worker: sync: requestStatus: %s: attempt[%d]: ERROR: %s", pr.Host, attempt, err)

		if attempt >= maxSyncAttempts {
			return peer.PeerStatus{}, false
		}

		select {
		case <-time.After(bo.Duration()):
		case <-w.shut:
			return peer.PeerStatus{}, false
		}
	}
}
