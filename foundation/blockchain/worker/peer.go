package worker

import (
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
)

// peerOperations handles finding new peers and longer chains.
func (w *Worker) peerOperations() {
	w.evHandler("worker: peerOperations: G started")
	defer w.evHandler("worker: peerOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.runPeersOperation()
			}
		case <-w.shut:
			w.evHandler("worker: peerOperations: received shut signal")
			return
		}
	}
}

// runPeersOperation updates the peer list and pulls the chain from any peer
// that has a longer one.
func (w *Worker) runPeersOperation() {
	w.evHandler("worker: runPeersOperation: started")
	defer w.evHandler("worker: runPeersOperation: completed")

	for _, pr := range w.state.RetrieveKnownPeers() {

		// Retrieve the status of this peer.
		peerStatus, err := w.state.NetRequestPeerStatus(pr)
		if err != nil {
			w.evHandler("worker: runPeersOperation: queryPeerStatus: %s: ERROR: %s", pr.Host, err)
			w.state.RemoveKnownPeer(pr)
			continue
		}

		// Add new peers to this nodes list.
		w.addNewPeers(peerStatus.KnownPeers)

		// If this peer has a longer chain, try to replace ours with it.
		w.pullLongerChain(pr, peerStatus)
	}

	// Let the latest peers know this node is available to chat.
	w.announce()
}

// addNewPeers takes the list of known peers and makes sure they are included
// in the nodes list of know peers.
func (w *Worker) addNewPeers(knownPeers []peer.Peer) {
	w.evHandler("worker: addNewPeers: started")
	defer w.evHandler("worker: addNewPeers: completed")

	for _, pr := range knownPeers {
		if w.state.AddKnownPeer(pr) {
			w.evHandler("worker: addNewPeers: adding peer-node %s", pr.Host)
		}
	}
}

// pullLongerChain requests the chain from the peer when it reports a longer
// chain than this node has.
func (w *Worker) pullLongerChain(pr peer.Peer, peerStatus peer.PeerStatus) {
	local := w.state.RetrieveChain().Len()
	if peerStatus.ChainLength <= local {
		return
	}

	w.evHandler("worker: pullLongerChain: %s: chain-length[%d]: local[%d]", pr.Host, peerStatus.ChainLength, local)

	blocks, err := w.state.NetRequestPeerChain(pr)
	if err != nil {
		w.evHandler("worker: pullLongerChain: %s: ERROR: %s", pr.Host, err)
		return
	}

	if err := w.state.ReplaceChain(blocks); err != nil {
		w.evHandler("worker: pullLongerChain: %s: REJECTED: %s", pr.Host, err)
	}
}

// announce tells every known peer about this node.
func (w *Worker) announce() {
	for _, pr := range w.state.RetrieveKnownPeers() {
		if err := w.state.NetRequestAddPeer(pr); err != nil {
			w.evHandler("worker: announce: addPeer: %s: ERROR: %s", pr.Host, err)
		}
	}
}
