package state

import (
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
)

// RetrieveHost returns a copy of host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveChain returns the current chain. The value is never modified so
// it can be read without holding any lock.
func (s *State) RetrieveChain() database.Chain {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain.LatestBlock()
}

// RetrieveMempool returns a copy of the mempool keyed by transaction id.
func (s *State) RetrieveMempool() map[string]database.Tx {
	return s.mempool.Copy()
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// RetrieveWalletAccountID returns the account of the node's wallet.
func (s *State) RetrieveWalletAccountID() database.AccountID {
	return s.minerWallet.AccountID()
}

// RetrieveStatus returns the status this node reports to its peers.
func (s *State) RetrieveStatus() peer.PeerStatus {
	chain := s.RetrieveChain()

	return peer.PeerStatus{
		LatestBlockHash: chain.LatestBlock().Hash,
		ChainLength:     chain.Len(),
		KnownPeers:      s.RetrieveKnownPeers(),
	}
}
