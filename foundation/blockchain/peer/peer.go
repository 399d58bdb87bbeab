// Package peer maintains the set of known nodes and the status they report.
package peer

import (
	"slices"
	"strings"
	"sync"
)

// Peer represents a node on the network, addressed by the host of its
// private API.
type Peer struct {
	Host string `json:"host"`
}

// New constructs a peer for the specified host.
func New(host string) Peer {
	return Peer{
		Host: strings.TrimSpace(host),
	}
}

// Match validates if the specified host matches this node.
func (p Peer) Match(host string) bool {
	return p.Host == host
}

// =============================================================================

// PeerStatus is what a node reports about itself so others can decide if
// its chain is worth requesting.
type PeerStatus struct {
	LatestBlockHash string `json:"latest_block_hash"`
	ChainLength     int    `json:"chain_length"`
	KnownPeers      []Peer `json:"known_peers"`
}

// =============================================================================

// PeerSet is the set of known peers and is safe for concurrent use.
type PeerSet struct {
	mu  sync.RWMutex
	set map[Peer]struct{}
}

// NewPeerSet constructs an empty peer set.
func NewPeerSet() *PeerSet {
	return &PeerSet{
		set: make(map[Peer]struct{}),
	}
}

// Add adds a new peer to the set and reports whether it was unknown.
// Peers with an empty host are ignored.
func (ps *PeerSet) Add(peer Peer) bool {
	if peer.Host == "" {
		return false
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, exists := ps.set[peer]; exists {
		return false
	}

	ps.set[peer] = struct{}{}
	return true
}

// Remove removes a peer from the set.
func (ps *PeerSet) Remove(peer Peer) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.set, peer)
}

// Copy returns the known peers sorted by host, leaving out the specified
// host which is usually the node itself.
func (ps *PeerSet) Copy(host string) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	peers := make([]Peer, 0, len(ps.set))
	for peer := range ps.set {
		if !peer.Match(host) {
			peers = append(peers, peer)
		}
	}

	slices.SortFunc(peers, func(a, b Peer) int { return strings.Compare(a.Host, b.Host) })

	return peers
}
