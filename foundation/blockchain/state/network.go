package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
)

const baseURL = "http://%s/v1/node"

// client is used for every request made to a peer.
var client = http.Client{
	Timeout: 10 * time.Second,
}

// NetSendChainToPeers sends the local chain to all known peers so they can
// replace their chain with it.
func (s *State) NetSendChainToPeers() {
	s.evHandler("state: NetSendChainToPeers: started")
	defer s.evHandler("state: NetSendChainToPeers: completed")

	chain := s.RetrieveChain()

	for _, peer := range s.RetrieveKnownPeers() {
		url := fmt.Sprintf("%s/chain/propose", fmt.Sprintf(baseURL, peer.Host))
		if err := send(http.MethodPost, url, chain.Blocks, nil); err != nil {
			s.evHandler("state: NetSendChainToPeers: WARNING: %s: %s", peer.Host, err)
			continue
		}

		s.evHandler("state: NetSendChainToPeers: sent to peer[%s]: length[%d]", peer.Host, chain.Len())
	}
}

// NetSendTxToPeers shares a new transaction with the known peers.
func (s *State) NetSendTxToPeers(tx database.Tx) {
	s.evHandler("state: NetSendTxToPeers: started: tx[%s]", tx)
	defer s.evHandler("state: NetSendTxToPeers: completed")

	// CORE NOTE: The full transaction is sent every time. Since a pending
	// transaction can be updated, the receiving node replaces its copy by id.
	for _, peer := range s.RetrieveKnownPeers() {
		url := fmt.Sprintf("%s/tx/submit", fmt.Sprintf(baseURL, peer.Host))
		if err := send(http.MethodPost, url, tx, nil); err != nil {
			s.evHandler("state: NetSendTxToPeers: WARNING: %s: %s", peer.Host, err)
		}
	}
}

// NetRequestPeerStatus asks a peer for its status, which includes the peers
// it knows about.
func (s *State) NetRequestPeerStatus(pr peer.Peer) (peer.PeerStatus, error) {
	s.evHandler("state: NetRequestPeerStatus: started: %s", pr.Host)
	defer s.evHandler("state: NetRequestPeerStatus: completed: %s", pr.Host)

	url := fmt.Sprintf("%s/status", fmt.Sprintf(baseURL, pr.Host))

	var ps peer.PeerStatus
	if err := send(http.MethodGet, url, nil, &ps); err != nil {
		return peer.PeerStatus{}, err
	}

	s.evHandler("state: NetRequestPeerStatus: peer-node[%s]: chain-length[%d]: peer-list[%v]", pr.Host, ps.ChainLength, ps.KnownPeers)

	return ps, nil
}

// NetRequestPeerChain asks a peer for its full chain.
func (s *State) NetRequestPeerChain(pr peer.Peer) ([]database.Block, error) {
	s.evHandler("state: NetRequestPeerChain: started: %s", pr.Host)
	defer s.evHandler("state: NetRequestPeerChain: completed: %s", pr.Host)

	url := fmt.Sprintf("%s/chain", fmt.Sprintf(baseURL, pr.Host))

	var blocks []database.Block
	if err := send(http.MethodGet, url, nil, &blocks); err != nil {
		return nil, err
	}

	s.evHandler("state: NetRequestPeerChain: length[%d]", len(blocks))

	return blocks, nil
}

// NetRequestPeerMempool asks the peer for the transactions in their mempool.
func (s *State) NetRequestPeerMempool(pr peer.Peer) ([]database.Tx, error) {
	s.evHandler("state: NetRequestPeerMempool: started: %s", pr.Host)
	defer s.evHandler("state: NetRequestPeerMempool: completed: %s", pr.Host)

	url := fmt.Sprintf("%s/tx/list", fmt.Sprintf(baseURL, pr.Host))

	var mempool []database.Tx
	if err := send(http.MethodGet, url, nil, &mempool); err != nil {
		return nil, err
	}

	s.evHandler("state: NetRequestPeerMempool: len[%d]", len(mempool))

	return mempool, nil
}

// NetRequestAddPeer tells a peer about this node so it can share with it.
func (s *State) NetRequestAddPeer(pr peer.Peer) error {
	s.evHandler("state: NetRequestAddPeer: started: %s", pr.Host)
	defer s.evHandler("state: NetRequestAddPeer: completed: %s", pr.Host)

	url := fmt.Sprintf("%s/peers", fmt.Sprintf(baseURL, pr.Host))

	return send(http.MethodPost, url, peer.New(s.host), nil)
}

// =============================================================================

// send is a helper function to send an HTTP request to a node.
func send(method string, url string, dataSend any, dataRecv any) error {
	var body io.Reader
	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		var errResp struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(msg, &errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode, errResp.Message)
		}

		return errors.New(string(msg))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}
