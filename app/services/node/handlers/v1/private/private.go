// Package private maintains the group of handlers for node to node access.
package private

import (
	"cmp"
	"context"
	"net/http"
	"slices"

	"github.com/ardanlabs/powchain/business/web/errs"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveStatus(), http.StatusOK)
}

// Chain returns the full chain so a peer can replace its own.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveChain().Blocks, http.StatusOK)
}

// ProposeChain takes a chain received from a peer, validates it and if that
// passes and it is longer, replaces the local chain.
func (h Handlers) ProposeChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var blocks []database.Block
	if err := web.Decode(r, &blocks); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := h.State.ReplaceChain(blocks); err != nil {
		h.Log.Infow("propose chain", "traceid", v.TraceID, "status", "rejected", "length", len(blocks), "ERROR", err)
		return errs.NewTrustedFromDomain(err)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "accepted",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitNodeTransaction adds new node transactions to the mempool.
func (h Handlers) SubmitNodeTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Decode the JSON in the post call into a transaction.
	var tx database.Tx
	if err := web.Decode(r, &tx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	// Ask the state package to add this transaction to the mempool and perform
	// any other business logic.
	h.Log.Infow("add tran", "traceid", v.TraceID, "tx", tx, "amount", tx.Input.Amount)
	if err := h.State.UpsertNodeTransaction(tx); err != nil {
		return errs.NewTrustedFromDomain(err)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "transactions added to mempool",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions, oldest first.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	mempool := h.State.RetrieveMempool()

	txs := make([]database.Tx, 0, len(mempool))
	for _, tx := range mempool {
		txs = append(txs, tx)
	}
	slices.SortFunc(txs, func(a, b database.Tx) int {
		return cmp.Or(
			cmp.Compare(a.Input.Timestamp, b.Input.Timestamp),
			cmp.Compare(a.ID, b.ID),
		)
	})

	return web.Respond(ctx, w, txs, http.StatusOK)
}

// AddPeer adds a new node to this node's known peers.
func (h Handlers) AddPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var pr peer.Peer
	if err := web.Decode(r, &pr); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	added := h.State.AddKnownPeer(peer.New(pr.Host))

	resp := struct {
		Added bool `json:"added"`
	}{
		Added: added,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
