// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ardanlabs/powchain/business/web/errs"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/events"
	"github.com/ardanlabs/powchain/foundation/nameservice"
	"github.com/ardanlabs/powchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of public node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Blocks returns the full chain, genesis block first.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	chain := h.State.RetrieveChain()
	return web.Respond(ctx, w, chain.Blocks, http.StatusOK)
}

// Mine mines a block holding the provided transactions and returns the new
// chain. The data must pass the same transaction rules a peer applies when
// it receives the chain.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req mine
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	block, err := h.State.AddBlock(ctx, req.Data)
	if err != nil {
		return mineError(err)
	}

	h.Log.Infow("mine", "traceid", v.TraceID, "hash", block.Hash, "txs", len(block.Data))

	return web.Respond(ctx, w, h.State.RetrieveChain().Blocks, http.StatusOK)
}

// MineTransactions mines a block with the valid transactions from the
// mempool plus the reward for this node and returns the new chain.
func (h Handlers) MineTransactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	block, err := h.State.MineTransactions(ctx)
	if err != nil {
		return mineError(err)
	}

	h.Log.Infow("mine transactions", "traceid", v.TraceID, "hash", block.Hash, "txs", len(block.Data))

	return web.Respond(ctx, w, h.State.RetrieveChain().Blocks, http.StatusOK)
}

// Transact sends value from this node's wallet. A pending transaction from
// the wallet is updated with the new recipient, otherwise a new transaction
// is created.
func (h Handlers) Transact(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req transact
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	tx, err := h.State.SubmitWalletTransaction(req.Recipient, req.Amount)
	if err != nil {
		return errs.NewTrustedFromDomain(err)
	}

	h.Log.Infow("transact", "traceid", v.TraceID, "tx", tx, "to", h.NS.Lookup(req.Recipient), "amount", req.Amount)

	return web.Respond(ctx, w, tx, http.StatusOK)
}

// SubmitWalletTransaction adds a transaction signed by a client wallet to
// the mempool.
func (h Handlers) SubmitWalletTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var tx database.Tx
	if err := web.Decode(r, &tx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("add user tran", "traceid", v.TraceID, "tx", tx, "from", h.NS.Lookup(tx.Input.Address), "amount", tx.Input.Amount)
	if err := h.State.UpsertWalletTransaction(tx); err != nil {
		return errs.NewTrustedFromDomain(err)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "transactions added to mempool",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions keyed by id.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveMempool(), http.StatusOK)
}

// WalletInfo returns the address and balance of this node's wallet.
func (h Handlers) WalletInfo(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	accountID := h.State.RetrieveWalletAccountID()

	info := walletInfo{
		Address: accountID,
		Name:    h.NS.Lookup(accountID),
		Balance: h.State.QueryBalance(accountID),
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}

// Balance returns the balance for the specified address by replaying the
// chain.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	accountID, err := database.ToAccountID(web.Param(r, "address"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	bal := balance{
		Address: accountID,
		Name:    h.NS.Lookup(accountID),
		Balance: h.State.QueryBalance(accountID),
	}

	return web.Respond(ctx, w, bal, http.StatusOK)
}

// KnownAddresses returns every account that has received value on the
// chain.
func (h Handlers) KnownAddresses(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	addresses := h.State.QueryKnownAddresses()

	known := make([]knownAddress, len(addresses))
	for i, accountID := range addresses {
		known[i] = knownAddress{
			Address: accountID,
			Name:    h.NS.Lookup(accountID),
		}
	}

	return web.Respond(ctx, w, known, http.StatusOK)
}

// =============================================================================

// mineError maps a failed mining attempt. A cancelled request is not a
// client error.
func mineError(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}

	return errs.NewTrustedFromDomain(err)
}
