// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/powchain/app/services/node/handlers/v1/private"
	"github.com/ardanlabs/powchain/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/events"
	"github.com/ardanlabs/powchain/foundation/nameservice"
	"github.com/ardanlabs/powchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/blocks", pbl.Blocks)
	app.Handle(http.MethodPost, version, "/mine", pbl.Mine)
	app.Handle(http.MethodGet, version, "/mine-transactions", pbl.MineTransactions)
	app.Handle(http.MethodPost, version, "/transact", pbl.Transact)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.SubmitWalletTransaction)
	app.Handle(http.MethodGet, version, "/transaction-pool-map", pbl.Mempool)
	app.Handle(http.MethodGet, version, "/wallet-info", pbl.WalletInfo)
	app.Handle(http.MethodGet, version, "/balance/:address", pbl.Balance)
	app.Handle(http.MethodGet, version, "/known-addresses", pbl.KnownAddresses)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
	}

	app.Handle(http.MethodGet, version, "/node/status", prv.Status)
	app.Handle(http.MethodGet, version, "/node/chain", prv.Chain)
	app.Handle(http.MethodPost, version, "/node/chain/propose", prv.ProposeChain)
	app.Handle(http.MethodPost, version, "/node/tx/submit", prv.SubmitNodeTransaction)
	app.Handle(http.MethodGet, version, "/node/tx/list", prv.Mempool)
	app.Handle(http.MethodPost, version, "/node/peers", prv.AddPeer)
}
