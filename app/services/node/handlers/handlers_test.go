package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"slices"
	"testing"

	"github.com/ardanlabs/powchain/app/services/node/handlers"
	"github.com/ardanlabs/powchain/business/web/errs"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/blockchain/wallet"
	"github.com/ardanlabs/powchain/foundation/events"
	"github.com/ardanlabs/powchain/foundation/nameservice"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const recipient = database.AccountID("0xbEE6ACE826eC3DE1B6349888B9151B92522F7F76")

func newState(t *testing.T, host string) *state.State {
	t.Helper()

	w, err := wallet.New()
	require.NoError(t, err)

	st, err := state.New(state.Config{
		MinerWallet:    w,
		Host:           host,
		Genesis:        genesis.Default(),
		SelectStrategy: "oldest",
		KnownPeers:     peer.NewPeerSet(),
	})
	require.NoError(t, err)

	return st
}

func newMuxConfig(t *testing.T, st *state.State) handlers.MuxConfig {
	t.Helper()

	ns, err := nameservice.New(t.TempDir())
	require.NoError(t, err)

	return handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		State:    st,
		NS:       ns,
		Evts:     events.New(),
	}
}

// do performs the request against the handler and decodes the response
// into resp when it is provided.
func do(t *testing.T, h http.Handler, method string, path string, body any, resp any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	r := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if resp != nil {
		require.NoError(t, json.NewDecoder(w.Body).Decode(resp), "Should be able to decode the response for %s %s.", method, path)
	}

	return w.Code
}

// =============================================================================

func Test_PublicAPI(t *testing.T) {
	st := newState(t, "localhost:9080")
	app := handlers.PublicMux(newMuxConfig(t, st))

	var blocks []database.Block
	code := do(t, app, http.MethodGet, "/v1/blocks", nil, &blocks)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, blocks, 1, "Should start with the genesis block.")
	require.Equal(t, database.GenesisHash, blocks[0].Hash)

	var gen genesis.Genesis
	code = do(t, app, http.MethodGet, "/v1/genesis", nil, &gen)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, genesis.Default().MiningReward, gen.MiningReward)

	var tx database.Tx
	code = do(t, app, http.MethodPost, "/v1/transact", map[string]any{"recipient": recipient, "amount": 50}, &tx)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, uint64(50), tx.OutputMap[recipient])
	require.Equal(t, uint64(950), tx.OutputMap[st.RetrieveWalletAccountID()])

	var pool map[string]database.Tx
	code = do(t, app, http.MethodGet, "/v1/transaction-pool-map", nil, &pool)
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, pool, tx.ID)

	code = do(t, app, http.MethodGet, "/v1/mine-transactions", nil, &blocks)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, blocks, 2, "Should have mined a block.")
	require.Len(t, blocks[1].Data, 2, "Should hold the transaction and the reward.")
	require.Zero(t, st.QueryMempoolLength(), "Should clear the mined transaction from the pool.")

	var bal struct {
		Address database.AccountID `json:"address"`
		Balance uint64             `json:"balance"`
	}
	code = do(t, app, http.MethodGet, "/v1/balance/"+string(recipient), nil, &bal)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, uint64(1050), bal.Balance)

	code = do(t, app, http.MethodGet, "/v1/wallet-info", nil, &bal)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, st.RetrieveWalletAccountID(), bal.Address)
	require.Equal(t, uint64(1000), bal.Balance, "Should get the change plus the reward.")

	var known []struct {
		Address database.AccountID `json:"address"`
	}
	code = do(t, app, http.MethodGet, "/v1/known-addresses", nil, &known)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, known, 2)

	code = do(t, app, http.MethodPost, "/v1/mine", map[string]any{"data": []database.Tx{}}, &blocks)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, blocks, 3, "Should mine a block holding the provided data.")
}

func Test_PublicAPIErrors(t *testing.T) {
	st := newState(t, "localhost:9080")
	app := handlers.PublicMux(newMuxConfig(t, st))

	type table struct {
		name   string
		method string
		path   string
		body   any
		status int
		fields bool
	}

	tt := []table{
		{name: "badRecipient", method: http.MethodPost, path: "/v1/transact", body: map[string]any{"recipient": "bob", "amount": 10}, status: http.StatusBadRequest, fields: true},
		{name: "noAmount", method: http.MethodPost, path: "/v1/transact", body: map[string]any{"recipient": recipient}, status: http.StatusBadRequest, fields: true},
		{name: "insufficientFunds", method: http.MethodPost, path: "/v1/transact", body: map[string]any{"recipient": recipient, "amount": 5000}, status: http.StatusBadRequest},
		{name: "unknownField", method: http.MethodPost, path: "/v1/transact", body: map[string]any{"to": recipient}, status: http.StatusBadRequest},
		{name: "badAddress", method: http.MethodGet, path: "/v1/balance/bob", status: http.StatusBadRequest},
		{name: "unsignedTx", method: http.MethodPost, path: "/v1/tx/submit", body: database.Tx{ID: "1"}, status: http.StatusBadRequest},
		{name: "mineReward", method: http.MethodPost, path: "/v1/mine", body: map[string]any{"data": []database.Tx{database.NewRewardTx(recipient, 1)}}, status: http.StatusBadRequest},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			var resp errs.Response
			code := do(t, app, tst.method, tst.path, tst.body, &resp)

			require.Equal(t, tst.status, code)
			require.Equal(t, "error", resp.Type)
			require.NotEmpty(t, resp.Message)
			require.Equal(t, tst.fields, len(resp.Fields) > 0)
		}

		t.Run(tst.name, f)
	}

	require.Equal(t, 1, st.RetrieveChain().Len(), "Should not change the chain on failures.")
	require.Zero(t, st.QueryMempoolLength(), "Should not change the pool on failures.")
}

func Test_SubmitWalletTransaction(t *testing.T) {
	st := newState(t, "localhost:9080")
	app := handlers.PublicMux(newMuxConfig(t, st))

	client, err := wallet.New()
	require.NoError(t, err)

	tx, err := client.CreateTransaction(recipient, 25, st.RetrieveChain())
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
	}
	code := do(t, app, http.MethodPost, "/v1/tx/submit", tx, &resp)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 1, st.QueryMempoolLength())

	require.NoError(t, client.UpdateTransaction(&tx, st.RetrieveWalletAccountID(), 5))
	code = do(t, app, http.MethodPost, "/v1/tx/submit", tx, &resp)
	require.Equal(t, http.StatusOK, code, "Should accept the updated transaction.")
	require.Equal(t, 1, st.QueryMempoolLength(), "Should replace the pending transaction.")

	other, err := client.CreateTransaction(recipient, 1, st.RetrieveChain())
	require.NoError(t, err)

	var er errs.Response
	code = do(t, app, http.MethodPost, "/v1/tx/submit", other, &er)
	require.Equal(t, http.StatusBadRequest, code, "Should reject a second pending transaction.")
}

func Test_MineSubmittedTransaction(t *testing.T) {
	st := newState(t, "localhost:9080")
	app := handlers.PublicMux(newMuxConfig(t, st))

	client, err := wallet.New()
	require.NoError(t, err)

	tx, err := client.CreateTransaction(recipient, 25, st.RetrieveChain())
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
	}
	code := do(t, app, http.MethodPost, "/v1/tx/submit", tx, &resp)
	require.Equal(t, http.StatusOK, code)

	var blocks []database.Block
	code = do(t, app, http.MethodPost, "/v1/mine", map[string]any{"data": []database.Tx{tx}}, &blocks)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, blocks, 2)
	require.Zero(t, st.QueryMempoolLength(), "Should clear the mined transaction from the pool.")

	next, err := client.CreateTransaction(recipient, 5, st.RetrieveChain())
	require.NoError(t, err)

	code = do(t, app, http.MethodPost, "/v1/tx/submit", next, &resp)
	require.Equal(t, http.StatusOK, code, "Should accept the sender's next transaction.")

	var er errs.Response
	code = do(t, app, http.MethodPost, "/v1/mine", map[string]any{"data": []database.Tx{tx}}, &er)
	require.Equal(t, http.StatusBadRequest, code, "Should not mine a transaction twice.")
	require.Equal(t, 2, st.RetrieveChain().Len())
}

func Test_PrivateAPI(t *testing.T) {
	local := newState(t, "localhost:9080")
	remote := newState(t, "localhost:9180")

	app := handlers.PrivateMux(newMuxConfig(t, local))

	_, err := remote.MineTransactions(context.Background())
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
	}
	code := do(t, app, http.MethodPost, "/v1/node/chain/propose", remote.RetrieveChain().Blocks, &resp)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "accepted", resp.Status)
	require.Equal(t, 2, local.RetrieveChain().Len(), "Should replace the chain.")

	var er errs.Response
	code = do(t, app, http.MethodPost, "/v1/node/chain/propose", remote.RetrieveChain().Blocks, &er)
	require.Equal(t, http.StatusNotAcceptable, code, "Should reject a chain that is not longer.")

	var blocks []database.Block
	code = do(t, app, http.MethodGet, "/v1/node/chain", nil, &blocks)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, blocks, 2)

	client, err := wallet.New()
	require.NoError(t, err)

	tx, err := client.CreateTransaction(recipient, 10, local.RetrieveChain())
	require.NoError(t, err)

	code = do(t, app, http.MethodPost, "/v1/node/tx/submit", tx, &resp)
	require.Equal(t, http.StatusOK, code)

	var txs []database.Tx
	code = do(t, app, http.MethodGet, "/v1/node/tx/list", nil, &txs)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, txs, 1)
	require.Equal(t, tx.ID, txs[0].ID)

	var added struct {
		Added bool `json:"added"`
	}
	code = do(t, app, http.MethodPost, "/v1/node/peers", peer.New("localhost:9280"), &added)
	require.Equal(t, http.StatusOK, code)
	require.True(t, added.Added)

	var status peer.PeerStatus
	code = do(t, app, http.MethodGet, "/v1/node/status", nil, &status)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 2, status.ChainLength)
	require.Equal(t, blocks[1].Hash, status.LatestBlockHash)
	require.Contains(t, status.KnownPeers, peer.New("localhost:9280"))
}

func Test_PrivateMempoolOrder(t *testing.T) {
	st := newState(t, "localhost:9080")
	app := handlers.PrivateMux(newMuxConfig(t, st))

	// The timestamp isn't covered by the signature, so transactions signed
	// at the same millisecond can be simulated.
	const signedAt = int64(1_700_000_000_000)

	var exp []string
	for range 5 {
		client, err := wallet.New()
		require.NoError(t, err)

		tx, err := client.CreateTransaction(recipient, 10, st.RetrieveChain())
		require.NoError(t, err)
		tx.Input.Timestamp = signedAt

		var resp struct {
			Status string `json:"status"`
		}
		code := do(t, app, http.MethodPost, "/v1/node/tx/submit", tx, &resp)
		require.Equal(t, http.StatusOK, code)

		exp = append(exp, tx.ID)
	}
	slices.Sort(exp)

	for range 3 {
		var txs []database.Tx
		code := do(t, app, http.MethodGet, "/v1/node/tx/list", nil, &txs)
		require.Equal(t, http.StatusOK, code)

		got := make([]string, len(txs))
		for i, tx := range txs {
			got[i] = tx.ID
		}
		require.Equal(t, exp, got, "Should order transactions signed at the same time by id.")
	}
}
