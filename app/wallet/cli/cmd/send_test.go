package cmd

import (
	"context"
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/wallet"
	"github.com/stretchr/testify/require"
)

const (
	bob   = database.AccountID("0xbEE6ACE826eC3DE1B6349888B9151B92522F7F76")
	cesar = database.AccountID("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")
)

func Test_BuildTransaction(t *testing.T) {
	w, err := wallet.New()
	require.NoError(t, err)

	chain := database.NewChain(genesis.Default())

	tx, err := buildTransaction(w, chain, nil, bob, 10)
	require.NoError(t, err)
	require.NoError(t, tx.Validate())
	require.Equal(t, uint64(990), tx.OutputMap[w.AccountID()])

	pool := map[string]database.Tx{tx.ID: tx}

	upd, err := buildTransaction(w, chain, pool, cesar, 5)
	require.NoError(t, err)
	require.Equal(t, tx.ID, upd.ID, "Should update the pending transaction.")
	require.Equal(t, uint64(10), upd.OutputMap[bob])
	require.Equal(t, uint64(5), upd.OutputMap[cesar])
	require.Equal(t, uint64(985), upd.OutputMap[w.AccountID()])

	block, err := database.MineBlock(context.Background(), database.MineArgs{
		PrevBlock: chain.LatestBlock(),
		Data:      []database.Tx{upd},
		MineRate:  genesis.Default().MineRate(),
	})
	require.NoError(t, err)
	chain = chain.Append(block)

	next, err := buildTransaction(w, chain, pool, bob, 1)
	require.NoError(t, err)
	require.NotEqual(t, tx.ID, next.ID, "Should not update a transaction built against an old balance.")
	require.Equal(t, uint64(985), next.Input.Amount)
}
