package database_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/wallet"
	"github.com/ethereum/go-ethereum/crypto"
)

func Test_Balance(t *testing.T) {
	gen := genesis.Default()

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to load the private key: %s", err)
	}
	alice := wallet.FromPrivateKey(pk)

	bob, err := wallet.New()
	if err != nil {
		t.Fatalf("Should be able to create a wallet: %s", err)
	}

	miner, err := wallet.New()
	if err != nil {
		t.Fatalf("Should be able to create a wallet: %s", err)
	}

	chain := database.NewChain(gen)

	t.Log("Given the need to replay balances from the chain.")
	{
		t.Logf("\tTest 0:\tWhen no transactions have been mined.")
		{
			if bal := chain.Balance(alice.AccountID()); bal != gen.StartingBalance {
				t.Fatalf("\t%s\tTest 0:\tShould get the starting balance, got %d.", failed, bal)
			}
			t.Logf("\t%s\tTest 0:\tShould get the starting balance.", success)
		}

		t.Logf("\tTest 1:\tWhen alice sends 50 to bob.")
		{
			tx, err := alice.CreateTransaction(bob.AccountID(), 50, chain)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to create the transaction: %s", failed, err)
			}

			chain = mine(t, chain, tx, database.NewRewardTx(miner.AccountID(), gen.MiningReward))

			exp := map[database.AccountID]uint64{
				alice.AccountID(): 950,
				bob.AccountID():   1050,
				miner.AccountID(): 1050,
			}
			for accountID, bal := range exp {
				if got := chain.Balance(accountID); got != bal {
					t.Logf("\t%s\tTest 1:\tgot: %d", failed, got)
					t.Logf("\t%s\tTest 1:\texp: %d", failed, bal)
					t.Fatalf("\t%s\tTest 1:\tShould get the right balance for %s.", failed, accountID)
				}
			}
			t.Logf("\t%s\tTest 1:\tShould get the right balances.", success)
		}

		t.Logf("\tTest 2:\tWhen bob sends 30 back to alice.")
		{
			tx, err := bob.CreateTransaction(alice.AccountID(), 30, chain)
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to create the transaction: %s", failed, err)
			}

			if tx.Input.Amount != 1050 {
				t.Fatalf("\t%s\tTest 2:\tShould use the replayed balance as the input amount, got %d.", failed, tx.Input.Amount)
			}
			t.Logf("\t%s\tTest 2:\tShould use the replayed balance as the input amount.", success)

			chain = mine(t, chain, tx, database.NewRewardTx(miner.AccountID(), gen.MiningReward))

			exp := map[database.AccountID]uint64{
				alice.AccountID(): 980,
				bob.AccountID():   1020,
				miner.AccountID(): 1100,
			}
			for accountID, bal := range exp {
				if got := chain.Balance(accountID); got != bal {
					t.Logf("\t%s\tTest 2:\tgot: %d", failed, got)
					t.Logf("\t%s\tTest 2:\texp: %d", failed, bal)
					t.Fatalf("\t%s\tTest 2:\tShould get the right balance for %s.", failed, accountID)
				}
			}
			t.Logf("\t%s\tTest 2:\tShould get the right balances.", success)

			if chain.Balance(alice.AccountID()) != chain.Balance(alice.AccountID()) {
				t.Fatalf("\t%s\tTest 2:\tShould get the same balance on every replay.", failed)
			}
		}

		t.Logf("\tTest 3:\tWhen validating the transaction data.")
		{
			if err := database.ValidateTransactionData(chain); err != nil {
				t.Fatalf("\t%s\tTest 3:\tShould accept the transaction data: %s", failed, err)
			}
			t.Logf("\t%s\tTest 3:\tShould accept the transaction data.", success)

			if err := database.ValidateChain(chain); err != nil {
				t.Fatalf("\t%s\tTest 3:\tShould accept the chain: %s", failed, err)
			}
			t.Logf("\t%s\tTest 3:\tShould accept the chain.", success)
		}
	}
}

func Test_ValidateTransactionData(t *testing.T) {
	gen := genesis.Default()
	miner := database.AccountID("0x6Fe6CF3c8fF57c58d24BfC869668F48BCbDb3BD9")

	type table struct {
		name string
		txs  func(t *testing.T) []database.Tx
		ok   bool
	}

	tt := []table{
		{
			name: "valid",
			txs: func(t *testing.T) []database.Tx {
				return []database.Tx{signedTx(t, to, 50, 1000), database.NewRewardTx(miner, gen.MiningReward)}
			},
			ok: true,
		},
		{
			name: "rewardOnly",
			txs: func(t *testing.T) []database.Tx {
				return []database.Tx{database.NewRewardTx(miner, gen.MiningReward)}
			},
			ok: true,
		},
		{
			name: "twoRewards",
			txs: func(t *testing.T) []database.Tx {
				return []database.Tx{database.NewRewardTx(miner, gen.MiningReward), database.NewRewardTx(miner, gen.MiningReward)}
			},
		},
		{
			name: "wrongReward",
			txs: func(t *testing.T) []database.Tx {
				return []database.Tx{database.NewRewardTx(miner, gen.MiningReward+1)}
			},
		},
		{
			name: "wrongInputAmount",
			txs: func(t *testing.T) []database.Tx {
				return []database.Tx{signedTx(t, to, 50, 9000)}
			},
		},
		{
			name: "sameSenderTwice",
			txs: func(t *testing.T) []database.Tx {
				return []database.Tx{signedTx(t, to, 50, 1000), signedTx(t, to2, 50, 1000)}
			},
		},
		{
			name: "duplicateTx",
			txs: func(t *testing.T) []database.Tx {
				tx := signedTx(t, to, 50, 1000)
				return []database.Tx{tx, tx}
			},
		},
		{
			name: "tamperedOutput",
			txs: func(t *testing.T) []database.Tx {
				tx := signedTx(t, to, 50, 1000)
				tx.OutputMap[to] = 500
				tx.OutputMap[from] = 500
				return []database.Tx{tx}
			},
		},
	}

	t.Log("Given the need to validate the transactions embedded in a chain.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				chain := mine(t, database.NewChain(gen), tst.txs(t)...)

				err := database.ValidateTransactionData(chain)
				switch {
				case tst.ok && err != nil:
					t.Fatalf("\t%s\tTest %d:\tShould accept the transaction data: %s", failed, testID, err)
				case !tst.ok && !errors.Is(err, database.ErrInvalidTransaction):
					t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, err)
					t.Fatalf("\t%s\tTest %d:\tShould reject the transaction data.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould get back the right validation result.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_ReplayedTransaction(t *testing.T) {
	gen := genesis.Default()

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to load the private key: %s", err)
	}
	alice := wallet.FromPrivateKey(pk)

	bob, err := wallet.New()
	if err != nil {
		t.Fatalf("Should be able to create a wallet: %s", err)
	}

	t.Log("Given the need to reject a mined transaction included again.")
	{
		chain := database.NewChain(gen)

		tx1, err := alice.CreateTransaction(bob.AccountID(), 50, chain)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create the transaction: %s", failed, err)
		}
		chain = mine(t, chain, tx1)

		tx2, err := bob.CreateTransaction(alice.AccountID(), 50, chain)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create the transaction: %s", failed, err)
		}
		chain = mine(t, chain, tx2)

		if bal := chain.Balance(alice.AccountID()); bal != tx1.Input.Amount {
			t.Fatalf("\t%s\tShould get alice back to the original input amount, got %d.", failed, bal)
		}
		t.Logf("\t%s\tShould get alice back to the original input amount.", success)

		if err := database.ValidateTransactionData(chain); err != nil {
			t.Fatalf("\t%s\tShould accept the honest chain: %s", failed, err)
		}
		t.Logf("\t%s\tShould accept the honest chain.", success)

		replayed := mine(t, chain, tx1)

		if err := database.ValidateChain(replayed); err != nil {
			t.Fatalf("\t%s\tShould build a structurally valid chain: %s", failed, err)
		}

		if err := database.ValidateTransactionData(replayed); !errors.Is(err, database.ErrInvalidTransaction) {
			t.Logf("\t%s\tgot: %v", failed, err)
			t.Fatalf("\t%s\tShould reject the replayed transaction.", failed)
		}
		t.Logf("\t%s\tShould reject the replayed transaction.", success)
	}
}

func Test_BalanceDependsOnHistory(t *testing.T) {
	gen := genesis.Default()

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to load the private key: %s", err)
	}
	alice := wallet.FromPrivateKey(pk)

	bob, err := wallet.New()
	if err != nil {
		t.Fatalf("Should be able to create a wallet: %s", err)
	}

	miner, err := wallet.New()
	if err != nil {
		t.Fatalf("Should be able to create a wallet: %s", err)
	}

	t.Log("Given the need to replay balances over the full history.")
	{
		plain := database.NewChain(gen)
		plain = mine(t, plain, database.NewRewardTx(miner.AccountID(), gen.MiningReward))
		plain = mine(t, plain, database.NewRewardTx(miner.AccountID(), gen.MiningReward))

		tx, err := alice.CreateTransaction(bob.AccountID(), 50, database.NewChain(gen))
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create the transaction: %s", failed, err)
		}

		// Same latest block content, but the transfer is inserted into the
		// earlier block.
		history := database.NewChain(gen)
		history = mine(t, history, tx, database.NewRewardTx(miner.AccountID(), gen.MiningReward))
		history = mine(t, history, database.NewRewardTx(miner.AccountID(), gen.MiningReward))

		if bal := plain.Balance(bob.AccountID()); bal != 1000 {
			t.Fatalf("\t%s\tShould get bob's starting balance without the transfer, got %d.", failed, bal)
		}
		t.Logf("\t%s\tShould get bob's starting balance without the transfer.", success)

		if bal := history.Balance(bob.AccountID()); bal != 1050 {
			t.Fatalf("\t%s\tShould include the earlier transfer in bob's later balance, got %d.", failed, bal)
		}
		t.Logf("\t%s\tShould include the earlier transfer in bob's later balance.", success)

		if bal := history.Balance(alice.AccountID()); bal != 950 {
			t.Fatalf("\t%s\tShould include the earlier transfer in alice's later balance, got %d.", failed, bal)
		}
		t.Logf("\t%s\tShould include the earlier transfer in alice's later balance.", success)
	}
}
