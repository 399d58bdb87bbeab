// Package wallet holds a key pair and produces signed transactions for the
// account derived from it.
package wallet

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet represents an account capable of signing transactions. The balance
// is never stored, it is replayed from the chain on demand.
type Wallet struct {
	privateKey *ecdsa.PrivateKey
	accountID  database.AccountID
}

// New constructs a wallet with a freshly generated key pair.
func New() (*Wallet, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}

	return FromPrivateKey(privateKey), nil
}

// FromPrivateKey constructs a wallet for an existing private key.
func FromPrivateKey(privateKey *ecdsa.PrivateKey) *Wallet {
	return &Wallet{
		privateKey: privateKey,
		accountID:  database.PublicKeyToAccountID(privateKey.PublicKey),
	}
}

// Load constructs a wallet from a hex-encoded private key file.
func Load(path string) (*Wallet, error) {
	privateKey, err := crypto.LoadECDSA(path)
	if err != nil {
		return nil, fmt.Errorf("loading private key: %w", err)
	}

	return FromPrivateKey(privateKey), nil
}

// Save writes the private key to the specified file.
func (w *Wallet) Save(path string) error {
	return crypto.SaveECDSA(path, w.privateKey)
}

// AccountID returns the address of the wallet.
func (w *Wallet) AccountID() database.AccountID {
	return w.accountID
}

// Balance replays the chain to compute the wallet's balance.
func (w *Wallet) Balance(chain database.Chain) uint64 {
	return chain.Balance(w.accountID)
}

// CreateTransaction constructs and signs a transaction sending amount to the
// recipient. The balance is replayed from the specified chain.
func (w *Wallet) CreateTransaction(to database.AccountID, amount uint64, chain database.Chain) (database.Tx, error) {
	tx, err := database.NewTx(w.accountID, to, amount, w.Balance(chain))
	if err != nil {
		return database.Tx{}, err
	}

	if err := tx.Sign(w.privateKey); err != nil {
		return database.Tx{}, err
	}

	return tx, nil
}

// UpdateTransaction merges another allocation into a pending transaction
// created by this wallet and signs it again.
func (w *Wallet) UpdateTransaction(tx *database.Tx, to database.AccountID, amount uint64) error {
	return tx.Update(w.privateKey, to, amount)
}
