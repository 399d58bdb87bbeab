// Package nameservice reads a folder of private keys and creates a name
// service lookup for the accounts they control.
package nameservice

import (
	"fmt"
	"io/fs"
	"maps"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
)

// keyExt is the extension of the private key files.
const keyExt = ".ecdsa"

// NameService maintains a map of accounts for name lookup.
type NameService struct {
	accounts map[database.AccountID]string
}

// New constructs a name service with the accounts found under the root
// folder. The name of an account is its key file name without extension.
func New(root string) (*NameService, error) {
	ns := NameService{
		accounts: make(map[database.AccountID]string),
	}

	fn := func(fileName string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if d.IsDir() || filepath.Ext(fileName) != keyExt {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return fmt.Errorf("loading %s: %w", fileName, err)
		}

		accountID := database.PublicKeyToAccountID(privateKey.PublicKey)
		ns.accounts[accountID] = strings.TrimSuffix(filepath.Base(fileName), keyExt)

		return nil
	}

	if err := filepath.WalkDir(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified account. Unknown accounts are
// returned as is.
func (ns *NameService) Lookup(accountID database.AccountID) string {
	name, exists := ns.accounts[accountID]
	if !exists {
		return string(accountID)
	}
	return name
}

// Copy returns a copy of the map of names and accounts.
func (ns *NameService) Copy() map[database.AccountID]string {
	return maps.Clone(ns.accounts)
}
