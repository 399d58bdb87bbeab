package public

import (
	"github.com/ardanlabs/powchain/business/sys/validate"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

type mine struct {
	Data []database.Tx `json:"data" validate:"required"`
}

// Validate checks the data in the model is considered clean.
func (m mine) Validate() error {
	return validate.Check(m)
}

type transact struct {
	Recipient database.AccountID `json:"recipient" validate:"required,accountid"`
	Amount    uint64             `json:"amount" validate:"required,gt=0"`
}

// Validate checks the data in the model is considered clean.
func (t transact) Validate() error {
	return validate.Check(t)
}

type walletInfo struct {
	Address database.AccountID `json:"address"`
	Name    string             `json:"name"`
	Balance uint64             `json:"balance"`
}

type balance struct {
	Address database.AccountID `json:"address"`
	Name    string             `json:"name"`
	Balance uint64             `json:"balance"`
}

type knownAddress struct {
	Address database.AccountID `json:"address"`
	Name    string             `json:"name"`
}
