package database

import (
	"crypto/ecdsa"
	"fmt"
	"maps"
	"math/bits"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/signature"
	"github.com/google/uuid"
)

// Input is the sender side of a transaction. The amount is the sender's
// balance at the time the transaction was created and it must equal the
// total of the output map.
type Input struct {
	Timestamp int64     `json:"timestamp"` // Time the output map was last signed, in milliseconds.
	Address   AccountID `json:"address"`   // Account of the sender, recovered from the signature.
	Amount    uint64    `json:"amount"`    // Sender balance at signing time.
	Signature string    `json:"signature"` // Signature over the output map in the [R|S|V] format.
}

// Tx is a signed transfer of value from one sender to a set of recipients.
// The sender's own entry in the output map is the change left over.
type Tx struct {
	ID        string               `json:"id"`
	Input     Input                `json:"input"`
	OutputMap map[AccountID]uint64 `json:"outputMap"`
}

// NewTx constructs a new unsigned transaction moving amount from the sender
// to the recipient given the sender's current balance.
func NewTx(from AccountID, to AccountID, amount uint64, balance uint64) (Tx, error) {
	if to == "" {
		return Tx{}, fmt.Errorf("%w: missing recipient", ErrInvalidTransaction)
	}

	if from == to {
		return Tx{}, fmt.Errorf("%w: sending money to yourself, from %s, to %s", ErrInvalidTransaction, from, to)
	}

	if amount == 0 {
		return Tx{}, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidTransaction)
	}

	if amount > balance {
		return Tx{}, fmt.Errorf("%w: %w: bal %d, needed %d", ErrInvalidTransaction, ErrInsufficientFunds, balance, amount)
	}

	tx := Tx{
		ID: uuid.NewString(),
		Input: Input{
			Address: from,
			Amount:  balance,
		},
		OutputMap: map[AccountID]uint64{
			to:   amount,
			from: balance - amount,
		},
	}

	return tx, nil
}

// NewRewardTx constructs the transaction that pays the miner of a block.
func NewRewardTx(minerID AccountID, reward uint64) Tx {
	return Tx{
		ID: uuid.NewString(),
		Input: Input{
			Timestamp: time.Now().UnixMilli(),
			Address:   RewardAccountID,
		},
		OutputMap: map[AccountID]uint64{
			minerID: reward,
		},
	}
}

// Sign uses the specified private key to sign the output map. The private
// key must belong to the input address.
func (tx *Tx) Sign(privateKey *ecdsa.PrivateKey) error {
	if PublicKeyToAccountID(privateKey.PublicKey) != tx.Input.Address {
		return fmt.Errorf("%w: private key does not belong to %s", ErrInvalidTransaction, tx.Input.Address)
	}

	v, r, s, err := signature.Sign(tx.OutputMap, privateKey)
	if err != nil {
		return err
	}

	tx.Input.Timestamp = time.Now().UnixMilli()
	tx.Input.Signature = signature.SignatureString(v, r, s)

	return nil
}

// Update adds another recipient allocation to an unmined transaction. The
// amount is taken from the sender's change and the transaction is signed
// again. The transaction is left untouched on failure.
func (tx *Tx) Update(privateKey *ecdsa.PrivateKey, to AccountID, amount uint64) error {
	from := PublicKeyToAccountID(privateKey.PublicKey)

	switch {
	case tx.IsReward():
		return fmt.Errorf("%w: reward transactions can't be updated", ErrInvalidTransaction)
	case from != tx.Input.Address:
		return fmt.Errorf("%w: transaction is not owned by %s", ErrInvalidTransaction, from)
	case to == "":
		return fmt.Errorf("%w: missing recipient", ErrInvalidTransaction)
	case to == from:
		return fmt.Errorf("%w: sending money to yourself, from %s, to %s", ErrInvalidTransaction, from, to)
	case amount == 0:
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidTransaction)
	}

	change := tx.OutputMap[from]
	if amount > change {
		return fmt.Errorf("%w: %w: bal %d, needed %d", ErrInvalidTransaction, ErrInsufficientFunds, change, amount)
	}

	upd := tx.Clone()
	upd.OutputMap[to] += amount
	upd.OutputMap[from] = change - amount

	if err := upd.Sign(privateKey); err != nil {
		return err
	}

	*tx = upd

	return nil
}

// Validate verifies the output map balances against the input amount and
// that the signature over the output map belongs to the input address.
func (tx Tx) Validate() error {
	total, ok := tx.total()
	if !ok || total != tx.Input.Amount {
		return fmt.Errorf("%w: %w: tx[%s] input %d, outputs %d", ErrInvalidTransaction, ErrInvalidOutputTotal, tx.ID, tx.Input.Amount, total)
	}

	v, r, s, err := signature.ToVRSFromHexSignature(tx.Input.Signature)
	if err != nil {
		return fmt.Errorf("%w: %w: tx[%s] %s", ErrInvalidTransaction, ErrInvalidSignature, tx.ID, err)
	}

	if err := signature.VerifySignature(v, r, s); err != nil {
		return fmt.Errorf("%w: %w: tx[%s] %s", ErrInvalidTransaction, ErrInvalidSignature, tx.ID, err)
	}

	address, err := signature.FromAddress(tx.OutputMap, v, r, s)
	if err != nil {
		return fmt.Errorf("%w: %w: tx[%s] %s", ErrInvalidTransaction, ErrInvalidSignature, tx.ID, err)
	}

	if AccountID(address) != tx.Input.Address {
		return fmt.Errorf("%w: %w: tx[%s] signed by %s, not %s", ErrInvalidTransaction, ErrInvalidSignature, tx.ID, address, tx.Input.Address)
	}

	return nil
}

// IsReward reports whether this is a miner reward transaction.
func (tx Tx) IsReward() bool {
	return tx.Input.Address == RewardAccountID
}

// Total returns the sum of all the values in the output map.
func (tx Tx) Total() uint64 {
	total, _ := tx.total()
	return total
}

// Clone returns a deep copy of the transaction.
func (tx Tx) Clone() Tx {
	cpy := tx
	cpy.OutputMap = maps.Clone(tx.OutputMap)
	if cpy.OutputMap == nil {
		cpy.OutputMap = make(map[AccountID]uint64)
	}

	return cpy
}

// Equal performs an exact field comparison of two transactions.
func (tx Tx) Equal(other Tx) bool {
	return tx.ID == other.ID &&
		tx.Input == other.Input &&
		maps.Equal(tx.OutputMap, other.OutputMap)
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:%s", tx.Input.Address, tx.ID)
}

// =============================================================================

// total sums the output map and reports false if the sum overflows.
func (tx Tx) total() (uint64, bool) {
	var total, carry uint64
	for _, value := range tx.OutputMap {
		total, carry = bits.Add64(total, value, 0)
		if carry != 0 {
			return 0, false
		}
	}

	return total, true
}

// validateReward checks the shape of a reward transaction.
func (tx Tx) validateReward(reward uint64) error {
	if len(tx.OutputMap) != 1 {
		return fmt.Errorf("%w: reward tx[%s] must pay exactly one account", ErrInvalidTransaction, tx.ID)
	}

	for _, value := range tx.OutputMap {
		if value != reward {
			return fmt.Errorf("%w: reward tx[%s] pays %d, exp %d", ErrInvalidTransaction, tx.ID, value, reward)
		}
	}

	return nil
}
