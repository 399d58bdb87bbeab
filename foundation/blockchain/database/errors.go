package database

import "errors"

// Set of error kinds produced by chain and transaction validation. Callers
// use errors.Is to classify a failure. None of these are fatal, the caller
// keeps its prior state.
var (
	ErrInvalidChainStructure = errors.New("invalid chain structure")
	ErrInvalidDifficulty     = errors.New("invalid difficulty")
	ErrChainTooShort         = errors.New("chain is not longer than the current chain")

	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInsufficientFunds  = errors.New("amount exceeds balance")
	ErrInvalidOutputTotal = errors.New("invalid output total")
	ErrInvalidSignature   = errors.New("invalid signature")
)
