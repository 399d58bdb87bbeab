package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ardanlabs/powchain/business/web/errs"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/stretchr/testify/require"
)

func TestNewTrustedFromDomain(t *testing.T) {
	type table struct {
		name   string
		err    error
		status int
	}

	tt := []table{
		{name: "stale", err: state.ErrStaleMining, status: http.StatusConflict},
		{name: "empty", err: state.ErrNoTransactions, status: http.StatusConflict},
		{name: "short", err: fmt.Errorf("replace: %w", database.ErrChainTooShort), status: http.StatusNotAcceptable},
		{name: "structure", err: database.ErrInvalidChainStructure, status: http.StatusNotAcceptable},
		{name: "difficulty", err: database.ErrInvalidDifficulty, status: http.StatusNotAcceptable},
		{name: "funds", err: fmt.Errorf("%w: %w", database.ErrInvalidTransaction, database.ErrInsufficientFunds), status: http.StatusBadRequest},
		{name: "unknown", err: errors.New("boom"), status: http.StatusBadRequest},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			err := errs.NewTrustedFromDomain(tst.err)

			trusted := errs.GetTrusted(fmt.Errorf("handler: %w", err))
			require.NotNil(t, trusted, "Should find the trusted error when wrapped.")
			require.Equal(t, tst.status, trusted.Status, "Should map the error kind to the right status.")
			require.ErrorIs(t, err, tst.err, "Should keep the original error.")
		}

		t.Run(tst.name, f)
	}
}
