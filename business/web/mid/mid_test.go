package mid_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/powchain/business/sys/validate"
	"github.com/ardanlabs/powchain/business/web/errs"
	"github.com/ardanlabs/powchain/business/web/mid"
	"github.com/ardanlabs/powchain/foundation/web"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestErrors(t *testing.T) {
	type table struct {
		name    string
		err     error
		status  int
		message string
		fields  bool
	}

	tt := []table{
		{name: "trusted", err: errs.NewTrusted(errors.New("bad tx"), http.StatusBadRequest), status: http.StatusBadRequest, message: "bad tx"},
		{name: "conflict", err: errs.NewTrusted(errors.New("stale"), http.StatusConflict), status: http.StatusConflict, message: "stale"},
		{name: "fields", err: validate.FieldErrors{{Field: "amount", Err: "amount is a required field"}}, status: http.StatusBadRequest, message: "data validation error", fields: true},
		{name: "untrusted", err: errors.New("database exploded"), status: http.StatusInternalServerError, message: http.StatusText(http.StatusInternalServerError)},
		{name: "panic", status: http.StatusInternalServerError, message: http.StatusText(http.StatusInternalServerError)},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			app := web.NewApp(make(chan os.Signal, 1), mid.Logger(zap.NewNop().Sugar()), mid.Errors(zap.NewNop().Sugar()), mid.Metrics(), mid.Cors("*"), mid.Panics())

			h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				if tst.err == nil {
					panic("handler blew up")
				}
				return tst.err
			}
			app.Handle(http.MethodGet, "v1", "/fail", h)

			w := httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/fail", nil))

			require.Equal(t, tst.status, w.Code, "Should get the mapped status code.")
			require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"), "Should set the CORS headers.")

			var resp errs.Response
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			require.Equal(t, "error", resp.Type)
			require.Equal(t, tst.message, resp.Message)
			require.Equal(t, tst.fields, len(resp.Fields) > 0)
		}

		t.Run(tst.name, f)
	}
}
