package errutil_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/nudgebot/pkg/utils/errutil"
	"github.com/secmon-lab/nudgebot/pkg/utils/logging"
)

func TestHandle(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		gt.NoError(t, errutil.Handle(context.Background(), nil, "unused"))
	})

	t.Run("logs goerr values and returns the error", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := logging.With(context.Background(), logging.New(&buf, slog.LevelInfo, logging.FormatJSON))

		err := goerr.New("boom", goerr.V("user_id", "U123"))
		got := errutil.Handle(ctx, err, "failed to do something")

		gt.Value(t, got).Equal(error(err))
		gt.String(t, buf.String()).Contains("failed to do something")
		gt.String(t, buf.String()).Contains("U123")
	})
}

func TestHandleHTTP(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.With(context.Background(), logging.New(&buf, slog.LevelInfo, logging.FormatJSON))

	rec := httptest.NewRecorder()
	errutil.HandleHTTP(ctx, rec, errors.New("bad input"), http.StatusBadRequest)

	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	gt.String(t, rec.Body.String()).Contains("bad input")
	gt.String(t, buf.String()).Contains(`"status":400`)
}
