package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/nudgebot/pkg/domain/model"
	"github.com/secmon-lab/nudgebot/pkg/usecase"
	"github.com/secmon-lab/nudgebot/pkg/utils/errutil"
	"github.com/secmon-lab/nudgebot/pkg/utils/safe"
)

// ScanUseCase runs one inactivity scan
type ScanUseCase interface {
	Run(ctx context.Context) (*model.ScanResult, error)
}

// scanJobHandler runs a scan synchronously and responds with its result
func scanJobHandler(scanUC ScanUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		result, err := scanUC.Run(ctx)
		if err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "scan job failed"), usecase.StatusOf(err))
			return
		}

		data, err := json.Marshal(result)
		if err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to marshal scan result"), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		safe.Write(ctx, w, data)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	safe.Write(r.Context(), w, []byte(`{"status":"ok"}`))
}
