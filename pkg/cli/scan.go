package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/nudgebot/pkg/domain/model"
	"github.com/secmon-lab/nudgebot/pkg/usecase"
	"github.com/secmon-lab/nudgebot/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type scanner interface {
	Run(ctx context.Context) (*model.ScanResult, error)
}

// scanReport is the job-style output of a one-shot scan
type scanReport struct {
	StatusCode int `json:"status_code"`
	Body       any `json:"body"`
}

type scanErrorBody struct {
	Error string `json:"error"`
}

func cmdScan() *cli.Command {
	var appCfg appConfig

	return &cli.Command{
		Name:  "scan",
		Usage: "Run the inactivity scan once and print the result as JSON",
		Flags: appCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			a, err := appCfg.build(ctx, c)
			if err != nil {
				return err
			}
			defer a.Close()

			return runScan(ctx, a.uc.Scan, os.Stdout)
		},
	}
}

func runScan(ctx context.Context, s scanner, w io.Writer) error {
	result, runErr := s.Run(ctx)

	report := scanReport{StatusCode: http.StatusOK, Body: result}
	if runErr != nil {
		report = scanReport{
			StatusCode: usecase.StatusOf(runErr),
			Body:       scanErrorBody{Error: runErr.Error()},
		}
	} else {
		logging.Default().Info("Scan completed", "inactive_users", len(result.InactiveUsers))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return goerr.Wrap(err, "failed to write scan result")
	}

	if runErr != nil {
		return goerr.Wrap(runErr, "scan failed")
	}
	return nil
}
