package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	httpctrl "github.com/secmon-lab/nudgebot/pkg/controller/http"
	"github.com/secmon-lab/nudgebot/pkg/service/worker"
	"github.com/secmon-lab/nudgebot/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var jobToken string
	var schedule string
	var appCfg appConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("NUDGEBOT_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "job-token",
			Usage:       "Bearer token for POST /jobs/scan; the endpoint is disabled when empty",
			Category:    "Scan",
			Sources:     cli.EnvVars("NUDGEBOT_JOB_TOKEN"),
			Destination: &jobToken,
		},
		&cli.StringFlag{
			Name:        "scan-schedule",
			Usage:       "Cron expression for the in-process scan (e.g. \"0 9 * * *\"); disabled when empty",
			Category:    "Scan",
			Sources:     cli.EnvVars("NUDGEBOT_SCAN_SCHEDULE"),
			Destination: &schedule,
		},
	}
	flags = append(flags, appCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server for Slack webhooks and scan jobs",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			a, err := appCfg.build(ctx, c)
			if err != nil {
				return err
			}
			defer a.Close()

			var httpOpts []httpctrl.Options

			signingSecret, err := appCfg.signingSecret(ctx, a)
			if err != nil {
				logging.Default().Warn("Slack signing secret unavailable", "error", err)
			}
			if signingSecret != "" {
				httpOpts = append(httpOpts, httpctrl.WithSlackWebhook(a.uc.Webhook, signingSecret))
				logging.Default().Info("Slack webhook handler enabled")
			} else {
				logging.Default().Warn("Slack signing secret not configured, webhook endpoints are disabled")
			}

			if jobToken != "" {
				httpOpts = append(httpOpts, httpctrl.WithScanJob(a.uc.Scan, jobToken))
				logging.Default().Info("Scan job endpoint enabled")
			}

			var scanWorker *worker.ScanWorker
			if schedule != "" {
				w, err := worker.NewScanWorker(a.uc.Scan, schedule)
				if err != nil {
					return goerr.Wrap(err, "failed to create scan worker")
				}
				if err := w.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start scan worker")
				}
				scanWorker = w
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				if scanWorker != nil {
					scanWorker.Stop()
				}
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				if scanWorker != nil {
					scanWorker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
