package worker

import (
	"context"
	"time"

	"github.com/adhocore/gronx"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/nudgebot/pkg/domain/model"
	"github.com/secmon-lab/nudgebot/pkg/utils/errutil"
	"github.com/secmon-lab/nudgebot/pkg/utils/logging"
)

// Scanner runs one inactivity scan
type Scanner interface {
	Run(ctx context.Context) (*model.ScanResult, error)
}

// ScanWorker runs the inactivity scan on a cron schedule
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - Runs never overlap; a tick that fires during a run is skipped
type ScanWorker struct {
	scanner  Scanner
	schedule string
	now      func() time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// ScanWorkerOption configures ScanWorker
type ScanWorkerOption func(*ScanWorker)

// WithWorkerClock replaces time.Now used to compute the next tick
func WithWorkerClock(now func() time.Time) ScanWorkerOption {
	return func(w *ScanWorker) {
		w.now = now
	}
}

// NewScanWorker creates a worker for a 5 field cron expression such as "0 9 * * 1"
func NewScanWorker(scanner Scanner, schedule string, opts ...ScanWorkerOption) (*ScanWorker, error) {
	w := &ScanWorker{
		scanner:  scanner,
		schedule: schedule,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if _, err := w.next(); err != nil {
		return nil, err
	}

	return w, nil
}

// next returns the first tick strictly after now
func (w *ScanWorker) next() (time.Time, error) {
	t, err := gronx.NextTickAfter(w.schedule, w.now(), false)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "invalid scan schedule", goerr.V("schedule", w.schedule))
	}
	return t, nil
}

// Start begins the schedule loop in a goroutine
func (w *ScanWorker) Start(ctx context.Context) error {
	logging.Default().Info("scan worker starting", "schedule", w.schedule)

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *ScanWorker) Stop() {
	logging.Default().Info("scan worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("scan worker stopped")
}

func (w *ScanWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	for {
		at, err := w.next()
		if err != nil {
			errutil.Handle(ctx, err, "scan worker cannot schedule next run")
			return
		}

		timer := time.NewTimer(at.Sub(w.now()))
		select {
		case <-timer.C:
			w.scan(ctx)

		case <-w.stopCh:
			timer.Stop()
			logging.Default().Info("scan worker received stop signal")
			return

		case <-ctx.Done():
			timer.Stop()
			logging.Default().Info("scan worker context cancelled")
			return
		}
	}
}

func (w *ScanWorker) scan(ctx context.Context) {
	startTime := time.Now()

	result, err := w.scanner.Run(ctx)
	if err != nil {
		// retried at the next tick
		errutil.Handle(ctx, err, "scheduled scan failed")
		return
	}

	logging.Default().Info("scheduled scan completed",
		"inactive_users", len(result.InactiveUsers),
		"duration", time.Since(startTime).String())
}
