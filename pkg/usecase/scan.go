package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/nudgebot/pkg/domain/model"
	slacksvc "github.com/secmon-lab/nudgebot/pkg/service/slack"
	"github.com/secmon-lab/nudgebot/pkg/utils/errutil"
	"github.com/secmon-lab/nudgebot/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultInactiveDays    = 3
	DefaultMessageTemplate = "Hi {user_name}, we noticed you haven't been active recently. Let us know if you need any assistance!"
	DefaultNotifyInterval  = time.Second

	// UserNamePlaceholder is replaced by the user's name in the message template
	UserNamePlaceholder = "{user_name}"
)

// ScanConfig is the per-run configuration of the inactivity scan
type ScanConfig struct {
	InactiveDays    int
	MessageTemplate string
}

func (x ScanConfig) withDefaults() ScanConfig {
	if x.InactiveDays <= 0 {
		x.InactiveDays = DefaultInactiveDays
	}
	if x.MessageTemplate == "" {
		x.MessageTemplate = DefaultMessageTemplate
	}
	return x
}

// Sleeper waits for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// ScanUseCase finds workspace members without any message in the inactivity
// window and sends each of them a direct message.
//
// Cost is one conversations.history call per (user, channel) pair until the
// user's first match, so O(users x channels) in the worst case.
type ScanUseCase struct {
	connector      *slackConnector
	config         ScanConfig
	now            func() time.Time
	sleep          Sleeper
	notifyInterval time.Duration
	concurrency    int
}

type ScanOption func(*ScanUseCase)

// WithScanClock replaces time.Now used to compute the cutoff
func WithScanClock(now func() time.Time) ScanOption {
	return func(uc *ScanUseCase) {
		uc.now = now
	}
}

// WithSleeper replaces the wait between notifications
func WithSleeper(sleep Sleeper) ScanOption {
	return func(uc *ScanUseCase) {
		uc.sleep = sleep
	}
}

// WithNotifyInterval sets the delay after each notification
func WithNotifyInterval(d time.Duration) ScanOption {
	return func(uc *ScanUseCase) {
		uc.notifyInterval = d
	}
}

// WithConcurrency sets how many users are classified in parallel. Notifications
// are still sent one by one in roster order.
func WithConcurrency(n int) ScanOption {
	return func(uc *ScanUseCase) {
		if n > 0 {
			uc.concurrency = n
		}
	}
}

func newScanUseCase(connector *slackConnector, cfg ScanConfig, opts ...ScanOption) *ScanUseCase {
	uc := &ScanUseCase{
		connector:      connector,
		config:         cfg.withDefaults(),
		now:            time.Now,
		sleep:          sleepContext,
		notifyInterval: DefaultNotifyInterval,
		concurrency:    1,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Cutoff returns the start of the activity window for now. A message at
// exactly the cutoff counts as activity.
func (uc *ScanUseCase) Cutoff(now time.Time) time.Time {
	return now.Add(-time.Duration(uc.config.InactiveDays) * 24 * time.Hour).Truncate(time.Second)
}

// Run executes one scan. Failing to get credentials or either roster aborts
// the run; a failing channel history only counts as no activity there.
func (uc *ScanUseCase) Run(ctx context.Context) (*model.ScanResult, error) {
	scanID := uuid.NewString()
	logger := logging.From(ctx).With(ScanIDKey, scanID)
	ctx = logging.With(ctx, logger)

	svc, err := uc.connector.connect(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to start scan", goerr.V(ScanIDKey, scanID))
	}

	members, err := svc.ListUsers(ctx)
	if err != nil {
		return nil, goerr.Wrap(ErrDownstreamCall, "failed to list users",
			goerr.V(ScanIDKey, scanID),
			goerr.V("error", err.Error()),
		)
	}

	var users []*model.WorkspaceUser
	for _, u := range members {
		if u.IsHuman() {
			users = append(users, u)
		}
	}

	channels, err := svc.ListChannels(ctx)
	if err != nil {
		return nil, goerr.Wrap(ErrDownstreamCall, "failed to list channels",
			goerr.V(ScanIDKey, scanID),
			goerr.V("error", err.Error()),
		)
	}

	cutoff := uc.Cutoff(uc.now())
	logger.Info("scan started",
		"users", len(users),
		"members", len(members),
		"channels", len(channels),
		"cutoff", cutoff,
		"concurrency", uc.concurrency,
	)

	result := &model.ScanResult{InactiveUsers: []model.InactiveUser{}}
	var notifyFailures int

	notify := func(user *model.WorkspaceUser) error {
		result.InactiveUsers = append(result.InactiveUsers, model.InactiveUser{
			UserID: user.ID,
			Name:   user.Name,
		})

		if err := svc.PostMessage(ctx, string(user.ID), uc.renderMessage(user)); err != nil {
			notifyFailures++
			errutil.Handle(ctx, goerr.Wrap(ErrDownstreamCall, "failed to notify inactive user",
				goerr.V(UserIDKey, user.ID),
				goerr.V("error", err.Error()),
			), "notification not sent")
		}

		return uc.sleep(ctx, uc.notifyInterval)
	}

	if uc.concurrency <= 1 {
		for _, user := range users {
			active, err := isActive(ctx, svc, user, channels, cutoff)
			if err != nil {
				return result, goerr.Wrap(err, "scan interrupted", goerr.V(ScanIDKey, scanID))
			}
			if active {
				continue
			}
			if err := notify(user); err != nil {
				return result, goerr.Wrap(err, "scan interrupted", goerr.V(ScanIDKey, scanID))
			}
		}
	} else {
		active, err := uc.classifyParallel(ctx, svc, users, channels, cutoff)
		if err != nil {
			return nil, goerr.Wrap(err, "scan interrupted", goerr.V(ScanIDKey, scanID))
		}
		for i, user := range users {
			if active[i] {
				continue
			}
			if err := notify(user); err != nil {
				return result, goerr.Wrap(err, "scan interrupted", goerr.V(ScanIDKey, scanID))
			}
		}
	}

	logger.Info("scan finished",
		"inactive_users", len(result.InactiveUsers),
		"notify_failures", notifyFailures,
	)

	return result, nil
}

func (uc *ScanUseCase) classifyParallel(ctx context.Context, svc slacksvc.Service, users []*model.WorkspaceUser, channels []*model.Channel, cutoff time.Time) ([]bool, error) {
	active := make([]bool, len(users))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(uc.concurrency)

	for i, user := range users {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ok, err := isActive(ctx, svc, user, channels, cutoff)
			if err != nil {
				return err
			}
			active[i] = ok
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return active, nil
}

// isActive reports whether user authored a message at or after cutoff in any
// channel. It stops at the first match. A cancelled ctx is returned as an
// error so that unchecked users are never classified inactive.
func isActive(ctx context.Context, svc slacksvc.Service, user *model.WorkspaceUser, channels []*model.Channel, cutoff time.Time) (bool, error) {
	for _, ch := range channels {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		messages, err := svc.GetChannelHistory(ctx, ch.ID, cutoff)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return false, ctxErr
			}
			logging.From(ctx).Warn("failed to get channel history, treated as no activity",
				UserIDKey, user.ID,
				ChannelIDKey, ch.ID,
				"error", err.Error(),
			)
			continue
		}

		for _, msg := range messages {
			if msg.UserID == user.ID && !msg.Timestamp.Before(cutoff) {
				return true, nil
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return false, err
	}
	return false, nil
}

func (uc *ScanUseCase) renderMessage(user *model.WorkspaceUser) string {
	return strings.NewReplacer(UserNamePlaceholder, user.Name).Replace(uc.config.MessageTemplate)
}
