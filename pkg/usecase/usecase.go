package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/nudgebot/pkg/domain/interfaces"
	slacksvc "github.com/secmon-lab/nudgebot/pkg/service/slack"
)

type UseCases struct {
	repo        interfaces.Repository
	profile     ProfileConfig
	scanConfig  ScanConfig
	scanOptions []ScanOption
	clock       func() time.Time

	Webhook *WebhookUseCase
	Scan    *ScanUseCase
}

type Option func(*UseCases)

func WithProfileConfig(cfg ProfileConfig) Option {
	return func(uc *UseCases) {
		uc.profile = cfg
	}
}

func WithScanConfig(cfg ScanConfig) Option {
	return func(uc *UseCases) {
		uc.scanConfig = cfg
	}
}

func WithScanOptions(opts ...ScanOption) Option {
	return func(uc *UseCases) {
		uc.scanOptions = append(uc.scanOptions, opts...)
	}
}

// WithClock replaces time.Now for both the dispatcher and the scan
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.clock = now
	}
}

// New wires the dispatcher and the scan pipeline. Credentials are read from
// secrets under secretName on every invocation that calls Slack.
func New(repo interfaces.Repository, secrets interfaces.SecretStore, secretName string, newSlack slacksvc.Factory, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:  repo,
		clock: time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	creds := &slackConnector{
		secrets:    secrets,
		secretName: secretName,
		newSlack:   newSlack,
	}

	uc.Webhook = newWebhookUseCase(repo, creds, uc.profile, uc.clock)
	uc.Scan = newScanUseCase(creds, uc.scanConfig, append([]ScanOption{WithScanClock(uc.clock)}, uc.scanOptions...)...)

	return uc
}

// slackConnector resolves credentials and builds a Slack client for one invocation
type slackConnector struct {
	secrets    interfaces.SecretStore
	secretName string
	newSlack   slacksvc.Factory
}

func (x *slackConnector) connect(ctx context.Context) (slacksvc.Service, error) {
	if x.secrets == nil || x.newSlack == nil {
		return nil, goerr.Wrap(ErrConfiguration, "secret store or slack factory is not configured")
	}

	creds, err := x.secrets.GetCredentials(ctx, x.secretName)
	if err != nil {
		return nil, goerr.Wrap(ErrConfiguration, "failed to get credentials",
			goerr.V("secret_name", x.secretName),
			goerr.V("error", err.Error()),
		)
	}

	svc, err := x.newSlack(creds.BotToken)
	if err != nil {
		return nil, goerr.Wrap(ErrConfiguration, "failed to create slack client",
			goerr.V("secret_name", x.secretName),
			goerr.V("error", err.Error()),
		)
	}

	return svc, nil
}
