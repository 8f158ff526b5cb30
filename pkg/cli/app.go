package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/nudgebot/pkg/cli/config"
	"github.com/secmon-lab/nudgebot/pkg/domain/interfaces"
	"github.com/secmon-lab/nudgebot/pkg/usecase"
	"github.com/secmon-lab/nudgebot/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// appConfig gathers the flags shared by every command that talks to Slack
type appConfig struct {
	repo    config.Repository
	secret  config.Secret
	slack   config.Slack
	scan    config.Scan
	profile config.Profile
}

func (x *appConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, x.repo.Flags()...)
	flags = append(flags, x.secret.Flags()...)
	flags = append(flags, x.slack.Flags()...)
	flags = append(flags, x.scan.Flags()...)
	flags = append(flags, x.profile.Flags()...)
	return flags
}

// app is the wired use case layer plus the resources it holds
type app struct {
	uc      *usecase.UseCases
	secrets interfaces.SecretStore
	closers []func()
}

func (x *app) Close() {
	for i := len(x.closers) - 1; i >= 0; i-- {
		x.closers[i]()
	}
}

func (x *appConfig) build(ctx context.Context, c *cli.Command) (*app, error) {
	scanSettings, err := x.scan.Configure(c)
	if err != nil {
		return nil, err
	}
	logging.Default().Info("Scan settings loaded", "scan", scanSettings)

	a := &app{}

	repo, err := x.repo.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize repository")
	}
	a.closers = append(a.closers, func() {
		if err := repo.Close(); err != nil {
			logging.Default().Error("failed to close repository", "error", err.Error())
		}
	})

	secrets, secretCloser, err := x.secret.Configure(ctx)
	if err != nil {
		a.Close()
		return nil, goerr.Wrap(err, "failed to initialize secret store")
	}
	a.closers = append(a.closers, secretCloser)
	a.secrets = secrets

	a.uc = usecase.New(repo, secrets, x.secret.Name(), x.slack.Factory(scanSettings.ChannelTypes),
		usecase.WithProfileConfig(x.profile.UseCaseConfig()),
		usecase.WithScanConfig(scanSettings.UseCaseConfig()),
		usecase.WithScanOptions(scanSettings.UseCaseOptions()...),
	)

	return a, nil
}

// signingSecret prefers the flag and falls back to the stored credentials
func (x *appConfig) signingSecret(ctx context.Context, a *app) (string, error) {
	if x.slack.IsWebhookConfigured() {
		return x.slack.SigningSecret(), nil
	}

	creds, err := a.secrets.GetCredentials(ctx, x.secret.Name())
	if err != nil {
		return "", goerr.Wrap(err, "failed to read signing secret from secret store")
	}
	return creds.SigningSecret, nil
}
