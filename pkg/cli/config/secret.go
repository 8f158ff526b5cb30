package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/nudgebot/pkg/domain/interfaces"
	"github.com/secmon-lab/nudgebot/pkg/domain/model"
	"github.com/secmon-lab/nudgebot/pkg/service/secret"
	"github.com/secmon-lab/nudgebot/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const DefaultSecretName = "nudgebot"

// Secret holds CLI flags for bot credential retrieval
type Secret struct {
	backend   string
	name      string
	botToken  string
	projectID string
	cacheTTL  time.Duration
}

func (x *Secret) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "secret-backend",
			Usage:       "Credential backend (static or gcp)",
			Category:    "Secret",
			Value:       "static",
			Sources:     cli.EnvVars("NUDGEBOT_SECRET_BACKEND"),
			Destination: &x.backend,
		},
		&cli.StringFlag{
			Name:        "secret-name",
			Usage:       "Name of the secret holding SLACK_BOT_TOKEN",
			Category:    "Secret",
			Value:       DefaultSecretName,
			Sources:     cli.EnvVars("NUDGEBOT_SECRET_NAME"),
			Destination: &x.name,
		},
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (static backend)",
			Category:    "Secret",
			Sources:     cli.EnvVars("NUDGEBOT_SLACK_BOT_TOKEN"),
			Destination: &x.botToken,
		},
		&cli.StringFlag{
			Name:        "secret-project-id",
			Usage:       "Google Cloud project of the secret (gcp backend)",
			Category:    "Secret",
			Sources:     cli.EnvVars("NUDGEBOT_SECRET_PROJECT_ID"),
			Destination: &x.projectID,
		},
		&cli.DurationFlag{
			Name:        "secret-cache-ttl",
			Usage:       "How long fetched credentials are reused (0 disables caching)",
			Category:    "Secret",
			Value:       secret.DefaultCacheTTL,
			Sources:     cli.EnvVars("NUDGEBOT_SECRET_CACHE_TTL"),
			Destination: &x.cacheTTL,
		},
	}
}

func (x Secret) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", x.backend),
		slog.String("name", x.name),
		slog.Int("bot_token.len", len(x.botToken)),
		slog.String("project_id", x.projectID),
		slog.Duration("cache_ttl", x.cacheTTL),
	)
}

// Name returns the secret name passed to the store
func (x *Secret) Name() string {
	return x.name
}

// Configure builds the credential store. The returned function releases it.
func (x *Secret) Configure(ctx context.Context) (interfaces.SecretStore, func(), error) {
	var store interfaces.SecretStore
	closer := func() {}

	switch x.backend {
	case "", "static":
		if x.botToken == "" {
			return nil, nil, goerr.Wrap(ErrMissingRequired, "slack-bot-token is required for static secret backend",
				goerr.V(FlagKey, "slack-bot-token"))
		}
		store = secret.NewStatic(x.name, model.Credentials{BotToken: x.botToken})

	case "gcp":
		if x.projectID == "" {
			return nil, nil, goerr.Wrap(ErrMissingRequired, "secret-project-id is required for gcp secret backend",
				goerr.V(FlagKey, "secret-project-id"))
		}
		gcp, err := secret.NewGCP(ctx, x.projectID)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize secret manager")
		}
		store = gcp
		closer = func() {
			if err := gcp.Close(); err != nil {
				logging.Default().Error("failed to close secret manager client", "error", err.Error())
			}
		}

	default:
		return nil, nil, goerr.Wrap(ErrInvalidBackend, "invalid secret backend", goerr.V(BackendKey, x.backend))
	}

	if x.cacheTTL > 0 {
		store = secret.NewCached(store, x.cacheTTL)
	}

	logging.Default().Info("Secret store configured", "secret", x)
	return store, closer, nil
}
