package config

import (
	"log/slog"

	slacksvc "github.com/secmon-lab/nudgebot/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	signingSecret   string
	apiURL          string
	historyPageSize int
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack Signing Secret (for webhook verification)",
			Category:    "Slack",
			Destination: &x.signingSecret,
			Sources:     cli.EnvVars("NUDGEBOT_SLACK_SIGNING_SECRET"),
		},
		&cli.StringFlag{
			Name:        "slack-api-url",
			Usage:       "Slack Web API base URL",
			Category:    "Slack",
			Destination: &x.apiURL,
			Sources:     cli.EnvVars("NUDGEBOT_SLACK_API_URL"),
		},
		&cli.IntFlag{
			Name:        "slack-history-page-size",
			Usage:       "Page size of conversations.history requests",
			Category:    "Slack",
			Value:       slacksvc.DefaultHistoryPageSize,
			Destination: &x.historyPageSize,
			Sources:     cli.EnvVars("NUDGEBOT_SLACK_HISTORY_PAGE_SIZE"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("signing-secret.len", len(x.signingSecret)),
		slog.String("api-url", x.apiURL),
		slog.Int("history-page-size", x.historyPageSize),
	)
}

// SigningSecret returns the Slack signing secret
func (x *Slack) SigningSecret() string {
	return x.signingSecret
}

// IsWebhookConfigured reports whether Slack webhooks can be verified
func (x *Slack) IsWebhookConfigured() bool {
	return x.signingSecret != ""
}

// Factory returns a client factory applying the Slack flags and channelTypes
func (x *Slack) Factory(channelTypes []string) slacksvc.Factory {
	opts := []slacksvc.Option{
		slacksvc.WithHistoryPageSize(x.historyPageSize),
		slacksvc.WithChannelTypes(channelTypes),
	}
	if x.apiURL != "" {
		opts = append(opts, slacksvc.WithAPIURL(x.apiURL))
	}
	return slacksvc.NewFactory(opts...)
}
