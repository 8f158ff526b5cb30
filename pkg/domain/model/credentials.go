package model

import "log/slog"

// Credentials is the decoded content of the bot's secret
type Credentials struct {
	BotToken string `json:"SLACK_BOT_TOKEN" masq:"secret"`
	// SigningSecret is optional; the HTTP server may take it from a flag instead
	SigningSecret string `json:"SLACK_SIGNING_SECRET,omitempty" masq:"secret"`
}

func (x Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot_token.len", len(x.BotToken)),
		slog.Int("signing_secret.len", len(x.SigningSecret)),
	)
}
