package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/nudgebot/pkg/cli/config"
)

func TestSecretConfigure(t *testing.T) {
	ctx := context.Background()

	t.Run("static backend serves the bot token", func(t *testing.T) {
		cfg := config.NewSecretForTest("static", "nudgebot", "xoxb-1", "", time.Minute)
		store, closer, err := cfg.Configure(ctx)
		gt.NoError(t, err).Required()
		defer closer()

		creds, err := store.GetCredentials(ctx, cfg.Name())
		gt.NoError(t, err).Required()
		gt.Value(t, creds.BotToken).Equal("xoxb-1")
	})

	t.Run("static backend requires token", func(t *testing.T) {
		_, _, err := config.NewSecretForTest("static", "nudgebot", "", "", 0).Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("gcp backend requires project", func(t *testing.T) {
		_, _, err := config.NewSecretForTest("gcp", "nudgebot", "", "", 0).Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, _, err := config.NewSecretForTest("vault", "nudgebot", "", "", 0).Configure(ctx)
		gt.Error(t, err).Is(config.ErrInvalidBackend)
	})
}
