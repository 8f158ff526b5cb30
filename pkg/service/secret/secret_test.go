package secret_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/nudgebot/pkg/domain/model"
	"github.com/secmon-lab/nudgebot/pkg/service/secret"
)

func TestStatic(t *testing.T) {
	ctx := context.Background()
	store := secret.NewStatic("nudgebot", model.Credentials{BotToken: "xoxb-1"})

	t.Run("returns credentials for known name", func(t *testing.T) {
		creds, err := store.GetCredentials(ctx, "nudgebot")
		gt.NoError(t, err).Required()
		gt.Value(t, creds.BotToken).Equal("xoxb-1")
	})

	t.Run("unknown name is ErrSecretNotFound", func(t *testing.T) {
		_, err := store.GetCredentials(ctx, "other")
		gt.Error(t, err).Is(secret.ErrSecretNotFound)
	})

	t.Run("empty token is rejected", func(t *testing.T) {
		empty := secret.NewStatic("nudgebot", model.Credentials{})
		_, err := empty.GetCredentials(ctx, "nudgebot")
		gt.Value(t, err).NotNil()
	})
}

func TestParseCredentials(t *testing.T) {
	t.Run("parses bot token and signing secret", func(t *testing.T) {
		creds, err := secret.ParseCredentials("s", []byte(`{"SLACK_BOT_TOKEN":"xoxb-1","SLACK_SIGNING_SECRET":"sig"}`))
		gt.NoError(t, err).Required()
		gt.Value(t, creds.BotToken).Equal("xoxb-1")
		gt.Value(t, creds.SigningSecret).Equal("sig")
	})

	t.Run("missing bot token", func(t *testing.T) {
		_, err := secret.ParseCredentials("s", []byte(`{"OTHER":"x"}`))
		gt.Value(t, err).NotNil()
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := secret.ParseCredentials("s", []byte(`not json`))
		gt.Value(t, err).NotNil()
	})
}

func TestResourceName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short name", "slack", "projects/p1/secrets/slack/versions/latest"},
		{"full secret name", "projects/p2/secrets/slack", "projects/p2/secrets/slack/versions/latest"},
		{"full version name", "projects/p2/secrets/slack/versions/3", "projects/p2/secrets/slack/versions/3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, secret.ResourceName("p1", tt.in)).Equal(tt.want)
		})
	}
}

type countingStore struct {
	calls int
	err   error
}

func (x *countingStore) GetCredentials(ctx context.Context, name string) (*model.Credentials, error) {
	x.calls++
	if x.err != nil {
		return nil, x.err
	}
	return &model.Credentials{BotToken: "xoxb-counted"}, nil
}

func TestCached(t *testing.T) {
	ctx := context.Background()

	t.Run("serves from cache until expiry", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		inner := &countingStore{}
		store := secret.NewCached(inner, time.Minute, secret.WithClock(func() time.Time { return now }))

		for range 3 {
			creds, err := store.GetCredentials(ctx, "s")
			gt.NoError(t, err).Required()
			gt.Value(t, creds.BotToken).Equal("xoxb-counted")
		}
		gt.Value(t, inner.calls).Equal(1)

		now = now.Add(2 * time.Minute)
		_, err := store.GetCredentials(ctx, "s")
		gt.NoError(t, err).Required()
		gt.Value(t, inner.calls).Equal(2)
	})

	t.Run("failures are not cached", func(t *testing.T) {
		inner := &countingStore{err: errors.New("unavailable")}
		store := secret.NewCached(inner, time.Minute)

		_, err := store.GetCredentials(ctx, "s")
		gt.Value(t, err).NotNil()
		_, err = store.GetCredentials(ctx, "s")
		gt.Value(t, err).NotNil()
		gt.Value(t, inner.calls).Equal(2)
	})
}
