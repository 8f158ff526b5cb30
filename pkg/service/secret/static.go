package secret

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/nudgebot/pkg/domain/interfaces"
	"github.com/secmon-lab/nudgebot/pkg/domain/model"
)

// Static serves credentials given at startup (flags or environment)
type Static struct {
	secrets map[string]model.Credentials
}

var _ interfaces.SecretStore = &Static{}

// NewStatic creates a store holding creds under name
func NewStatic(name string, creds model.Credentials) *Static {
	return &Static{
		secrets: map[string]model.Credentials{name: creds},
	}
}

func (x *Static) GetCredentials(ctx context.Context, name string) (*model.Credentials, error) {
	creds, ok := x.secrets[name]
	if !ok {
		return nil, goerr.Wrap(ErrSecretNotFound, "no static secret with the name", goerr.V("name", name))
	}
	if creds.BotToken == "" {
		return nil, goerr.New("static secret has no bot token", goerr.V("name", name))
	}

	c := creds
	return &c, nil
}
