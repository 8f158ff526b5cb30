package interfaces

import (
	"context"

	"github.com/secmon-lab/nudgebot/pkg/domain/model"
)

// SecretStore resolves the bot credentials by secret name
type SecretStore interface {
	GetCredentials(ctx context.Context, name string) (*model.Credentials, error)
}
