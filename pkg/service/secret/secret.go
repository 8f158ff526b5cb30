package secret

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/nudgebot/pkg/domain/model"
)

// ErrSecretNotFound is returned when the named secret does not exist
var ErrSecretNotFound = goerr.New("secret not found")

// parseCredentials decodes a secret payload such as
// {"SLACK_BOT_TOKEN":"xoxb-...","SLACK_SIGNING_SECRET":"..."}
func parseCredentials(name string, data []byte) (*model.Credentials, error) {
	var creds model.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, goerr.Wrap(err, "failed to parse secret payload", goerr.V("name", name))
	}
	if creds.BotToken == "" {
		return nil, goerr.New("secret has no SLACK_BOT_TOKEN", goerr.V("name", name))
	}
	return &creds, nil
}
