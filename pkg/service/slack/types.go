package slack

import (
	"context"
	"time"

	"github.com/secmon-lab/nudgebot/pkg/domain/model"
	"github.com/slack-go/slack"
)

// Service provides the Slack Web API operations used by the bot
type Service interface {
	// ListUsers retrieves every workspace member in the order Slack returns them.
	// Bots and deleted accounts are included; callers filter.
	ListUsers(ctx context.Context) ([]*model.WorkspaceUser, error)

	// ListChannels retrieves all non-archived conversations visible to the bot
	ListChannels(ctx context.Context) ([]*model.Channel, error)

	// GetChannelHistory retrieves messages posted at or after oldest
	GetChannelHistory(ctx context.Context, channelID string, oldest time.Time) ([]*model.ChannelMessage, error)

	// PostMessage posts a plain text message. A user ID as channelID sends a DM.
	PostMessage(ctx context.Context, channelID string, text string) error

	// PublishHomeView publishes the Home tab for the user
	PublishHomeView(ctx context.Context, userID string, blocks []slack.Block) error
}

// Factory builds a Service for a bot token
type Factory func(token string) (Service, error)
