package slack

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/nudgebot/pkg/domain/model"
	"github.com/secmon-lab/nudgebot/pkg/utils/logging"
	"github.com/slack-go/slack"
)

const (
	// DefaultHistoryPageSize is the conversations.history page size
	DefaultHistoryPageSize = 200
	// DefaultChannelPageSize is the conversations.list page size
	DefaultChannelPageSize = 200
)

// client implements Service interface
type client struct {
	api             *slack.Client
	channelTypes    []string
	historyPageSize int

	apiURL     string
	httpClient *http.Client
}

// Option is a functional option for client configuration
type Option func(*client)

// WithAPIURL points the client at a different Web API base URL
func WithAPIURL(url string) Option {
	return func(c *client) {
		c.apiURL = url
	}
}

// WithHTTPClient sets the HTTP client used for API calls
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithChannelTypes sets the conversation types included by ListChannels
func WithChannelTypes(types []string) Option {
	return func(c *client) {
		if len(types) > 0 {
			c.channelTypes = types
		}
	}
}

// WithHistoryPageSize sets the page size of conversations.history requests
func WithHistoryPageSize(size int) Option {
	return func(c *client) {
		if size > 0 {
			c.historyPageSize = size
		}
	}
}

// New creates a new Slack service with the provided bot token
func New(token string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	c := &client{
		channelTypes:    []string{"public_channel"},
		historyPageSize: DefaultHistoryPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}

	var apiOpts []slack.Option
	if c.apiURL != "" {
		apiOpts = append(apiOpts, slack.OptionAPIURL(strings.TrimRight(c.apiURL, "/")+"/"))
	}
	if c.httpClient != nil {
		apiOpts = append(apiOpts, slack.OptionHTTPClient(c.httpClient))
	}
	c.api = slack.New(token, apiOpts...)

	return c, nil
}

// NewFactory returns a Factory that applies opts to every client it builds
func NewFactory(opts ...Option) Factory {
	return func(token string) (Service, error) {
		return New(token, opts...)
	}
}

// ListUsers retrieves all workspace members. slack-go pages through users.list internally.
func (c *client) ListUsers(ctx context.Context) ([]*model.WorkspaceUser, error) {
	users, err := c.api.GetUsersContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list users")
	}

	result := make([]*model.WorkspaceUser, 0, len(users))
	for _, u := range users {
		result = append(result, &model.WorkspaceUser{
			ID:      model.SlackUserID(u.ID),
			Name:    u.Name,
			IsBot:   u.IsBot,
			Deleted: u.Deleted,
		})
	}

	return result, nil
}

// ListChannels retrieves the conversations visible to the bot, following cursors
func (c *client) ListChannels(ctx context.Context) ([]*model.Channel, error) {
	var channels []*model.Channel
	var cursor string

	for {
		params := &slack.GetConversationsParameters{
			Types:           c.channelTypes,
			ExcludeArchived: true,
			Limit:           DefaultChannelPageSize,
			Cursor:          cursor,
		}

		convs, nextCursor, err := c.api.GetConversationsContext(ctx, params)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get conversations", goerr.V("cursor", cursor))
		}

		for _, conv := range convs {
			channels = append(channels, &model.Channel{
				ID:   conv.ID,
				Name: conv.Name,
			})
		}

		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}

	return channels, nil
}

// GetChannelHistory retrieves messages at or after oldest (inclusive), following cursors
func (c *client) GetChannelHistory(ctx context.Context, channelID string, oldest time.Time) ([]*model.ChannelMessage, error) {
	var messages []*model.ChannelMessage
	var cursor string

	for {
		resp, err := c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
			ChannelID: channelID,
			Oldest:    strconv.FormatInt(oldest.Unix(), 10),
			Inclusive: true,
			Limit:     c.historyPageSize,
			Cursor:    cursor,
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get conversation history",
				goerr.V("channel_id", channelID),
				goerr.V("oldest", oldest),
			)
		}

		for _, msg := range resp.Messages {
			ts, err := ParseTimestamp(msg.Timestamp)
			if err != nil {
				logging.From(ctx).Warn("skipped message with invalid timestamp",
					"channel_id", channelID,
					"ts", msg.Timestamp,
					"error", err.Error(),
				)
				continue
			}
			messages = append(messages, &model.ChannelMessage{
				UserID:    model.SlackUserID(msg.User),
				Text:      msg.Text,
				Timestamp: ts,
			})
		}

		if !resp.HasMore || resp.ResponseMetaData.NextCursor == "" {
			break
		}
		cursor = resp.ResponseMetaData.NextCursor
	}

	return messages, nil
}

// PostMessage posts a plain text message
func (c *client) PostMessage(ctx context.Context, channelID string, text string) error {
	if _, _, err := c.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false)); err != nil {
		return goerr.Wrap(err, "failed to post message", goerr.V("channel_id", channelID))
	}
	return nil
}

// PublishHomeView publishes a Home tab view built from blocks
func (c *client) PublishHomeView(ctx context.Context, userID string, blocks []slack.Block) error {
	view := slack.HomeTabViewRequest{
		Type:   slack.VTHomeTab,
		Blocks: slack.Blocks{BlockSet: blocks},
	}

	if _, err := c.api.PublishViewContext(ctx, slack.PublishViewContextRequest{
		UserID: userID,
		View:   view,
	}); err != nil {
		return goerr.Wrap(err, "failed to publish home view", goerr.V("user_id", userID))
	}
	return nil
}

// ParseTimestamp converts a Slack "seconds.micros" ts into time
func ParseTimestamp(ts string) (time.Time, error) {
	secPart, fracPart, _ := strings.Cut(ts, ".")
	sec, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "failed to parse timestamp seconds", goerr.V("ts", ts))
	}

	var nsec int64
	if fracPart != "" {
		// right-pad to nanoseconds
		if len(fracPart) > 9 {
			fracPart = fracPart[:9]
		}
		fracPart += strings.Repeat("0", 9-len(fracPart))
		nsec, err = strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return time.Time{}, goerr.Wrap(err, "failed to parse timestamp fraction", goerr.V("ts", ts))
		}
	}

	return time.Unix(sec, nsec), nil
}
