package usecase_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/nudgebot/pkg/domain/interfaces"
	"github.com/secmon-lab/nudgebot/pkg/domain/model"
	slacksvc "github.com/secmon-lab/nudgebot/pkg/service/slack"
	goslack "github.com/slack-go/slack"
)

const testSecretName = "nudgebot-test"

type postedMessage struct {
	ChannelID string
	Text      string
}

type publishedView struct {
	UserID string
	Blocks []goslack.Block
}

type historyCall struct {
	ChannelID string
	Oldest    time.Time
}

// fakeSlack is an in-memory slacksvc.Service
type fakeSlack struct {
	mu sync.Mutex

	users       []*model.WorkspaceUser
	usersErr    error
	channels    []*model.Channel
	channelsErr error
	history     map[string][]*model.ChannelMessage
	historyErr  map[string]error
	postErr     error
	publishErr  error
	onHistory   func(channelID string)

	historyCalls []historyCall
	posted       []postedMessage
	published    []publishedView
}

var _ slacksvc.Service = &fakeSlack{}

func (x *fakeSlack) ListUsers(ctx context.Context) ([]*model.WorkspaceUser, error) {
	if x.usersErr != nil {
		return nil, x.usersErr
	}
	return x.users, nil
}

func (x *fakeSlack) ListChannels(ctx context.Context) ([]*model.Channel, error) {
	if x.channelsErr != nil {
		return nil, x.channelsErr
	}
	return x.channels, nil
}

func (x *fakeSlack) GetChannelHistory(ctx context.Context, channelID string, oldest time.Time) ([]*model.ChannelMessage, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.historyCalls = append(x.historyCalls, historyCall{ChannelID: channelID, Oldest: oldest})
	if x.onHistory != nil {
		x.onHistory(channelID)
	}
	if err := x.historyErr[channelID]; err != nil {
		return nil, err
	}
	return x.history[channelID], nil
}

func (x *fakeSlack) PostMessage(ctx context.Context, channelID string, text string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.postErr != nil {
		return x.postErr
	}
	x.posted = append(x.posted, postedMessage{ChannelID: channelID, Text: text})
	return nil
}

func (x *fakeSlack) PublishHomeView(ctx context.Context, userID string, blocks []goslack.Block) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.publishErr != nil {
		return x.publishErr
	}
	x.published = append(x.published, publishedView{UserID: userID, Blocks: blocks})
	return nil
}

func (x *fakeSlack) factory(tokens *[]string) slacksvc.Factory {
	return func(token string) (slacksvc.Service, error) {
		if tokens != nil {
			*tokens = append(*tokens, token)
		}
		return x, nil
	}
}

// countingSecrets records lookups and serves a fixed token
type countingSecrets struct {
	calls int
	err   error
}

func (x *countingSecrets) GetCredentials(ctx context.Context, name string) (*model.Credentials, error) {
	x.calls++
	if x.err != nil {
		return nil, x.err
	}
	if name != testSecretName {
		return nil, fmt.Errorf("unknown secret %q", name)
	}
	return &model.Credentials{BotToken: "xoxb-test"}, nil
}

var _ interfaces.SecretStore = &countingSecrets{}

// failingRepo fails every profile response operation
type failingRepo struct {
	getErr error
	putErr error
	inner  interfaces.ProfileResponseRepository
}

func (x *failingRepo) ProfileResponse() interfaces.ProfileResponseRepository { return x }
func (x *failingRepo) Close() error                                          { return nil }

func (x *failingRepo) Get(ctx context.Context, userID model.SlackUserID) (*model.ProfileResponse, error) {
	if x.getErr != nil {
		return nil, x.getErr
	}
	return x.inner.Get(ctx, userID)
}

func (x *failingRepo) Put(ctx context.Context, resp *model.ProfileResponse) error {
	if x.putErr != nil {
		return x.putErr
	}
	return x.inner.Put(ctx, resp)
}

// blocksJSON renders blocks the way they are sent to Slack
func blocksJSON(t *testing.T, blocks []goslack.Block) string {
	t.Helper()
	raw, err := json.Marshal(goslack.Blocks{BlockSet: blocks})
	gt.NoError(t, err).Required()
	return string(raw)
}

func countBlocks(blocks []goslack.Block) (inputs, actions int) {
	for _, b := range blocks {
		switch b.(type) {
		case *goslack.InputBlock:
			inputs++
		case *goslack.ActionBlock:
			actions++
		}
	}
	return inputs, actions
}

func blockActionPayload(userID, actionID, value string) string {
	return fmt.Sprintf(`{"type":"block_actions","user":{"id":%q,"name":"someone"},`+
		`"actions":[{"action_id":%q,"block_id":"submit_button","type":"button"}],`+
		`"view":{"type":"home","state":{"values":{"question_block":{"user_response":{"type":"plain_text_input","value":%q}}}}}}`,
		userID, actionID, value)
}

func homeOpenedPayload(userID string) string {
	return fmt.Sprintf(`{"type":"event_callback","team_id":"T1","event":{"type":"app_home_opened","user":%q,"channel":"D1","tab":"home"}}`, userID)
}
