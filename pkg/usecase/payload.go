package usecase

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/nudgebot/pkg/domain/model"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

const (
	// PayloadPrefix is the form field name wrapping interaction payloads
	PayloadPrefix = "payload="

	// Block Kit identifiers of the profile form
	ProfileBlockID = "question_block"
	ProfileInputID = "user_response"
	SubmitBlockID  = "submit_button"
	SubmitActionID = "submit_profile"
)

// DecodePayload turns a raw body into JSON bytes. With DecodeDirect the body
// is returned as-is. With DecodeTransport it undoes base64 (when flagged) and
// URL encoding and strips PayloadPrefix.
func DecodePayload(body string, isBase64Encoded bool, decoding model.PayloadDecoding) ([]byte, error) {
	if decoding != model.DecodeTransport {
		if strings.TrimSpace(body) == "" {
			return nil, goerr.Wrap(ErrEmptyPayload, "body is empty")
		}
		return []byte(body), nil
	}

	decoded := body
	if isBase64Encoded {
		raw, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return nil, goerr.Wrap(ErrMalformedPayload, "invalid base64 body", goerr.V("error", err.Error()))
		}
		decoded = string(raw)
	}

	unescaped, err := url.PathUnescape(decoded)
	if err != nil {
		return nil, goerr.Wrap(ErrMalformedPayload, "invalid URL encoding", goerr.V("error", err.Error()))
	}
	unescaped = strings.TrimPrefix(unescaped, PayloadPrefix)

	if unescaped == "" {
		return nil, goerr.Wrap(ErrEmptyPayload, "payload is empty after decoding")
	}
	if !json.Valid([]byte(unescaped)) {
		return nil, goerr.Wrap(ErrMalformedPayload, "decoded payload is not JSON")
	}

	return []byte(unescaped), nil
}

// ParseWebhookEvent classifies a JSON payload into one WebhookEvent variant.
// Checked in order: URL verification, app_home_opened, block_actions.
// Anything else is UnhandledEvent.
func ParseWebhookEvent(data []byte) (model.WebhookEvent, error) {
	var outer slackevents.EventsAPICallbackEvent
	if err := json.Unmarshal(data, &outer); err != nil {
		return nil, goerr.Wrap(ErrMalformedPayload, "failed to parse webhook payload", goerr.V("error", err.Error()))
	}

	if outer.Type == slackevents.URLVerification {
		var ev slackevents.EventsAPIURLVerificationEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, goerr.Wrap(ErrMalformedPayload, "failed to parse url_verification", goerr.V("error", err.Error()))
		}
		return &model.URLVerificationEvent{Challenge: ev.Challenge}, nil
	}

	if outer.InnerEvent != nil {
		var inner slackevents.EventsAPIInnerEvent
		if err := json.Unmarshal(*outer.InnerEvent, &inner); err != nil {
			return nil, goerr.Wrap(ErrMalformedPayload, "failed to parse inner event", goerr.V("error", err.Error()))
		}

		if inner.Type == string(slackevents.AppHomeOpened) {
			var ev slackevents.AppHomeOpenedEvent
			if err := json.Unmarshal(*outer.InnerEvent, &ev); err != nil {
				return nil, goerr.Wrap(ErrMalformedPayload, "failed to parse app_home_opened", goerr.V("error", err.Error()))
			}
			return &model.AppHomeOpenedEvent{UserID: model.SlackUserID(ev.User)}, nil
		}
	}

	if outer.Type == string(slack.InteractionTypeBlockActions) {
		var callback slack.InteractionCallback
		if err := json.Unmarshal(data, &callback); err != nil {
			return nil, goerr.Wrap(ErrMalformedPayload, "failed to parse block_actions", goerr.V("error", err.Error()))
		}
		return toBlockActionEvent(&callback), nil
	}

	return &model.UnhandledEvent{Type: outer.Type}, nil
}

func toBlockActionEvent(callback *slack.InteractionCallback) *model.BlockActionEvent {
	ev := &model.BlockActionEvent{
		UserID:     model.SlackUserID(callback.User.ID),
		ActionID:   callback.ActionID,
		FormValues: model.FormValues{},
	}
	if actions := callback.ActionCallback.BlockActions; len(actions) > 0 {
		ev.ActionID = actions[0].ActionID
	}

	if callback.View.State == nil {
		return ev
	}
	// only keys present in the submitted state are recorded, so an absent
	// form path stays distinguishable from an empty answer
	for blockID, actions := range callback.View.State.Values {
		for actionID, state := range actions {
			if ev.FormValues[blockID] == nil {
				ev.FormValues[blockID] = map[string]string{}
			}
			ev.FormValues[blockID][actionID] = state.Value
		}
	}

	return ev
}

// decodeFormValue undoes the form encoding of a submitted text value:
// percent escapes are decoded and "+" stands for a space
func decodeFormValue(raw string) string {
	if v, err := url.QueryUnescape(raw); err == nil {
		return v
	}
	return strings.ReplaceAll(raw, "+", " ")
}
