package model

import "encoding/json"

// PayloadDecoding selects how a raw string body is turned into JSON
type PayloadDecoding int

const (
	// DecodeDirect parses the body as JSON as-is
	DecodeDirect PayloadDecoding = iota
	// DecodeTransport undoes base64 and URL form encoding and strips the
	// "payload=" field name before parsing
	DecodeTransport
)

// InboundEvent is a webhook delivery as received from the transport
type InboundEvent struct {
	// Body is the raw request body. Ignored when Structured is set.
	Body string
	// Structured is set when the transport already parsed the body
	Structured      json.RawMessage
	IsBase64Encoded bool
	Decoding        PayloadDecoding
}

// WebhookResponse is the single reply produced for one inbound event
type WebhookResponse struct {
	StatusCode int    `json:"status_code"`
	Body       string `json:"body"`
}

// WebhookEvent is the closed set of webhook shapes the bot reacts to.
// Implemented by URLVerificationEvent, AppHomeOpenedEvent, BlockActionEvent
// and UnhandledEvent.
type WebhookEvent interface {
	EventKind() string
}

// URLVerificationEvent is Slack's endpoint handshake
type URLVerificationEvent struct {
	Challenge string
}

// AppHomeOpenedEvent fires when a user opens the app's Home tab. UserID may
// be empty when the payload omits it; the handler rejects that case.
type AppHomeOpenedEvent struct {
	UserID SlackUserID
}

// FormValues maps block_id -> action_id -> submitted value
type FormValues map[string]map[string]string

// Lookup returns the value at blockID/actionID and whether it was present
func (x FormValues) Lookup(blockID, actionID string) (string, bool) {
	block, ok := x[blockID]
	if !ok {
		return "", false
	}
	v, ok := block[actionID]
	return v, ok
}

// BlockActionEvent is an interaction on a Block Kit element
type BlockActionEvent struct {
	UserID     SlackUserID
	ActionID   string
	FormValues FormValues
}

// UnhandledEvent is anything else; acknowledged without side effects
type UnhandledEvent struct {
	Type string
}

func (URLVerificationEvent) EventKind() string { return "url_verification" }
func (AppHomeOpenedEvent) EventKind() string   { return "app_home_opened" }
func (BlockActionEvent) EventKind() string     { return "block_actions" }
func (UnhandledEvent) EventKind() string       { return "unhandled" }
