package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Malformed input errors, answered with 400
	ErrEmptyPayload     = errors.New("payload is empty after decoding")
	ErrMalformedPayload = errors.New("payload is not valid JSON")
	ErrMissingUser      = errors.New("user_id is missing")

	// Fatal for the invocation, answered with 500
	ErrConfiguration  = errors.New("configuration error")
	ErrDownstreamCall = errors.New("chat platform call failed")

	// Logged only
	ErrPersistence = errors.New("failed to persist profile response")
)

// Context keys for error values
const (
	UserIDKey    = "user_id"
	ChannelIDKey = "channel_id"
	ScanIDKey    = "scan_id"
)
