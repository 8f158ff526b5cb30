package model

import "time"

// SlackUserID represents a unique identifier for a Slack user
type SlackUserID string

// ProfileResponse is a user's answer to the home view profile question.
// One record per user; a later submission replaces the earlier one.
type ProfileResponse struct {
	UserID    SlackUserID
	Response  string
	Timestamp int64 // unix seconds of the submission
}

// NewProfileResponse builds a record stamped with the submission time
func NewProfileResponse(userID SlackUserID, response string, at time.Time) *ProfileResponse {
	return &ProfileResponse{
		UserID:    userID,
		Response:  response,
		Timestamp: at.Unix(),
	}
}
