package model

import "time"

// WorkspaceUser is a workspace member as listed by the chat platform
type WorkspaceUser struct {
	ID      SlackUserID
	Name    string // Slack username used for the notification greeting
	IsBot   bool
	Deleted bool
}

// IsHuman reports whether the member is an active, non-bot account
func (x *WorkspaceUser) IsHuman() bool {
	return !x.IsBot && !x.Deleted
}

// Channel is a conversation visible to the bot
type Channel struct {
	ID   string
	Name string
}

// ChannelMessage is one message from a channel's history
type ChannelMessage struct {
	UserID    SlackUserID
	Text      string
	Timestamp time.Time
}

// InactiveUser is one entry of a scan result
type InactiveUser struct {
	UserID SlackUserID `json:"user_id"`
	Name   string      `json:"name"`
}

// ScanResult is the output of one inactivity scan run
type ScanResult struct {
	InactiveUsers []InactiveUser `json:"inactive_users"`
}
