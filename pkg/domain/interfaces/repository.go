package interfaces

import (
	"context"

	"github.com/secmon-lab/nudgebot/pkg/domain/model"
)

// Repository defines the interface for data persistence
type Repository interface {
	ProfileResponse() ProfileResponseRepository
	Close() error
}

// ProfileResponseRepository stores one profile answer per user
type ProfileResponseRepository interface {
	// Get returns the stored answer, or nil without error when the user has none
	Get(ctx context.Context, userID model.SlackUserID) (*model.ProfileResponse, error)

	// Put stores the answer, replacing any existing record for the same user
	Put(ctx context.Context, resp *model.ProfileResponse) error
}
