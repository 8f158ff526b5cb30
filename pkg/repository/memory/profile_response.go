package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/nudgebot/pkg/domain/interfaces"
	"github.com/secmon-lab/nudgebot/pkg/domain/model"
)

type profileResponseRepository struct {
	mu        sync.RWMutex
	responses map[model.SlackUserID]*model.ProfileResponse
}

var _ interfaces.ProfileResponseRepository = &profileResponseRepository{}

func newProfileResponseRepository() *profileResponseRepository {
	return &profileResponseRepository{
		responses: make(map[model.SlackUserID]*model.ProfileResponse),
	}
}

// Get retrieves the stored answer for the user, nil if none
func (r *profileResponseRepository) Get(ctx context.Context, userID model.SlackUserID) (*model.ProfileResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resp, ok := r.responses[userID]
	if !ok {
		return nil, nil
	}

	// Return a copy to prevent external modifications
	respCopy := *resp
	return &respCopy, nil
}

// Put stores the answer, overwriting any previous one
func (r *profileResponseRepository) Put(ctx context.Context, resp *model.ProfileResponse) error {
	if resp == nil {
		return goerr.New("profile response is nil")
	}
	if resp.UserID == "" {
		return goerr.New("user ID is required for profile response")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	respCopy := *resp
	r.responses[resp.UserID] = &respCopy
	return nil
}
