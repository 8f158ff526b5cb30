package memory

import (
	"github.com/secmon-lab/nudgebot/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	profileResponse *profileResponseRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		profileResponse: newProfileResponseRepository(),
	}
}

func (m *Memory) ProfileResponse() interfaces.ProfileResponseRepository {
	return m.profileResponse
}

func (m *Memory) Close() error {
	return nil
}
