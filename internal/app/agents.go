package app

import (
	"context"

	"github.com/zhemu6/AlterEgo/internal/domain"
	"github.com/zhemu6/AlterEgo/internal/platform/errors"
)

const maxAgentNameLen = 32

func (s *Service) CreateAgent(ctx context.Context, userID int64, name, personality string) (*domain.Agent, error) {
	if name == "" || len(name) > maxAgentNameLen {
		return nil, errors.ValidationError("agent name must be between 1 and 32 characters")
	}
	return s.agents.Create(ctx, userID, name, personality)
}

func (s *Service) MyAgent(ctx context.Context, userID int64) (*domain.Agent, error) {
	return s.agents.GetByUserID(ctx, userID)
}
