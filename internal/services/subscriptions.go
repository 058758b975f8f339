package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/data/repos"
	types "github.com/raohuzaifa081-blip/webotixscrm/internal/domain"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/dbctx"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/realtime"
)

// SubscriptionService decides which realtime channels a caller may listen on.
// Each role holds exactly one workflow channel so an event reaches a stream
// once.
type SubscriptionService interface {
	ChannelsFor(ctx context.Context, userID uuid.UUID, role types.Role) ([]string, error)
}

type subscriptionService struct {
	projectRepo repos.ProjectRepo
}

func NewSubscriptionService(projectRepo repos.ProjectRepo) SubscriptionService {
	return &subscriptionService{projectRepo: projectRepo}
}

func (s *subscriptionService) ChannelsFor(ctx context.Context, userID uuid.UUID, role types.Role) ([]string, error) {
	channels := []string{realtime.UserChannel(userID)}
	switch role {
	case types.RoleAdmin:
		channels = append(channels, realtime.AdminChannel)
	case types.RoleTeam:
		channels = append(channels, realtime.TeamChannel)
	case types.RoleClient:
		p, err := s.projectRepo.GetByClientID(dbctx.Context{Ctx: ctx}, userID)
		if err != nil {
			return nil, fmt.Errorf("load client project for subscriptions: %w", err)
		}
		if p != nil {
			channels = append(channels, realtime.ProjectChannel(p.ID))
		}
	}
	return channels, nil
}
