package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/data/repos"
	types "github.com/raohuzaifa081-blip/webotixscrm/internal/domain"
	domainagg "github.com/raohuzaifa081-blip/webotixscrm/internal/domain/aggregates"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/domain/workflow"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/dbctx"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
)

type DashboardService interface {
	// ClientDashboard returns the client's project with its tasks in stage
	// order.
	ClientDashboard(ctx context.Context, clientID uuid.UUID) (*types.ClientDashboard, error)
}

type dashboardService struct {
	log         *logger.Logger
	projectRepo repos.ProjectRepo
	taskRepo    repos.TaskRepo
}

func NewDashboardService(log *logger.Logger, projectRepo repos.ProjectRepo, taskRepo repos.TaskRepo) DashboardService {
	return &dashboardService{
		log:         log.With("service", "DashboardService"),
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
	}
}

func (s *dashboardService) ClientDashboard(ctx context.Context, clientID uuid.UUID) (*types.ClientDashboard, error) {
	dbc := dbctx.Context{Ctx: ctx}
	project, err := s.projectRepo.GetByClientID(dbc, clientID)
	if err != nil {
		return nil, fmt.Errorf("load client project: %w", err)
	}
	if project == nil {
		return nil, domainagg.NotFound("client.dashboard", "No project found for this account")
	}
	tasks, err := s.taskRepo.ListByProject(dbc, project.ID)
	if err != nil {
		return nil, fmt.Errorf("load project tasks: %w", err)
	}
	views := make([]*types.TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, workflow.NewTaskView(t, project.Name))
	}
	return &types.ClientDashboard{
		Project: workflow.NewProjectView(project),
		Tasks:   views,
	}, nil
}
