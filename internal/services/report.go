package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/data/repos"
	types "github.com/raohuzaifa081-blip/webotixscrm/internal/domain"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/domain/workflow"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/dbctx"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
)

type ReportService interface {
	AdminReports(ctx context.Context) (*types.Reports, error)
}

type reportService struct {
	log         *logger.Logger
	userRepo    repos.UserRepo
	projectRepo repos.ProjectRepo
	taskRepo    repos.TaskRepo
}

func NewReportService(log *logger.Logger, userRepo repos.UserRepo, projectRepo repos.ProjectRepo, taskRepo repos.TaskRepo) ReportService {
	return &reportService{
		log:         log.With("service", "ReportService"),
		userRepo:    userRepo,
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
	}
}

func (s *reportService) AdminReports(ctx context.Context) (*types.Reports, error) {
	var (
		projects          []*types.Project
		users             []*types.User
		stats             []repos.AssigneeStat
		completedProjects int64
		totalTasks        int64
		completedTasks    int64
	)
	g, gctx := errgroup.WithContext(ctx)
	dbc := dbctx.Context{Ctx: gctx}
	g.Go(func() (err error) {
		projects, err = s.projectRepo.ListAll(dbc)
		return wrapReportErr("projects", err)
	})
	g.Go(func() (err error) {
		users, err = s.userRepo.ListAll(dbc)
		return wrapReportErr("users", err)
	})
	g.Go(func() (err error) {
		stats, err = s.taskRepo.StatsByAssignee(dbc)
		return wrapReportErr("assignee stats", err)
	})
	g.Go(func() (err error) {
		completedProjects, err = s.projectRepo.CountByStatus(dbc, types.ProjectCompleted)
		return wrapReportErr("completed projects", err)
	})
	g.Go(func() (err error) {
		totalTasks, err = s.taskRepo.CountAll(dbc)
		return wrapReportErr("tasks", err)
	})
	g.Go(func() (err error) {
		completedTasks, err = s.taskRepo.CountByStatus(dbc, types.TaskCompleted)
		return wrapReportErr("completed tasks", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*types.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	projectStats := make([]*workflow.ProjectStat, 0, len(projects))
	for _, p := range projects {
		projectStats = append(projectStats, &workflow.ProjectStat{
			ID:       p.ID,
			Name:     p.Name,
			Status:   p.Status,
			Progress: p.Progress,
			Client:   types.Sanitize(byID[p.ClientID]),
		})
	}

	byAssignee := make(map[uuid.UUID]repos.AssigneeStat, len(stats))
	for _, st := range stats {
		byAssignee[st.AssignedTo] = st
	}
	team := make([]*workflow.TeamPerformance, 0)
	for _, u := range users {
		if u.Role != types.RoleTeam {
			continue
		}
		st := byAssignee[u.ID]
		team = append(team, &workflow.TeamPerformance{
			PublicUser:     *types.Sanitize(u),
			TasksAssigned:  int(st.Assigned),
			TasksCompleted: int(st.Completed),
		})
	}

	return &types.Reports{
		Summary: workflow.ReportSummary{
			TotalProjects:     len(projects),
			CompletedProjects: int(completedProjects),
			TotalTasks:        int(totalTasks),
			CompletedTasks:    int(completedTasks),
		},
		ProjectStats:    projectStats,
		TeamPerformance: team,
	}, nil
}

func wrapReportErr(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("reports: load %s: %w", what, err)
}
