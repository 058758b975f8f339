package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/data/aggregates"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/data/repos"
	types "github.com/raohuzaifa081-blip/webotixscrm/internal/domain"
	domainagg "github.com/raohuzaifa081-blip/webotixscrm/internal/domain/aggregates"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/domain/workflow"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/observability"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/dbctx"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
)

// TaskLedger reads tasks and applies owner-only status changes.
type TaskLedger interface {
	GetByID(ctx context.Context, id uuid.UUID) (*types.Task, error)
	ListByAssignee(ctx context.Context, userID uuid.UUID) ([]*types.TaskView, error)
	ListAllWithTasks(ctx context.Context, callerID uuid.UUID) ([]*types.ProjectWithTasks, error)
	// SetStatus takes the raw path id; anything that does not parse is an
	// unknown task.
	SetStatus(ctx context.Context, rawTaskID, status string, callerID uuid.UUID) (*types.Task, error)
}

type taskLedger struct {
	log         *logger.Logger
	taskRepo    repos.TaskRepo
	projectRepo repos.ProjectRepo
	taskStatus  aggregates.TaskStatusAggregate
	notifier    WorkflowNotifier
	metrics     *observability.Metrics
}

func NewTaskLedger(
	log *logger.Logger,
	taskRepo repos.TaskRepo,
	projectRepo repos.ProjectRepo,
	taskStatus aggregates.TaskStatusAggregate,
	notifier WorkflowNotifier,
	metrics *observability.Metrics,
) TaskLedger {
	return &taskLedger{
		log:         log.With("service", "TaskLedger"),
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		taskStatus:  taskStatus,
		notifier:    notifier,
		metrics:     metrics,
	}
}

func (l *taskLedger) GetByID(ctx context.Context, id uuid.UUID) (*types.Task, error) {
	t, err := l.taskRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (l *taskLedger) ListByAssignee(ctx context.Context, userID uuid.UUID) ([]*types.TaskView, error) {
	dbc := dbctx.Context{Ctx: ctx}
	tasks, err := l.taskRepo.ListByAssignee(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks by assignee: %w", err)
	}
	names, err := l.projectNames(dbc, tasks)
	if err != nil {
		return nil, err
	}
	out := make([]*types.TaskView, 0, len(tasks))
	for _, t := range tasks {
		name, ok := names[t.ProjectID]
		if !ok || strings.TrimSpace(name) == "" {
			name = workflow.UntitledProject
		}
		out = append(out, workflow.NewTaskView(t, name))
	}
	return out, nil
}

func (l *taskLedger) projectNames(dbc dbctx.Context, tasks []*types.Task) (map[uuid.UUID]string, error) {
	seen := map[uuid.UUID]bool{}
	ids := make([]uuid.UUID, 0, len(tasks))
	for _, t := range tasks {
		if !seen[t.ProjectID] {
			seen[t.ProjectID] = true
			ids = append(ids, t.ProjectID)
		}
	}
	projects, err := l.projectRepo.GetByIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("load task projects: %w", err)
	}
	out := make(map[uuid.UUID]string, len(projects))
	for _, p := range projects {
		out[p.ID] = p.Name
	}
	return out, nil
}

func (l *taskLedger) ListAllWithTasks(ctx context.Context, callerID uuid.UUID) ([]*types.ProjectWithTasks, error) {
	dbc := dbctx.Context{Ctx: ctx}
	projects, err := l.projectRepo.ListAll(dbc)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	tasks, err := l.taskRepo.ListByProjects(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("list project tasks: %w", err)
	}
	byProject := make(map[uuid.UUID][]*types.Task, len(projects))
	for _, t := range tasks {
		byProject[t.ProjectID] = append(byProject[t.ProjectID], t)
	}

	out := make([]*types.ProjectWithTasks, 0, len(projects))
	for _, p := range projects {
		views := make([]*types.TaskView, 0, len(byProject[p.ID]))
		for _, t := range byProject[p.ID] {
			views = append(views, workflow.NewTaskView(t, "").WithCanUpdate(t, callerID))
		}
		out = append(out, &types.ProjectWithTasks{
			ProjectView: *workflow.NewProjectView(p),
			Tasks:       views,
		})
	}
	return out, nil
}

func (l *taskLedger) SetStatus(ctx context.Context, rawTaskID, status string, callerID uuid.UUID) (*types.Task, error) {
	taskID, err := uuid.Parse(strings.TrimSpace(rawTaskID))
	if err != nil {
		return nil, domainagg.NotFound("task.set_status", "Task not found")
	}
	res, err := l.taskStatus.SetStatus(ctx, aggregates.SetTaskStatusInput{
		TaskID:   taskID,
		CallerID: callerID,
		Status:   status,
	})
	if err != nil {
		return nil, err
	}

	l.metrics.IncTaskStatusChange(string(res.Task.Status))
	var project *types.Project
	changed := false
	if res.Progress != nil {
		project = res.Progress.Project
		changed = res.Progress.Changed
		if res.Progress.Completed {
			l.metrics.IncProjectCompleted()
			l.log.Info("project completed", "project_id", project.ID.String())
		}
	}
	if l.notifier != nil {
		l.notifier.TaskStatusChanged(ctx, res.Task, res.Previous, project, changed)
	}
	return res.Task, nil
}
