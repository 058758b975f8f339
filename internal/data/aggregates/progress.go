package aggregates

import (
	"context"

	"github.com/google/uuid"

	types "github.com/raohuzaifa081-blip/webotixscrm/internal/domain"
	domainagg "github.com/raohuzaifa081-blip/webotixscrm/internal/domain/aggregates"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/domain/workflow"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/dbctx"
)

// ProgressResult is the project state after a recomputation.
type ProgressResult struct {
	Project *types.Project
	// Changed is true when progress or status was written.
	Changed bool
	// Completed is true when this recomputation latched the project to Completed.
	Completed bool
}

type ProgressAggregate interface {
	domainagg.Aggregate
	// Recompute derives progress/status from the project's tasks inside the
	// caller's transaction. The project row is locked on Postgres.
	Recompute(dbc dbctx.Context, projectID uuid.UUID) (*ProgressResult, error)
	// RecomputeProject runs Recompute in its own transaction under the
	// project's in-process lock.
	RecomputeProject(ctx context.Context, projectID uuid.UUID) (*ProgressResult, error)
}

type progressAggregate struct {
	deps BaseDeps
}

func NewProgressAggregate(deps BaseDeps) ProgressAggregate {
	return &progressAggregate{deps: deps.withDefaults()}
}

func (a *progressAggregate) Contract() domainagg.Contract {
	return domainagg.Contract{
		Name:             "ProgressAggregate",
		WriteTxOwnership: domainagg.WriteTxJoinsCaller,
		Serializes:       domainagg.LockProject,
		Notes:            "progress = round(100*completed/total); status latches to Completed at 100",
	}
}

func (a *progressAggregate) Recompute(dbc dbctx.Context, projectID uuid.UUID) (*ProgressResult, error) {
	const op = "project.recompute"
	if dbc.Tx == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "recompute requires a transaction", nil)
	}
	project, err := a.deps.Projects.GetByIDForUpdate(dbc, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domainagg.NotFound(op, "Project not found")
	}
	tasks, err := a.deps.Tasks.ListByProject(dbc, projectID)
	if err != nil {
		return nil, err
	}

	wasCompleted := project.Status == workflow.ProjectCompleted
	if !workflow.ApplyProgress(project, tasks) {
		return &ProgressResult{Project: project}, nil
	}
	if err := a.deps.Projects.UpdateProgress(dbc, project.ID, project.Progress, project.Status); err != nil {
		return nil, err
	}
	return &ProgressResult{
		Project:   project,
		Changed:   true,
		Completed: !wasCompleted && project.Status == workflow.ProjectCompleted,
	}, nil
}

func (a *progressAggregate) RecomputeProject(ctx context.Context, projectID uuid.UUID) (*ProgressResult, error) {
	unlock := a.deps.Locks.Lock(projectID)
	defer unlock()

	var out *ProgressResult
	err := executeWrite(ctx, a.deps, "project.recompute", func(dbc dbctx.Context) error {
		res, err := a.Recompute(dbc, projectID)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
