package aggregates

import (
	"context"

	"github.com/google/uuid"

	types "github.com/raohuzaifa081-blip/webotixscrm/internal/domain"
	domainagg "github.com/raohuzaifa081-blip/webotixscrm/internal/domain/aggregates"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/domain/workflow"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/dbctx"
)

type SetTaskStatusInput struct {
	TaskID   uuid.UUID
	CallerID uuid.UUID
	Status   string
}

type SetTaskStatusResult struct {
	Task     *types.Task
	Previous types.TaskStatus
	Progress *ProgressResult
}

type TaskStatusAggregate interface {
	domainagg.Aggregate
	SetStatus(ctx context.Context, in SetTaskStatusInput) (*SetTaskStatusResult, error)
}

type taskStatusAggregate struct {
	deps     BaseDeps
	progress ProgressAggregate
}

func NewTaskStatusAggregate(deps BaseDeps, progress ProgressAggregate) TaskStatusAggregate {
	deps = deps.withDefaults()
	if progress == nil {
		progress = NewProgressAggregate(deps)
	}
	return &taskStatusAggregate{deps: deps, progress: progress}
}

func (a *taskStatusAggregate) Contract() domainagg.Contract {
	return domainagg.Contract{
		Name:             "TaskStatusAggregate",
		WriteTxOwnership: domainagg.WriteTxOwnedByAggregate,
		Serializes:       domainagg.LockProject,
		Notes:            "owner-only status change; project recomputed in the same transaction",
	}
}

const (
	taskNotFoundMessage = "Task not found"
	notOwnerMessage     = "You can only update your own tasks"
)

func (a *taskStatusAggregate) SetStatus(ctx context.Context, in SetTaskStatusInput) (*SetTaskStatusResult, error) {
	const op = "task.set_status"
	if in.TaskID == uuid.Nil {
		return nil, domainagg.NotFound(op, taskNotFoundMessage)
	}
	// The project id is needed before the transaction to take its lock.
	current, err := a.deps.Tasks.GetByID(dbctx.Context{Ctx: ctx}, in.TaskID)
	if err != nil {
		return nil, MapError(op, err)
	}
	if current == nil {
		return nil, domainagg.NotFound(op, taskNotFoundMessage)
	}
	status, ok := workflow.ParseTaskStatus(in.Status)
	if !ok {
		return nil, domainagg.Validation(op, "status must be one of Pending, In Progress, Completed")
	}

	unlock := a.deps.Locks.Lock(current.ProjectID)
	defer unlock()

	var out *SetTaskStatusResult
	err = executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
		task, err := a.deps.Tasks.GetByID(dbc, in.TaskID)
		if err != nil {
			return err
		}
		if task == nil {
			return domainagg.NotFound(op, taskNotFoundMessage)
		}
		if !task.IsAssignedTo(in.CallerID) {
			return domainagg.Forbidden(op, notOwnerMessage)
		}
		previous := task.Status
		if err := a.deps.Tasks.UpdateStatus(dbc, task.ID, status); err != nil {
			return err
		}
		task, err = a.deps.Tasks.GetByID(dbc, task.ID)
		if err != nil {
			return err
		}
		progress, err := a.progress.Recompute(dbc, task.ProjectID)
		if err != nil {
			return err
		}
		out = &SetTaskStatusResult{Task: task, Previous: previous, Progress: progress}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
