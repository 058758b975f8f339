package workflow

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/raohuzaifa081-blip/webotixscrm/internal/domain"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/dbctx"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
)

// AssigneeStat is the per-assignee task tally used by reports.
type AssigneeStat struct {
	AssignedTo uuid.UUID
	Assigned   int64
	Completed  int64
}

type TaskRepo interface {
	Create(dbc dbctx.Context, tasks []*types.Task) ([]*types.Task, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Task, error)
	ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.Task, error)
	ListByProjects(dbc dbctx.Context, projectIDs []uuid.UUID) ([]*types.Task, error)
	ListByAssignee(dbc dbctx.Context, userID uuid.UUID) ([]*types.Task, error)
	CountAll(dbc dbctx.Context) (int64, error)
	CountByStatus(dbc dbctx.Context, status types.TaskStatus) (int64, error)
	StatsByAssignee(dbc dbctx.Context) ([]AssigneeStat, error)
	UpdateStatus(dbc dbctx.Context, id uuid.UUID, status types.TaskStatus) error
}

type taskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	return &taskRepo{db: db, log: baseLog.With("repo", "TaskRepo")}
}

func (r *taskRepo) Create(dbc dbctx.Context, tasks []*types.Task) ([]*types.Task, error) {
	if len(tasks) == 0 {
		return []*types.Task{}, nil
	}
	for _, t := range tasks {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
	}
	if err := dbc.DB(r.db).Create(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Task, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var t types.Task
	err := dbc.DB(r.db).Where("id = ?", id).Take(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *taskRepo) ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.Task, error) {
	var out []*types.Task
	if projectID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("project_id = ?", projectID).
		Order("stage_order ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taskRepo) ListByProjects(dbc dbctx.Context, projectIDs []uuid.UUID) ([]*types.Task, error) {
	var out []*types.Task
	if len(projectIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("project_id IN ?", projectIDs).
		Order("project_id ASC, stage_order ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taskRepo) ListByAssignee(dbc dbctx.Context, userID uuid.UUID) ([]*types.Task, error) {
	var out []*types.Task
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("assigned_to = ?", userID).
		Order("created_at ASC, stage_order ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taskRepo) CountAll(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.Task{}).Count(&n).Error
	return n, err
}

func (r *taskRepo) CountByStatus(dbc dbctx.Context, status types.TaskStatus) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.Task{}).Where("status = ?", status).Count(&n).Error
	return n, err
}

func (r *taskRepo) StatsByAssignee(dbc dbctx.Context) ([]AssigneeStat, error) {
	var rows []AssigneeStat
	err := dbc.DB(r.db).
		Model(&types.Task{}).
		Select("assigned_to, COUNT(*) AS assigned, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS completed", types.TaskCompleted).
		Where("assigned_to IS NOT NULL").
		Group("assigned_to").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *taskRepo) UpdateStatus(dbc dbctx.Context, id uuid.UUID, status types.TaskStatus) error {
	res := dbc.DB(r.db).
		Model(&types.Task{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
