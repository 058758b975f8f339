package workflow

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/raohuzaifa081-blip/webotixscrm/internal/domain"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/dbctx"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
)

type ProjectRepo interface {
	Create(dbc dbctx.Context, projects []*types.Project) ([]*types.Project, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Project, error)
	// GetByIDForUpdate row-locks the project on databases that support it.
	GetByIDForUpdate(dbc dbctx.Context, id uuid.UUID) (*types.Project, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Project, error)
	GetByClientID(dbc dbctx.Context, clientID uuid.UUID) (*types.Project, error)
	ListAll(dbc dbctx.Context) ([]*types.Project, error)
	CountAll(dbc dbctx.Context) (int64, error)
	CountByStatus(dbc dbctx.Context, status types.ProjectStatus) (int64, error)
	UpdateProgress(dbc dbctx.Context, id uuid.UUID, progress int, status types.ProjectStatus) error
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return &projectRepo{db: db, log: baseLog.With("repo", "ProjectRepo")}
}

func (r *projectRepo) Create(dbc dbctx.Context, projects []*types.Project) ([]*types.Project, error) {
	if len(projects) == 0 {
		return []*types.Project{}, nil
	}
	for _, p := range projects {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
	}
	if err := dbc.DB(r.db).Create(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Project, error) {
	return r.take(dbc.DB(r.db), id)
}

func (r *projectRepo) GetByIDForUpdate(dbc dbctx.Context, id uuid.UUID) (*types.Project, error) {
	q := dbc.DB(r.db)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.take(q, id)
}

func (r *projectRepo) take(q *gorm.DB, id uuid.UUID) (*types.Project, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var p types.Project
	err := q.Where("id = ?", id).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Project, error) {
	var out []*types.Project
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("id IN ?", ids).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetByClientID returns the client's earliest project.
func (r *projectRepo) GetByClientID(dbc dbctx.Context, clientID uuid.UUID) (*types.Project, error) {
	if clientID == uuid.Nil {
		return nil, nil
	}
	var out []*types.Project
	if err := dbc.DB(r.db).
		Where("client_id = ?", clientID).
		Order("created_at ASC, id ASC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *projectRepo) ListAll(dbc dbctx.Context) ([]*types.Project, error) {
	var out []*types.Project
	if err := dbc.DB(r.db).Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *projectRepo) CountAll(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.Project{}).Count(&n).Error
	return n, err
}

func (r *projectRepo) CountByStatus(dbc dbctx.Context, status types.ProjectStatus) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.Project{}).Where("status = ?", status).Count(&n).Error
	return n, err
}

func (r *projectRepo) UpdateProgress(dbc dbctx.Context, id uuid.UUID, progress int, status types.ProjectStatus) error {
	return dbc.DB(r.db).
		Model(&types.Project{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"progress":   progress,
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}
