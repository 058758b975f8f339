package aggregates

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/data/repos"
	domainagg "github.com/raohuzaifa081-blip/webotixscrm/internal/domain/aggregates"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/dbctx"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
)

type BaseDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner TxRunner
	Hooks  Hooks
	Locks  *ProjectLocks

	Users    repos.UserRepo
	Projects repos.ProjectRepo
	Tasks    repos.TaskRepo
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.Locks == nil {
		d.Locks = NewProjectLocks()
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Users == nil {
		d.Users = repos.NewUserRepo(d.DB, d.Log)
	}
	if d.Projects == nil {
		d.Projects = repos.NewProjectRepo(d.DB, d.Log)
	}
	if d.Tasks == nil {
		d.Tasks = repos.NewTaskRepo(d.DB, d.Log)
	}
	return d
}

func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}
	err := deps.Runner.InTx(ctx, fn)
	mapped := MapError(op, err)

	status := "success"
	if mapped != nil {
		status = aggregateErrorStatus(mapped)
		if domainagg.IsCode(mapped, domainagg.CodeConflict) {
			deps.Hooks.IncConflict(op)
		}
		if domainagg.IsCode(mapped, domainagg.CodeRetryable) {
			deps.Hooks.IncRetry(op)
		}
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domainagg.CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}
