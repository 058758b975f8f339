package aggregates

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	domainagg "github.com/raohuzaifa081-blip/webotixscrm/internal/domain/aggregates"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/dbctx"
)

// TxRunner is the transaction boundary for onboarding, task status writes and
// seeding.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

// DefaultLockTimeout bounds how long a write waits on a project row lock.
const DefaultLockTimeout = 5 * time.Second

type gormTxRunner struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db, lockTimeout: DefaultLockTimeout}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domainagg.NewError(domainagg.CodeInternal, "workflow.tx", "transaction runner has nil db", nil)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A stuck FOR UPDATE surfaces as SQLSTATE 55P03 instead of hanging the request.
		if tx.Dialector.Name() == "postgres" && r.lockTimeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}
