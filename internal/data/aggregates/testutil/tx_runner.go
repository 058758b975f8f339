package testutil

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/data/aggregates"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/dbctx"
)

// InjectedTxRunner wraps a real database transaction and lets tests force a
// failure at begin or commit time. With a nil DB the body runs without a
// transaction.
type InjectedTxRunner struct {
	DB *gorm.DB

	mu sync.Mutex

	FailBegin  error
	FailCommit error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin := r.FailBegin
	failCommit := r.FailCommit
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}

	run := func(tx *gorm.DB) error {
		if fn != nil {
			if err := fn(dbctx.Context{Ctx: ctx, Tx: tx}); err != nil {
				return err
			}
		}
		if failCommit != nil {
			return failCommit
		}
		return nil
	}

	var err error
	if r.DB != nil {
		err = r.DB.WithContext(ctx).Transaction(run)
	} else {
		err = run(nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.RollbackCalls++
		return err
	}
	r.CommitCalls++
	return nil
}

// ErrInjected is a convenience failure for commit/begin injection.
var ErrInjected = errors.New("injected failure")
