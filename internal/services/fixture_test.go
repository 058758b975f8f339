package services

import (
	"context"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/data/aggregates"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/data/repos"
	repotest "github.com/raohuzaifa081-blip/webotixscrm/internal/data/repos/testutil"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/observability"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/dbctx"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/mailer"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/realtime"
)

type recordingEmitter struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (e *recordingEmitter) Emit(_ context.Context, msg realtime.SSEMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.msgs = append(e.msgs, msg)
}

func (e *recordingEmitter) messages() []realtime.SSEMessage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]realtime.SSEMessage(nil), e.msgs...)
}

func (e *recordingEmitter) count(channel string, event realtime.SSEEvent) int {
	n := 0
	for _, m := range e.messages() {
		if m.Channel == channel && m.Event == event {
			n++
		}
	}
	return n
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

type fixture struct {
	db       *gorm.DB
	users    repos.UserRepo
	projects repos.ProjectRepo
	tasks    repos.TaskRepo
	emitter  *recordingEmitter
	mail     *recordingMailer
	metrics  *observability.Metrics
	notifier WorkflowNotifier

	directory DirectoryService
	auth      AuthService
	workflow  WorkflowService
	ledger    TaskLedger
	reports   ReportService
	dashboard DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	f := &fixture{
		db:       db,
		users:    repos.NewUserRepo(db, log),
		projects: repos.NewProjectRepo(db, log),
		tasks:    repos.NewTaskRepo(db, log),
		emitter:  &recordingEmitter{},
		mail:     &recordingMailer{},
		metrics:  observability.NewMetrics(),
	}
	deps := aggregates.BaseDeps{
		DB:       db,
		Log:      log,
		Hooks:    aggregates.NewObservabilityHooks(f.metrics, nil, 0),
		Locks:    aggregates.NewProjectLocks(),
		Users:    f.users,
		Projects: f.projects,
		Tasks:    f.tasks,
	}
	progress := aggregates.NewProgressAggregate(deps)
	notifier := NewWorkflowNotifier(log, f.emitter, f.mail)
	f.notifier = notifier

	f.directory = NewDirectoryService(log, f.users, bcrypt.MinCost)
	f.auth = NewAuthService(log, f.directory, AuthConfig{JWTSecret: "test-secret", Issuer: "webotixs-test"})
	f.workflow = NewWorkflowService(log, f.directory, aggregates.NewOnboardingAggregate(deps, progress), notifier, f.metrics)
	f.ledger = NewTaskLedger(log, f.tasks, f.projects, aggregates.NewTaskStatusAggregate(deps, progress), notifier, f.metrics)
	f.reports = NewReportService(log, f.users, f.projects, f.tasks)
	f.dashboard = NewDashboardService(log, f.projects, f.tasks)
	return f
}

// sentMail waits for queued welcome mails and returns what was sent.
func (f *fixture) sentMail() []mailer.Message {
	f.notifier.Wait()
	f.mail.mu.Lock()
	defer f.mail.mu.Unlock()
	return append([]mailer.Message(nil), f.mail.sent...)
}

func repoCtx(ctx context.Context) dbctx.Context { return dbctx.Context{Ctx: ctx} }
