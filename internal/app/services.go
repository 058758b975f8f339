package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/data/aggregates"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/data/seed"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/observability"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/mailer"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/realtime/bus"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/services"
)

type Services struct {
	Directory     services.DirectoryService
	Auth          services.AuthService
	Workflow      services.WorkflowService
	TaskLedger    services.TaskLedger
	Reports       services.ReportService
	Dashboard     services.DashboardService
	Subscriptions services.SubscriptionService
	Notifier      services.WorkflowNotifier

	Seeder *seed.Seeder
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, sseBus bus.Bus, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	if cfg.Auth.BcryptCost <= 0 {
		return Services{}, fmt.Errorf("auth.bcrypt_cost must be positive")
	}

	runner := aggregates.NewGormTxRunner(db)
	deps := aggregates.BaseDeps{
		DB:       db,
		Log:      log,
		Runner:   runner,
		Hooks:    aggregates.NewObservabilityHooks(metrics, log, cfg.DB.SlowQuery),
		Locks:    aggregates.NewProjectLocks(),
		Users:    repos.User,
		Projects: repos.Project,
		Tasks:    repos.Task,
	}
	progress := aggregates.NewProgressAggregate(deps)
	onboarding := aggregates.NewOnboardingAggregate(deps, progress)
	taskStatus := aggregates.NewTaskStatusAggregate(deps, progress)

	emitter := &services.BusEmitter{Bus: sseBus, Log: log, Metrics: metrics}
	notifier := services.NewWorkflowNotifier(log, emitter, mailer.New(log, cfg.Mailer()))

	directory := services.NewDirectoryService(log, repos.User, cfg.Auth.BcryptCost)
	auth := services.NewAuthService(log, directory, cfg.AuthService())

	return Services{
		Directory:     directory,
		Auth:          auth,
		Workflow:      services.NewWorkflowService(log, directory, onboarding, notifier, metrics),
		TaskLedger:    services.NewTaskLedger(log, repos.Task, repos.Project, taskStatus, notifier, metrics),
		Reports:       services.NewReportService(log, repos.User, repos.Project, repos.Task),
		Dashboard:     services.NewDashboardService(log, repos.Project, repos.Task),
		Subscriptions: services.NewSubscriptionService(repos.Project),
		Notifier:      notifier,
		Seeder:        seed.NewSeeder(log, runner, repos.User, repos.Project, repos.Task, progress).WithCost(cfg.Auth.BcryptCost),
	}, nil
}
