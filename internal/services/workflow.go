package services

import (
	"context"
	"strings"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/data/aggregates"
	domainagg "github.com/raohuzaifa081-blip/webotixscrm/internal/domain/aggregates"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/domain/workflow"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/observability"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
)

type OnboardClientRequest struct {
	Name        string
	Email       string
	Secret      string
	ProjectName string
	Deadline    string
}

// WorkflowService provisions a client, their project and its stage tasks.
type WorkflowService interface {
	OnboardClient(ctx context.Context, req OnboardClientRequest) (*aggregates.OnboardClientResult, error)
}

type workflowService struct {
	log        *logger.Logger
	directory  DirectoryService
	onboarding aggregates.OnboardingAggregate
	notifier   WorkflowNotifier
	metrics    *observability.Metrics
}

func NewWorkflowService(
	log *logger.Logger,
	directory DirectoryService,
	onboarding aggregates.OnboardingAggregate,
	notifier WorkflowNotifier,
	metrics *observability.Metrics,
) WorkflowService {
	return &workflowService{
		log:        log.With("service", "WorkflowService"),
		directory:  directory,
		onboarding: onboarding,
		notifier:   notifier,
		metrics:    metrics,
	}
}

func (s *workflowService) OnboardClient(ctx context.Context, req OnboardClientRequest) (*aggregates.OnboardClientResult, error) {
	const op = "workflow.onboard_client"
	var missing []string
	for _, f := range []struct{ name, val string }{
		{"name", req.Name},
		{"email", req.Email},
		{"secret", req.Secret},
		{"projectName", req.ProjectName},
		{"deadline", req.Deadline},
	} {
		if strings.TrimSpace(f.val) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, domainagg.Validation(op, "missing required fields: "+strings.Join(missing, ", "))
	}
	if !strings.Contains(req.Email, "@") {
		return nil, domainagg.Validation(op, "email is not valid")
	}
	deadline, err := workflow.ParseDeadline(req.Deadline)
	if err != nil {
		return nil, domainagg.Validation(op, "deadline must be a date in YYYY-MM-DD format")
	}
	hash, err := s.directory.HashSecret(req.Secret)
	if err != nil {
		return nil, err
	}

	res, err := s.onboarding.OnboardClient(ctx, aggregates.OnboardClientInput{
		Name:        req.Name,
		Email:       req.Email,
		SecretHash:  hash,
		ProjectName: req.ProjectName,
		Deadline:    deadline,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncClientOnboarded()
	if s.notifier != nil {
		s.notifier.ClientOnboarded(ctx, res.Client, res.Project)
	}
	return res, nil
}

