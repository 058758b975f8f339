package aggregates

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/raohuzaifa081-blip/webotixscrm/internal/domain"
	domainagg "github.com/raohuzaifa081-blip/webotixscrm/internal/domain/aggregates"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/domain/user"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/domain/workflow"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/dbctx"
)

// OnboardClientInput carries already validated values; SecretHash is a bcrypt
// hash.
type OnboardClientInput struct {
	Name        string
	Email       string
	SecretHash  string
	ProjectName string
	Deadline    datatypes.Date
}

type OnboardClientResult struct {
	Client  *types.User
	Project *types.Project
	Tasks   []*types.Task
}

type OnboardingAggregate interface {
	domainagg.Aggregate
	OnboardClient(ctx context.Context, in OnboardClientInput) (*OnboardClientResult, error)
}

type onboardingAggregate struct {
	deps     BaseDeps
	progress ProgressAggregate
}

func NewOnboardingAggregate(deps BaseDeps, progress ProgressAggregate) OnboardingAggregate {
	deps = deps.withDefaults()
	if progress == nil {
		progress = NewProgressAggregate(deps)
	}
	return &onboardingAggregate{deps: deps, progress: progress}
}

func (a *onboardingAggregate) Contract() domainagg.Contract {
	return domainagg.Contract{
		Name:             "OnboardingAggregate",
		WriteTxOwnership: domainagg.WriteTxOwnedByAggregate,
		Serializes:       domainagg.LockNone,
		Notes:            "client user, project and stage tasks are created all-or-nothing",
	}
}

const duplicateClientMessage = "User already exists"

func (a *onboardingAggregate) OnboardClient(ctx context.Context, in OnboardClientInput) (*OnboardClientResult, error) {
	const op = "workflow.onboard_client"
	email := user.NormalizeEmail(in.Email)
	if strings.TrimSpace(in.Name) == "" || email == "" || in.SecretHash == "" || strings.TrimSpace(in.ProjectName) == "" {
		return nil, domainagg.Validation(op, "name, email, secret and projectName are required")
	}

	var out *OnboardClientResult
	err := executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
		exists, err := a.deps.Users.EmailExists(dbc, email)
		if err != nil {
			return err
		}
		if exists {
			return domainagg.DuplicateIdentity(op, duplicateClientMessage)
		}

		clients, err := a.deps.Users.Create(dbc, []*types.User{{
			ID:     uuid.New(),
			Name:   strings.TrimSpace(in.Name),
			Email:  email,
			Secret: in.SecretHash,
			Role:   types.RoleClient,
		}})
		if err != nil {
			if IsUniqueViolation(err) {
				return domainagg.NewError(domainagg.CodeDuplicateIdentity, op, duplicateClientMessage, err)
			}
			return err
		}
		client := clients[0]

		projects, err := a.deps.Projects.Create(dbc, []*types.Project{{
			ID:       uuid.New(),
			Name:     strings.TrimSpace(in.ProjectName),
			ClientID: client.ID,
			Status:   types.ProjectOnboarding,
			Deadline: in.Deadline,
			Progress: 0,
		}})
		if err != nil {
			return err
		}
		project := projects[0]

		team, err := a.deps.Users.ListByRole(dbc, types.RoleTeam)
		if err != nil {
			return err
		}
		tasks, err := a.deps.Tasks.Create(dbc, buildStageTasks(project.ID, team))
		if err != nil {
			return err
		}

		res, err := a.progress.Recompute(dbc, project.ID)
		if err != nil {
			return err
		}
		out = &OnboardClientResult{Client: client, Project: res.Project, Tasks: tasks}
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.deps.Log.Info("client onboarded",
		"client_id", out.Client.ID.String(),
		"project_id", out.Project.ID.String(),
		"tasks", len(out.Tasks),
	)
	return out, nil
}

// buildStageTasks creates one pending task per template stage. team must be
// in directory order; the first member whose specialization matches a stage
// owns it.
func buildStageTasks(projectID uuid.UUID, team []*types.User) []*types.Task {
	stages := workflow.Stages()
	out := make([]*types.Task, 0, len(stages))
	for _, stage := range stages {
		var assignee *uuid.UUID
		for _, member := range team {
			if member.Role == types.RoleTeam && member.HasSpecialization(stage.Label) {
				id := member.ID
				assignee = &id
				break
			}
		}
		out = append(out, &types.Task{
			ID:         uuid.New(),
			ProjectID:  projectID,
			Title:      stage.TaskTitle(),
			Order:      stage.Order,
			Status:     types.TaskPending,
			AssignedTo: assignee,
		})
	}
	return out
}
