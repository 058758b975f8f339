// Package seed loads demo identities and a sample project from a YAML fixture.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/data/aggregates"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/data/repos"
	types "github.com/raohuzaifa081-blip/webotixscrm/internal/domain"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/domain/user"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/domain/workflow"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/dbctx"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
)

//go:embed seed.yaml
var defaultFixture []byte

type Fixture struct {
	Users    []UserFixture    `yaml:"users"`
	Projects []ProjectFixture `yaml:"projects"`
}

type UserFixture struct {
	Name           string `yaml:"name"`
	Email          string `yaml:"email"`
	Secret         string `yaml:"secret"`
	Role           string `yaml:"role"`
	Specialization string `yaml:"specialization"`
}

type ProjectFixture struct {
	Name     string        `yaml:"name"`
	Client   string        `yaml:"client"`
	Status   string        `yaml:"status"`
	Deadline string        `yaml:"deadline"`
	Tasks    []TaskFixture `yaml:"tasks"`
}

type TaskFixture struct {
	Title    string `yaml:"title"`
	Status   string `yaml:"status"`
	Assignee string `yaml:"assignee"`
}

// Load parses a fixture file, or the embedded default when path is empty.
func Load(path string) (*Fixture, error) {
	raw := defaultFixture
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
		raw = b
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixture) validate() error {
	for i, u := range f.Users {
		if strings.TrimSpace(u.Email) == "" || strings.TrimSpace(u.Secret) == "" {
			return fmt.Errorf("seed user %d: email and secret required", i)
		}
		if !types.Role(u.Role).Valid() {
			return fmt.Errorf("seed user %s: unknown role %q", u.Email, u.Role)
		}
	}
	for _, p := range f.Projects {
		if _, err := workflow.ParseDeadline(p.Deadline); err != nil {
			return fmt.Errorf("seed project %s: deadline: %w", p.Name, err)
		}
		if !types.ProjectStatus(p.Status).Valid() {
			return fmt.Errorf("seed project %s: unknown status %q", p.Name, p.Status)
		}
		for _, t := range p.Tasks {
			if !types.TaskStatus(t.Status).Valid() {
				return fmt.Errorf("seed task %s: unknown status %q", t.Title, t.Status)
			}
		}
	}
	return nil
}

type Seeder struct {
	log      *logger.Logger
	runner   aggregates.TxRunner
	users    repos.UserRepo
	projects repos.ProjectRepo
	tasks    repos.TaskRepo
	progress aggregates.ProgressAggregate
	cost     int
}

func NewSeeder(log *logger.Logger, runner aggregates.TxRunner, users repos.UserRepo, projects repos.ProjectRepo, tasks repos.TaskRepo, progress aggregates.ProgressAggregate) *Seeder {
	return &Seeder{
		log:      log.With("service", "Seeder"),
		runner:   runner,
		users:    users,
		projects: projects,
		tasks:    tasks,
		progress: progress,
		cost:     bcrypt.DefaultCost,
	}
}

// WithCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *Seeder) WithCost(cost int) *Seeder {
	s.cost = cost
	return s
}

type Result struct {
	UsersCreated    int
	ProjectsCreated int
}

// Apply inserts whatever part of the fixture is missing. Users are matched by
// email and projects by client and name, so running it twice is a no-op.
func (s *Seeder) Apply(ctx context.Context, f *Fixture) (*Result, error) {
	res := &Result{}
	err := s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		byEmail := map[string]*types.User{}
		for _, uf := range f.Users {
			email := user.NormalizeEmail(uf.Email)
			existing, err := s.users.GetByEmail(dbc, email)
			if err != nil {
				return err
			}
			if existing != nil {
				byEmail[email] = existing
				continue
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(uf.Secret)), s.cost)
			if err != nil {
				return fmt.Errorf("hash secret: %w", err)
			}
			u := &types.User{
				ID:     uuid.New(),
				Name:   uf.Name,
				Email:  email,
				Secret: string(hash),
				Role:   types.Role(uf.Role),
			}
			if spec := strings.TrimSpace(uf.Specialization); spec != "" {
				u.Specialization = &spec
			}
			if _, err := s.users.Create(dbc, []*types.User{u}); err != nil {
				return err
			}
			byEmail[email] = u
			res.UsersCreated++
		}

		for _, pf := range f.Projects {
			client := byEmail[user.NormalizeEmail(pf.Client)]
			if client == nil {
				return fmt.Errorf("seed project %s: unknown client %s", pf.Name, pf.Client)
			}
			existing, err := s.projects.GetByClientID(dbc, client.ID)
			if err != nil {
				return err
			}
			if existing != nil && existing.Name == pf.Name {
				continue
			}
			deadline, _ := workflow.ParseDeadline(pf.Deadline)
			project := &types.Project{
				ID:       uuid.New(),
				Name:     pf.Name,
				ClientID: client.ID,
				Status:   types.ProjectStatus(pf.Status),
				Deadline: deadline,
			}
			if _, err := s.projects.Create(dbc, []*types.Project{project}); err != nil {
				return err
			}
			tasks := make([]*types.Task, 0, len(pf.Tasks))
			for i, tf := range pf.Tasks {
				t := &types.Task{
					ID:        uuid.New(),
					ProjectID: project.ID,
					Title:     tf.Title,
					Order:     i + 1,
					Status:    types.TaskStatus(tf.Status),
				}
				if tf.Assignee != "" {
					a := byEmail[user.NormalizeEmail(tf.Assignee)]
					if a == nil {
						return fmt.Errorf("seed task %s: unknown assignee %s", tf.Title, tf.Assignee)
					}
					id := a.ID
					t.AssignedTo = &id
				}
				tasks = append(tasks, t)
			}
			if _, err := s.tasks.Create(dbc, tasks); err != nil {
				return err
			}
			if _, err := s.progress.Recompute(dbc, project.ID); err != nil {
				return err
			}
			res.ProjectsCreated++
		}
		return nil
	})
	if err != nil {
		return nil, aggregates.MapError("seed.apply", err)
	}
	s.log.Info("seed applied", "users_created", res.UsersCreated, "projects_created", res.ProjectsCreated)
	return res, nil
}
