package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	types "github.com/raohuzaifa081-blip/webotixscrm/internal/domain"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/domain/user"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/domain/workflow"
)

// fixtureClock hands out strictly increasing creation times so directory
// order in tests follows insertion order.
var (
	clockMu      sync.Mutex
	fixtureClock = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
)

func nextCreatedAt() time.Time {
	clockMu.Lock()
	defer clockMu.Unlock()
	fixtureClock = fixtureClock.Add(time.Second)
	return fixtureClock
}

// HashSecret uses the minimum bcrypt cost to keep tests fast.
func HashSecret(tb testing.TB, secret string) string {
	tb.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	if err != nil {
		tb.Fatalf("hash secret: %v", err)
	}
	return string(h)
}

type UserOpt func(*types.User)

func WithSpecialization(s string) UserOpt {
	return func(u *types.User) { u.Specialization = &s }
}

func WithSecret(tb testing.TB, secret string) UserOpt {
	return func(u *types.User) { u.Secret = HashSecret(tb, secret) }
}

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, role types.Role, email string, opts ...UserOpt) *types.User {
	tb.Helper()
	now := nextCreatedAt()
	u := &types.User{
		ID:        uuid.New(),
		Name:      string(role) + " user",
		Email:     user.NormalizeEmail(email),
		Secret:    "not-a-hash",
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(u)
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedProject(tb testing.TB, ctx context.Context, tx *gorm.DB, clientID uuid.UUID, name string) *types.Project {
	tb.Helper()
	deadline, _ := workflow.ParseDeadline("2025-06-01")
	now := nextCreatedAt()
	p := &types.Project{
		ID:        uuid.New(),
		Name:      name,
		ClientID:  clientID,
		Status:    types.ProjectOnboarding,
		Deadline:  deadline,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed project: %v", err)
	}
	return p
}

func SeedTask(tb testing.TB, ctx context.Context, tx *gorm.DB, projectID uuid.UUID, order int, status types.TaskStatus, assignee *uuid.UUID) *types.Task {
	tb.Helper()
	now := nextCreatedAt()
	t := &types.Task{
		ID:         uuid.New(),
		ProjectID:  projectID,
		Title:      "Stage task",
		Order:      order,
		Status:     status,
		AssignedTo: assignee,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed task: %v", err)
	}
	return t
}
