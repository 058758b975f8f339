package domain

import (
	"github.com/raohuzaifa081-blip/webotixscrm/internal/domain/user"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/domain/workflow"
)

type User = user.User
type PublicUser = user.PublicUser
type Role = user.Role

func Sanitize(u *User) *PublicUser { return user.Sanitize(u) }

func SanitizeAll(users []*User) []*PublicUser { return user.SanitizeAll(users) }

const (
	RoleAdmin  = user.RoleAdmin
	RoleTeam   = user.RoleTeam
	RoleClient = user.RoleClient
)

type Project = workflow.Project
type ProjectStatus = workflow.ProjectStatus
type Task = workflow.Task
type TaskStatus = workflow.TaskStatus

const (
	ProjectOnboarding = workflow.ProjectOnboarding
	ProjectInProgress = workflow.ProjectInProgress
	ProjectReview     = workflow.ProjectReview
	ProjectCompleted  = workflow.ProjectCompleted

	TaskPending    = workflow.TaskPending
	TaskInProgress = workflow.TaskInProgress
	TaskCompleted  = workflow.TaskCompleted
)

type ProjectView = workflow.ProjectView
type TaskView = workflow.TaskView
type ProjectWithTasks = workflow.ProjectWithTasks
type ClientDashboard = workflow.ClientDashboard
type Reports = workflow.Reports

// Models lists every persisted entity in migration order.
func Models() []any {
	return []any{
		&user.User{},
		&workflow.Project{},
		&workflow.Task{},
	}
}
