package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/domain/user"
)

// Read models assembled at the query boundary. Field names follow the public
// JSON contract rather than the storage columns.

type ProjectView struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	ClientID  uuid.UUID     `json:"clientId"`
	Status    ProjectStatus `json:"status"`
	Deadline  string        `json:"deadline"`
	Progress  int           `json:"progress"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func NewProjectView(p *Project) *ProjectView {
	if p == nil {
		return nil
	}
	return &ProjectView{
		ID:        p.ID,
		Name:      p.Name,
		ClientID:  p.ClientID,
		Status:    p.Status,
		Deadline:  p.DeadlineString(),
		Progress:  p.Progress,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// UntitledProject is shown when a task's project cannot be resolved.
const UntitledProject = "Untitled Project"

type TaskView struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   uuid.UUID  `json:"projectId"`
	Title       string     `json:"title"`
	Order       int        `json:"order"`
	Status      TaskStatus `json:"status"`
	AssignedTo  *uuid.UUID `json:"assignedTo"`
	ProjectName string     `json:"projectName,omitempty"`
	CanUpdate   *bool      `json:"canUpdate,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func NewTaskView(t *Task, projectName string) *TaskView {
	if t == nil {
		return nil
	}
	return &TaskView{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Order:       t.Order,
		Status:      t.Status,
		AssignedTo:  t.AssignedTo,
		ProjectName: projectName,
		UpdatedAt:   t.UpdatedAt,
	}
}

// WithCanUpdate marks whether caller owns the task.
func (v *TaskView) WithCanUpdate(t *Task, caller uuid.UUID) *TaskView {
	ok := t.IsAssignedTo(caller)
	v.CanUpdate = &ok
	return v
}

type ProjectWithTasks struct {
	ProjectView
	Tasks []*TaskView `json:"tasks"`
}

type ClientDashboard struct {
	Project *ProjectView `json:"project"`
	Tasks   []*TaskView  `json:"tasks"`
}

type ReportSummary struct {
	TotalProjects     int `json:"totalProjects"`
	CompletedProjects int `json:"completedProjects"`
	TotalTasks        int `json:"totalTasks"`
	CompletedTasks    int `json:"completedTasks"`
}

type ProjectStat struct {
	ID       uuid.UUID        `json:"id"`
	Name     string           `json:"name"`
	Status   ProjectStatus    `json:"status"`
	Progress int              `json:"progress"`
	Client   *user.PublicUser `json:"client"`
}

type TeamPerformance struct {
	user.PublicUser
	TasksAssigned  int `json:"tasksAssigned"`
	TasksCompleted int `json:"tasksCompleted"`
}

type Reports struct {
	Summary         ReportSummary      `json:"summary"`
	ProjectStats    []*ProjectStat     `json:"projectStats"`
	TeamPerformance []*TeamPerformance `json:"teamPerformance"`
}
