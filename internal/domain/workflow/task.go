package workflow

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskPending    TaskStatus = "Pending"
	TaskInProgress TaskStatus = "In Progress"
	TaskCompleted  TaskStatus = "Completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

// ParseTaskStatus matches the exact wire spelling.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	st := TaskStatus(s)
	return st, st.Valid()
}

// Task is one stage of a project's workflow. AssignedTo is fixed at creation.
type Task struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_task_project_order,priority:1;column:project_id" json:"project_id"`
	Title      string     `gorm:"not null;column:title" json:"title"`
	Order      int        `gorm:"not null;uniqueIndex:idx_task_project_order,priority:2;column:stage_order" json:"order"`
	Status     TaskStatus `gorm:"not null;column:status" json:"status"`
	AssignedTo *uuid.UUID `gorm:"type:uuid;index;column:assigned_to" json:"assigned_to,omitempty"`

	Project *Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Task) TableName() string { return "task" }

func (t *Task) IsAssignedTo(userID uuid.UUID) bool {
	return t != nil && t.AssignedTo != nil && userID != uuid.Nil && *t.AssignedTo == userID
}
