package workflow

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/domain/user"
)

type ProjectStatus string

const (
	ProjectOnboarding ProjectStatus = "Onboarding"
	ProjectInProgress ProjectStatus = "In Progress"
	ProjectReview     ProjectStatus = "Review"
	ProjectCompleted  ProjectStatus = "Completed"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectOnboarding, ProjectInProgress, ProjectReview, ProjectCompleted:
		return true
	}
	return false
}

// DeadlineLayout is the wire and input format of a project deadline.
const DeadlineLayout = "2006-01-02"

// Project is one client engagement. Progress and Status are derived from the
// project's tasks and only written through the progress aggregator.
type Project struct {
	ID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string         `gorm:"not null;column:name" json:"name"`
	ClientID uuid.UUID      `gorm:"type:uuid;not null;index;column:client_id" json:"client_id"`
	Status   ProjectStatus  `gorm:"not null;column:status" json:"status"`
	Deadline datatypes.Date `gorm:"not null;column:deadline" json:"deadline"`
	Progress int            `gorm:"not null;default:0;column:progress" json:"progress"`

	// Client is only declared for the foreign key; it is never loaded.
	Client *user.User `gorm:"foreignKey:ClientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Project) TableName() string { return "project" }

func (p *Project) DeadlineString() string {
	if p == nil {
		return ""
	}
	return time.Time(p.Deadline).Format(DeadlineLayout)
}

// ParseDeadline accepts a calendar date in YYYY-MM-DD form.
func ParseDeadline(s string) (datatypes.Date, error) {
	t, err := time.Parse(DeadlineLayout, s)
	if err != nil {
		return datatypes.Date{}, err
	}
	return datatypes.Date(t), nil
}
