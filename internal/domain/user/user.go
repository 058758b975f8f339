package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleTeam   Role = "team"
	RoleClient Role = "client"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeam, RoleClient:
		return true
	}
	return false
}

// User is a directory identity. Secret holds a bcrypt hash and never leaves
// the data layer; outward views go through Sanitize.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string    `gorm:"not null;column:name" json:"name"`
	Email          string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Secret         string    `gorm:"not null;column:secret" json:"-"`
	Role           Role      `gorm:"not null;index;column:role" json:"role"`
	Specialization *string   `gorm:"column:specialization" json:"specialization,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "user" }

// PublicUser is the only shape of a user that crosses the API boundary.
type PublicUser struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	Specialization *string   `json:"specialization,omitempty"`
}

func Sanitize(u *User) *PublicUser {
	if u == nil {
		return nil
	}
	out := &PublicUser{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
	if u.Specialization != nil {
		s := *u.Specialization
		out.Specialization = &s
	}
	return out
}

func SanitizeAll(users []*User) []*PublicUser {
	out := make([]*PublicUser, 0, len(users))
	for _, u := range users {
		if u == nil {
			continue
		}
		out = append(out, Sanitize(u))
	}
	return out
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) HasSpecialization(label string) bool {
	return u != nil && u.Specialization != nil && *u.Specialization == label
}
