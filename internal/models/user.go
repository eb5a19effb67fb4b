package models

import "time"

// Role values assigned to portal users.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// User represents an account that can authenticate against the portal.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"size:32;not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Principal identifies the authenticated caller of a core operation.
// It is always passed explicitly; the core never reads ambient identity.
type Principal struct {
	ID   uint
	Role string
}

// IsAdmin reports whether the principal carries the administrator role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// IsTeacher reports whether the principal carries the teacher role.
func (p Principal) IsTeacher() bool {
	return p.Role == RoleTeacher
}

// IsStudent reports whether the principal carries the student role.
func (p Principal) IsStudent() bool {
	return p.Role == RoleStudent
}
