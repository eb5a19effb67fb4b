package models

import "time"

// Course groups assignments and enrolled students under an owning teacher.
type Course struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Code      string    `gorm:"size:32;uniqueIndex" json:"code"`
	TeacherID uint      `gorm:"not null;index" json:"teacher_id"`
	Teacher   User      `json:"teacher"`
	Students  []User    `gorm:"many2many:enrollments" json:"students,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOwnedBy reports whether the given teacher owns this course.
func (c Course) IsOwnedBy(teacherID uint) bool {
	return c.TeacherID == teacherID
}
