package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// CourseRepository defines the read-mostly course relations the core
// consults for access checks and gradebook roll-ups.
type CourseRepository interface {
	GetByID(ctx context.Context, id uint) (models.Course, error)
	GetByIDWithStudents(ctx context.Context, id uint) (models.Course, error)
	IsEnrolled(ctx context.Context, courseID, studentID uint) (bool, error)
	TeachesStudent(ctx context.Context, teacherID, studentID uint) (bool, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Course, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates a GORM-backed repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return models.Course{}, err
	}

	return course, nil
}

func (r *courseRepository) GetByIDWithStudents(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).Preload("Students").First(&course, id).Error; err != nil {
		return models.Course{}, err
	}

	return course, nil
}

func (r *courseRepository) IsEnrolled(ctx context.Context, courseID, studentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("enrollments").
		Where("course_id = ?", courseID).
		Where("user_id = ?", studentID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *courseRepository) TeachesStudent(ctx context.Context, teacherID, studentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("enrollments").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("courses.teacher_id = ?", teacherID).
		Where("enrollments.user_id = ?", studentID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *courseRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.WithContext(ctx).
		Joins("JOIN enrollments ON enrollments.course_id = courses.id").
		Where("enrollments.user_id = ?", studentID).
		Order("courses.name ASC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}

	return courses, nil
}
