package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// UploadRepository persists upload records.
type UploadRepository interface {
	Create(ctx context.Context, record *models.UploadRecord) error
	GetByID(ctx context.Context, id uint) (models.UploadRecord, error)
}

type uploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository instantiates the repository.
func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(ctx context.Context, record *models.UploadRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *uploadRepository) GetByID(ctx context.Context, id uint) (models.UploadRecord, error) {
	var record models.UploadRecord
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return models.UploadRecord{}, err
	}

	return record, nil
}
