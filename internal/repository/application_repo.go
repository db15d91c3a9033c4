package repository

import (
	"context"

	"github.com/evjobsch/backend/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApplicationRepository interface {
	Create(ctx context.Context, application *model.Application) error
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]model.Application, error)
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, application *model.Application) error {
	return r.db.WithContext(ctx).Create(application).Error
}

func (r *applicationRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]model.Application, error) {
	var applications []model.Application
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at asc").
		Find(&applications).Error
	return applications, err
}
