package repository

import (
	"context"

	"github.com/evjobsch/backend/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobFilter narrows the job listing. Zero values mean "no filter".
type JobFilter struct {
	Type           string
	EmploymentType string
	WorkloadBand   string
}

type JobRepository interface {
	Create(ctx context.Context, job *model.Job) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Job, error)
	List(ctx context.Context, filter JobFilter) ([]model.Job, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *jobRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	err := r.db.WithContext(ctx).
		Preload("Likes").
		First(&job, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) List(ctx context.Context, filter JobFilter) ([]model.Job, error) {
	q := r.db.WithContext(ctx).Preload("Likes").Order("created_at desc")

	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.EmploymentType != "" {
		q = q.Where("employment_type = ?", filter.EmploymentType)
	}
	if filter.WorkloadBand != "" {
		q = q.Where("workload_band = ?", filter.WorkloadBand)
	}

	var jobs []model.Job
	err := q.Find(&jobs).Error
	return jobs, err
}

func (r *jobRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&model.Job{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *jobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Job{}, "id = ?", id).Error
}
