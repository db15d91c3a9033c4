package dto

import (
	"time"

	"github.com/evjobsch/backend/internal/model"
	"github.com/google/uuid"
)

type CreateJobRequest struct {
	Type           string `json:"type" binding:"required,oneof=offer seek"`
	Title          string `json:"title" binding:"required,max=255"`
	OrgName        string `json:"org_name" binding:"required,max=255"`
	Location       string `json:"location" binding:"required,max=255"`
	EmploymentType string `json:"employment_type" binding:"max=50"`
	WorkloadBand   string `json:"workload_band" binding:"max=20"`
	Description    string `json:"description" binding:"required"`
}

type UpdateJobRequest struct {
	Type           string `json:"type" binding:"required,oneof=offer seek"`
	Title          string `json:"title" binding:"required,max=255"`
	OrgName        string `json:"org_name" binding:"required,max=255"`
	Location       string `json:"location" binding:"required,max=255"`
	EmploymentType string `json:"employment_type" binding:"max=50"`
	WorkloadBand   string `json:"workload_band" binding:"max=20"`
	Description    string `json:"description" binding:"required"`
}

type ApplyRequest struct {
	ApplicantName  string `json:"name" binding:"required,max=255"`
	ApplicantEmail string `json:"email" binding:"required,email"`
	Message        string `json:"message" binding:"required"`
}

type JobResponse struct {
	ID             uuid.UUID  `json:"id"`
	Type           string     `json:"type"`
	Title          string     `json:"title"`
	OrgName        string     `json:"org_name"`
	Location       string     `json:"location"`
	EmploymentType string     `json:"employment_type"`
	WorkloadBand   string     `json:"workload_band"`
	Description    string     `json:"description"`
	AuthorID       string     `json:"author_id"`
	AuthorName     string     `json:"author_name"`
	ContactEmail   string     `json:"contact_email"`
	Likes          []string   `json:"likes"`
	LikeCount      int        `json:"like_count"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type ApplicationResponse struct {
	ID             uuid.UUID `json:"id"`
	JobID          uuid.UUID `json:"job_id"`
	ApplicantID    string    `json:"applicant_id"`
	ApplicantName  string    `json:"applicant_name"`
	ApplicantEmail string    `json:"applicant_email"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}

type JobSearchHit struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	OrgName        string `json:"org_name"`
	Location       string `json:"location"`
	EmploymentType string `json:"employment_type"`
	WorkloadBand   string `json:"workload_band"`
}

func NewJobResponse(job *model.Job) JobResponse {
	likes := make([]string, 0, len(job.Likes))
	for _, like := range job.Likes {
		likes = append(likes, like.UserID)
	}

	return JobResponse{
		ID:             job.ID,
		Type:           job.Type,
		Title:          job.Title,
		OrgName:        job.OrgName,
		Location:       job.Location,
		EmploymentType: job.EmploymentType,
		WorkloadBand:   job.WorkloadBand,
		Description:    job.Description,
		AuthorID:       job.AuthorID,
		AuthorName:     job.AuthorName,
		ContactEmail:   job.ContactEmail,
		Likes:          likes,
		LikeCount:      len(likes),
		UpdatedAt:      job.UpdatedAt,
		CreatedAt:      job.CreatedAt,
	}
}

func NewApplicationResponse(application *model.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:             application.ID,
		JobID:          application.JobID,
		ApplicantID:    application.ApplicantID,
		ApplicantName:  application.ApplicantName,
		ApplicantEmail: application.ApplicantEmail,
		Message:        application.Message,
		CreatedAt:      application.CreatedAt,
	}
}
