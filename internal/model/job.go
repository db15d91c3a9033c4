package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	JobTypeOffer = "offer"
	JobTypeSeek  = "seek"
)

type Job struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Type           string     `gorm:"size:20;not null" json:"type"`
	Title          string     `gorm:"size:255;not null" json:"title"`
	OrgName        string     `gorm:"size:255;not null" json:"org_name"`
	Location       string     `gorm:"size:255;not null" json:"location"`
	EmploymentType string     `gorm:"size:50" json:"employment_type"`
	WorkloadBand   string     `gorm:"size:20" json:"workload_band"`
	Description    string     `gorm:"type:text;not null" json:"description"`
	AuthorID       string     `gorm:"size:128;not null;index" json:"author_id"`
	AuthorName     string     `gorm:"size:255" json:"author_name"`
	ContactEmail   string     `gorm:"size:255;not null" json:"contact_email"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Likes        []JobLike     `gorm:"foreignKey:JobID" json:"-"`
	Applications []Application `gorm:"foreignKey:JobID" json:"-"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) (err error) {
	if j.ID == uuid.Nil {
		j.ID, err = uuid.NewV7()
	}
	return
}

type Application struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobID          uuid.UUID `gorm:"type:uuid;not null;index" json:"job_id"`
	Job            Job       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ApplicantID    string    `gorm:"size:128;not null" json:"applicant_id"`
	ApplicantName  string    `gorm:"size:255;not null" json:"applicant_name"`
	ApplicantEmail string    `gorm:"size:255;not null" json:"applicant_email"`
	Message        string    `gorm:"type:text" json:"message"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}
