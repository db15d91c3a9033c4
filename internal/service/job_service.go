package service

import (
	"context"
	"log"
	"time"

	"github.com/evjobsch/backend/internal/config"
	"github.com/evjobsch/backend/internal/dto"
	"github.com/evjobsch/backend/internal/model"
	"github.com/evjobsch/backend/internal/realtime"
	"github.com/evjobsch/backend/internal/repository"
	"github.com/evjobsch/backend/pkg/apperror"
	"github.com/evjobsch/backend/pkg/response"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type JobService interface {
	Create(ctx context.Context, actor response.Identity, req dto.CreateJobRequest) (dto.JobResponse, error)
	List(ctx context.Context, filter repository.JobFilter) ([]dto.JobResponse, error)
	Get(ctx context.Context, jobID uuid.UUID) (dto.JobResponse, error)
	Edit(ctx context.Context, jobID uuid.UUID, actorID string, req dto.UpdateJobRequest) error
	Delete(ctx context.Context, jobID uuid.UUID, actorID string) error
	ToggleLike(ctx context.Context, jobID uuid.UUID, actor response.Identity) (bool, error)
	SubmitApplication(ctx context.Context, jobID uuid.UUID, actor response.Identity, req dto.ApplyRequest) (dto.ApplicationResponse, error)
	ListApplications(ctx context.Context, jobID uuid.UUID, actorID string) ([]dto.ApplicationResponse, error)
	Search(query string, limit int64) ([]dto.JobSearchHit, error)
}

type jobService struct {
	jobRepo         repository.JobRepository
	applicationRepo repository.ApplicationRepository
	likeRepo        repository.LikeRepository
	notifications   NotificationService
	search          SearchService
	bus             realtime.Bus
	rdb             rateLimitStore
	cfg             *config.Config
}

func NewJobService(
	jobRepo repository.JobRepository,
	applicationRepo repository.ApplicationRepository,
	likeRepo repository.LikeRepository,
	notifications NotificationService,
	search SearchService,
	bus realtime.Bus,
	rdb *redis.Client,
	cfg *config.Config,
) JobService {
	s := &jobService{
		jobRepo:         jobRepo,
		applicationRepo: applicationRepo,
		likeRepo:        likeRepo,
		notifications:   notifications,
		search:          search,
		bus:             bus,
		cfg:             cfg,
	}
	if rdb != nil {
		s.rdb = rdb
	}
	return s
}

func (s *jobService) Create(ctx context.Context, actor response.Identity, req dto.CreateJobRequest) (dto.JobResponse, error) {
	description := sanitizeContent(req.Description)
	if description == "" {
		return dto.JobResponse{}, apperror.ErrValidation
	}

	allowed, err := CheckAndSetRateLimit(ctx, s.rdb, actor.ID, "create_job", s.cfg.RateLimitJob)
	if err != nil {
		log.Printf("rate limit check for %s: %v", actor.ID, err)
	} else if !allowed {
		return dto.JobResponse{}, rateLimited(ctx, s.rdb, actor.ID, "create_job", "ein neues Inserat erstellen", s.cfg.RateLimitJob)
	}

	job := &model.Job{
		Type:           req.Type,
		Title:          req.Title,
		OrgName:        req.OrgName,
		Location:       req.Location,
		EmploymentType: req.EmploymentType,
		WorkloadBand:   req.WorkloadBand,
		Description:    description,
		AuthorID:       actor.ID,
		AuthorName:     actor.DisplayName(),
		ContactEmail:   actor.Email,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		// Give the consumed cooldown slot back, nothing was published.
		_ = ClearRateLimit(ctx, s.rdb, actor.ID, "create_job")
		return dto.JobResponse{}, storeErr(err)
	}

	if s.search != nil {
		if err := s.search.IndexJob(job); err != nil {
			log.Printf("index job %s: %v", job.ID, err)
		}
	}

	publishChange(ctx, s.bus, CollectionJobs, "")
	return dto.NewJobResponse(job), nil
}

func (s *jobService) List(ctx context.Context, filter repository.JobFilter) ([]dto.JobResponse, error) {
	jobs, err := s.jobRepo.List(ctx, filter)
	if err != nil {
		return nil, storeErr(err)
	}

	responses := make([]dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		responses = append(responses, dto.NewJobResponse(&jobs[i]))
	}
	return responses, nil
}

func (s *jobService) Get(ctx context.Context, jobID uuid.UUID) (dto.JobResponse, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return dto.JobResponse{}, storeErr(err)
	}
	return dto.NewJobResponse(job), nil
}

func (s *jobService) Edit(ctx context.Context, jobID uuid.UUID, actorID string, req dto.UpdateJobRequest) error {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return storeErr(err)
	}
	if job.AuthorID != actorID {
		return apperror.ErrForbidden
	}

	description := sanitizeContent(req.Description)
	if description == "" {
		return apperror.ErrValidation
	}

	fields := map[string]any{
		"type":            req.Type,
		"title":           req.Title,
		"org_name":        req.OrgName,
		"location":        req.Location,
		"employment_type": req.EmploymentType,
		"workload_band":   req.WorkloadBand,
		"description":     description,
		"updated_at":      time.Now(),
	}
	if err := s.jobRepo.Update(ctx, jobID, fields); err != nil {
		return storeErr(err)
	}

	if s.search != nil {
		updated, err := s.jobRepo.FindByID(ctx, jobID)
		if err == nil {
			if err := s.search.IndexJob(updated); err != nil {
				log.Printf("index job %s: %v", jobID, err)
			}
		}
	}

	publishChange(ctx, s.bus, CollectionJobs, "")
	return nil
}

// Delete removes the listing; its applications go with it through the
// store's cascading delete.
func (s *jobService) Delete(ctx context.Context, jobID uuid.UUID, actorID string) error {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return storeErr(err)
	}
	if job.AuthorID != actorID {
		return apperror.ErrForbidden
	}

	if err := s.jobRepo.Delete(ctx, jobID); err != nil {
		return storeErr(err)
	}

	if s.search != nil {
		if err := s.search.DeleteJob(jobID.String()); err != nil {
			log.Printf("remove job %s from index: %v", jobID, err)
		}
	}

	publishChange(ctx, s.bus, CollectionJobs, "")
	publishChange(ctx, s.bus, CollectionApplications, jobID.String())
	return nil
}

func (s *jobService) ToggleLike(ctx context.Context, jobID uuid.UUID, actor response.Identity) (bool, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return false, storeErr(err)
	}

	liked, err := s.likeRepo.IsJobLiked(ctx, actor.ID, jobID)
	if err != nil {
		return false, storeErr(err)
	}

	if liked {
		if err := s.likeRepo.UnlikeJob(ctx, actor.ID, jobID); err != nil {
			return false, storeErr(err)
		}
		publishChange(ctx, s.bus, CollectionJobs, "")
		return false, nil
	}

	if err := s.likeRepo.LikeJob(ctx, actor.ID, jobID); err != nil {
		return false, storeErr(err)
	}
	publishChange(ctx, s.bus, CollectionJobs, "")

	if err := s.notifications.Notify(ctx, job.AuthorID, actor.ID, model.NotifLikeJob, actor.DisplayName()); err != nil {
		log.Printf("notify like on job %s: %v", jobID, err)
	}
	return true, nil
}

// SubmitApplication appends to the job's application set. The fan-out to
// the listing owner goes through the same self-suppression rule as every
// other notification, even though an owner applying to their own listing
// is not expected in practice.
func (s *jobService) SubmitApplication(ctx context.Context, jobID uuid.UUID, actor response.Identity, req dto.ApplyRequest) (dto.ApplicationResponse, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return dto.ApplicationResponse{}, storeErr(err)
	}

	application := &model.Application{
		JobID:          jobID,
		ApplicantID:    actor.ID,
		ApplicantName:  req.ApplicantName,
		ApplicantEmail: req.ApplicantEmail,
		Message:        sanitizeContent(req.Message),
	}
	if err := s.applicationRepo.Create(ctx, application); err != nil {
		return dto.ApplicationResponse{}, storeErr(err)
	}

	if err := s.notifications.Notify(ctx, job.AuthorID, actor.ID, model.NotifApplication, req.ApplicantName); err != nil {
		log.Printf("notify application on job %s: %v", jobID, err)
	}

	publishChange(ctx, s.bus, CollectionApplications, jobID.String())
	return dto.NewApplicationResponse(application), nil
}

// ListApplications is restricted to the listing owner.
func (s *jobService) ListApplications(ctx context.Context, jobID uuid.UUID, actorID string) ([]dto.ApplicationResponse, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, storeErr(err)
	}
	if job.AuthorID != actorID {
		return nil, apperror.ErrForbidden
	}

	applications, err := s.applicationRepo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, storeErr(err)
	}

	responses := make([]dto.ApplicationResponse, 0, len(applications))
	for i := range applications {
		responses = append(responses, dto.NewApplicationResponse(&applications[i]))
	}
	return responses, nil
}

func (s *jobService) Search(query string, limit int64) ([]dto.JobSearchHit, error) {
	if s.search == nil {
		return []dto.JobSearchHit{}, nil
	}
	return s.search.SearchJobs(query, limit)
}
