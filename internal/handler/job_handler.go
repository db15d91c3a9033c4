package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/evjobsch/backend/internal/dto"
	"github.com/evjobsch/backend/internal/realtime"
	"github.com/evjobsch/backend/internal/repository"
	"github.com/evjobsch/backend/internal/service"
	"github.com/evjobsch/backend/pkg/apperror"
	"github.com/evjobsch/backend/pkg/response"
	"github.com/evjobsch/backend/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type JobHandler struct {
	service  service.JobService
	bus      realtime.Bus
	upgrader websocket.Upgrader
}

func NewJobHandler(service service.JobService, bus realtime.Bus) *JobHandler {
	return &JobHandler{
		service:  service,
		bus:      bus,
		upgrader: newUpgrader(),
	}
}

func (h *JobHandler) CreateJob(c *gin.Context) {
	actor, err := response.GetIdentity(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	job, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": job})
}

func (h *JobHandler) ListJobs(c *gin.Context) {
	filter := repository.JobFilter{
		Type:           c.Query("type"),
		EmploymentType: c.Query("employment_type"),
		WorkloadBand:   c.Query("workload_band"),
	}

	jobs, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": jobs})
}

func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrValidation)
		return
	}

	job, err := h.service.Get(c.Request.Context(), jobID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": job})
}

func (h *JobHandler) UpdateJob(c *gin.Context) {
	actor, err := response.GetIdentity(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrValidation)
		return
	}

	var req dto.UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.service.Edit(c.Request.Context(), jobID, actor.ID, req); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "job updated"})
}

func (h *JobHandler) DeleteJob(c *gin.Context) {
	actor, err := response.GetIdentity(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrValidation)
		return
	}

	if err := h.service.Delete(c.Request.Context(), jobID, actor.ID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "job deleted"})
}

func (h *JobHandler) ToggleLike(c *gin.Context) {
	actor, err := response.GetIdentity(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrValidation)
		return
	}

	liked, err := h.service.ToggleLike(c.Request.Context(), jobID, actor)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

func (h *JobHandler) Apply(c *gin.Context) {
	actor, err := response.GetIdentity(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrValidation)
		return
	}

	var req dto.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	application, err := h.service.SubmitApplication(c.Request.Context(), jobID, actor, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": application})
}

func (h *JobHandler) ListApplications(c *gin.Context) {
	actor, err := response.GetIdentity(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrValidation)
		return
	}

	applications, err := h.service.ListApplications(c.Request.Context(), jobID, actor.ID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": applications})
}

func (h *JobHandler) SearchJobs(c *gin.Context) {
	query := c.Query("q")
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)

	hits, err := h.service.Search(query, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": hits})
}

// StreamJobs pushes the full job board on every change.
func (h *JobHandler) StreamJobs(c *gin.Context) {
	q := realtime.Query{Collection: service.CollectionJobs}
	streamView(c, h.upgrader, h.bus, q, func(ctx context.Context) ([]dto.JobResponse, error) {
		return h.service.List(ctx, repository.JobFilter{})
	})
}

// StreamApplications pushes one job's applications on every change,
// restricted to the listing owner.
func (h *JobHandler) StreamApplications(c *gin.Context) {
	actor, err := response.GetIdentity(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrValidation)
		return
	}

	q := realtime.Query{Collection: service.CollectionApplications, Scope: jobID.String()}
	streamView(c, h.upgrader, h.bus, q, func(ctx context.Context) ([]dto.ApplicationResponse, error) {
		return h.service.ListApplications(ctx, jobID, actor.ID)
	})
}
