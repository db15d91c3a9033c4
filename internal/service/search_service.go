package service

import (
	"encoding/json"
	"log"

	"github.com/evjobsch/backend/internal/dto"
	"github.com/evjobsch/backend/internal/model"
	"github.com/meilisearch/meilisearch-go"
)

type SearchService interface {
	IndexJob(job *model.Job) error
	IndexPost(post *model.Post) error
	DeleteJob(id string) error
	DeletePost(id string) error
	SearchJobs(query string, limit int64) ([]dto.JobSearchHit, error)
}

type searchService struct {
	client meilisearch.ServiceManager
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{client: client}
	s.initIndexes()
	return s
}

func (s *searchService) initIndexes() {
	filterableAttrs := []string{"type", "employment_type", "workload_band"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	if _, err := s.client.Index("jobs").UpdateFilterableAttributes(&filterableInterface); err != nil {
		log.Printf("Failed to update jobs filterable attributes: %v", err)
	}

	sortableAttrs := []string{"created_at"}
	if _, err := s.client.Index("jobs").UpdateSortableAttributes(&sortableAttrs); err != nil {
		log.Printf("Failed to update jobs sortable attributes: %v", err)
	}

	postFilterable := []string{"category"}
	postFilterableInterface := make([]any, len(postFilterable))
	for i, v := range postFilterable {
		postFilterableInterface[i] = v
	}
	if _, err := s.client.Index("posts").UpdateFilterableAttributes(&postFilterableInterface); err != nil {
		log.Printf("Failed to update posts filterable attributes: %v", err)
	}

	postSortable := []string{"created_at"}
	if _, err := s.client.Index("posts").UpdateSortableAttributes(&postSortable); err != nil {
		log.Printf("Failed to update posts sortable attributes: %v", err)
	}

	log.Println("Meilisearch indexes initialized")
}

// Structs for Meilisearch indexing
type meiliJobDoc struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	OrgName        string `json:"org_name"`
	Location       string `json:"location"`
	EmploymentType string `json:"employment_type"`
	WorkloadBand   string `json:"workload_band"`
	Description    string `json:"description"`
	CreatedAt      int64  `json:"created_at"`
}

type meiliPostDoc struct {
	ID         string `json:"id"`
	Category   string `json:"category"`
	Content    string `json:"content"`
	AuthorName string `json:"author_name"`
	CreatedAt  int64  `json:"created_at"`
}

func (s *searchService) IndexJob(job *model.Job) error {
	doc := meiliJobDoc{
		ID:             job.ID.String(),
		Type:           job.Type,
		Title:          job.Title,
		OrgName:        job.OrgName,
		Location:       job.Location,
		EmploymentType: job.EmploymentType,
		WorkloadBand:   job.WorkloadBand,
		Description:    sanitizeContent(job.Description),
		CreatedAt:      job.CreatedAt.Unix(),
	}

	task, err := s.client.Index("jobs").AddDocuments([]meiliJobDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed job %s, task id: %d", job.ID, task.TaskUID)
	return nil
}

func (s *searchService) IndexPost(post *model.Post) error {
	doc := meiliPostDoc{
		ID:         post.ID.String(),
		Category:   post.Category,
		Content:    sanitizeContent(post.Content),
		AuthorName: post.AuthorName,
		CreatedAt:  post.CreatedAt.Unix(),
	}

	task, err := s.client.Index("posts").AddDocuments([]meiliPostDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed post %s, task id: %d", post.ID, task.TaskUID)
	return nil
}

func (s *searchService) DeleteJob(id string) error {
	_, err := s.client.Index("jobs").DeleteDocument(id)
	return err
}

func (s *searchService) DeletePost(id string) error {
	_, err := s.client.Index("posts").DeleteDocument(id)
	return err
}

func (s *searchService) SearchJobs(query string, limit int64) ([]dto.JobSearchHit, error) {
	if limit <= 0 {
		limit = 20
	}

	raw, err := s.client.Index("jobs").SearchRaw(query, &meilisearch.SearchRequest{
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Hits []meiliJobDoc `json:"hits"`
	}
	if err := json.Unmarshal(*raw, &result); err != nil {
		return nil, err
	}

	hits := make([]dto.JobSearchHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		hits = append(hits, dto.JobSearchHit{
			ID:             hit.ID,
			Type:           hit.Type,
			Title:          hit.Title,
			OrgName:        hit.OrgName,
			Location:       hit.Location,
			EmploymentType: hit.EmploymentType,
			WorkloadBand:   hit.WorkloadBand,
		})
	}
	return hits, nil
}

func strPtr(s string) *string {
	return &s
}
