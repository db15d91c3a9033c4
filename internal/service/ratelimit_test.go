package service

import (
	"context"
	"testing"
	"time"

	"github.com/evjobsch/backend/internal/config"
	"github.com/evjobsch/backend/internal/dto"
	"github.com/evjobsch/backend/internal/model"
	"github.com/evjobsch/backend/pkg/apperror"
	"github.com/evjobsch/backend/pkg/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCooldownPostService(store *fakeRateLimitStore, cfg *config.Config) (*postService, *fakePostRepo, *fakeReplyRepo) {
	postRepo := newFakePostRepo()
	replyRepo := &fakeReplyRepo{}
	bus := &recordingBus{}
	return &postService{
		postRepo:      postRepo,
		replyRepo:     replyRepo,
		likeRepo:      newFakeLikeRepo(),
		notifications: NewNotificationService(newFakeNotificationRepo(), bus),
		bus:           bus,
		rdb:           store,
		cfg:           cfg,
	}, postRepo, replyRepo
}

func newCooldownJobService(store *fakeRateLimitStore, cfg *config.Config) (*jobService, *fakeJobRepo) {
	jobRepo := newFakeJobRepo()
	bus := &recordingBus{}
	return &jobService{
		jobRepo:         jobRepo,
		applicationRepo: &fakeApplicationRepo{},
		likeRepo:        newFakeLikeRepo(),
		notifications:   NewNotificationService(newFakeNotificationRepo(), bus),
		bus:             bus,
		rdb:             store,
		cfg:             cfg,
	}, jobRepo
}

func TestCreatePostCooldown(t *testing.T) {
	store := newFakeRateLimitStore()
	svc, _, _ := newCooldownPostService(store, &config.Config{RateLimitPost: 30 * time.Second})
	actor := response.Identity{ID: "u1", Name: "Anna"}
	req := dto.CreatePostRequest{Category: model.CategoryTip, Content: "Erster Beitrag"}

	_, err := svc.Create(context.Background(), actor, req)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), actor, req)
	assert.ErrorIs(t, err, apperror.ErrRateLimitExceeded)

	var rateLimitErr *apperror.RateLimitError
	require.ErrorAs(t, err, &rateLimitErr)
	assert.Equal(t, 30*time.Second, rateLimitErr.RetryAfter)
	assert.Contains(t, rateLimitErr.Message, "Bitte warte noch")

	// A different user is on their own cooldown key.
	_, err = svc.Create(context.Background(), response.Identity{ID: "u2", Name: "Beat"}, req)
	assert.NoError(t, err)
}

func TestCreatePostFailureReleasesCooldown(t *testing.T) {
	store := newFakeRateLimitStore()
	svc, postRepo, _ := newCooldownPostService(store, &config.Config{RateLimitPost: 30 * time.Second})
	actor := response.Identity{ID: "u1", Name: "Anna"}
	req := dto.CreatePostRequest{Category: model.CategoryTip, Content: "Erster Beitrag"}

	postRepo.failCreate = true
	_, err := svc.Create(context.Background(), actor, req)
	assert.ErrorIs(t, err, apperror.ErrStoreUnavailable)

	// The failed write gives the slot back: the retry goes through at once.
	assert.False(t, store.locked(rateLimitKey("u1", "create_post")))
	postRepo.failCreate = false
	_, err = svc.Create(context.Background(), actor, req)
	assert.NoError(t, err)
}

func TestCreateReplyCooldown(t *testing.T) {
	store := newFakeRateLimitStore()
	svc, postRepo, _ := newCooldownPostService(store, &config.Config{RateLimitReply: 5 * time.Second})
	post := &model.Post{AuthorID: "owner", Category: model.CategoryQuestion, Content: "Frage"}
	require.NoError(t, postRepo.Create(context.Background(), post))
	actor := response.Identity{ID: "u2", Name: "Beat"}

	_, err := svc.CreateReply(context.Background(), post.ID, actor, "Erste Antwort")
	require.NoError(t, err)

	_, err = svc.CreateReply(context.Background(), post.ID, actor, "Zweite Antwort")
	assert.ErrorIs(t, err, apperror.ErrRateLimitExceeded)

	var rateLimitErr *apperror.RateLimitError
	require.ErrorAs(t, err, &rateLimitErr)
	assert.Equal(t, 5*time.Second, rateLimitErr.RetryAfter)
}

func TestCreateReplyFailureReleasesCooldown(t *testing.T) {
	store := newFakeRateLimitStore()
	svc, postRepo, replyRepo := newCooldownPostService(store, &config.Config{RateLimitReply: 5 * time.Second})
	post := &model.Post{AuthorID: "owner", Category: model.CategoryQuestion, Content: "Frage"}
	require.NoError(t, postRepo.Create(context.Background(), post))
	actor := response.Identity{ID: "u2", Name: "Beat"}

	replyRepo.failCreate = true
	_, err := svc.CreateReply(context.Background(), post.ID, actor, "Antwort")
	assert.ErrorIs(t, err, apperror.ErrStoreUnavailable)
	assert.False(t, store.locked(rateLimitKey("u2", "create_reply")))

	replyRepo.failCreate = false
	_, err = svc.CreateReply(context.Background(), post.ID, actor, "Antwort")
	assert.NoError(t, err)
}

func TestCreateJobCooldown(t *testing.T) {
	store := newFakeRateLimitStore()
	svc, _ := newCooldownJobService(store, &config.Config{RateLimitJob: time.Minute})
	actor := response.Identity{ID: "u1", Name: "Carla", Email: "carla@example.ch"}
	req := dto.CreateJobRequest{
		Type:        model.JobTypeOffer,
		Title:       "Elektroinstallateur:in",
		OrgName:     "Volta AG",
		Location:    "Bern",
		Description: "Festanstellung ab sofort",
	}

	_, err := svc.Create(context.Background(), actor, req)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), actor, req)
	assert.ErrorIs(t, err, apperror.ErrRateLimitExceeded)

	var rateLimitErr *apperror.RateLimitError
	require.ErrorAs(t, err, &rateLimitErr)
	assert.Equal(t, time.Minute, rateLimitErr.RetryAfter)
}

func TestCreateJobFailureReleasesCooldown(t *testing.T) {
	store := newFakeRateLimitStore()
	svc, jobRepo := newCooldownJobService(store, &config.Config{RateLimitJob: time.Minute})
	actor := response.Identity{ID: "u1", Name: "Carla", Email: "carla@example.ch"}
	req := dto.CreateJobRequest{
		Type:        model.JobTypeOffer,
		Title:       "Elektroinstallateur:in",
		OrgName:     "Volta AG",
		Location:    "Bern",
		Description: "Festanstellung ab sofort",
	}

	jobRepo.failCreate = true
	_, err := svc.Create(context.Background(), actor, req)
	assert.ErrorIs(t, err, apperror.ErrStoreUnavailable)
	assert.False(t, store.locked(rateLimitKey("u1", "create_job")))

	jobRepo.failCreate = false
	_, err = svc.Create(context.Background(), actor, req)
	assert.NoError(t, err)
}

func TestCheckAndSetRateLimitDisabled(t *testing.T) {
	allowed, err := CheckAndSetRateLimit(context.Background(), nil, "u1", "create_post", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = CheckAndSetRateLimit(context.Background(), newFakeRateLimitStore(), "u1", "create_post", 0)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestClearRateLimitRemovesKey(t *testing.T) {
	store := newFakeRateLimitStore()
	_, err := CheckAndSetRateLimit(context.Background(), store, "u1", "create_post", 30*time.Second)
	require.NoError(t, err)
	require.True(t, store.locked(rateLimitKey("u1", "create_post")))

	require.NoError(t, ClearRateLimit(context.Background(), store, "u1", "create_post"))
	assert.False(t, store.locked(rateLimitKey("u1", "create_post")))

	ttl, err := GetRateLimitTTL(context.Background(), store, "u1", "create_post")
	require.NoError(t, err)
	assert.Less(t, ttl, time.Duration(0))
}
