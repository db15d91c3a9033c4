package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/evjobsch/backend/internal/model"
	"github.com/evjobsch/backend/internal/realtime"
	"github.com/evjobsch/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// In-memory repository fakes with injectable failures. They mirror the
// storage semantics the services rely on: missing rows surface as
// gorm.ErrRecordNotFound, set-adds are idempotent, counters are plain
// integers.

type fakePostRepo struct {
	mu            sync.Mutex
	posts         map[uuid.UUID]*model.Post
	failIncrement bool
	failCreate    bool
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[uuid.UUID]*model.Post)}
}

func (r *fakePostRepo) Create(ctx context.Context, post *model.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return errors.New("connection reset")
	}
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	post.CreatedAt = time.Now()
	clone := *post
	r.posts[post.ID] = &clone
	return nil
}

func (r *fakePostRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *post
	return &clone, nil
}

func (r *fakePostRepo) List(ctx context.Context) ([]model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	posts := make([]model.Post, 0, len(r.posts))
	for _, post := range r.posts {
		posts = append(posts, *post)
	}
	return posts, nil
}

func (r *fakePostRepo) UpdateContent(ctx context.Context, id uuid.UUID, content string, editedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	post.Content = content
	post.EditedAt = &editedAt
	return nil
}

func (r *fakePostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) IncrementReplyCount(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failIncrement {
		return errors.New("connection reset")
	}
	if post, ok := r.posts[id]; ok {
		post.ReplyCount++
	}
	return nil
}

func (r *fakePostRepo) ReconcileReplyCounts(ctx context.Context) (int64, error) {
	return 0, nil
}

type fakeReplyRepo struct {
	mu         sync.Mutex
	replies    []model.Reply
	failCreate bool
}

func (r *fakeReplyRepo) Create(ctx context.Context, reply *model.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return errors.New("connection reset")
	}
	if reply.ID == uuid.Nil {
		reply.ID = uuid.New()
	}
	reply.CreatedAt = time.Now()
	r.replies = append(r.replies, *reply)
	return nil
}

func (r *fakeReplyRepo) ListByPost(ctx context.Context, postID uuid.UUID) ([]model.Reply, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Reply
	for _, reply := range r.replies {
		if reply.PostID == postID {
			out = append(out, reply)
		}
	}
	return out, nil
}

type fakeLikeRepo struct {
	mu        sync.Mutex
	postLikes map[uuid.UUID]map[string]bool
	jobLikes  map[uuid.UUID]map[string]bool
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{
		postLikes: make(map[uuid.UUID]map[string]bool),
		jobLikes:  make(map[uuid.UUID]map[string]bool),
	}
}

func setAdd(sets map[uuid.UUID]map[string]bool, id uuid.UUID, userID string) {
	if sets[id] == nil {
		sets[id] = make(map[string]bool)
	}
	sets[id][userID] = true
}

func (r *fakeLikeRepo) LikePost(ctx context.Context, userID string, postID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	setAdd(r.postLikes, postID, userID)
	return nil
}

func (r *fakeLikeRepo) UnlikePost(ctx context.Context, userID string, postID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.postLikes[postID], userID)
	return nil
}

func (r *fakeLikeRepo) IsPostLiked(ctx context.Context, userID string, postID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.postLikes[postID][userID], nil
}

func (r *fakeLikeRepo) LikeJob(ctx context.Context, userID string, jobID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	setAdd(r.jobLikes, jobID, userID)
	return nil
}

func (r *fakeLikeRepo) UnlikeJob(ctx context.Context, userID string, jobID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobLikes[jobID], userID)
	return nil
}

func (r *fakeLikeRepo) IsJobLiked(ctx context.Context, userID string, jobID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobLikes[jobID][userID], nil
}

type fakeJobRepo struct {
	mu         sync.Mutex
	jobs       map[uuid.UUID]*model.Job
	failCreate bool
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[uuid.UUID]*model.Job)}
}

func (r *fakeJobRepo) Create(ctx context.Context, job *model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return errors.New("connection reset")
	}
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	job.CreatedAt = time.Now()
	clone := *job
	r.jobs[job.ID] = &clone
	return nil
}

func (r *fakeJobRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *job
	return &clone, nil
}

func (r *fakeJobRepo) List(ctx context.Context, filter repository.JobFilter) ([]model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Job
	for _, job := range r.jobs {
		if filter.Type != "" && job.Type != filter.Type {
			continue
		}
		if filter.EmploymentType != "" && job.EmploymentType != filter.EmploymentType {
			continue
		}
		if filter.WorkloadBand != "" && job.WorkloadBand != filter.WorkloadBand {
			continue
		}
		out = append(out, *job)
	}
	return out, nil
}

func (r *fakeJobRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if description, ok := fields["description"].(string); ok {
		job.Description = description
	}
	if title, ok := fields["title"].(string); ok {
		job.Title = title
	}
	if updatedAt, ok := fields["updated_at"].(time.Time); ok {
		job.UpdatedAt = &updatedAt
	}
	return nil
}

func (r *fakeJobRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
	return nil
}

type fakeApplicationRepo struct {
	mu           sync.Mutex
	applications []model.Application
}

func (r *fakeApplicationRepo) Create(ctx context.Context, application *model.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if application.ID == uuid.Nil {
		application.ID = uuid.New()
	}
	application.CreatedAt = time.Now()
	r.applications = append(r.applications, *application)
	return nil
}

func (r *fakeApplicationRepo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Application
	for _, application := range r.applications {
		if application.JobID == jobID {
			out = append(out, application)
		}
	}
	return out, nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []model.Notification
	failMarkRead  map[uuid.UUID]bool
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{failMarkRead: make(map[uuid.UUID]bool)}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, notification *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	notification.CreatedAt = time.Now()
	r.notifications = append(r.notifications, *notification)
	return nil
}

func (r *fakeNotificationRepo) ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Notification
	for _, notification := range r.notifications {
		if notification.RecipientID == recipientID {
			out = append(out, notification)
		}
	}
	if offset < len(out) {
		out = out[offset:]
	} else {
		out = nil
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeNotificationRepo) ListUnread(ctx context.Context, recipientID string) ([]model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Notification
	for _, notification := range r.notifications {
		if notification.RecipientID == recipientID && !notification.Read {
			out = append(out, notification)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failMarkRead[id] {
		return errors.New("write timeout")
	}
	for i := range r.notifications {
		if r.notifications[i].ID == id {
			r.notifications[i].Read = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	unread, _ := r.ListUnread(ctx, recipientID)
	return int64(len(unread)), nil
}

// fakeRateLimitStore keeps cooldown keys in a map, ignoring expiry:
// a key stays "locked" until cleared, which is enough to drive the
// cooldown paths without a broker.
type fakeRateLimitStore struct {
	mu   sync.Mutex
	keys map[string]time.Duration
}

func newFakeRateLimitStore() *fakeRateLimitStore {
	return &fakeRateLimitStore{keys: make(map[string]time.Duration)}
}

func (s *fakeRateLimitStore) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	s.keys[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (s *fakeRateLimitStore) TTL(ctx context.Context, key string) *redis.DurationCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	ttl, ok := s.keys[key]
	if !ok {
		return redis.NewDurationResult(-2, nil)
	}
	return redis.NewDurationResult(ttl, nil)
}

func (s *fakeRateLimitStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for _, key := range keys {
		if _, ok := s.keys[key]; ok {
			delete(s.keys, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func (s *fakeRateLimitStore) locked(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[key]
	return ok
}

// recordingBus captures published events so tests can assert the change
// fan-out without a broker.
type recordingBus struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (b *recordingBus) Publish(ctx context.Context, ev realtime.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	return nil
}

func (b *recordingBus) Subscribe(ctx context.Context, collection, scope string) (realtime.Subscription, error) {
	return &recordingSubscription{events: make(chan realtime.Event, 8)}, nil
}

func (b *recordingBus) published(collection string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	count := 0
	for _, ev := range b.events {
		if ev.Collection == collection {
			count++
		}
	}
	return count
}

type recordingSubscription struct {
	events chan realtime.Event
	once   sync.Once
}

func (s *recordingSubscription) Events() <-chan realtime.Event { return s.events }

func (s *recordingSubscription) Close() error {
	s.once.Do(func() { close(s.events) })
	return nil
}
