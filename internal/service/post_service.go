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

type PostService interface {
	Create(ctx context.Context, actor response.Identity, req dto.CreatePostRequest) (dto.PostResponse, error)
	List(ctx context.Context) ([]dto.PostResponse, error)
	Get(ctx context.Context, postID uuid.UUID) (dto.PostResponse, error)
	Edit(ctx context.Context, postID uuid.UUID, actorID, content string) error
	Delete(ctx context.Context, postID uuid.UUID, actorID string) error
	ToggleLike(ctx context.Context, postID uuid.UUID, actor response.Identity) (bool, error)
	CreateReply(ctx context.Context, postID uuid.UUID, actor response.Identity, content string) (dto.ReplyResponse, error)
	ListReplies(ctx context.Context, postID uuid.UUID) ([]dto.ReplyResponse, error)
}

type postService struct {
	postRepo      repository.PostRepository
	replyRepo     repository.ReplyRepository
	likeRepo      repository.LikeRepository
	notifications NotificationService
	search        SearchService
	bus           realtime.Bus
	rdb           rateLimitStore
	cfg           *config.Config
}

func NewPostService(
	postRepo repository.PostRepository,
	replyRepo repository.ReplyRepository,
	likeRepo repository.LikeRepository,
	notifications NotificationService,
	search SearchService,
	bus realtime.Bus,
	rdb *redis.Client,
	cfg *config.Config,
) PostService {
	s := &postService{
		postRepo:      postRepo,
		replyRepo:     replyRepo,
		likeRepo:      likeRepo,
		notifications: notifications,
		search:        search,
		bus:           bus,
		cfg:           cfg,
	}
	if rdb != nil {
		s.rdb = rdb
	}
	return s
}

func (s *postService) Create(ctx context.Context, actor response.Identity, req dto.CreatePostRequest) (dto.PostResponse, error) {
	content := sanitizeContent(req.Content)
	if content == "" {
		return dto.PostResponse{}, apperror.ErrValidation
	}
	if len([]rune(content)) > model.MaxPostContentLen {
		return dto.PostResponse{}, apperror.ErrValidation
	}

	allowed, err := CheckAndSetRateLimit(ctx, s.rdb, actor.ID, "create_post", s.cfg.RateLimitPost)
	if err != nil {
		log.Printf("rate limit check for %s: %v", actor.ID, err)
	} else if !allowed {
		return dto.PostResponse{}, rateLimited(ctx, s.rdb, actor.ID, "create_post", "einen neuen Post erstellen", s.cfg.RateLimitPost)
	}

	post := &model.Post{
		AuthorID:   actor.ID,
		AuthorName: actor.DisplayName(),
		Category:   req.Category,
		Content:    content,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		// Give the consumed cooldown slot back, the user posted nothing.
		_ = ClearRateLimit(ctx, s.rdb, actor.ID, "create_post")
		return dto.PostResponse{}, storeErr(err)
	}

	if s.search != nil {
		if err := s.search.IndexPost(post); err != nil {
			log.Printf("index post %s: %v", post.ID, err)
		}
	}

	publishChange(ctx, s.bus, CollectionPosts, "")
	return dto.NewPostResponse(post), nil
}

func (s *postService) List(ctx context.Context) ([]dto.PostResponse, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, storeErr(err)
	}

	responses := make([]dto.PostResponse, 0, len(posts))
	for i := range posts {
		responses = append(responses, dto.NewPostResponse(&posts[i]))
	}
	return responses, nil
}

func (s *postService) Get(ctx context.Context, postID uuid.UUID) (dto.PostResponse, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return dto.PostResponse{}, storeErr(err)
	}
	return dto.NewPostResponse(post), nil
}

// Edit replaces the post content and stamps edited_at. The marker is an
// append-only audit field and is never cleared.
func (s *postService) Edit(ctx context.Context, postID uuid.UUID, actorID, content string) error {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return storeErr(err)
	}
	if post.AuthorID != actorID {
		return apperror.ErrForbidden
	}

	content = sanitizeContent(content)
	if content == "" || len([]rune(content)) > model.MaxPostContentLen {
		return apperror.ErrValidation
	}

	if err := s.postRepo.UpdateContent(ctx, postID, content, time.Now()); err != nil {
		return storeErr(err)
	}

	if s.search != nil {
		post.Content = content
		if err := s.search.IndexPost(post); err != nil {
			log.Printf("index post %s: %v", post.ID, err)
		}
	}

	publishChange(ctx, s.bus, CollectionPosts, "")
	return nil
}

// Delete removes the post; its replies go with it through the store's
// cascading delete.
func (s *postService) Delete(ctx context.Context, postID uuid.UUID, actorID string) error {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return storeErr(err)
	}
	if post.AuthorID != actorID {
		return apperror.ErrForbidden
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return storeErr(err)
	}

	if s.search != nil {
		if err := s.search.DeletePost(postID.String()); err != nil {
			log.Printf("remove post %s from index: %v", postID, err)
		}
	}

	publishChange(ctx, s.bus, CollectionPosts, "")
	publishChange(ctx, s.bus, CollectionReplies, postID.String())
	return nil
}

// ToggleLike adds the actor to the post's likes set when absent and
// removes them when present. Both directions go through the store's
// idempotent set primitives, never a counter. Returns whether the post
// is liked by the actor after the toggle.
func (s *postService) ToggleLike(ctx context.Context, postID uuid.UUID, actor response.Identity) (bool, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return false, storeErr(err)
	}

	liked, err := s.likeRepo.IsPostLiked(ctx, actor.ID, postID)
	if err != nil {
		return false, storeErr(err)
	}

	if liked {
		if err := s.likeRepo.UnlikePost(ctx, actor.ID, postID); err != nil {
			return false, storeErr(err)
		}
		publishChange(ctx, s.bus, CollectionPosts, "")
		return false, nil
	}

	if err := s.likeRepo.LikePost(ctx, actor.ID, postID); err != nil {
		return false, storeErr(err)
	}
	publishChange(ctx, s.bus, CollectionPosts, "")

	// Fan out only on add, never on removal.
	if err := s.notifications.Notify(ctx, post.AuthorID, actor.ID, model.NotifLikePost, actor.DisplayName()); err != nil {
		log.Printf("notify like on post %s: %v", postID, err)
	}
	return true, nil
}

// CreateReply performs the paired write: the reply insert is the primary
// write, the parent counter increment the secondary one. The two are not
// atomic; a failed increment is logged and absorbed, trading counter
// accuracy for reply durability. The reconciliation sweep corrects the
// counter later.
func (s *postService) CreateReply(ctx context.Context, postID uuid.UUID, actor response.Identity, content string) (dto.ReplyResponse, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return dto.ReplyResponse{}, storeErr(err)
	}

	content = sanitizeContent(content)
	if content == "" {
		return dto.ReplyResponse{}, apperror.ErrValidation
	}
	if len([]rune(content)) > model.MaxReplyContentLen {
		return dto.ReplyResponse{}, apperror.ErrValidation
	}

	allowed, err := CheckAndSetRateLimit(ctx, s.rdb, actor.ID, "create_reply", s.cfg.RateLimitReply)
	if err != nil {
		log.Printf("rate limit check for %s: %v", actor.ID, err)
	} else if !allowed {
		return dto.ReplyResponse{}, rateLimited(ctx, s.rdb, actor.ID, "create_reply", "antworten", s.cfg.RateLimitReply)
	}

	reply := &model.Reply{
		PostID:     postID,
		AuthorID:   actor.ID,
		AuthorName: actor.DisplayName(),
		Content:    content,
	}
	if err := s.replyRepo.Create(ctx, reply); err != nil {
		_ = ClearRateLimit(ctx, s.rdb, actor.ID, "create_reply")
		return dto.ReplyResponse{}, storeErr(err)
	}

	if err := s.postRepo.IncrementReplyCount(ctx, postID); err != nil {
		log.Printf("reply counter increment for post %s failed, counter stale until reconciled: %v", postID, err)
	}

	if err := s.notifications.Notify(ctx, post.AuthorID, actor.ID, model.NotifReply, actor.DisplayName()); err != nil {
		log.Printf("notify reply on post %s: %v", postID, err)
	}

	publishChange(ctx, s.bus, CollectionReplies, postID.String())
	publishChange(ctx, s.bus, CollectionPosts, "")
	return dto.NewReplyResponse(reply), nil
}

func (s *postService) ListReplies(ctx context.Context, postID uuid.UUID) ([]dto.ReplyResponse, error) {
	replies, err := s.replyRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, storeErr(err)
	}

	responses := make([]dto.ReplyResponse, 0, len(replies))
	for i := range replies {
		responses = append(responses, dto.NewReplyResponse(&replies[i]))
	}
	return responses, nil
}
