package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/evjobsch/backend/internal/model"
	"github.com/evjobsch/backend/internal/realtime"
	"github.com/evjobsch/backend/internal/repository"
	"github.com/evjobsch/backend/pkg/apperror"
)

// notificationTemplates is the closed set of fan-out messages, keyed by
// kind and parameterized by the actor's display name. The message is
// composed at enqueue time, so it reflects the name at the time of the
// action, not at display time.
var notificationTemplates = map[string]string{
	model.NotifLikePost:    "%s hat deinen Post geliket",
	model.NotifLikeJob:     "%s hat dein Inserat geliket",
	model.NotifReply:       "%s hat auf deinen Post geantwortet",
	model.NotifApplication: "%s hat sich auf dein Inserat beworben",
}

type NotificationService interface {
	Notify(ctx context.Context, recipientID, actorID, kind, actorName string) error
	List(ctx context.Context, recipientID string, limit, offset int) ([]model.Notification, error)
	MarkAllRead(ctx context.Context, recipientID string) error
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
}

type notificationService struct {
	repo repository.NotificationRepository
	bus  realtime.Bus
}

func NewNotificationService(repo repository.NotificationRepository, bus realtime.Bus) NotificationService {
	return &notificationService{
		repo: repo,
		bus:  bus,
	}
}

// Notify appends a notification into the recipient's namespace. It is a
// no-op when the recipient is the actor (self-suppression) or unknown.
// Repeated identical notifications are not deduplicated.
func (s *notificationService) Notify(ctx context.Context, recipientID, actorID, kind, actorName string) error {
	if recipientID == "" || recipientID == actorID {
		return nil
	}

	tmpl, ok := notificationTemplates[kind]
	if !ok {
		return fmt.Errorf("%w: unknown notification kind %q", apperror.ErrValidation, kind)
	}

	notification := &model.Notification{
		RecipientID: recipientID,
		Kind:        kind,
		Message:     fmt.Sprintf(tmpl, actorName),
		Read:        false,
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return storeErr(err)
	}

	publishChange(ctx, s.bus, CollectionNotifications, recipientID)
	return nil
}

func (s *notificationService) List(ctx context.Context, recipientID string, limit, offset int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	notifications, err := s.repo.ListByRecipient(ctx, recipientID, limit, offset)
	if err != nil {
		return nil, storeErr(err)
	}
	return notifications, nil
}

// MarkAllRead flips every currently-unread notification of the recipient
// to read. The individual writes run concurrently with no ordering
// dependency; a partial failure leaves a subset unread and surfaces only
// through the next live-view refresh.
func (s *notificationService) MarkAllRead(ctx context.Context, recipientID string) error {
	unread, err := s.repo.ListUnread(ctx, recipientID)
	if err != nil {
		return storeErr(err)
	}
	if len(unread) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, notification := range unread {
		wg.Add(1)
		go func(n model.Notification) {
			defer wg.Done()
			if err := s.repo.MarkRead(ctx, n.ID); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(notification)
	}
	wg.Wait()

	// Publish even on partial failure so views pick up whatever landed.
	publishChange(ctx, s.bus, CollectionNotifications, recipientID)
	return storeErr(firstErr)
}

func (s *notificationService) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	count, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, storeErr(err)
	}
	return count, nil
}

// Badge renders the unread counter for display, capped at "9+". The cap
// is display-only and never stored.
func Badge(count int64) string {
	if count > 9 {
		return "9+"
	}
	return strconv.FormatInt(count, 10)
}
