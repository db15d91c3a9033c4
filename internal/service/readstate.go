package service

import (
	"context"
	"log"
	"sync"
	"time"
)

// PanelService tracks, per user, the notification panel session and the
// single deferred mark-all-read run that an open panel owns. Opening
// while a run is already pending cancels and reschedules instead of
// scheduling again, so rapid reopens cannot stack duplicate runs. State
// is scoped to the user session, not process-wide.
type PanelService interface {
	Open(userID string)
	EndSession(userID string)
}

type panelService struct {
	notifications NotificationService
	delay         time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

func NewPanelService(notifications NotificationService, delay time.Duration) PanelService {
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &panelService{
		notifications: notifications,
		delay:         delay,
		pending:       make(map[string]*time.Timer),
	}
}

// Open schedules the deferred mark-all-read for this user. Closing the
// panel does not cancel it: once opened, the notifications in view are
// considered seen shortly after.
func (s *panelService) Open(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.pending[userID]; ok {
		timer.Stop()
	}

	s.pending[userID] = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		delete(s.pending, userID)
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.notifications.MarkAllRead(ctx, userID); err != nil {
			log.Printf("deferred mark-read for %s: %v", userID, err)
		}
	})
}

// EndSession drops the user's panel state on sign-out, cancelling any
// pending run.
func (s *panelService) EndSession(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.pending[userID]; ok {
		timer.Stop()
		delete(s.pending, userID)
	}
}
