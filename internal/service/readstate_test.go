package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/evjobsch/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingNotifications counts MarkAllRead invocations so the timer
// semantics can be asserted without a store.
type countingNotifications struct {
	NotificationService
	markAllReadCalls atomic.Int32
}

func (c *countingNotifications) MarkAllRead(ctx context.Context, recipientID string) error {
	c.markAllReadCalls.Add(1)
	if c.NotificationService != nil {
		return c.NotificationService.MarkAllRead(ctx, recipientID)
	}
	return nil
}

func TestPanelOpenDefersMarkRead(t *testing.T) {
	repo := newFakeNotificationRepo()
	notifications := NewNotificationService(repo, &recordingBus{})
	for i := 0; i < 3; i++ {
		require.NoError(t, notifications.Notify(context.Background(), "u1", "u2", model.NotifReply, "Beat"))
	}

	panel := NewPanelService(notifications, 30*time.Millisecond)
	panel.Open("u1")

	// Before the delay elapses everything is still unread.
	count, err := notifications.UnreadCount(context.Background(), "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	time.Sleep(150 * time.Millisecond)

	count, err = notifications.UnreadCount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPanelReopenReschedulesInsteadOfStacking(t *testing.T) {
	counting := &countingNotifications{}
	panel := NewPanelService(counting, 30*time.Millisecond)

	panel.Open("u1")
	time.Sleep(10 * time.Millisecond)
	panel.Open("u1")
	time.Sleep(10 * time.Millisecond)
	panel.Open("u1")

	time.Sleep(150 * time.Millisecond)
	assert.EqualValues(t, 1, counting.markAllReadCalls.Load())
}

func TestPanelSessionsAreIndependent(t *testing.T) {
	counting := &countingNotifications{}
	panel := NewPanelService(counting, 30*time.Millisecond)

	panel.Open("u1")
	panel.Open("u2")

	time.Sleep(150 * time.Millisecond)
	assert.EqualValues(t, 2, counting.markAllReadCalls.Load())
}

func TestEndSessionCancelsPendingRun(t *testing.T) {
	counting := &countingNotifications{}
	panel := NewPanelService(counting, 30*time.Millisecond)

	panel.Open("u1")
	panel.EndSession("u1")

	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, counting.markAllReadCalls.Load())
}

func TestEndSessionWithoutOpenIsNoop(t *testing.T) {
	panel := NewPanelService(&countingNotifications{}, 30*time.Millisecond)
	panel.EndSession("u1")
}
