package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/evjobsch/backend/internal/realtime"
	"github.com/evjobsch/backend/pkg/apperror"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

// Collections carried on the change bus. Live views subscribe to these;
// every successful mutation publishes to the matching one.
const (
	CollectionPosts         = "posts"
	CollectionReplies       = "replies"
	CollectionJobs          = "jobs"
	CollectionApplications  = "applications"
	CollectionNotifications = "notifications"
)

var contentPolicy = bluemonday.StrictPolicy()

// sanitizeContent strips markup from user-supplied text and normalizes
// surrounding whitespace.
func sanitizeContent(content string) string {
	sanitized := contentPolicy.Sanitize(content)
	return strings.TrimSpace(html.UnescapeString(sanitized))
}

// storeErr classifies repository errors per the error policy: missing
// rows surface as not-found, everything else as a store fault.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, apperror.ErrNotFound):
		return apperror.ErrNotFound
	case errors.Is(err, apperror.ErrForbidden), errors.Is(err, apperror.ErrValidation):
		return err
	default:
		return fmt.Errorf("%w: %v", apperror.ErrStoreUnavailable, err)
	}
}

func publishChange(ctx context.Context, bus realtime.Bus, collection, scope string) {
	if err := bus.Publish(ctx, realtime.Event{Collection: collection, Scope: scope}); err != nil {
		log.Printf("publish change %s/%s: %v", collection, scope, err)
	}
}
