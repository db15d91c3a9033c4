package service

import (
	"context"
	"log"

	"github.com/evjobsch/backend/internal/realtime"
	"github.com/evjobsch/backend/internal/repository"
	"github.com/robfig/cron/v3"
)

// Reconciler periodically recomputes the denormalized reply counters
// from the true reply sets. The counter is a cache with bounded
// staleness, not a source of truth; the sweep closes the gap left by the
// non-atomic reply-insert/increment pair.
type Reconciler struct {
	posts repository.PostRepository
	bus   realtime.Bus
	spec  string
	cron  *cron.Cron
}

func NewReconciler(posts repository.PostRepository, bus realtime.Bus, spec string) *Reconciler {
	return &Reconciler{
		posts: posts,
		bus:   bus,
		spec:  spec,
	}
}

func (r *Reconciler) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(r.spec, func() {
		if err := r.Run(context.Background()); err != nil {
			log.Printf("reply counter sweep: %v", err)
		}
	}); err != nil {
		return err
	}
	c.Start()
	r.cron = c
	log.Printf("reply counter reconciliation scheduled (%s)", r.spec)
	return nil
}

func (r *Reconciler) Stop() {
	if r.cron != nil {
		r.cron.Stop()
	}
}

func (r *Reconciler) Run(ctx context.Context) error {
	corrected, err := r.posts.ReconcileReplyCounts(ctx)
	if err != nil {
		return err
	}
	if corrected > 0 {
		log.Printf("reply counter sweep corrected %d posts", corrected)
		publishChange(ctx, r.bus, CollectionPosts, "")
	}
	return nil
}
