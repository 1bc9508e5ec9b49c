// Package cron runs the scheduled maintenance jobs.
package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/formloom/formloom-backend/internal/service"
)

type Scheduler struct {
	cron      *cron.Cron
	analytics *service.AnalyticsService
}

func NewScheduler(analytics *service.AnalyticsService) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		analytics: analytics,
	}
}

// Start registers the jobs and kicks off the scheduler. The analytics
// reconciler rebuilds summary counters from the raw visit log nightly, so
// any drift from manual edits or partial failures self-heals.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("0 3 * * *", s.reconcileAnalytics)
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Println("[CRON] Scheduler started")
	return nil
}

func (s *Scheduler) reconcileAnalytics() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	n, err := s.analytics.Reconcile(ctx)
	if err != nil {
		log.Printf("[CRON] Analytics reconcile failed: %v", err)
		return
	}
	log.Printf("[CRON] Analytics reconciled, %d summaries refreshed", n)
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("[CRON] Scheduler stopped")
}
