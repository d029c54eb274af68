// Package jobs runs the periodic maintenance tasks.
package jobs

import (
	"context"
	"time"

	"github.com/mercadolocal/marketplace-service/internals/app/metrics"
	"github.com/mercadolocal/marketplace-service/internals/logger"
	"github.com/robfig/cron/v3"
)

const jobTimeout = 2 * time.Minute

// Task is one maintenance operation. It returns the number of rows it changed.
type Task func(ctx context.Context) (int64, error)

type Job struct {
	Name     string
	Schedule string
	Run      Task
}

type Scheduler struct {
	cron *cron.Cron
	log  logger.Logger
}

func NewScheduler(log logger.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger))),
		log:  log,
	}
}

func (s *Scheduler) Add(job Job) error {
	_, err := s.cron.AddFunc(job.Schedule, func() {
		s.runOnce(job)
	})
	return err
}

func (s *Scheduler) runOnce(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	affected, err := job.Run(ctx)
	metrics.RecordJob(job.Name, affected, err)

	log := s.log.WithFields(map[string]interface{}{"job": job.Name, "affected": affected})
	if err != nil {
		log.Error("Job failed: %v", err)
		return
	}
	if affected > 0 {
		log.Info("Job completed")
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

type classifiedExpirer interface {
	ExpireStale(ctx context.Context) (int64, error)
}

type featuredExpirer interface {
	ExpireFeatured(ctx context.Context) (int64, error)
}

// Maintenance returns the hourly jobs that retire expired classifieds and featured placements.
func Maintenance(classifieds classifiedExpirer, vendors featuredExpirer) []Job {
	return []Job{
		{Name: "expire_classifieds", Schedule: "@hourly", Run: classifieds.ExpireStale},
		{Name: "expire_featured_vendors", Schedule: "@hourly", Run: vendors.ExpireFeatured},
	}
}
