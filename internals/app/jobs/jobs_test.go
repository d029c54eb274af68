package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/mercadolocal/marketplace-service/internals/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExpirer struct {
	calls    int
	affected int64
	err      error
}

func (s *stubExpirer) ExpireStale(context.Context) (int64, error) {
	s.calls++
	return s.affected, s.err
}

func (s *stubExpirer) ExpireFeatured(context.Context) (int64, error) {
	s.calls++
	return s.affected, s.err
}

func TestMaintenanceJobs(t *testing.T) {
	classifieds := &stubExpirer{affected: 3}
	vendors := &stubExpirer{err: errors.New("db down")}

	list := Maintenance(classifieds, vendors)
	require.Len(t, list, 2)

	s := NewScheduler(logger.Nop{})
	for _, job := range list {
		require.NoError(t, s.Add(job))
		s.runOnce(job)
	}

	assert.Equal(t, 1, classifieds.calls)
	assert.Equal(t, 1, vendors.calls)
	assert.Len(t, s.cron.Entries(), 2)
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(logger.Nop{})
	err := s.Add(Job{Name: "broken", Schedule: "every now and then", Run: func(context.Context) (int64, error) { return 0, nil }})
	assert.Error(t, err)
}

func TestSchedulerStartStop(t *testing.T) {
	s := NewScheduler(logger.Nop{})
	s.Start()
	s.Stop(context.Background())
}
