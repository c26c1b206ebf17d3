package monitoring

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Snapshotter copies the activity log somewhere safe.
type Snapshotter interface {
	Snapshot(dir string) (string, error)
}

// Scheduler takes periodic snapshots of the activity log on a cron schedule.
type Scheduler struct {
	store    Snapshotter
	dir      string
	schedule cron.Schedule
	cron     *cron.Cron
	done     chan struct{}
	stopOnce sync.Once
}

// NewScheduler validates expr (standard five-field cron syntax) and creates a scheduler
// writing snapshots into dir.
func NewScheduler(store Snapshotter, expr, dir string) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot schedule %q: %w", expr, err)
	}
	return &Scheduler{
		store:    store,
		dir:      dir,
		schedule: schedule,
		cron:     cron.New(cron.WithLocation(time.UTC)),
		done:     make(chan struct{}),
	}, nil
}

// Next reports when the next snapshot is due after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Run starts the schedule and blocks until Stop.
func (s *Scheduler) Run() {
	log.Info().Str("dir", s.dir).Time("next_run", s.Next(time.Now().UTC())).Msg("Starting snapshot scheduler")
	s.cron.Schedule(s.schedule, cron.FuncJob(s.RunOnce))
	s.cron.Start()

	<-s.done
	<-s.cron.Stop().Done()
	log.Info().Msg("Stopped snapshot scheduler")
}

// Stop halts the scheduler, waiting for a running snapshot to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// RunOnce takes one snapshot immediately.
func (s *Scheduler) RunOnce() {
	path, err := s.store.Snapshot(s.dir)
	if err != nil {
		log.Error().Err(err).Str("dir", s.dir).Msg("Scheduler: snapshot failed")
		return
	}
	log.Info().Str("path", path).Msg("Scheduler: snapshot written")
}
