package weathersync

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/cesargomez89/weathercache/internal/logger"
)

// Scheduler triggers a sync of the default location on a fixed interval, starting at Start.
// A tick that lands while the previous run is still going is skipped.
type Scheduler struct {
	scheduler *gocron.Scheduler
	syncer    *Syncer
	location  string
	units     string
	interval  time.Duration
	logger    *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler(syncer *Syncer, location, units string, interval time.Duration, log *logger.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		syncer:    syncer,
		location:  location,
		units:     units,
		interval:  interval,
		logger:    log.WithComponent("scheduler"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	s.scheduler.SingletonModeAll()

	if _, err := s.scheduler.Every(s.interval).Do(s.tick); err != nil {
		return err
	}

	s.logger.Info("Starting scheduler", "location", s.location, "units", s.units, "interval", s.interval)
	s.scheduler.StartAsync()
	return nil
}

// Stop cancels an in-flight run and stops future ticks.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler...")
	s.cancel()
	s.scheduler.Stop()
}

func (s *Scheduler) tick() {
	// Failures are already logged and counted by the syncer; the next tick is the retry.
	_, _ = s.syncer.Sync(s.ctx, s.location, s.units)
}
