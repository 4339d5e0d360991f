package weathersync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/cesargomez89/weathercache/internal/domain"
	"github.com/cesargomez89/weathercache/internal/logger"
	"github.com/cesargomez89/weathercache/internal/metrics"
)

// Syncer is the entry point for sync triggers. Requests for a location that is already
// syncing join the in-flight run; runs for different locations are queued one after another.
type Syncer struct {
	normalizer *Normalizer
	group      singleflight.Group
	runMu      sync.Mutex
	logger     *logger.Logger
}

func NewSyncer(normalizer *Normalizer, log *logger.Logger) *Syncer {
	return &Syncer{
		normalizer: normalizer,
		logger:     log.WithComponent("sync"),
	}
}

// Sync fetches and stores the forecast for location. Joiners receive the in-flight run's report.
func (s *Syncer) Sync(ctx context.Context, location, units string) (*Report, error) {
	leader := false
	v, err, _ := s.group.Do(location, func() (interface{}, error) {
		leader = true
		return s.run(ctx, location, units)
	})
	if !leader {
		metrics.SyncRunsTotal.WithLabelValues(metrics.ResultCoalesced).Inc()
		s.logger.Debug("Joined in-flight sync", "location", location)
	}

	report, _ := v.(*Report)
	return report, err
}

func (s *Syncer) run(ctx context.Context, location, units string) (*Report, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	runID := uuid.NewString()
	log := s.logger.WithSync(runID, location)
	log.Info("Starting sync", "units", units)

	start := time.Now()
	report, err := s.normalizer.Run(ctx, location, units)
	metrics.SyncDuration.Observe(time.Since(start).Seconds())
	if report != nil {
		report.RunID = runID
	}

	metrics.SyncRunsTotal.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		log.Error("Sync failed", "error", err)
		return report, err
	}

	metrics.WeatherRowsUpserted.Add(float64(report.Days))
	log.Info("Sync finished", "location_id", report.LocationID, "days", report.Days, "duration", time.Since(start))
	return report, nil
}

func resultLabel(err error) string {
	var fetchErr *domain.FetchError
	var malformed *domain.MalformedPayloadError
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.As(err, &fetchErr):
		return metrics.ResultFetch
	case errors.As(err, &malformed):
		return metrics.ResultMalformed
	default:
		return metrics.ResultStorage
	}
}
