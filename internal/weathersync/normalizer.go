// Package weathersync keeps the forecast cache fresh: it fetches a location's forecast,
// normalizes it and upserts it, one run at a time.
package weathersync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cesargomez89/weathercache/internal/domain"
	"github.com/cesargomez89/weathercache/internal/forecast"
	"github.com/cesargomez89/weathercache/internal/logger"
	"github.com/cesargomez89/weathercache/internal/store"
)

// ErrSyncInProgress is returned by Normalizer.Run while another run is active.
var ErrSyncInProgress = errors.New("sync already in progress")

// Fetcher returns the raw forecast body for a location.
type Fetcher interface {
	Fetch(ctx context.Context, location, units string) ([]byte, error)
}

// Report describes a finished run. State is Idle for a successful run and Failed otherwise.
type Report struct {
	RunID      string
	Location   string
	Units      string
	LocationID int64
	Days       int
	State      domain.SyncState
	Err        error
	Finished   time.Time
}

// Normalizer runs the Idle, Fetching, Parsing, Upserting cycle. A failure in any active
// state passes through Failed and returns to Idle; nothing is retried.
type Normalizer struct {
	db      *store.DB
	fetcher Fetcher
	logger  *logger.Logger

	running sync.Mutex

	mu           sync.RWMutex
	state        domain.SyncState
	last         *Report
	onTransition func(from, to domain.SyncState)
}

func NewNormalizer(db *store.DB, fetcher Fetcher, log *logger.Logger) *Normalizer {
	return &Normalizer{
		db:      db,
		fetcher: fetcher,
		logger:  log.WithComponent("normalizer"),
		state:   domain.SyncStateIdle,
	}
}

// OnTransition registers fn to observe every state change. Call it before the first Run.
func (n *Normalizer) OnTransition(fn func(from, to domain.SyncState)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onTransition = fn
}

// State is the current state.
func (n *Normalizer) State() domain.SyncState {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

// LastReport returns a copy of the most recent run's report, or nil before the first run.
func (n *Normalizer) LastReport() *Report {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.last == nil {
		return nil
	}
	r := *n.last
	return &r
}

func (n *Normalizer) transition(to domain.SyncState) {
	n.mu.Lock()
	from := n.state
	n.state = to
	fn := n.onTransition
	n.mu.Unlock()

	n.logger.Debug("Sync state changed", "from", from, "to", to)
	if fn != nil {
		fn(from, to)
	}
}

// Run syncs location once. The returned report is never nil once a run has started.
func (n *Normalizer) Run(ctx context.Context, location, units string) (*Report, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("%w: empty location", domain.ErrInvalidRecord)
	}
	if !n.running.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer n.running.Unlock()

	report := &Report{Location: location, Units: units}

	n.transition(domain.SyncStateFetching)
	body, err := n.fetcher.Fetch(ctx, location, units)
	if err != nil {
		var fetchErr *domain.FetchError
		if !errors.As(err, &fetchErr) {
			err = &domain.FetchError{Location: location, Err: err}
		}
		return n.fail(report, err)
	}

	n.transition(domain.SyncStateParsing)
	f, err := forecast.Parse(location, body)
	if err != nil {
		return n.fail(report, err)
	}

	n.transition(domain.SyncStateUpserting)
	locID, err := n.db.InsertLocation(ctx, &f.Location)
	if err != nil {
		return n.fail(report, fmt.Errorf("failed to store location %s: %w", location, err))
	}
	for i := range f.Days {
		f.Days[i].LocationID = locID
	}
	count, err := n.db.BulkInsertWeather(ctx, f.Days)
	if err != nil {
		return n.fail(report, fmt.Errorf("failed to store forecast for %s: %w", location, err))
	}

	report.LocationID = locID
	report.Days = count
	report.State = domain.SyncStateIdle
	report.Finished = time.Now()
	n.transition(domain.SyncStateIdle)
	n.record(report)
	return report, nil
}

func (n *Normalizer) fail(report *Report, err error) (*Report, error) {
	report.State = domain.SyncStateFailed
	report.Err = err
	report.Finished = time.Now()

	n.transition(domain.SyncStateFailed)
	n.record(report)
	n.transition(domain.SyncStateIdle)
	return report, err
}

func (n *Normalizer) record(report *Report) {
	n.mu.Lock()
	n.last = report
	n.mu.Unlock()
}
