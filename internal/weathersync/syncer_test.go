package weathersync

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cesargomez89/weathercache/internal/logger"
)

func TestSyncer_CoalescesSameLocation(t *testing.T) {
	db := setupStore(t)
	var calls int32
	entered := make(chan struct{})
	release := make(chan struct{})
	n := NewNormalizer(db, fetchFunc(func(context.Context, string, string) ([]byte, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(entered)
		}
		<-release
		return []byte(payload("Mountain View", 3)), nil
	}), logger.Discard())
	s := NewSyncer(n, logger.Discard())

	const callers = 5
	reports := make([]*Report, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		reports[0], errs[0] = s.Sync(context.Background(), "94043", "metric")
	}()
	<-entered

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reports[i], errs[i] = s.Sync(context.Background(), "94043", "metric")
		}(i)
	}
	// Give the joiners time to reach the in-flight call.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 3, reports[i].Days)
		assert.Equal(t, reports[0].RunID, reports[i].RunID)
	}
	assert.NotEmpty(t, reports[0].RunID)
}

func TestSyncer_SerializesLocations(t *testing.T) {
	db := setupStore(t)
	var inFlight, maxInFlight int32
	n := NewNormalizer(db, fetchFunc(func(_ context.Context, location, _ string) ([]byte, error) {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			prev := atomic.LoadInt32(&maxInFlight)
			if cur <= prev || atomic.CompareAndSwapInt32(&maxInFlight, prev, cur) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return []byte(payload("City "+location, 2)), nil
	}), logger.Discard())
	s := NewSyncer(n, logger.Discard())

	var wg sync.WaitGroup
	for _, loc := range []string{"94043", "99705", "10001", "60601"} {
		wg.Add(1)
		go func(loc string) {
			defer wg.Done()
			_, err := s.Sync(context.Background(), loc, "metric")
			assert.NoError(t, err)
		}(loc)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight))
	locs, err := db.CountLocations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, locs)
	days, err := db.CountWeather(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, days)
}

func TestSyncer_ReportsFailure(t *testing.T) {
	db := setupStore(t)
	n := NewNormalizer(db, staticFetcher(`{"list":[{"dt":1}]}`), logger.Discard())
	s := NewSyncer(n, logger.Discard())

	report, err := s.Sync(context.Background(), "94043", "metric")
	require.Error(t, err)
	require.NotNil(t, report)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, err, report.Err)
}
