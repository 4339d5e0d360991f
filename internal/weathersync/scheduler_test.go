package weathersync

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cesargomez89/weathercache/internal/logger"
)

func TestScheduler_RunsOnStart(t *testing.T) {
	db := setupStore(t)
	var calls int32
	var gotUnits atomic.Value
	n := NewNormalizer(db, fetchFunc(func(_ context.Context, _ string, units string) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		gotUnits.Store(units)
		return []byte(payload("North Pole", 2)), nil
	}), logger.Discard())

	s := NewScheduler(NewSyncer(n, logger.Discard()), "99705", "imperial", time.Hour, logger.Discard())
	require.NoError(t, s.Start())
	defer s.Stop()

	require.Eventually(t, func() bool {
		days, err := db.CountWeather(context.Background())
		return err == nil && days == 2
	}, 2*time.Second, 20*time.Millisecond)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, "imperial", gotUnits.Load())
}
