package store

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xctd-glitch/trackng.app/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestStore opens an in-memory database, migrates the config table
// and returns the store plus a counter of SELECTs it issues.
func newTestStore(t *testing.T) (*GormStore, *gorm.DB, *int64) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// One connection, or each pool member gets its own :memory: db
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.GateConfig{}))

	var selects int64
	err = db.Callback().Query().After("gorm:query").Register("test:count_selects", func(*gorm.DB) {
		atomic.AddInt64(&selects, 1)
	})
	require.NoError(t, err)

	return New(db, time.UTC), db, &selects
}

func TestGormStoreCreatesDefaultRow(t *testing.T) {
	st, _, _ := newTestStore(t)

	cfg, err := st.Get(context.Background())
	require.NoError(t, err)

	assert.False(t, cfg.Enabled)
	assert.Empty(t, cfg.TargetURLs)
	assert.Equal(t, models.FilterAll, cfg.CountryFilterMode)
	assert.Zero(t, cfg.DecisionACount)
	assert.Zero(t, cfg.DecisionBCount)
}

func TestGormStoreGetServesFromCacheWithinTTL(t *testing.T) {
	st, _, selects := newTestStore(t)

	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return base }

	_, err := st.Get(context.Background())
	require.NoError(t, err)
	warm := atomic.LoadInt64(selects)

	// Repeated reads inside the TTL never touch the database
	st.now = func() time.Time { return base.Add(30 * time.Second) }
	for i := 0; i < 5; i++ {
		_, err := st.Get(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, warm, atomic.LoadInt64(selects))

	// Past the TTL the next read goes back to the database
	st.now = func() time.Time { return base.Add(DefaultCacheTTL + time.Second) }
	_, err = st.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, warm+1, atomic.LoadInt64(selects))
}

func TestGormStoreGetReturnsCopies(t *testing.T) {
	st, _, _ := newTestStore(t)

	cfg, err := st.Get(context.Background())
	require.NoError(t, err)
	cfg.Enabled = true

	again, err := st.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, again.Enabled, "caller mutations must not leak into the cache")
}

func TestGormStoreUpdateInvalidatesCache(t *testing.T) {
	st, _, selects := newTestStore(t)
	ctx := context.Background()

	cfg, err := st.Get(ctx)
	require.NoError(t, err)
	warm := atomic.LoadInt64(selects)

	cfg.Enabled = true
	cfg.TargetURLs = []string{"https://offers.example/one"}
	require.NoError(t, st.Update(ctx, cfg))

	// The very next read re-fetches and observes the change, TTL or not
	got, err := st.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, warm+1, atomic.LoadInt64(selects))
	assert.True(t, got.Enabled)
	assert.Equal(t, []string{"https://offers.example/one"}, []string(got.TargetURLs))
}

func TestGormStoreUpdatePreservesCounters(t *testing.T) {
	st, db, _ := newTestStore(t)
	ctx := context.Background()

	// Admin reads a snapshot...
	snapshot, err := st.Fresh(ctx)
	require.NoError(t, err)

	// ...clicks land while the settings form is open...
	require.NoError(t, st.IncrementDecisionA(ctx))
	require.NoError(t, st.IncrementDecisionA(ctx))
	require.NoError(t, st.IncrementDecisionB(ctx))

	resetBefore := time.Date(2026, 3, 14, 0, 0, 1, 0, time.UTC)
	require.NoError(t, db.Model(&models.GateConfig{}).
		Where("id = ?", configRowID).
		UpdateColumn("stats_reset_at", resetBefore).Error)

	// ...and the admin saves the stale snapshot
	snapshot.Enabled = true
	snapshot.StatsResetAt = resetBefore.Add(-48 * time.Hour)
	require.NoError(t, st.Update(ctx, snapshot))

	got, err := st.Fresh(ctx)
	require.NoError(t, err)
	assert.True(t, got.Enabled, "admin change applied")
	assert.Equal(t, int64(2), got.DecisionACount, "concurrent increments survive the save")
	assert.Equal(t, int64(1), got.DecisionBCount)
	assert.Equal(t, resetBefore.Unix(), got.StatsResetAt.Unix(), "reset anchor not overwritten by the snapshot")
}

func TestGormStoreIncrementsAreCumulative(t *testing.T) {
	st, _, _ := newTestStore(t)
	ctx := context.Background()

	_, err := st.Get(ctx)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, st.IncrementDecisionA(ctx))
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, st.IncrementDecisionB(ctx))
	}

	got, err := st.Fresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.DecisionACount)
	assert.Equal(t, int64(3), got.DecisionBCount)
}

func TestGormStoreResetOncePerDay(t *testing.T) {
	st, db, _ := newTestStore(t)
	ctx := context.Background()

	_, err := st.Get(ctx)
	require.NoError(t, err)
	require.NoError(t, st.IncrementDecisionA(ctx))
	require.NoError(t, st.IncrementDecisionB(ctx))

	day1 := time.Date(2026, 3, 14, 23, 50, 0, 0, time.UTC)
	require.NoError(t, db.Model(&models.GateConfig{}).
		Where("id = ?", configRowID).
		UpdateColumn("stats_reset_at", day1).Error)
	st.invalidate()

	// First check after midnight zeroes the counters
	day2 := time.Date(2026, 3, 15, 0, 0, 5, 0, time.UTC)
	st.now = func() time.Time { return day2 }
	require.NoError(t, st.ResetCountersIfNewDay(ctx))

	got, err := st.Fresh(ctx)
	require.NoError(t, err)
	assert.Zero(t, got.DecisionACount)
	assert.Zero(t, got.DecisionBCount)
	assert.Equal(t, day2.Unix(), got.StatsResetAt.Unix())

	// Second check the same day is a no-op
	require.NoError(t, st.IncrementDecisionA(ctx))
	later := day2.Add(time.Hour)
	st.now = func() time.Time { return later }
	require.NoError(t, st.ResetCountersIfNewDay(ctx))

	got, err = st.Fresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.DecisionACount, "same-day check must not reset again")
	assert.Equal(t, day2.Unix(), got.StatsResetAt.Unix(), "reset anchor unchanged by the no-op")
}

func TestGormStoreResetGuardBeatsStaleCache(t *testing.T) {
	st, db, _ := newTestStore(t)
	ctx := context.Background()

	_, err := st.Get(ctx)
	require.NoError(t, err)

	day1 := time.Date(2026, 3, 14, 23, 50, 0, 0, time.UTC)
	require.NoError(t, db.Model(&models.GateConfig{}).
		Where("id = ?", configRowID).
		UpdateColumn("stats_reset_at", day1).Error)
	st.invalidate()

	day2 := time.Date(2026, 3, 15, 0, 0, 5, 0, time.UTC)
	st.now = func() time.Time { return day2 }
	require.NoError(t, st.ResetCountersIfNewDay(ctx))
	require.NoError(t, st.IncrementDecisionA(ctx))

	// A racing caller still holding the pre-reset snapshot decides a
	// reset is due; the day-guarded UPDATE must not fire twice
	stale := models.GateConfig{ID: configRowID, StatsResetAt: day1}
	st.mu.Lock()
	st.cached = &stale
	st.fetchedAt = day2
	st.mu.Unlock()

	st.now = func() time.Time { return day2.Add(time.Minute) }
	require.NoError(t, st.ResetCountersIfNewDay(ctx))

	got, err := st.Fresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.DecisionACount, "guarded reset must not zero counters twice in one day")
	assert.Equal(t, day2.Unix(), got.StatsResetAt.Unix())
}
