// Package store provides the gate configuration repository: a single
// database row behind a short-lived in-memory cache.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/xctd-glitch/trackng.app/models"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// ErrConfigLoad marks the fatal error class: the configuration row could
// not be read at all. Callers translate it into a 5xx response.
var ErrConfigLoad = errors.New("gate config unavailable")

const configRowID = 1

// DefaultCacheTTL bounds how stale a cached config read may be.
const DefaultCacheTTL = 60 * time.Second

// ConfigStore is the engine-facing repository interface. All methods
// are safe for concurrent callers.
type ConfigStore interface {
	Get(ctx context.Context) (*models.GateConfig, error)
	Fresh(ctx context.Context) (*models.GateConfig, error)
	Update(ctx context.Context, cfg *models.GateConfig) error
	IncrementDecisionA(ctx context.Context) error
	IncrementDecisionB(ctx context.Context) error
	ResetCountersIfNewDay(ctx context.Context) error
}

// GormStore implements ConfigStore on a gorm-managed gate_config row.
type GormStore struct {
	db  *gorm.DB
	loc *time.Location
	ttl time.Duration
	now func() time.Time

	mu        sync.RWMutex
	cached    *models.GateConfig
	fetchedAt time.Time
	group     singleflight.Group
}

func New(db *gorm.DB, loc *time.Location) *GormStore {
	return &GormStore{
		db:  db,
		loc: loc,
		ttl: DefaultCacheTTL,
		now: time.Now,
	}
}

// Get returns the current configuration, served from cache while it is
// fresh. Concurrent cache misses collapse into a single database read.
func (s *GormStore) Get(ctx context.Context) (*models.GateConfig, error) {
	s.mu.RLock()
	if s.cached != nil && s.now().Sub(s.fetchedAt) < s.ttl {
		cfg := *s.cached
		s.mu.RUnlock()
		return &cfg, nil
	}
	s.mu.RUnlock()

	v, err, _ := s.group.Do("config", func() (interface{}, error) {
		return s.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	cfg := *v.(*models.GateConfig)
	return &cfg, nil
}

// Fresh bypasses the cache; used by the stats endpoint and the reset
// job, where counter staleness matters.
func (s *GormStore) Fresh(ctx context.Context) (*models.GateConfig, error) {
	return s.load(ctx)
}

func (s *GormStore) load(ctx context.Context) (*models.GateConfig, error) {
	var cfg models.GateConfig
	err := s.db.WithContext(ctx).First(&cfg, configRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cfg = *models.DefaultGateConfig()
		err = s.db.WithContext(ctx).Create(&cfg).Error
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigLoad, err)
	}

	s.mu.Lock()
	snapshot := cfg
	s.cached = &snapshot
	s.fetchedAt = s.now()
	s.mu.Unlock()
	return &cfg, nil
}

// Update persists an admin configuration change and drops the cache so
// the next decision observes it immediately. The counter and reset
// columns are excluded: they move under the caller's feet via the
// atomic increments, and writing the caller's snapshot back would lose
// any increment committed since that snapshot was read.
func (s *GormStore) Update(ctx context.Context, cfg *models.GateConfig) error {
	cfg.ID = configRowID
	err := s.db.WithContext(ctx).
		Omit("decision_a_count", "decision_b_count", "stats_reset_at", "created_at").
		Save(cfg).Error
	if err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *GormStore) IncrementDecisionA(ctx context.Context) error {
	return s.increment(ctx, "decision_a_count")
}

func (s *GormStore) IncrementDecisionB(ctx context.Context) error {
	return s.increment(ctx, "decision_b_count")
}

// increment is a single atomic UPDATE; concurrent requests never lose
// counts. The cache is left alone: counter staleness inside the TTL is
// acceptable and the stats endpoint reads fresh.
func (s *GormStore) increment(ctx context.Context, column string) error {
	return s.db.WithContext(ctx).Model(&models.GateConfig{}).
		Where("id = ?", configRowID).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
}

// ResetCountersIfNewDay zeroes the counters the first time it runs after
// local midnight. The UPDATE is guarded on the previous reset day, so
// two racing callers reset exactly once.
func (s *GormStore) ResetCountersIfNewDay(ctx context.Context) error {
	cfg, err := s.Get(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	if !NeedsReset(cfg.StatsResetAt, now, s.loc) {
		return nil
	}

	dayStart := startOfDay(now, s.loc)
	res := s.db.WithContext(ctx).Model(&models.GateConfig{}).
		Where("id = ? AND stats_reset_at < ?", configRowID, dayStart).
		Updates(map[string]interface{}{
			"decision_a_count": 0,
			"decision_b_count": 0,
			"stats_reset_at":   now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		s.invalidate()
	}
	return nil
}

func (s *GormStore) invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

// NeedsReset reports whether lastReset falls on an earlier calendar day
// than now in the given location.
func NeedsReset(lastReset, now time.Time, loc *time.Location) bool {
	return lastReset.In(loc).Before(startOfDay(now, loc))
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
