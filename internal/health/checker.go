// Package health checks the registered MySQL pools.
package health

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dhima/client-service/internal/logging"
	"github.com/dhima/client-service/internal/storage"
	"github.com/dhima/client-service/pkg/clock"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// JobName is the name the checker runs under in the scheduler.
const JobName = "pool-health"

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusDown     = "down"
)

// DefaultPingTimeout bounds each pool ping.
const DefaultPingTimeout = 2 * time.Second

// ErrNoPools is reported when the source returns no pools.
var ErrNoPools = errors.New("no pools registered")

// Pool is the view of a connection pool the checker needs.
type Pool interface {
	Name() string
	Ping(ctx context.Context) error
	Stats() sql.DBStats
}

// Source lists the pools to check.
type Source func() []Pool

// RegistrySource checks every instance held by registry.
func RegistrySource(registry *storage.Registry) Source {
	return func() []Pool {
		instances := registry.Instances()
		pools := make([]Pool, 0, len(instances))
		for _, inst := range instances {
			pools = append(pools, inst)
		}
		return pools
	}
}

// PoolStats is a JSON-friendly copy of sql.DBStats.
type PoolStats struct {
	MaxOpenConnections int   `json:"max_open_connections"`
	OpenConnections    int   `json:"open_connections"`
	InUse              int   `json:"in_use"`
	Idle               int   `json:"idle"`
	WaitCount          int64 `json:"wait_count"`
	WaitDurationMS     int64 `json:"wait_duration_ms"`
	MaxIdleClosed      int64 `json:"max_idle_closed"`
	MaxIdleTimeClosed  int64 `json:"max_idle_time_closed"`
	MaxLifetimeClosed  int64 `json:"max_lifetime_closed"`
} // @name PoolStats

// StatsFrom converts a database/sql stats snapshot.
func StatsFrom(s sql.DBStats) PoolStats {
	return PoolStats{
		MaxOpenConnections: s.MaxOpenConnections,
		OpenConnections:    s.OpenConnections,
		InUse:              s.InUse,
		Idle:               s.Idle,
		WaitCount:          s.WaitCount,
		WaitDurationMS:     s.WaitDuration.Milliseconds(),
		MaxIdleClosed:      s.MaxIdleClosed,
		MaxIdleTimeClosed:  s.MaxIdleTimeClosed,
		MaxLifetimeClosed:  s.MaxLifetimeClosed,
	}
}

// PoolStatus is the result of checking one pool.
type PoolStatus struct {
	Name      string    `json:"name" example:"_default_"`
	Status    string    `json:"status" example:"ok"`
	Error     string    `json:"error,omitempty"`
	LatencyMS int64     `json:"latency_ms" example:"1"`
	Stats     PoolStats `json:"stats"`
} // @name PoolStatus

// Report is the result of one check across all pools.
type Report struct {
	Status    string       `json:"status" example:"ok"`
	CheckedAt time.Time    `json:"checked_at"`
	Pools     []PoolStatus `json:"pools"`
} // @name HealthReport

// Healthy reports whether every pool answered.
func (r Report) Healthy() bool { return r.Status == StatusOK }

// Checker pings pools and keeps the latest report.
type Checker struct {
	source  Source
	clock   clock.Clock
	logger  logging.Logger
	timeout time.Duration

	mu   sync.RWMutex
	last *Report
}

// Option customises a Checker.
type Option func(*Checker)

// WithClock sets the clock that stamps reports.
func WithClock(c clock.Clock) Option { return func(ch *Checker) { ch.clock = c } }

// WithLogger sets the logger that records failed checks.
func WithLogger(l logging.Logger) Option { return func(ch *Checker) { ch.logger = l } }

// WithPingTimeout sets the per-pool ping deadline.
func WithPingTimeout(d time.Duration) Option {
	return func(ch *Checker) {
		if d > 0 {
			ch.timeout = d
		}
	}
}

// NewChecker creates a checker over source.
func NewChecker(source Source, opts ...Option) *Checker {
	c := &Checker{
		source:  source,
		clock:   clock.RealClock{},
		logger:  logging.NewNoOpLogger(),
		timeout: DefaultPingTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("component", "health"))
	return c
}

// Check pings every pool. The returned error aggregates every failed ping;
// the report is produced either way and becomes the latest one.
func (c *Checker) Check(ctx context.Context) (Report, error) {
	pools := c.source()
	report := Report{
		Status:    StatusOK,
		CheckedAt: c.clock.Now().UTC(),
		Pools:     make([]PoolStatus, 0, len(pools)),
	}

	var result *multierror.Error
	if len(pools) == 0 {
		result = multierror.Append(result, ErrNoPools)
	}
	for _, pool := range pools {
		status, err := c.checkPool(ctx, pool)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("pool %s: %w", pool.Name(), err))
		}
		report.Pools = append(report.Pools, status)
	}

	err := result.ErrorOrNil()
	if err != nil {
		report.Status = StatusDegraded
		c.logger.Warn("pool health degraded", zap.Error(err))
	}

	c.mu.Lock()
	c.last = &report
	c.mu.Unlock()
	return report, err
}

func (c *Checker) checkPool(ctx context.Context, pool Pool) (PoolStatus, error) {
	pingCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	started := time.Now()
	err := pool.Ping(pingCtx)
	status := PoolStatus{
		Name:      pool.Name(),
		Status:    StatusOK,
		LatencyMS: time.Since(started).Milliseconds(),
		Stats:     StatsFrom(pool.Stats()),
	}
	if err != nil {
		status.Status = StatusDown
		status.Error = err.Error()
	}
	return status, err
}

// Last returns the most recent report, if any check has run.
func (c *Checker) Last() (Report, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil {
		return Report{}, false
	}
	return *c.last, true
}

// Name identifies the checker as a scheduled job.
func (c *Checker) Name() string { return JobName }

// Run performs one check as a scheduled job.
func (c *Checker) Run(ctx context.Context) error {
	_, err := c.Check(ctx)
	return err
}
