package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nickprotop/NeighborTools-sub003/internal/cache"
	"github.com/nickprotop/NeighborTools-sub003/internal/config"
	"github.com/nickprotop/NeighborTools-sub003/internal/logger"
	"github.com/nickprotop/NeighborTools-sub003/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	redis    *redis.Client
	config   *config.Config
	now      func() time.Time
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Approval service.ApprovalService
}

// NewJobRunner creates a new job runner. rdb may be nil, in which case jobs run without a lease.
func NewJobRunner(services *Services, rdb *redis.Client, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		redis:    rdb,
		config:   cfg,
		now:      time.Now,
	}
}

// Config returns the configuration the jobs were built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	start := jr.now()
	jobFunc()
	logger.Info("Job completed", "job", jobName, "duration", jr.now().Sub(start))
}

// lock takes a Redis lease so that only one replica runs the job at a time.
// ok is false when another replica holds it.
func (jr *JobRunner) lock(ctx context.Context, name string, ttl time.Duration) (release func(), ok bool, err error) {
	if jr.redis == nil {
		return func() {}, true, nil
	}

	l, ok, err := cache.TryLock(ctx, jr.redis, name, ttl)
	if err != nil || !ok {
		return nil, ok, err
	}
	return func() {
		if err := l.Release(context.Background()); err != nil {
			logger.Warn("Failed to release job lock", "job", name, "error", err)
		}
	}, true, nil
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.ExpireStaleApprovals()
}
