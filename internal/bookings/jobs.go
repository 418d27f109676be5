package bookings

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"cineplex/internal/shared/constants"
	"cineplex/pkg/cache"
	"cineplex/pkg/logger"
)

// Sweeper is the part of the booking service the expiry job drives
type Sweeper interface {
	ExpireStalePendingBookings(ctx context.Context, threshold time.Duration) (int, error)
}

// JobConfig contains configuration for the expiry sweep
type JobConfig struct {
	Interval  time.Duration
	Threshold time.Duration
	LockTTL   time.Duration
}

func DefaultJobConfig() *JobConfig {
	return &JobConfig{
		Interval:  1 * time.Minute,
		Threshold: 30 * time.Minute,
		LockTTL:   5 * time.Minute,
	}
}

// ExpiryJob runs the pending-booking sweep on a ticker. A run never overlaps
// another run in this process, and the cache lock keeps other instances out.
type ExpiryJob struct {
	sweeper Sweeper
	locks   cache.Service
	config  *JobConfig
	log     *logger.Logger

	running  atomic.Bool
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewExpiryJob(sweeper Sweeper, locks cache.Service, config *JobConfig, log *logger.Logger) *ExpiryJob {
	if config == nil {
		config = DefaultJobConfig()
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &ExpiryJob{
		sweeper: sweeper,
		locks:   locks,
		config:  config,
		log:     log.WithComponent("booking_expiry_job"),
		done:    make(chan struct{}),
	}
}

func (j *ExpiryJob) Start(ctx context.Context) {
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		ticker := time.NewTicker(j.config.Interval)
		defer ticker.Stop()

		j.log.InfoWithContext(ctx, "Booking expiry job started", map[string]interface{}{
			"interval":  j.config.Interval.String(),
			"threshold": j.config.Threshold.String(),
		})

		for {
			select {
			case <-ticker.C:
				if _, err := j.RunOnce(ctx); err != nil && !errors.Is(err, ErrSweepInProgress) {
					j.log.ErrorWithContext(ctx, "Booking expiry sweep failed", err, nil)
				}
			case <-j.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the ticker loop and waits for a running sweep to finish
func (j *ExpiryJob) Stop() {
	j.stopOnce.Do(func() { close(j.done) })
	j.wg.Wait()
}

var ErrSweepInProgress = errors.New("booking expiry sweep already running")

// RunOnce performs one sweep unless one is already running here or elsewhere
func (j *ExpiryJob) RunOnce(ctx context.Context) (int, error) {
	if !j.running.CompareAndSwap(false, true) {
		return 0, ErrSweepInProgress
	}
	defer j.running.Store(false)

	if j.locks != nil {
		lock, err := j.locks.AcquireLock(ctx, constants.LOCK_KEY_BOOKING_EXPIRY_SWEEP, j.config.LockTTL)
		if errors.Is(err, cache.ErrLockHeld) {
			return 0, ErrSweepInProgress
		}
		if err != nil {
			return 0, err
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				j.log.ErrorWithContext(ctx, "Failed to release sweep lock", err, nil)
			}
		}()
	}

	return j.sweeper.ExpireStalePendingBookings(ctx, j.config.Threshold)
}

// GetJobStatus reports the job configuration and whether a sweep is running
func (j *ExpiryJob) GetJobStatus() map[string]interface{} {
	return map[string]interface{}{
		"interval":  j.config.Interval.String(),
		"threshold": j.config.Threshold.String(),
		"running":   j.running.Load(),
	}
}
