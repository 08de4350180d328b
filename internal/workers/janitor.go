// Package workers runs background maintenance jobs.
package workers

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SuspensionClearer removes suspension markers that have already ended.
type SuspensionClearer interface {
	ClearExpiredSuspensions(ctx context.Context, now time.Time) (int64, error)
}

// SuspensionJanitor periodically clears expired suspensions so stale
// suspended_until values do not linger on accounts that never log in again.
type SuspensionJanitor struct {
	clearer  SuspensionClearer
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSuspensionJanitor creates a janitor. It is idle until Start is called.
func NewSuspensionJanitor(clearer SuspensionClearer, interval time.Duration, logger *slog.Logger) *SuspensionJanitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &SuspensionJanitor{
		clearer:  clearer,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Start launches the background loop. A non-positive interval disables the
// janitor. Calling Start again restarts the loop.
func (j *SuspensionJanitor) Start(ctx context.Context) {
	if j.interval <= 0 {
		j.logger.Info("suspension janitor disabled")
		return
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(j.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				j.RunOnce(jobCtx)
			}
		}
	}()
}

// RunOnce clears expired suspensions once.
func (j *SuspensionJanitor) RunOnce(ctx context.Context) {
	cleared, err := j.clearer.ClearExpiredSuspensions(ctx, j.now())
	if err != nil {
		j.logger.Error("failed to clear expired suspensions", "error", err)
		return
	}
	if cleared > 0 {
		j.logger.Info("cleared expired suspensions", "count", cleared)
	}
}

// Stop cancels the loop and waits for it to exit. Safe to call when the
// janitor is not running.
func (j *SuspensionJanitor) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
