// internal/scheduler/retry.go
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stylefeed/inventory-importer/internal/domain"
	"github.com/stylefeed/inventory-importer/pkg/logger"
)

const defaultRetryInterval = 30 * time.Minute

// AttemptFunc performs one email poll for a source. It returns
// ErrNoMatchingMail when the mailbox still has nothing for us.
type AttemptFunc func(ctx context.Context, sourceID string) error

// RetryQueue reschedules email pulls that found no matching mail. Every
// retry carries the logical run id of the originally scheduled pull so
// downstream systems see one run no matter how many polls it took.
type RetryQueue struct {
	mu     sync.Mutex
	timers map[string]*time.Timer

	// now is swappable for tests.
	now func() time.Time
}

func NewRetryQueue() *RetryQueue {
	return &RetryQueue{
		timers: make(map[string]*time.Timer),
		now:    time.Now,
	}
}

// Schedule queues the next poll for the source, provided retries are
// enabled and the next attempt would still land before the cutoff hour.
// Returns whether a retry was queued.
func (q *RetryQueue) Schedule(source *domain.Source, runID string, attempt AttemptFunc) bool {
	if !source.RetryIfNoEmail {
		return false
	}

	interval := time.Duration(source.RetryIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = defaultRetryInterval
	}

	next := q.now().Add(interval)
	if source.RetryCutoffHour > 0 && next.Hour() >= source.RetryCutoffHour {
		logger.Log.Info().
			Str("source_id", source.ID).
			Str("run_id", runID).
			Int("cutoff_hour", source.RetryCutoffHour).
			Msg("retry window closed, giving up until next schedule")
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if existing, ok := q.timers[source.ID]; ok {
		existing.Stop()
	}
	q.timers[source.ID] = time.AfterFunc(interval, func() {
		q.run(source, runID, attempt)
	})
	logger.Log.Info().
		Str("source_id", source.ID).
		Str("run_id", runID).
		Time("next_attempt", next).
		Msg("email retry scheduled")
	return true
}

func (q *RetryQueue) run(source *domain.Source, runID string, attempt AttemptFunc) {
	q.mu.Lock()
	delete(q.timers, source.ID)
	q.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	err := attempt(ctx, source.ID)
	switch {
	case err == nil:
		logger.Log.Info().Str("source_id", source.ID).Str("run_id", runID).Msg("email retry succeeded")
	case errors.Is(err, domain.ErrNoMatchingMail):
		q.Schedule(source, runID, attempt)
	default:
		logger.Log.Error().Err(err).Str("source_id", source.ID).Str("run_id", runID).Msg("email retry failed")
	}
}

// Cancel drops any pending retry for the source.
func (q *RetryQueue) Cancel(sourceID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if timer, ok := q.timers[sourceID]; ok {
		timer.Stop()
		delete(q.timers, sourceID)
	}
}

// Pending reports whether a retry is queued for the source.
func (q *RetryQueue) Pending(sourceID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.timers[sourceID]
	return ok
}
