package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

func retrySource() *domain.Source {
	return &domain.Source{
		ID:                   "src-1",
		RetryIfNoEmail:       true,
		RetryIntervalMinutes: 30,
		RetryCutoffHour:      18,
	}
}

func queueAt(hour int) *RetryQueue {
	q := NewRetryQueue()
	q.now = func() time.Time {
		return time.Date(2026, 1, 15, hour, 0, 0, 0, time.UTC)
	}
	return q
}

func TestRetryQueue_Schedule(t *testing.T) {
	q := queueAt(10)
	defer q.Cancel("src-1")

	queued := q.Schedule(retrySource(), "run-1", nil)

	assert.True(t, queued)
	assert.True(t, q.Pending("src-1"))
}

func TestRetryQueue_CutoffClosesTheWindow(t *testing.T) {
	q := queueAt(17)

	source := retrySource()
	source.RetryIntervalMinutes = 90

	queued := q.Schedule(source, "run-1", nil)

	assert.False(t, queued, "the next attempt would land past the cutoff hour")
	assert.False(t, q.Pending("src-1"))
}

func TestRetryQueue_CutoffZeroNeverCloses(t *testing.T) {
	q := queueAt(23)
	defer q.Cancel("src-1")

	source := retrySource()
	source.RetryCutoffHour = 0

	assert.True(t, q.Schedule(source, "run-1", nil))
}

func TestRetryQueue_DisabledSource(t *testing.T) {
	q := queueAt(10)
	source := retrySource()
	source.RetryIfNoEmail = false

	assert.False(t, q.Schedule(source, "run-1", nil))
}

func TestRetryQueue_RescheduleReplacesTimer(t *testing.T) {
	q := queueAt(10)
	defer q.Cancel("src-1")

	source := retrySource()
	assert.True(t, q.Schedule(source, "run-1", nil))
	assert.True(t, q.Schedule(source, "run-1", nil), "a second schedule replaces the pending timer")
	assert.True(t, q.Pending("src-1"))
}

func TestRetryQueue_Cancel(t *testing.T) {
	q := queueAt(10)

	q.Schedule(retrySource(), "run-1", nil)
	q.Cancel("src-1")

	assert.False(t, q.Pending("src-1"))
}

func TestCronSpec(t *testing.T) {
	tests := []struct {
		name     string
		schedule *domain.ScheduleConfig
		want     string
		wantErr  bool
	}{
		{
			name:     "daily at configured time",
			schedule: &domain.ScheduleConfig{Frequency: "daily", TimeLocal: "07:30"},
			want:     "30 7 * * *",
		},
		{
			name:     "empty frequency defaults to daily at six",
			schedule: &domain.ScheduleConfig{},
			want:     "0 6 * * *",
		},
		{
			name:     "hourly keeps the minute",
			schedule: &domain.ScheduleConfig{Frequency: "hourly", TimeLocal: "00:15"},
			want:     "15 * * * *",
		},
		{
			name:     "weekly runs mondays",
			schedule: &domain.ScheduleConfig{Frequency: "weekly", TimeLocal: "08:00"},
			want:     "0 8 * * 1",
		},
		{
			name:     "bad time",
			schedule: &domain.ScheduleConfig{TimeLocal: "25:00"},
			wantErr:  true,
		},
		{
			name:     "unknown frequency",
			schedule: &domain.ScheduleConfig{Frequency: "fortnightly"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := cronSpec(tt.schedule)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, spec)
		})
	}
}
