// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/stylefeed/inventory-importer/internal/acquire"
	"github.com/stylefeed/inventory-importer/internal/config"
	"github.com/stylefeed/inventory-importer/internal/domain"
	"github.com/stylefeed/inventory-importer/internal/repository"
	"github.com/stylefeed/inventory-importer/pkg/logger"
)

const runTimeout = 30 * time.Minute

// Scheduler registers a cron entry per auto-scheduled source and routes each
// firing into the acquisition service. Email sources that find no mail are
// handed to the retry queue.
type Scheduler struct {
	cron    *cron.Cron
	service *acquire.Service
	sources repository.SourceRepository
	retry   *RetryQueue
	loc     *time.Location
}

func New(cfg config.SchedulerConfig, service *acquire.Service, sources repository.SourceRepository) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler timezone %q: %w", cfg.Timezone, err)
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		service: service,
		sources: sources,
		retry:   NewRetryQueue(),
		loc:     loc,
	}, nil
}

// Start loads every source and registers the auto-scheduled ones.
func (s *Scheduler) Start(ctx context.Context) error {
	sources, err := s.sources.List(ctx)
	if err != nil {
		return fmt.Errorf("could not load sources: %w", err)
	}

	registered := 0
	for _, source := range sources {
		if source.Schedule == nil || !source.Schedule.Auto {
			continue
		}
		spec, err := cronSpec(source.Schedule)
		if err != nil {
			logger.Log.Warn().Err(err).Str("source_id", source.ID).Msg("invalid schedule, source skipped")
			continue
		}
		src := source
		if _, err := s.cron.AddFunc(spec, func() { s.runSource(src) }); err != nil {
			logger.Log.Warn().Err(err).Str("source_id", source.ID).Str("spec", spec).Msg("could not register schedule")
			continue
		}
		registered++
	}

	s.cron.Start()
	logger.Log.Info().Int("sources", registered).Str("timezone", s.loc.String()).Msg("scheduler started")
	return nil
}

// Stop halts cron and waits for in-flight jobs.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}

func (s *Scheduler) runSource(source *domain.Source) {
	runID := uuid.NewString()
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	logger.Log.Info().
		Str("source_id", source.ID).
		Str("run_id", runID).
		Str("kind", string(source.Kind)).
		Msg("scheduled import starting")

	var err error
	switch source.Kind {
	case domain.SourceKindURL:
		_, err = s.service.ImportURL(ctx, source.ID)
	case domain.SourceKindEmail:
		_, err = s.service.ImportEmail(ctx, source.ID)
	default:
		logger.Log.Warn().Str("source_id", source.ID).Msg("manual sources cannot be scheduled")
		return
	}

	switch {
	case err == nil:
		return
	case errors.Is(err, domain.ErrNoMatchingMail):
		s.retry.Schedule(source, runID, func(ctx context.Context, sourceID string) error {
			_, attemptErr := s.service.ImportEmail(ctx, sourceID)
			return attemptErr
		})
	case errors.Is(err, domain.ErrImportBusy):
		logger.Log.Warn().Str("source_id", source.ID).Msg("scheduled import skipped, already running")
	default:
		logger.Log.Error().Err(err).Str("source_id", source.ID).Str("run_id", runID).Msg("scheduled import failed")
	}
}

// cronSpec translates the wall-clock schedule config into a cron expression.
func cronSpec(schedule *domain.ScheduleConfig) (string, error) {
	hour, minute := 6, 0
	if schedule.TimeLocal != "" {
		parts := strings.SplitN(schedule.TimeLocal, ":", 2)
		if len(parts) != 2 {
			return "", fmt.Errorf("invalid timeLocal %q", schedule.TimeLocal)
		}
		h, err := strconv.Atoi(parts[0])
		if err != nil || h < 0 || h > 23 {
			return "", fmt.Errorf("invalid hour in %q", schedule.TimeLocal)
		}
		m, err := strconv.Atoi(parts[1])
		if err != nil || m < 0 || m > 59 {
			return "", fmt.Errorf("invalid minute in %q", schedule.TimeLocal)
		}
		hour, minute = h, m
	}

	switch strings.ToLower(schedule.Frequency) {
	case "hourly":
		return fmt.Sprintf("%d * * * *", minute), nil
	case "weekly":
		return fmt.Sprintf("%d %d * * 1", minute, hour), nil
	case "daily", "":
		return fmt.Sprintf("%d %d * * *", minute, hour), nil
	default:
		return "", fmt.Errorf("unknown frequency %q", schedule.Frequency)
	}
}
