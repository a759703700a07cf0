package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/bondastefana/farm-management-app/internal/config"
)

const (
	refreshTimeout = 30 * time.Minute
	reportTimeout  = 2 * time.Minute
)

// ConditionsRefresher refreshes the automatic conditions of every parcel.
type ConditionsRefresher interface {
	RefreshAll(ctx context.Context) (refreshed, failed int, err error)
}

// WeeklyReporter produces the weekly feed balance report.
type WeeklyReporter interface {
	GenerateWeeklyReport(ctx context.Context, now time.Time) (string, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	refresher ConditionsRefresher
	reporter  WeeklyReporter
	cfg       config.SchedulerConfig
	logger    *zap.Logger
}

// NewScheduler creates a new scheduler instance running in the configured
// timezone.
func NewScheduler(cfg config.SchedulerConfig, refresher ConditionsRefresher, reporter WeeklyReporter, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load scheduler timezone: %w", err)
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		refresher: refresher,
		reporter:  reporter,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler",
		zap.String("refresh_schedule", s.cfg.RefreshCronSchedule),
		zap.String("report_schedule", s.cfg.ReportCronSchedule),
		zap.String("timezone", s.cfg.Timezone))

	if _, err := s.cron.AddFunc(s.cfg.RefreshCronSchedule, s.refreshConditions); err != nil {
		return fmt.Errorf("schedule conditions refresh: %w", err)
	}

	if _, err := s.cron.AddFunc(s.cfg.ReportCronSchedule, s.generateWeeklyReport); err != nil {
		return fmt.Errorf("schedule weekly report: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) refreshConditions() {
	s.logger.Info("refreshing parcel conditions")
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	refreshed, failed, err := s.refresher.RefreshAll(ctx)
	if err != nil {
		s.logger.Error("conditions refresh aborted", zap.Error(err), zap.Int("refreshed", refreshed), zap.Int("failed", failed))
		return
	}

	s.logger.Info("conditions refresh finished", zap.Int("refreshed", refreshed), zap.Int("failed", failed))
}

func (s *Scheduler) generateWeeklyReport() {
	s.logger.Info("generating weekly report")
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	summary, err := s.reporter.GenerateWeeklyReport(ctx, time.Now())
	if err != nil {
		s.logger.Error("failed to generate weekly report", zap.Error(err))
		return
	}

	s.logger.Info("weekly report generated", zap.String("summary", summary))
}
