package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"overdue_followup_bot/internal/app" // For DownloadService interface
)

const (
	downloadCheckTimeout = 2 * time.Minute
	dailyDigestTimeout   = 10 * time.Minute // Longer timeout, one message per active worker
)

// DigestSender sends the morning overdue summary.
type DigestSender interface {
	SendDailyDigest(ctx context.Context) error
}

type OverdueScheduler struct {
	cronEngine            *cron.Cron
	downloadService       app.DownloadService
	digestSender          DigestSender
	logger                *logrus.Entry
	cronSpecDownloadCheck string
	cronSpecDailyDigest   string
}

func NewOverdueScheduler(
	downloadService app.DownloadService,
	digestSender DigestSender,
	location *time.Location, // The health workers' zone, so "9 AM" means their morning
	logger *logrus.Entry,
	cronSpecDownloadCheck string, // e.g., "*/1 * * * *" (every minute)
	cronSpecDailyDigest string, // e.g., "0 9 * * *" (9 AM daily)
) *OverdueScheduler {
	if location == nil {
		location = time.Local
	}
	cronLogger := cron.PrintfLogger(logger)
	return &OverdueScheduler{
		cronEngine: cron.New(
			cron.WithLocation(location),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		downloadService:       downloadService,
		digestSender:          digestSender,
		logger:                logger,
		cronSpecDownloadCheck: cronSpecDownloadCheck,
		cronSpecDailyDigest:   cronSpecDailyDigest,
	}
}

func (s *OverdueScheduler) Start() error {
	s.logger.Info("Starting overdue scheduler...")

	// Job for building and sending scheduled downloads
	if _, err := s.cronEngine.AddFunc(s.cronSpecDownloadCheck, s.runDownloadCheck); err != nil {
		return fmt.Errorf("could not add download check cron job: %w", err)
	}

	// Job for the morning digest
	if _, err := s.cronEngine.AddFunc(s.cronSpecDailyDigest, s.runDailyDigest); err != nil {
		return fmt.Errorf("could not add daily digest cron job: %w", err)
	}

	s.cronEngine.Start()
	s.logger.WithField("jobs", len(s.cronEngine.Entries())).Info("Overdue scheduler started with jobs.")
	return nil
}

func (s *OverdueScheduler) runDownloadCheck() {
	s.logger.Debug("Cron job triggered for processing scheduled downloads.")
	ctx, cancel := context.WithTimeout(context.Background(), downloadCheckTimeout)
	defer cancel()
	if err := s.downloadService.ProcessPendingDownloads(ctx); err != nil {
		s.logger.WithError(err).Error("Error during scheduled download processing")
	}
}

func (s *OverdueScheduler) runDailyDigest() {
	s.logger.Info("Cron job triggered for the daily overdue digest.")
	ctx, cancel := context.WithTimeout(context.Background(), dailyDigestTimeout)
	defer cancel()
	if err := s.digestSender.SendDailyDigest(ctx); err != nil {
		s.logger.WithError(err).Error("Error during daily digest")
	}
}

func (s *OverdueScheduler) Stop() {
	s.logger.Info("Stopping overdue scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("Overdue scheduler gracefully stopped.")
}
