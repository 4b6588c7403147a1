package app

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"overdue_followup_bot/internal/domain/download"
	"overdue_followup_bot/internal/domain/facility"
	"overdue_followup_bot/internal/domain/overdue"
	domainTelegram "overdue_followup_bot/internal/domain/telegram"
)

const pendingDownloadsBatchSize = 50

var ErrUnsupportedFormat = errors.New("no exporter for download format")

// DownloadService builds overdue list files and delivers them to health workers.
type DownloadService interface {
	// ScheduleDownload queues a file for the scheduler to build and send.
	ScheduleDownload(ctx context.Context, chatID int64, facilityID uuid.UUID, format download.Format) error
	// ShareNow builds the file immediately and sends it so it can be forwarded.
	ShareNow(ctx context.Context, chatID int64, facilityID uuid.UUID, format download.Format) error
	ProcessPendingDownloads(ctx context.Context) error
}

type DownloadServiceImpl struct {
	jobRepo        download.Repository
	facilityRepo   facility.Repository
	overdueRepo    overdue.Repository
	telegramClient domainTelegram.Client
	exporters      map[download.Format]download.Exporter
	today          func() time.Time
	maxAttempts    int
	logger         *logrus.Entry
}

func NewDownloadServiceImpl(
	jr download.Repository,
	fr facility.Repository,
	or overdue.Repository,
	tc domainTelegram.Client,
	exporters []download.Exporter,
	today func() time.Time,
	maxAttempts int,
	logger *logrus.Entry,
) *DownloadServiceImpl {
	byFormat := make(map[download.Format]download.Exporter, len(exporters))
	for _, e := range exporters {
		byFormat[e.Format()] = e
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &DownloadServiceImpl{
		jobRepo:        jr,
		facilityRepo:   fr,
		overdueRepo:    or,
		telegramClient: tc,
		exporters:      byFormat,
		today:          today,
		maxAttempts:    maxAttempts,
		logger:         logger,
	}
}

func (s *DownloadServiceImpl) ScheduleDownload(ctx context.Context, chatID int64, facilityID uuid.UUID, format download.Format) error {
	if _, ok := s.exporters[format]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	job := &download.Job{
		ChatID:     chatID,
		FacilityID: facilityID,
		Format:     format,
		Status:     download.StatusPending,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return fmt.Errorf("failed to create download job: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"job_id":      job.ID,
		"chat_id":     chatID,
		"facility_id": facilityID,
		"format":      format,
	}).Info("Download scheduled")
	return nil
}

func (s *DownloadServiceImpl) ShareNow(ctx context.Context, chatID int64, facilityID uuid.UUID, format download.Format) error {
	logCtx := s.logger.WithFields(logrus.Fields{"chat_id": chatID, "facility_id": facilityID, "format": format})

	if err := s.buildAndSend(ctx, chatID, facilityID, format, "Overdue list ready to share. Forward this file to your team."); err != nil {
		logCtx.WithError(err).Error("Failed to share overdue list")
		return err
	}
	logCtx.Info("Overdue list shared")
	return nil
}

func (s *DownloadServiceImpl) ProcessPendingDownloads(ctx context.Context) error {
	jobs, err := s.jobRepo.ListPending(ctx, pendingDownloadsBatchSize)
	if err != nil {
		return fmt.Errorf("failed to list pending downloads: %w", err)
	}
	if len(jobs) == 0 {
		s.logger.Debug("No pending downloads")
		return nil
	}
	s.logger.WithField("count", len(jobs)).Info("Processing pending downloads")

	for _, job := range jobs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.processJob(ctx, job)
	}
	return nil
}

func (s *DownloadServiceImpl) processJob(ctx context.Context, job *download.Job) {
	logCtx := s.logger.WithFields(logrus.Fields{"job_id": job.ID, "chat_id": job.ChatID, "format": job.Format})

	job.Attempts++
	err := s.buildAndSend(ctx, job.ChatID, job.FacilityID, job.Format, "Your overdue list download is ready.")
	switch {
	case err == nil:
		job.Status = download.StatusSent
		job.SentAt = sql.NullTime{Time: time.Now(), Valid: true}
		job.LastError = sql.NullString{}
		logCtx.Info("Download sent")
	case job.Attempts >= s.maxAttempts:
		job.Status = download.StatusFailed
		job.LastError = sql.NullString{String: err.Error(), Valid: true}
		logCtx.WithError(err).Error("Download failed, giving up")
		if errNotify := s.telegramClient.SendMessage(job.ChatID, "Sorry, your overdue list download could not be prepared. Please try again later.", nil); errNotify != nil {
			logCtx.WithError(errNotify).Warn("Failed to notify chat about failed download")
		}
	default:
		job.LastError = sql.NullString{String: err.Error(), Valid: true}
		logCtx.WithError(err).WithField("attempts", job.Attempts).Warn("Download failed, will retry")
	}

	if errUpdate := s.jobRepo.Update(ctx, job); errUpdate != nil {
		logCtx.WithError(errUpdate).Error("Failed to update download job")
	}
}

func (s *DownloadServiceImpl) buildAndSend(ctx context.Context, chatID int64, facilityID uuid.UUID, format download.Format, caption string) error {
	exporter, ok := s.exporters[format]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	f, err := s.facilityRepo.GetByID(ctx, facilityID)
	if err != nil {
		return fmt.Errorf("failed to get facility %s: %w", facilityID, err)
	}

	today := s.today()
	appointments, err := s.overdueRepo.ListOverdue(ctx, facilityID, today)
	if err != nil {
		return fmt.Errorf("failed to list overdue appointments: %w", err)
	}

	doc := download.Document{
		FacilityName: f.Name,
		Today:        today,
		Sections:     overdue.GroupSections(appointments, today),
	}
	var buf bytes.Buffer
	if err := exporter.Export(&buf, doc); err != nil {
		return fmt.Errorf("failed to export %s: %w", format, err)
	}

	if err := s.telegramClient.SendDocument(chatID, exporter.FileName(doc), &buf, caption); err != nil {
		return fmt.Errorf("failed to send %s document: %w", format, err)
	}
	return nil
}
