// internal/app/digest_service.go
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"overdue_followup_bot/internal/domain/facility"
	"overdue_followup_bot/internal/domain/overdue"
	domainTelegram "overdue_followup_bot/internal/domain/telegram"
	"overdue_followup_bot/internal/domain/worker"
)

// DigestService sends each active health worker a morning summary of their facility's overdue list.
type DigestService struct {
	workerRepo     worker.Repository
	facilityRepo   facility.Repository
	overdueRepo    overdue.Repository
	telegramClient domainTelegram.Client
	today          func() time.Time
	logger         *logrus.Entry
}

func NewDigestService(
	wr worker.Repository,
	fr facility.Repository,
	or overdue.Repository,
	tc domainTelegram.Client,
	today func() time.Time,
	logger *logrus.Entry,
) *DigestService {
	return &DigestService{
		workerRepo:     wr,
		facilityRepo:   fr,
		overdueRepo:    or,
		telegramClient: tc,
		today:          today,
		logger:         logger,
	}
}

// SendDailyDigest loads each facility once and messages every active worker assigned to it.
// Failures for one worker are logged and do not stop the others.
func (s *DigestService) SendDailyDigest(ctx context.Context) error {
	workers, err := s.workerRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active health workers: %w", err)
	}
	if len(workers) == 0 {
		s.logger.Info("No active health workers. Daily digest will not send any messages.")
		return nil
	}

	today := s.today()
	digests := make(map[uuid.UUID]string)
	sent := 0
	for _, w := range workers {
		logCtx := s.logger.WithFields(logrus.Fields{"worker_id": w.ID, "facility_id": w.FacilityID})

		text, ok := digests[w.FacilityID]
		if !ok {
			text, err = s.buildDigest(ctx, w, today)
			if err != nil {
				logCtx.WithError(err).Error("Failed to build daily digest")
				continue
			}
			digests[w.FacilityID] = text
		}
		if text == "" {
			continue
		}

		if err := s.telegramClient.SendMessage(w.TelegramID, fmt.Sprintf("Good morning, %s!\n%s", w.FirstName, text), nil); err != nil {
			logCtx.WithError(err).Error("Failed to send daily digest")
			continue
		}
		sent++
	}
	s.logger.WithField("sent", sent).Info("Daily digest finished")
	return nil
}

// buildDigest returns an empty string when nothing is overdue.
func (s *DigestService) buildDigest(ctx context.Context, w *worker.Worker, today time.Time) (string, error) {
	f, err := s.facilityRepo.GetByID(ctx, w.FacilityID)
	if err != nil {
		return "", fmt.Errorf("failed to get facility: %w", err)
	}
	appointments, err := s.overdueRepo.ListOverdue(ctx, w.FacilityID, today)
	if err != nil {
		return "", fmt.Errorf("failed to list overdue appointments: %w", err)
	}
	sections := overdue.GroupSections(appointments, today)
	if sections.IsEmpty() {
		return "", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s has %d overdue patients:\n", f.Name, sections.Count())
	fmt.Fprintf(&b, "• Pending to call: %d\n", len(sections.PendingToCall))
	fmt.Fprintf(&b, "• Agreed to visit: %d\n", len(sections.AgreedToVisit))
	fmt.Fprintf(&b, "• Remind to call later: %d\n", len(sections.RemindToCallLater))
	fmt.Fprintf(&b, "• Removed from list: %d\n", len(sections.RemovedFromOverdue))
	fmt.Fprintf(&b, "• No visit in more than a year: %d\n", len(sections.MoreThanAYearOverdue))
	b.WriteString("\nUse /overdue to open the list.")
	return b.String(), nil
}
