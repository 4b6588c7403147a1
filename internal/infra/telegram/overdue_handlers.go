// internal/infra/telegram/overdue_handlers.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"overdue_followup_bot/internal/app/overduelist"
	"overdue_followup_bot/internal/domain/download"
	"overdue_followup_bot/internal/domain/worker"
	idb "overdue_followup_bot/internal/infra/database" // For ErrWorkerNotFound
)

// Inline buttons of the overdue list. The callback payload carries the patient or format.
var (
	btnOpenPatient   = telebot.Btn{Unique: "ovd_open"}
	btnCallPatient   = telebot.Btn{Unique: "ovd_call"}
	btnPendingFooter = telebot.Btn{Unique: "ovd_footer"}
	btnRetry         = telebot.Btn{Unique: "ovd_retry"}
	btnDownload      = telebot.Btn{Unique: "ovd_download"}
	btnShare         = telebot.Btn{Unique: "ovd_share"}
	btnFormat        = telebot.Btn{Unique: "ovd_format"}
)

var errBadCallback = errors.New("malformed overdue callback data")

// OverdueSessions is the part of overduelist.SessionManager the handlers drive.
type OverdueSessions interface {
	Open(ctx context.Context, chatID int64, facilityID uuid.UUID)
	Dispatch(chatID int64, event overduelist.Event) error
}

// ConnectivityChecker reports whether downloads can reach the data they need.
type ConnectivityChecker interface {
	Check(ctx context.Context) error
}

func formatPayload(purpose overduelist.Purpose, format download.Format) string {
	return string(purpose) + ":" + string(format)
}

// parseFormatPayload reads "<purpose>:<format>" into the matching format-selected event.
func parseFormatPayload(payload string) (overduelist.Event, error) {
	purpose, format, ok := strings.Cut(payload, ":")
	if !ok || !download.Format(format).IsValid() {
		return nil, fmt.Errorf("%w: format %q", errBadCallback, payload)
	}
	switch overduelist.Purpose(purpose) {
	case overduelist.PurposeDownload:
		return overduelist.DownloadFormatSelected{Format: download.Format(format)}, nil
	case overduelist.PurposeShare:
		return overduelist.ShareFormatSelected{Format: download.Format(format)}, nil
	default:
		return nil, fmt.Errorf("%w: purpose %q", errBadCallback, purpose)
	}
}

func parsePatientPayload(payload string) (uuid.UUID, error) {
	id, err := uuid.Parse(payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: patient %q: %v", errBadCallback, payload, err)
	}
	return id, nil
}

// networkStatus maps a connectivity check onto the status carried by download and share events.
func networkStatus(ctx context.Context, checker ConnectivityChecker) overduelist.NetworkStatus {
	if checker == nil {
		return overduelist.NetworkUnknown
	}
	err := checker.Check(ctx)
	switch {
	case err == nil:
		return overduelist.NetworkActive
	case errors.Is(err, idb.ErrConnectivityUndetermined):
		return overduelist.NetworkUnknown
	default:
		return overduelist.NetworkInactive
	}
}

// RegisterOverdueHandlers wires the /overdue, /download and /share commands and the list's buttons.
func RegisterOverdueHandlers(
	ctx context.Context,
	b *telebot.Bot,
	workerRepo worker.Repository,
	sessions OverdueSessions,
	connectivity ConnectivityChecker,
	baseLogger *logrus.Entry,
) {
	overdueLogger := baseLogger.WithField("handler_group", "overdue")

	b.Handle("/overdue", func(c telebot.Context) error {
		logCtx := overdueLogger.WithFields(logrus.Fields{"command": "/overdue", "sender_id": c.Sender().ID})
		logCtx.Info("Processing /overdue command")

		w, err := activeWorker(ctx, workerRepo, c.Sender().ID)
		if err != nil {
			return replyWorkerLookupError(c, logCtx, err)
		}
		sessions.Open(ctx, c.Chat().ID, w.FacilityID)
		return nil
	})

	dispatch := func(name string, event func(c telebot.Context) (overduelist.Event, error)) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			logCtx := overdueLogger.WithFields(logrus.Fields{"action": name, "sender_id": c.Sender().ID})

			ev, err := event(c)
			if err != nil {
				logCtx.WithError(err).Warn("Could not read overdue action")
				return respond(c, "Unknown action.")
			}

			err = sessions.Dispatch(c.Chat().ID, ev)
			switch {
			case err == nil:
				return respond(c, "")
			case errors.Is(err, overduelist.ErrNoSession), errors.Is(err, overduelist.ErrLoopStopped):
				logCtx.Info("No open overdue list for chat")
				if c.Callback() != nil {
					return c.Respond(&telebot.CallbackResponse{Text: "This list has expired. Use /overdue to open it again.", ShowAlert: true})
				}
				return c.Send("Use /overdue to open the overdue list first.")
			default:
				logCtx.WithError(err).Error("Failed to dispatch overdue action")
				return respond(c, "Something went wrong.")
			}
		}
	}

	downloadRequested := func(c telebot.Context) (overduelist.Event, error) {
		return overduelist.DownloadRequested{NetworkStatus: networkStatus(ctx, connectivity)}, nil
	}
	shareRequested := func(c telebot.Context) (overduelist.Event, error) {
		return overduelist.ShareRequested{NetworkStatus: networkStatus(ctx, connectivity)}, nil
	}

	b.Handle("/download", dispatch("download", downloadRequested))
	b.Handle("/share", dispatch("share", shareRequested))
	b.Handle(&btnDownload, dispatch("download", downloadRequested))
	b.Handle(&btnShare, dispatch("share", shareRequested))

	b.Handle(&btnOpenPatient, dispatch("open_patient", func(c telebot.Context) (overduelist.Event, error) {
		id, err := parsePatientPayload(c.Data())
		if err != nil {
			return nil, err
		}
		return overduelist.OverdueRowTapped{PatientID: id}, nil
	}))
	b.Handle(&btnCallPatient, dispatch("call_patient", func(c telebot.Context) (overduelist.Event, error) {
		id, err := parsePatientPayload(c.Data())
		if err != nil {
			return nil, err
		}
		return overduelist.CallButtonTapped{PatientID: id}, nil
	}))
	b.Handle(&btnPendingFooter, dispatch("pending_footer", func(c telebot.Context) (overduelist.Event, error) {
		return overduelist.PendingListFooterTapped{}, nil
	}))
	b.Handle(&btnRetry, dispatch("retry", func(c telebot.Context) (overduelist.Event, error) {
		return overduelist.RetryLoadTapped{}, nil
	}))
	b.Handle(&btnFormat, dispatch("format", func(c telebot.Context) (overduelist.Event, error) {
		return parseFormatPayload(c.Data())
	}))
}

// activeWorker returns idb.ErrWorkerNotFound for unknown and deactivated workers alike.
func activeWorker(ctx context.Context, repo worker.Repository, telegramID int64) (*worker.Worker, error) {
	w, err := repo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if !w.IsActive {
		return nil, idb.ErrWorkerNotFound
	}
	return w, nil
}

func replyWorkerLookupError(c telebot.Context, logCtx *logrus.Entry, err error) error {
	if errors.Is(err, idb.ErrWorkerNotFound) {
		logCtx.Info("Sender is not an active health worker")
		return c.Send("The overdue list is only available to registered health workers. Please contact your administrator.")
	}
	logCtx.WithError(err).Error("Error checking health worker status")
	return c.Send("An error occurred while checking your account. Please try again later.")
}

// respond acknowledges a button press; plain commands get no reply.
func respond(c telebot.Context, text string) error {
	if c.Callback() == nil {
		if text == "" {
			return nil
		}
		return c.Send(text)
	}
	if text == "" {
		return c.Respond()
	}
	return c.Respond(&telebot.CallbackResponse{Text: text})
}
