// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"overdue_followup_bot/internal/domain/worker"
	"overdue_followup_bot/internal/infra/config"
	idb "overdue_followup_bot/internal/infra/database" // For ErrWorkerNotFound
)

func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	cfg *config.AppConfig, // For AdminTelegramID
	workerRepo worker.Repository,
	baseLogger *logrus.Entry, // For contextual logging
) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", senderID)
		logCtx.Info("Processing /start command")

		if senderID == cfg.AdminTelegramID {
			logCtx.Info("User identified as Admin")
			return c.Send(fmt.Sprintf("Hello, administrator %s! I'm ready. Use /help to see the available commands.", c.Sender().FirstName))
		}

		w, err := workerRepo.GetByTelegramID(ctx, senderID)
		if err == nil {
			if w.IsActive {
				logCtx.WithField("worker_id", w.ID).Info("User identified as active health worker")
				return c.Send(fmt.Sprintf("Hello, %s! Use /overdue to see the patients who missed their visit. I'll also send you a summary every morning.", w.FirstName))
			}
			logCtx.WithField("worker_id", w.ID).Info("User identified as inactive health worker")
			return c.Send("Your health worker account is inactive. Please contact your administrator.")
		} else if !errors.Is(err, idb.ErrWorkerNotFound) {
			logCtx.WithError(err).Error("Error checking health worker status for /start command")
			return c.Send("An error occurred while checking your account. Please try again later.")
		}

		logCtx.Info("User is unknown")
		return c.Send("Hello! I help health workers follow up with overdue patients. If you are a health worker, ask your administrator to add you.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/help").WithField("sender_id", senderID)
		logCtx.Info("Processing /help command")

		if senderID == cfg.AdminTelegramID {
			logCtx.Info("User identified as Admin, sending admin help.")
			var helpText strings.Builder
			helpText.WriteString("Administrator commands:\n\n")
			helpText.WriteString("`/add_worker <TelegramID> <FacilityID> <FirstName> [LastName]`\n - Register a health worker for a facility.\n\n")
			helpText.WriteString("`/remove_worker <TelegramID>`\n - Deactivate a health worker.\n\n")
			helpText.WriteString("`/list_workers [active|all]`\n - List health workers. Shows active ones by default.\n\n")
			helpText.WriteString("`/list_facilities`\n - List synced facilities and their IDs.\n\n")
			helpText.WriteString("`/help`\n - Show this message.")
			return c.Send(helpText.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
		}

		w, err := workerRepo.GetByTelegramID(ctx, senderID)
		if err == nil {
			if w.IsActive {
				logCtx.WithField("worker_id", w.ID).Info("User identified as active health worker, sending worker help.")
				var helpText strings.Builder
				helpText.WriteString("`/overdue` - Open your facility's overdue list. Tap a patient for details or Call to get their number.\n\n")
				helpText.WriteString("`/download` - Get the overdue list as a CSV or PDF file.\n\n")
				helpText.WriteString("`/share` - Get a file you can forward to your team.\n\n")
				helpText.WriteString("`/help` - Show this message.")
				return c.Send(helpText.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
			}
			logCtx.WithField("worker_id", w.ID).Info("User identified as inactive health worker, sending restricted help.")
			return c.Send("Your health worker account is inactive. Contact your administrator to reactivate it.")
		} else if !errors.Is(err, idb.ErrWorkerNotFound) {
			logCtx.WithError(err).Error("Error checking health worker status for /help command")
			return c.Send("An error occurred while checking your account. Please try again later.")
		}

		logCtx.Info("User is unknown, sending restricted help.")
		return c.Send("No commands are available to you. If you are a health worker, ask your administrator to add you.")
	})
}
