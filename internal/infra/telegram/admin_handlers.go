package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"overdue_followup_bot/internal/app"
	"overdue_followup_bot/internal/domain/worker"
	idb "overdue_followup_bot/internal/infra/database"
)

const unauthorizedReply = "Error: you are not allowed to run this command."

// RegisterAdminHandlers registers handlers for admin commands.
// It requires the bot instance, admin service, and the configured admin Telegram ID.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, adminService *app.AdminService, adminTelegramID int64, baseLogger *logrus.Entry) {
	b.Handle("/add_worker", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/add_worker",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(unauthorizedReply)
		}

		args := c.Args()
		// Expected format: /add_worker <TelegramID> <FacilityID> <FirstName> [LastName]
		if len(args) < 3 || len(args) > 4 {
			handlerLogger.WithField("args_count", len(args)).Warn("Invalid command format")
			return c.Send("Invalid command format. Use: /add_worker <TelegramID> <FacilityID> <FirstName> [LastName]")
		}

		workerTelegramID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return c.Send("Error: the Telegram ID must be a number.")
		}

		facilityID, err := uuid.Parse(args[1])
		if err != nil {
			return c.Send("Error: the facility ID must be a UUID. Use /list_facilities to find it.")
		}

		firstName := args[2]
		if strings.TrimSpace(firstName) == "" {
			return c.Send("Error: the first name cannot be empty.")
		}

		var lastName string
		if len(args) == 4 {
			lastName = args[3]
		}

		handlerLogger = handlerLogger.WithFields(logrus.Fields{
			"worker_telegram_id": workerTelegramID,
			"facility_id":        facilityID,
		})

		newWorker, err := adminService.AddWorker(ctx, c.Sender().ID, workerTelegramID, facilityID, firstName, lastName)
		if err != nil {
			logWithError := handlerLogger.WithError(err)
			switch {
			case errors.Is(err, app.ErrAdminNotAuthorized):
				logWithError.Warn("Admin not authorized (service level)")
				return c.Send(unauthorizedReply)
			case errors.Is(err, app.ErrWorkerAlreadyExists):
				logWithError.Warn("Health worker already exists")
				return c.Send(fmt.Sprintf("Error: a health worker with Telegram ID %d already exists.", workerTelegramID))
			case errors.Is(err, idb.ErrFacilityNotFound):
				logWithError.Warn("Facility not found")
				return c.Send(fmt.Sprintf("Error: facility %s was not found.", facilityID))
			default:
				logWithError.Error("Failed to add health worker")
				return c.Send(fmt.Sprintf("An error occurred while adding the health worker: %s", err.Error()))
			}
		}

		handlerLogger.WithField("new_worker_id", newWorker.ID).Info("Health worker added successfully")
		return c.Send(fmt.Sprintf("Health worker %s (ID: %d) added successfully.", newWorker.FullName(), newWorker.TelegramID))
	})

	b.Handle("/remove_worker", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/remove_worker",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(unauthorizedReply)
		}

		args := c.Args()
		// Expected format: /remove_worker <TelegramID>
		if len(args) != 1 {
			return c.Send("Invalid command format. Use: /remove_worker <TelegramID>")
		}

		workerTelegramID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			handlerLogger.WithField("arg", args[0]).Warn("Invalid Telegram ID format")
			return c.Send("Error: the Telegram ID must be a number.")
		}
		handlerLogger = handlerLogger.WithField("worker_telegram_id", workerTelegramID)

		removedWorker, err := adminService.RemoveWorker(ctx, c.Sender().ID, workerTelegramID)
		if err != nil {
			logWithError := handlerLogger.WithError(err)
			switch {
			case errors.Is(err, app.ErrAdminNotAuthorized):
				logWithError.Warn("Admin not authorized (service level)")
				return c.Send(unauthorizedReply)
			case errors.Is(err, idb.ErrWorkerNotFound):
				logWithError.Warn("Health worker to remove not found")
				return c.Send(fmt.Sprintf("No health worker with Telegram ID %d was found.", workerTelegramID))
			case errors.Is(err, app.ErrWorkerAlreadyInactive):
				logWithError.Warn("Health worker already inactive")
				return c.Send(fmt.Sprintf("Health worker %s (ID: %d) was already deactivated.", removedWorker.FullName(), removedWorker.TelegramID))
			default:
				logWithError.Error("Failed to remove health worker")
				return c.Send(fmt.Sprintf("An error occurred while removing the health worker: %s", err.Error()))
			}
		}

		handlerLogger.WithField("removed_worker_id", removedWorker.ID).Info("Health worker removed (deactivated) successfully")
		return c.Send(fmt.Sprintf("Health worker %s (ID: %d) deactivated.", removedWorker.FullName(), removedWorker.TelegramID))
	})

	b.Handle("/list_workers", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/list_workers",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(unauthorizedReply)
		}

		// Optional argument: 'active' or 'all'
		listType := "active"
		if args := c.Args(); len(args) > 0 {
			listType = strings.ToLower(args[0])
		}
		handlerLogger = handlerLogger.WithField("list_type", listType)

		var workers []*worker.Worker
		var err error
		var title string

		switch listType {
		case "active":
			title = "Active health workers"
			workers, err = adminService.ListActiveWorkers(ctx, c.Sender().ID)
		case "all":
			title = "All health workers"
			workers, err = adminService.ListAllWorkers(ctx, c.Sender().ID)
		default:
			handlerLogger.Warn("Invalid list type argument")
			return c.Send("Invalid argument. Use 'active' or 'all', or leave it empty to list active health workers.")
		}

		if err != nil {
			logWithError := handlerLogger.WithError(err)
			if errors.Is(err, app.ErrAdminNotAuthorized) {
				logWithError.Warn("Admin not authorized (service level)")
				return c.Send(unauthorizedReply)
			}
			logWithError.Error("Failed to get list of health workers")
			return c.Send(fmt.Sprintf("An error occurred while listing health workers: %s", err.Error()))
		}

		if len(workers) == 0 {
			handlerLogger.Info("No health workers found for the specified list type")
			if listType == "active" {
				return c.Send("No active health workers found.")
			}
			return c.Send("The health worker list is empty.")
		}

		handlerLogger.WithField("workers_count", len(workers)).Info("Successfully retrieved health worker list")

		var response strings.Builder
		response.WriteString(fmt.Sprintf("--- %s ---\n", title))
		for _, w := range workers {
			status := "Inactive"
			if w.IsActive {
				status = "Active"
			}
			response.WriteString(fmt.Sprintf("ID: %d, Telegram ID: %d, Name: %s, Facility: %s, Status: %s\n",
				w.ID,
				w.TelegramID,
				w.FullName(),
				w.FacilityID,
				status))
		}
		return c.Send(response.String())
	})

	b.Handle("/list_facilities", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/list_facilities",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(unauthorizedReply)
		}

		facilities, err := adminService.ListFacilities(ctx, c.Sender().ID)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to get list of facilities")
			return c.Send(fmt.Sprintf("An error occurred while listing facilities: %s", err.Error()))
		}
		if len(facilities) == 0 {
			return c.Send("No facilities have been synced yet.")
		}

		var response strings.Builder
		response.WriteString("--- Facilities ---\n")
		for _, f := range facilities {
			response.WriteString(fmt.Sprintf("%s  %s\n", f.ID, f.Name))
		}
		return c.Send(response.String())
	})
}
