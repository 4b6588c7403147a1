package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"overdue_followup_bot/internal/domain/facility"
	"overdue_followup_bot/internal/domain/worker"
	idb "overdue_followup_bot/internal/infra/database"
)

// Application-level errors for the admin service
var ErrAdminNotAuthorized = errors.New("performing user is not authorized as an admin")
var ErrWorkerAlreadyExists = errors.New("health worker with this Telegram ID already exists")
var ErrWorkerAlreadyInactive = errors.New("health worker is already inactive")

type AdminService struct {
	workerRepo      worker.Repository
	facilityRepo    facility.Repository
	adminTelegramID int64
}

func NewAdminService(wr worker.Repository, fr facility.Repository, adminID int64) *AdminService {
	return &AdminService{
		workerRepo:      wr,
		facilityRepo:    fr,
		adminTelegramID: adminID,
	}
}

// AddWorker registers a health worker for a facility. A previously deactivated worker is reactivated.
func (s *AdminService) AddWorker(ctx context.Context, performingAdminID int64, telegramID int64, facilityID uuid.UUID, firstName string, lastNameValue string) (*worker.Worker, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}

	if _, err := s.facilityRepo.GetByID(ctx, facilityID); err != nil {
		if errors.Is(err, idb.ErrFacilityNotFound) {
			return nil, idb.ErrFacilityNotFound
		}
		return nil, fmt.Errorf("failed to check facility: %w", err)
	}

	var lastName sql.NullString
	if lastNameValue != "" {
		lastName = sql.NullString{String: lastNameValue, Valid: true}
	}

	existing, err := s.workerRepo.GetByTelegramID(ctx, telegramID)
	switch {
	case err == nil && existing.IsActive:
		return nil, ErrWorkerAlreadyExists
	case err == nil:
		existing.IsActive = true
		existing.FacilityID = facilityID
		existing.FirstName = firstName
		existing.LastName = lastName
		if err := s.workerRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to reactivate health worker: %w", err)
		}
		return existing, nil
	case !errors.Is(err, idb.ErrWorkerNotFound):
		return nil, fmt.Errorf("failed to check existing health worker: %w", err)
	}

	newWorker := &worker.Worker{
		TelegramID: telegramID,
		FirstName:  firstName,
		LastName:   lastName,
		FacilityID: facilityID,
		IsActive:   true,
	}
	if err := s.workerRepo.Create(ctx, newWorker); err != nil {
		if errors.Is(err, idb.ErrDuplicateTelegramID) {
			return nil, ErrWorkerAlreadyExists
		}
		return nil, fmt.Errorf("failed to create health worker in repository: %w", err)
	}
	return newWorker, nil
}

// RemoveWorker deactivates a health worker; they stop receiving digests and cannot open the list.
func (s *AdminService) RemoveWorker(ctx context.Context, performingAdminID int64, telegramID int64) (*worker.Worker, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}

	target, err := s.workerRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, idb.ErrWorkerNotFound) {
			return nil, idb.ErrWorkerNotFound
		}
		return nil, fmt.Errorf("failed to get health worker by Telegram ID for removal: %w", err)
	}

	if !target.IsActive {
		return target, ErrWorkerAlreadyInactive
	}

	target.IsActive = false
	if err := s.workerRepo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to update health worker to inactive in repository: %w", err)
	}
	return target, nil
}

func (s *AdminService) ListActiveWorkers(ctx context.Context, performingAdminID int64) ([]*worker.Worker, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	return s.workerRepo.ListActive(ctx)
}

func (s *AdminService) ListAllWorkers(ctx context.Context, performingAdminID int64) ([]*worker.Worker, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	return s.workerRepo.ListAll(ctx)
}

func (s *AdminService) ListFacilities(ctx context.Context, performingAdminID int64) ([]*facility.Facility, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	return s.facilityRepo.ListAll(ctx)
}
