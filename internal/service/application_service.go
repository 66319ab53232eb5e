// Package service contains the business logic layer.
package service

import (
	"context"
	"errors"
	"time"

	"huntboard/internal/middleware"
	"huntboard/internal/models"
	"huntboard/internal/repository"

	"gorm.io/gorm"
)

// ApplicationService owns the lifecycle of job applications: creation,
// ownership-checked reads and writes, and the append-only status history.
type ApplicationService struct {
	appRepo repository.ApplicationRepository
}

type CreateApplicationInput struct {
	UserID          uint
	ResumeID        uint
	Company         string
	JobTitle        string
	Location        string
	JobType         models.JobType
	ApplicationDate time.Time
	JobDescription  string
	Notes           string
	IsLiked         bool
}

// UpdateApplicationInput patches an application. Nil fields are untouched,
// which is how a drag-drop status move and a full form edit share one path.
type UpdateApplicationInput struct {
	Company         *string
	JobTitle        *string
	Location        *string
	JobType         *models.JobType
	Status          *models.Status
	ResumeID        *uint
	ApplicationDate *time.Time
	JobDescription  *string
	Notes           *string
	IsLiked         *bool
}

func NewApplicationService(appRepo repository.ApplicationRepository) *ApplicationService {
	return &ApplicationService{appRepo: appRepo}
}

// Create stores a new application for the user. The status always starts at
// Applied and seeds the first history entry; clients cannot create a record
// mid-pipeline.
func (s *ApplicationService) Create(ctx context.Context, in CreateApplicationInput) (*models.Application, error) {
	if in.ResumeID == 0 {
		return nil, models.NewValidationError("Resume is required")
	}
	if in.Company == "" {
		return nil, models.NewValidationError("Company is required")
	}
	if in.JobTitle == "" {
		return nil, models.NewValidationError("Job title is required")
	}

	jobType := in.JobType
	if jobType == "" {
		jobType = models.JobTypeFullTime
	}
	if !jobType.Valid() {
		return nil, models.NewValidationError("Invalid job_type")
	}

	now := time.Now()
	applicationDate := in.ApplicationDate
	if applicationDate.IsZero() {
		applicationDate = now
	}

	app := &models.Application{
		UserID:          in.UserID,
		ResumeID:        in.ResumeID,
		Company:         in.Company,
		JobTitle:        in.JobTitle,
		Location:        in.Location,
		JobType:         jobType,
		Status:          models.StatusApplied,
		ApplicationDate: applicationDate,
		JobDescription:  in.JobDescription,
		Notes:           in.Notes,
		IsLiked:         in.IsLiked,
		StatusHistory: models.StatusHistory{
			{Status: models.StatusApplied, Date: now},
		},
	}
	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, models.NewInternalError(err)
	}

	return s.getDecorated(ctx, app.ID)
}

// Get returns the application if it exists and belongs to the requester.
// A record owned by someone else reads as not found so the ID space cannot
// be probed.
func (s *ApplicationService) Get(ctx context.Context, id, requesterID uint) (*models.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Application", id)
		}
		return nil, models.NewInternalError(err)
	}
	if app.UserID != requesterID {
		return nil, models.NewNotFoundError("Application", id)
	}
	return app, nil
}

// List returns the requester's applications, newest application date first.
func (s *ApplicationService) List(ctx context.Context, requesterID uint) ([]models.Application, error) {
	apps, err := s.appRepo.ListByUser(ctx, requesterID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return apps, nil
}

// Update applies a partial patch. A status change appends a history entry
// before the record is saved; setting the same status again does not.
func (s *ApplicationService) Update(ctx context.Context, id, requesterID uint, in UpdateApplicationInput) (*models.Application, error) {
	app, err := s.Get(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, models.NewValidationError("Invalid status")
		}
		if *in.Status != app.Status {
			app.StatusHistory = append(app.StatusHistory, models.StatusChange{
				Status: *in.Status,
				Date:   time.Now(),
			})
			middleware.StatusTransitions.WithLabelValues(string(*in.Status)).Inc()
			app.Status = *in.Status
		}
	}
	if in.JobType != nil {
		if !in.JobType.Valid() {
			return nil, models.NewValidationError("Invalid job_type")
		}
		app.JobType = *in.JobType
	}
	if in.Company != nil {
		app.Company = *in.Company
	}
	if in.JobTitle != nil {
		app.JobTitle = *in.JobTitle
	}
	if in.Location != nil {
		app.Location = *in.Location
	}
	if in.ResumeID != nil {
		app.ResumeID = *in.ResumeID
		app.Resume = nil
	}
	if in.ApplicationDate != nil {
		app.ApplicationDate = *in.ApplicationDate
	}
	if in.JobDescription != nil {
		app.JobDescription = *in.JobDescription
	}
	if in.Notes != nil {
		app.Notes = *in.Notes
	}
	if in.IsLiked != nil {
		app.IsLiked = *in.IsLiked
	}

	if err := s.appRepo.Update(ctx, app); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.getDecorated(ctx, app.ID)
}

// Delete removes one application. Unlike Get, a record owned by someone else
// answers 401 rather than 404.
func (s *ApplicationService) Delete(ctx context.Context, id, requesterID uint) error {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Application", id)
		}
		return models.NewInternalError(err)
	}
	if app.UserID != requesterID {
		return models.NewUnauthorizedError("You can only delete your own applications")
	}
	if err := s.appRepo.Delete(ctx, id, app.UserID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// DeleteMany removes the requester-owned subset of ids in one statement and
// returns how many rows went away. IDs that are unknown or owned by someone
// else are skipped silently; only an entirely fruitless request is an error.
func (s *ApplicationService) DeleteMany(ctx context.Context, ids []uint, requesterID uint) (int64, error) {
	if len(ids) == 0 {
		return 0, models.NewValidationError("No application ids provided")
	}
	count, err := s.appRepo.DeleteManyOwned(ctx, ids, requesterID)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	if count == 0 {
		return 0, models.NewNotFoundMessageError("No matching applications found")
	}
	return count, nil
}

func (s *ApplicationService) getDecorated(ctx context.Context, id uint) (*models.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return app, nil
}
