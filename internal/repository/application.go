package repository

import (
	"context"

	"huntboard/internal/cache"
	"huntboard/internal/models"

	"gorm.io/gorm"
)

// ApplicationRepository defines persistence operations for job applications.
// Lookups return gorm.ErrRecordNotFound unmapped; the service layer decides
// how ownership and missing records translate to API errors.
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id uint) (*models.Application, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Application, error)
	Update(ctx context.Context, app *models.Application) error
	Delete(ctx context.Context, id, userID uint) error
	DeleteManyOwned(ctx context.Context, ids []uint, userID uint) (int64, error)
}

type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository.
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *models.Application) error {
	err := r.db.WithContext(ctx).Create(app).Error
	if err == nil {
		cache.InvalidateApplications(ctx, app.UserID)
	}
	return err
}

func (r *applicationRepository) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	var app models.Application
	if err := r.db.WithContext(ctx).
		Preload("Resume").
		First(&app, id).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) ListByUser(ctx context.Context, userID uint) ([]models.Application, error) {
	var apps []models.Application
	err := r.db.WithContext(ctx).
		Preload("Resume").
		Where("user_id = ?", userID).
		Order("application_date DESC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *applicationRepository) Update(ctx context.Context, app *models.Application) error {
	if err := r.db.WithContext(ctx).Save(app).Error; err != nil {
		return err
	}
	cache.InvalidateApplications(ctx, app.UserID, app.ID)
	return nil
}

func (r *applicationRepository) Delete(ctx context.Context, id, userID uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Application{}, id).Error; err != nil {
		return err
	}
	cache.InvalidateApplications(ctx, userID, id)
	return nil
}

// DeleteManyOwned removes the caller's applications from ids in one statement.
// Rows belonging to other users are simply not matched, so the returned count
// can be lower than len(ids).
func (r *applicationRepository) DeleteManyOwned(ctx context.Context, ids []uint, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id IN ? AND user_id = ?", ids, userID).
		Delete(&models.Application{})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		cache.InvalidateApplications(ctx, userID, ids...)
	}
	return result.RowsAffected, nil
}
