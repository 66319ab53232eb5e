package repository

import (
	"context"

	"huntboard/internal/cache"
	"huntboard/internal/models"

	"gorm.io/gorm"
)

// ResumeRepository defines persistence operations for resumes.
type ResumeRepository interface {
	Create(ctx context.Context, resume *models.Resume) error
	GetByID(ctx context.Context, id uint) (*models.Resume, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Resume, error)
	Update(ctx context.Context, resume *models.Resume) error
	Delete(ctx context.Context, id uint) error
}

type resumeRepository struct {
	db *gorm.DB
}

// NewResumeRepository creates a new resume repository.
func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

func (r *resumeRepository) Create(ctx context.Context, resume *models.Resume) error {
	return r.db.WithContext(ctx).Create(resume).Error
}

func (r *resumeRepository) GetByID(ctx context.Context, id uint) (*models.Resume, error) {
	var resume models.Resume
	key := cache.ResumeKey(id)

	err := cache.Aside(ctx, key, &resume, cache.ResumeTTL, func() error {
		return r.db.WithContext(ctx).First(&resume, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &resume, nil
}

func (r *resumeRepository) ListByUser(ctx context.Context, userID uint) ([]models.Resume, error) {
	var resumes []models.Resume
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&resumes).Error
	if err != nil {
		return nil, err
	}
	return resumes, nil
}

func (r *resumeRepository) Update(ctx context.Context, resume *models.Resume) error {
	if err := r.db.WithContext(ctx).Save(resume).Error; err != nil {
		return err
	}
	cache.InvalidateResume(ctx, resume.ID)
	return nil
}

func (r *resumeRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Resume{}, id).Error; err != nil {
		return err
	}
	cache.InvalidateResume(ctx, id)
	return nil
}
