package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"huntboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// appRepoStub is a stub for repository.ApplicationRepository.
type appRepoStub struct {
	createFn          func(context.Context, *models.Application) error
	getByIDFn         func(context.Context, uint) (*models.Application, error)
	listByUserFn      func(context.Context, uint) ([]models.Application, error)
	updateFn          func(context.Context, *models.Application) error
	deleteFn          func(context.Context, uint, uint) error
	deleteManyOwnedFn func(context.Context, []uint, uint) (int64, error)
}

func (s *appRepoStub) Create(ctx context.Context, app *models.Application) error {
	return s.createFn(ctx, app)
}
func (s *appRepoStub) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	return s.getByIDFn(ctx, id)
}
func (s *appRepoStub) ListByUser(ctx context.Context, userID uint) ([]models.Application, error) {
	return s.listByUserFn(ctx, userID)
}
func (s *appRepoStub) Update(ctx context.Context, app *models.Application) error {
	return s.updateFn(ctx, app)
}
func (s *appRepoStub) Delete(ctx context.Context, id, userID uint) error {
	return s.deleteFn(ctx, id, userID)
}
func (s *appRepoStub) DeleteManyOwned(ctx context.Context, ids []uint, userID uint) (int64, error) {
	return s.deleteManyOwnedFn(ctx, ids, userID)
}

func noopAppRepo() *appRepoStub {
	return &appRepoStub{
		createFn: func(_ context.Context, _ *models.Application) error { return nil },
		getByIDFn: func(_ context.Context, _ uint) (*models.Application, error) {
			return &models.Application{}, nil
		},
		listByUserFn:      func(_ context.Context, _ uint) ([]models.Application, error) { return nil, nil },
		updateFn:          func(_ context.Context, _ *models.Application) error { return nil },
		deleteFn:          func(_ context.Context, _ uint, _ uint) error { return nil },
		deleteManyOwnedFn: func(_ context.Context, _ []uint, _ uint) (int64, error) { return 0, nil },
	}
}

// assertAppErrorCode asserts that err is an AppError with the given code.
func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func TestApplicationService_Create_Validation(t *testing.T) {
	t.Parallel()

	svc := NewApplicationService(noopAppRepo())
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateApplicationInput
	}{
		{
			name:  "missing resume",
			input: CreateApplicationInput{UserID: 1, Company: "Initech", JobTitle: "Engineer"},
		},
		{
			name:  "missing company",
			input: CreateApplicationInput{UserID: 1, ResumeID: 2, JobTitle: "Engineer"},
		},
		{
			name:  "missing job title",
			input: CreateApplicationInput{UserID: 1, ResumeID: 2, Company: "Initech"},
		},
		{
			name:  "invalid job type",
			input: CreateApplicationInput{UserID: 1, ResumeID: 2, Company: "Initech", JobTitle: "Engineer", JobType: "Gig"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.input)
			assertAppErrorCode(t, err, "VALIDATION_ERROR")
		})
	}
}

func TestApplicationService_Create(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var created *models.Application
	repo := noopAppRepo()
	repo.createFn = func(_ context.Context, app *models.Application) error {
		app.ID = 42
		created = app
		return nil
	}
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Application, error) {
		require.Equal(t, uint(42), id)
		return created, nil
	}

	svc := NewApplicationService(repo)
	app, err := svc.Create(ctx, CreateApplicationInput{
		UserID:   1,
		ResumeID: 2,
		Company:  "Initech",
		JobTitle: "Backend Engineer",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusApplied, app.Status)
	assert.Equal(t, models.JobTypeFullTime, app.JobType)
	assert.WithinDuration(t, time.Now(), app.ApplicationDate, time.Minute)
	require.Len(t, app.StatusHistory, 1)
	assert.Equal(t, models.StatusApplied, app.StatusHistory[0].Status)
}

func TestApplicationService_Get_OwnershipMasking(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := noopAppRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Application, error) {
		switch id {
		case 1:
			return &models.Application{ID: 1, UserID: 7, Company: "Initech"}, nil
		default:
			return nil, gorm.ErrRecordNotFound
		}
	}
	svc := NewApplicationService(repo)

	t.Run("Owner Reads", func(t *testing.T) {
		app, err := svc.Get(ctx, 1, 7)
		require.NoError(t, err)
		assert.Equal(t, "Initech", app.Company)
	})

	t.Run("Absent Is Not Found", func(t *testing.T) {
		_, err := svc.Get(ctx, 99, 7)
		assertAppErrorCode(t, err, "NOT_FOUND")
	})

	t.Run("Foreign Record Reads As Not Found", func(t *testing.T) {
		_, err := svc.Get(ctx, 1, 8)
		assertAppErrorCode(t, err, "NOT_FOUND")
	})
}

func TestApplicationService_Update_StatusHistory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newRepo := func(stored *models.Application) *appRepoStub {
		repo := noopAppRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Application, error) {
			return stored, nil
		}
		repo.updateFn = func(_ context.Context, app *models.Application) error {
			*stored = *app
			return nil
		}
		return repo
	}

	base := func() *models.Application {
		return &models.Application{
			ID: 1, UserID: 7, Status: models.StatusApplied, Company: "Initech",
			StatusHistory: models.StatusHistory{{Status: models.StatusApplied, Date: time.Now().Add(-time.Hour)}},
		}
	}

	t.Run("Changed Status Appends", func(t *testing.T) {
		stored := base()
		svc := NewApplicationService(newRepo(stored))

		status := models.StatusInterviewing
		app, err := svc.Update(ctx, 1, 7, UpdateApplicationInput{Status: &status})
		require.NoError(t, err)

		assert.Equal(t, models.StatusInterviewing, app.Status)
		require.Len(t, app.StatusHistory, 2)
		assert.Equal(t, models.StatusInterviewing, app.StatusHistory[1].Status)
		assert.WithinDuration(t, time.Now(), app.StatusHistory[1].Date, time.Minute)
	})

	t.Run("Same Status Does Not Append", func(t *testing.T) {
		stored := base()
		svc := NewApplicationService(newRepo(stored))

		status := models.StatusApplied
		app, err := svc.Update(ctx, 1, 7, UpdateApplicationInput{Status: &status})
		require.NoError(t, err)
		assert.Len(t, app.StatusHistory, 1)
	})

	t.Run("Invalid Status Leaves Record Untouched", func(t *testing.T) {
		stored := base()
		repo := newRepo(stored)
		repo.updateFn = func(_ context.Context, _ *models.Application) error {
			t.Fatal("update must not be called for an invalid status")
			return nil
		}
		svc := NewApplicationService(repo)

		status := models.Status("Daydreaming")
		_, err := svc.Update(ctx, 1, 7, UpdateApplicationInput{Status: &status})
		assertAppErrorCode(t, err, "VALIDATION_ERROR")
		assert.Equal(t, models.StatusApplied, stored.Status)
		assert.Len(t, stored.StatusHistory, 1)
	})

	t.Run("Nil Fields Untouched", func(t *testing.T) {
		stored := base()
		stored.Notes = "keep me"
		svc := NewApplicationService(newRepo(stored))

		company := "Globex"
		app, err := svc.Update(ctx, 1, 7, UpdateApplicationInput{Company: &company})
		require.NoError(t, err)
		assert.Equal(t, "Globex", app.Company)
		assert.Equal(t, "keep me", app.Notes)
		assert.Equal(t, models.StatusApplied, app.Status)
	})

	t.Run("Foreign Record Is Not Found", func(t *testing.T) {
		stored := base()
		svc := NewApplicationService(newRepo(stored))

		company := "Globex"
		_, err := svc.Update(ctx, 1, 99, UpdateApplicationInput{Company: &company})
		assertAppErrorCode(t, err, "NOT_FOUND")
	})
}

func TestApplicationService_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := noopAppRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Application, error) {
		if id == 1 {
			return &models.Application{ID: 1, UserID: 7}, nil
		}
		return nil, gorm.ErrRecordNotFound
	}
	svc := NewApplicationService(repo)

	t.Run("Owner Deletes", func(t *testing.T) {
		assert.NoError(t, svc.Delete(ctx, 1, 7))
	})

	t.Run("Absent Is Not Found", func(t *testing.T) {
		assertAppErrorCode(t, svc.Delete(ctx, 99, 7), "NOT_FOUND")
	})

	t.Run("Foreign Record Is Unauthorized", func(t *testing.T) {
		assertAppErrorCode(t, svc.Delete(ctx, 1, 8), "UNAUTHORIZED")
	})
}

func TestApplicationService_DeleteMany(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("Empty IDs Rejected", func(t *testing.T) {
		svc := NewApplicationService(noopAppRepo())
		_, err := svc.DeleteMany(ctx, nil, 7)
		assertAppErrorCode(t, err, "VALIDATION_ERROR")
	})

	t.Run("Zero Deleted Is Not Found", func(t *testing.T) {
		svc := NewApplicationService(noopAppRepo())
		_, err := svc.DeleteMany(ctx, []uint{1, 2}, 7)
		assertAppErrorCode(t, err, "NOT_FOUND")
	})

	t.Run("Partial Ownership Returns Count", func(t *testing.T) {
		repo := noopAppRepo()
		repo.deleteManyOwnedFn = func(_ context.Context, ids []uint, userID uint) (int64, error) {
			assert.Equal(t, []uint{1, 2, 3}, ids)
			assert.Equal(t, uint(7), userID)
			return 2, nil
		}
		svc := NewApplicationService(repo)

		count, err := svc.DeleteMany(ctx, []uint{1, 2, 3}, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}
