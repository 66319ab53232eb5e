package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"huntboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// resumeRepoStub is a stub for repository.ResumeRepository.
type resumeRepoStub struct {
	createFn     func(context.Context, *models.Resume) error
	getByIDFn    func(context.Context, uint) (*models.Resume, error)
	listByUserFn func(context.Context, uint) ([]models.Resume, error)
	updateFn     func(context.Context, *models.Resume) error
	deleteFn     func(context.Context, uint) error
}

func (s *resumeRepoStub) Create(ctx context.Context, r *models.Resume) error { return s.createFn(ctx, r) }
func (s *resumeRepoStub) GetByID(ctx context.Context, id uint) (*models.Resume, error) {
	return s.getByIDFn(ctx, id)
}
func (s *resumeRepoStub) ListByUser(ctx context.Context, userID uint) ([]models.Resume, error) {
	return s.listByUserFn(ctx, userID)
}
func (s *resumeRepoStub) Update(ctx context.Context, r *models.Resume) error { return s.updateFn(ctx, r) }
func (s *resumeRepoStub) Delete(ctx context.Context, id uint) error          { return s.deleteFn(ctx, id) }

func noopResumeRepo() *resumeRepoStub {
	return &resumeRepoStub{
		createFn:     func(_ context.Context, _ *models.Resume) error { return nil },
		getByIDFn:    func(_ context.Context, _ uint) (*models.Resume, error) { return &models.Resume{}, nil },
		listByUserFn: func(_ context.Context, _ uint) ([]models.Resume, error) { return nil, nil },
		updateFn:     func(_ context.Context, _ *models.Resume) error { return nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}

type fileStoreStub struct {
	uploadFn   func(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error)
	downloadFn func(ctx context.Context, key string) ([]byte, error)
	deleteFn   func(ctx context.Context, key string) error
}

func (s *fileStoreStub) Upload(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error) {
	return s.uploadFn(ctx, key, contentType, r, size)
}

func (s *fileStoreStub) Download(ctx context.Context, key string) ([]byte, error) {
	return s.downloadFn(ctx, key)
}

func (s *fileStoreStub) Delete(ctx context.Context, key string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, key)
}

type extractorStub struct {
	extractFn func(ctx context.Context, filename string, r io.Reader, size int64) (string, error)
}

func (s *extractorStub) ExtractResumeText(ctx context.Context, filename string, r io.Reader, size int64) (string, error) {
	return s.extractFn(ctx, filename, r, size)
}

func TestResumeService_Upload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := &fileStoreStub{
		uploadFn: func(_ context.Context, key, _ string, _ io.Reader, _ int64) (string, error) {
			assert.Contains(t, key, "7-")
			assert.Contains(t, key, "my_resume.pdf")
			return "http://objstore/resumes/" + key, nil
		},
	}
	extractor := &extractorStub{
		extractFn: func(_ context.Context, _ string, _ io.Reader, _ int64) (string, error) {
			return "ten years of Go", nil
		},
	}

	var saved *models.Resume
	repo := noopResumeRepo()
	repo.createFn = func(_ context.Context, r *models.Resume) error {
		r.ID = 3
		saved = r
		return nil
	}

	svc := NewResumeService(repo, store, extractor)
	resume, err := svc.Upload(ctx, UploadResumeInput{
		UserID:      7,
		Title:       "Backend 2026",
		Filename:    "my resume.pdf",
		ContentType: "application/pdf",
		Size:        12,
		File:        bytes.NewReader([]byte("%PDF-1.4 ...")),
	})
	require.NoError(t, err)

	assert.Equal(t, saved, resume)
	assert.Equal(t, "Backend 2026", resume.Title)
	assert.Equal(t, "ten years of Go", resume.Content)
	assert.Contains(t, resume.FileURL, "http://objstore/resumes/")
}

func TestResumeService_Upload_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewResumeService(noopResumeRepo(), &fileStoreStub{}, &extractorStub{})

	t.Run("Missing Title", func(t *testing.T) {
		_, err := svc.Upload(ctx, UploadResumeInput{UserID: 7, Size: 1, File: bytes.NewReader([]byte("x"))})
		assertAppErrorCode(t, err, "VALIDATION_ERROR")
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := svc.Upload(ctx, UploadResumeInput{UserID: 7, Title: "T"})
		assertAppErrorCode(t, err, "VALIDATION_ERROR")
	})
}

func TestResumeService_Upload_StoreFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := &fileStoreStub{
		uploadFn: func(_ context.Context, _, _ string, _ io.Reader, _ int64) (string, error) {
			return "", errors.New("connection refused")
		},
	}
	svc := NewResumeService(noopResumeRepo(), store, &extractorStub{})

	_, err := svc.Upload(ctx, UploadResumeInput{
		UserID: 7, Title: "T", Filename: "r.pdf", Size: 1,
		File: bytes.NewReader([]byte("x")),
	})
	assertAppErrorCode(t, err, "UPSTREAM_ERROR")
}

func TestResumeService_Upload_ExtractorFallbackRejectsNonPDF(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := &fileStoreStub{
		uploadFn: func(_ context.Context, key, _ string, _ io.Reader, _ int64) (string, error) {
			return "http://objstore/" + key, nil
		},
	}
	extractor := &extractorStub{
		extractFn: func(_ context.Context, _ string, _ io.Reader, _ int64) (string, error) {
			return "", errors.New("ai service down")
		},
	}
	svc := NewResumeService(noopResumeRepo(), store, extractor)

	// Local fallback only understands PDFs; a .docx with a dead AI service
	// cannot be parsed.
	_, err := svc.Upload(ctx, UploadResumeInput{
		UserID: 7, Title: "T", Filename: "r.docx", Size: 1,
		File: bytes.NewReader([]byte("x")),
	})
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func TestResumeService_Get_Ownership(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := noopResumeRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Resume, error) {
		if id == 3 {
			return &models.Resume{ID: 3, UserID: 7, Title: "Backend 2026"}, nil
		}
		return nil, gorm.ErrRecordNotFound
	}
	svc := NewResumeService(repo, nil, nil)

	t.Run("Owner Reads", func(t *testing.T) {
		resume, err := svc.Get(ctx, 3, 7)
		require.NoError(t, err)
		assert.Equal(t, "Backend 2026", resume.Title)
	})

	t.Run("Absent Is Not Found", func(t *testing.T) {
		_, err := svc.Get(ctx, 99, 7)
		assertAppErrorCode(t, err, "NOT_FOUND")
	})

	t.Run("Foreign Record Is Unauthorized", func(t *testing.T) {
		_, err := svc.Get(ctx, 3, 8)
		assertAppErrorCode(t, err, "UNAUTHORIZED")
	})
}

func TestResumeService_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	deleted := []uint{}
	removedKeys := []string{}
	repo := noopResumeRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Resume, error) {
		if id == 3 {
			return &models.Resume{ID: 3, UserID: 7, FileURL: "http://objstore/resumes/7-1700000000-r.pdf"}, nil
		}
		return nil, gorm.ErrRecordNotFound
	}
	repo.deleteFn = func(_ context.Context, id uint) error {
		deleted = append(deleted, id)
		return nil
	}
	store := &fileStoreStub{
		deleteFn: func(_ context.Context, key string) error {
			removedKeys = append(removedKeys, key)
			return nil
		},
	}
	svc := NewResumeService(repo, store, nil)

	require.NoError(t, svc.Delete(ctx, 3, 7))
	assert.Equal(t, []uint{3}, deleted)
	// The stored file goes away with the record.
	assert.Equal(t, []string{"7-1700000000-r.pdf"}, removedKeys)

	assertAppErrorCode(t, svc.Delete(ctx, 99, 7), "NOT_FOUND")
	assertAppErrorCode(t, svc.Delete(ctx, 3, 8), "UNAUTHORIZED")
	assert.Len(t, removedKeys, 1)
}

func TestResumeService_DownloadFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := noopResumeRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Resume, error) {
		if id == 3 {
			return &models.Resume{ID: 3, UserID: 7, FileURL: "http://objstore/resumes/7-1700000000-r.pdf"}, nil
		}
		return nil, gorm.ErrRecordNotFound
	}
	store := &fileStoreStub{
		downloadFn: func(_ context.Context, key string) ([]byte, error) {
			if key == "7-1700000000-r.pdf" {
				return []byte("%PDF-1.4 ..."), nil
			}
			return nil, errors.New("no such object")
		},
	}
	svc := NewResumeService(repo, store, nil)

	t.Run("Owner Downloads", func(t *testing.T) {
		name, data, err := svc.DownloadFile(ctx, 3, 7)
		require.NoError(t, err)
		assert.Equal(t, "7-1700000000-r.pdf", name)
		assert.Equal(t, []byte("%PDF-1.4 ..."), data)
	})

	t.Run("Foreign Record Is Unauthorized", func(t *testing.T) {
		_, _, err := svc.DownloadFile(ctx, 3, 8)
		assertAppErrorCode(t, err, "UNAUTHORIZED")
	})

	t.Run("Store Failure Is Upstream", func(t *testing.T) {
		broken := &fileStoreStub{
			downloadFn: func(_ context.Context, _ string) ([]byte, error) {
				return nil, errors.New("connection refused")
			},
		}
		_, _, err := NewResumeService(repo, broken, nil).DownloadFile(ctx, 3, 7)
		assertAppErrorCode(t, err, "UPSTREAM_ERROR")
	})
}
