package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"huntboard/internal/middleware"
	"huntboard/internal/models"
	"huntboard/internal/pdfutil"
	"huntboard/internal/repository"

	"gorm.io/gorm"
)

// FileStore persists uploaded resume files and returns a stable URL.
type FileStore interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// ResumeTextExtractor turns an uploaded resume file into plain text.
type ResumeTextExtractor interface {
	ExtractResumeText(ctx context.Context, filename string, r io.Reader, size int64) (string, error)
}

// ResumeService owns resume upload, retrieval and deletion. Uploads go to
// the object store first; text extraction prefers the AI service and falls
// back to local PDF extraction when it is down.
type ResumeService struct {
	resumeRepo repository.ResumeRepository
	store      FileStore
	extractor  ResumeTextExtractor
}

type UploadResumeInput struct {
	UserID      uint
	Title       string
	Filename    string
	ContentType string
	Size        int64
	File        io.ReadSeeker
}

func NewResumeService(resumeRepo repository.ResumeRepository, store FileStore, extractor ResumeTextExtractor) *ResumeService {
	return &ResumeService{
		resumeRepo: resumeRepo,
		store:      store,
		extractor:  extractor,
	}
}

// Upload stores the file, extracts its text and persists the resume record.
func (s *ResumeService) Upload(ctx context.Context, in UploadResumeInput) (*models.Resume, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if in.File == nil || in.Size == 0 {
		return nil, models.NewValidationError("Resume file is required")
	}

	key := objectKey(in.UserID, in.Filename)
	fileURL, err := s.store.Upload(ctx, key, in.ContentType, in.File, in.Size)
	if err != nil {
		return nil, models.NewUpstreamError("Object store", err)
	}

	content, err := s.extractText(ctx, in)
	if err != nil {
		return nil, err
	}

	resume := &models.Resume{
		UserID:  in.UserID,
		Title:   in.Title,
		Content: content,
		FileURL: fileURL,
	}
	if err := s.resumeRepo.Create(ctx, resume); err != nil {
		return nil, models.NewInternalError(err)
	}
	return resume, nil
}

func (s *ResumeService) extractText(ctx context.Context, in UploadResumeInput) (string, error) {
	if _, err := in.File.Seek(0, io.SeekStart); err != nil {
		return "", models.NewInternalError(err)
	}
	if s.extractor != nil {
		text, err := s.extractor.ExtractResumeText(ctx, in.Filename, in.File, in.Size)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		if err != nil {
			middleware.Logger.WarnContext(ctx, "AI resume extraction failed, falling back to local parse",
				"filename", in.Filename, "error", err)
		}
	}

	if !strings.EqualFold(filepath.Ext(in.Filename), ".pdf") {
		return "", models.NewValidationError("Could not extract text from resume file")
	}
	if _, err := in.File.Seek(0, io.SeekStart); err != nil {
		return "", models.NewInternalError(err)
	}
	text, err := pdfutil.ExtractFromReader(in.File)
	if err != nil {
		return "", models.NewUpstreamError("Resume parsing", err)
	}
	return text, nil
}

// Get returns the resume. A missing record is 404; a record owned by someone
// else is 401, matching the delete semantics.
func (s *ResumeService) Get(ctx context.Context, id, requesterID uint) (*models.Resume, error) {
	resume, err := s.resumeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Resume", id)
		}
		return nil, models.NewInternalError(err)
	}
	if resume.UserID != requesterID {
		return nil, models.NewUnauthorizedError("You can only view your own resumes")
	}
	return resume, nil
}

// List returns the requester's resumes, most recently updated first.
func (s *ResumeService) List(ctx context.Context, requesterID uint) ([]models.Resume, error) {
	resumes, err := s.resumeRepo.ListByUser(ctx, requesterID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return resumes, nil
}

// DownloadFile fetches the original uploaded file back out of the object
// store. Ownership rules match Get.
func (s *ResumeService) DownloadFile(ctx context.Context, id, requesterID uint) (string, []byte, error) {
	resume, err := s.Get(ctx, id, requesterID)
	if err != nil {
		return "", nil, err
	}
	key := storedObjectKey(resume.FileURL)
	if key == "" {
		return "", nil, models.NewNotFoundMessageError("Resume file not found")
	}
	data, err := s.store.Download(ctx, key)
	if err != nil {
		return "", nil, models.NewUpstreamError("Object store", err)
	}
	return key, data, nil
}

// SetAnalysis stores an analysis payload on the resume verbatim.
func (s *ResumeService) SetAnalysis(ctx context.Context, id, requesterID uint, analysis models.AnalysisBlob) (*models.Resume, error) {
	resume, err := s.Get(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	resume.AnalysisResults = analysis
	if err := s.resumeRepo.Update(ctx, resume); err != nil {
		return nil, models.NewInternalError(err)
	}
	return resume, nil
}

// Delete removes the resume record and its stored file. Applications that
// referenced it keep their dangling ResumeID and render without a resume
// title. A failed object removal is logged, not surfaced; the record is
// already gone.
func (s *ResumeService) Delete(ctx context.Context, id, requesterID uint) error {
	resume, err := s.Get(ctx, id, requesterID)
	if err != nil {
		return err
	}
	if err := s.resumeRepo.Delete(ctx, id); err != nil {
		return models.NewInternalError(err)
	}
	if key := storedObjectKey(resume.FileURL); key != "" {
		if err := s.store.Delete(ctx, key); err != nil {
			middleware.Logger.WarnContext(ctx, "resume file removal failed",
				"resume_id", id, "key", key, "error", err)
		}
	}
	return nil
}

// objectKey builds a per-user, collision-resistant object name. Path
// separators and spaces in the original filename are flattened.
func objectKey(userID uint, filename string) string {
	base := filepath.Base(filename)
	base = strings.ReplaceAll(base, " ", "_")
	return fmt.Sprintf("%d-%d-%s", userID, time.Now().Unix(), base)
}

// storedObjectKey recovers the object key from a stored FileURL, which ends
// in /<bucket>/<key>.
func storedObjectKey(fileURL string) string {
	if fileURL == "" {
		return ""
	}
	i := strings.LastIndex(fileURL, "/")
	if i < 0 || i == len(fileURL)-1 {
		return ""
	}
	return fileURL[i+1:]
}
