package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"huntboard/internal/models"
	"huntboard/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockResumeRepository is a mock of the ResumeRepository interface
type MockResumeRepository struct {
	mock.Mock
}

func (m *MockResumeRepository) Create(ctx context.Context, resume *models.Resume) error {
	args := m.Called(ctx, resume)
	return args.Error(0)
}

func (m *MockResumeRepository) GetByID(ctx context.Context, id uint) (*models.Resume, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Resume), args.Error(1)
}

func (m *MockResumeRepository) ListByUser(ctx context.Context, userID uint) ([]models.Resume, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Resume), args.Error(1)
}

func (m *MockResumeRepository) Update(ctx context.Context, resume *models.Resume) error {
	args := m.Called(ctx, resume)
	return args.Error(0)
}

func (m *MockResumeRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type stubFileStore struct {
	uploadErr error
	objects   map[string][]byte
	removed   []string
}

func (s *stubFileStore) Upload(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	return "http://localhost:9000/huntboard-resumes/" + key, nil
}

func (s *stubFileStore) Download(ctx context.Context, key string) ([]byte, error) {
	if data, ok := s.objects[key]; ok {
		return data, nil
	}
	return nil, errors.New("no such object")
}

func (s *stubFileStore) Delete(ctx context.Context, key string) error {
	s.removed = append(s.removed, key)
	return nil
}

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) ExtractResumeText(ctx context.Context, filename string, r io.Reader, size int64) (string, error) {
	return s.text, s.err
}

func newResumeTestServer(mockRepo *MockResumeRepository) *fiber.App {
	s := &Server{
		resumeService: service.NewResumeService(mockRepo, &stubFileStore{}, &stubExtractor{text: "Experienced engineer"}),
	}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", uint(1))
		return c.Next()
	})
	app.Post("/resumes", s.UploadResume)
	app.Get("/resumes", s.GetResumes)
	app.Get("/resumes/:id", s.GetResume)
	app.Get("/resumes/:id/file", s.DownloadResume)
	app.Delete("/resumes/:id", s.DeleteResume)
	return app
}

// multipartResume builds a multipart body with a title field and a file part.
func multipartResume(t *testing.T, title, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if title != "" {
		require.NoError(t, w.WriteField("title", title))
	}
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadResume(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockResumeRepository)
		mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		app := newResumeTestServer(mockRepo)

		body, contentType := multipartResume(t, "Backend Resume", "resume.pdf", []byte("%PDF-1.4 fake"))
		req := httptest.NewRequest(http.MethodPost, "/resumes", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var resume models.Resume
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&resume))
		assert.Equal(t, "Backend Resume", resume.Title)
		assert.Equal(t, "Experienced engineer", resume.Content)
		assert.Contains(t, resume.FileURL, "resume.pdf")
	})

	t.Run("Missing File", func(t *testing.T) {
		mockRepo := new(MockResumeRepository)
		app := newResumeTestServer(mockRepo)

		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		require.NoError(t, w.WriteField("title", "Backend Resume"))
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/resumes", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Missing Title", func(t *testing.T) {
		mockRepo := new(MockResumeRepository)
		app := newResumeTestServer(mockRepo)

		body, contentType := multipartResume(t, "", "resume.pdf", []byte("%PDF-1.4 fake"))
		req := httptest.NewRequest(http.MethodPost, "/resumes", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetResume(t *testing.T) {
	t.Run("Owned", func(t *testing.T) {
		mockRepo := new(MockResumeRepository)
		mockRepo.On("GetByID", mock.Anything, uint(3)).
			Return(&models.Resume{ID: 3, UserID: 1, Title: "Backend Resume"}, nil)
		app := newResumeTestServer(mockRepo)

		req := httptest.NewRequest(http.MethodGet, "/resumes/3", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Absent", func(t *testing.T) {
		mockRepo := new(MockResumeRepository)
		mockRepo.On("GetByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)
		app := newResumeTestServer(mockRepo)

		req := httptest.NewRequest(http.MethodGet, "/resumes/99", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Foreign Is Unauthorized", func(t *testing.T) {
		mockRepo := new(MockResumeRepository)
		mockRepo.On("GetByID", mock.Anything, uint(4)).
			Return(&models.Resume{ID: 4, UserID: 2, Title: "Not Yours"}, nil)
		app := newResumeTestServer(mockRepo)

		req := httptest.NewRequest(http.MethodGet, "/resumes/4", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestDownloadResume(t *testing.T) {
	newApp := func(mockRepo *MockResumeRepository, store *stubFileStore) *fiber.App {
		s := &Server{
			resumeService: service.NewResumeService(mockRepo, store, nil),
		}
		app := fiber.New()
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("userID", uint(1))
			return c.Next()
		})
		app.Get("/resumes/:id/file", s.DownloadResume)
		return app
	}

	t.Run("Owned", func(t *testing.T) {
		mockRepo := new(MockResumeRepository)
		mockRepo.On("GetByID", mock.Anything, uint(3)).
			Return(&models.Resume{
				ID: 3, UserID: 1,
				FileURL: "http://localhost:9000/huntboard-resumes/1-1700000000-resume.pdf",
			}, nil)
		store := &stubFileStore{objects: map[string][]byte{
			"1-1700000000-resume.pdf": []byte("%PDF-1.4 fake"),
		}}
		app := newApp(mockRepo, store)

		req := httptest.NewRequest(http.MethodGet, "/resumes/3/file", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "1-1700000000-resume.pdf")

		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-1.4 fake"), data)
	})

	t.Run("Foreign Is Unauthorized", func(t *testing.T) {
		mockRepo := new(MockResumeRepository)
		mockRepo.On("GetByID", mock.Anything, uint(4)).
			Return(&models.Resume{
				ID: 4, UserID: 2,
				FileURL: "http://localhost:9000/huntboard-resumes/2-1700000000-resume.pdf",
			}, nil)
		app := newApp(mockRepo, &stubFileStore{})

		req := httptest.NewRequest(http.MethodGet, "/resumes/4/file", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Missing Object Is Upstream Failure", func(t *testing.T) {
		mockRepo := new(MockResumeRepository)
		mockRepo.On("GetByID", mock.Anything, uint(5)).
			Return(&models.Resume{
				ID: 5, UserID: 1,
				FileURL: "http://localhost:9000/huntboard-resumes/1-1700000000-gone.pdf",
			}, nil)
		app := newApp(mockRepo, &stubFileStore{})

		req := httptest.NewRequest(http.MethodGet, "/resumes/5/file", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestAnalyzeResume(t *testing.T) {
	newApp := func(mockRepo *MockResumeRepository, mockAI *MockAIProxy) *fiber.App {
		s := &Server{
			resumeService: service.NewResumeService(mockRepo, &stubFileStore{}, nil),
			aiClient:      mockAI,
		}
		app := fiber.New()
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("userID", uint(1))
			return c.Next()
		})
		app.Post("/resumes/:id/analyze", s.AnalyzeResume)
		return app
	}

	t.Run("Stores Analysis", func(t *testing.T) {
		resume := &models.Resume{ID: 3, UserID: 1, Title: "Backend Resume", Content: "Experienced engineer"}
		mockRepo := new(MockResumeRepository)
		mockRepo.On("GetByID", mock.Anything, uint(3)).Return(resume, nil)
		mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

		mockAI := new(MockAIProxy)
		mockAI.On("Analyze", mock.Anything, mock.Anything).
			Return(json.RawMessage(`{"match_score":72}`), nil)

		app := newApp(mockRepo, mockAI)

		body, _ := json.Marshal(map[string]string{"job_description": "Go backend role"})
		req := httptest.NewRequest(http.MethodPost, "/resumes/3/analyze", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"match_score":72}`, string(resume.AnalysisResults))
		mockRepo.AssertCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Missing Job Description", func(t *testing.T) {
		app := newApp(new(MockResumeRepository), new(MockAIProxy))

		body, _ := json.Marshal(map[string]string{})
		req := httptest.NewRequest(http.MethodPost, "/resumes/3/analyze", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDeleteResume(t *testing.T) {
	mockRepo := new(MockResumeRepository)
	mockRepo.On("GetByID", mock.Anything, uint(5)).
		Return(&models.Resume{ID: 5, UserID: 1}, nil)
	mockRepo.On("Delete", mock.Anything, uint(5)).Return(nil)
	app := newResumeTestServer(mockRepo)

	req := httptest.NewRequest(http.MethodDelete, "/resumes/5", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockRepo.AssertCalled(t, "Delete", mock.Anything, uint(5))
}
