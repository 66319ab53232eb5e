package server

import (
	"encoding/json"

	"huntboard/internal/models"
	"huntboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadResume handles POST /api/resumes
// @Summary Upload a resume
// @Description Store a resume file and extract its text for later analysis
// @Tags resumes
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Resume title"
// @Param file formData file true "Resume file (PDF preferred)"
// @Success 200 {object} models.Resume
// @Failure 400 {object} models.ErrorResponse
// @Router /resumes [post]
func (s *Server) UploadResume(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Resume file is required"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read uploaded file"))
	}
	defer file.Close()

	in := service.UploadResumeInput{
		UserID:      currentUserID(c),
		Title:       c.FormValue("title"),
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		File:        file,
	}

	resume, err := s.resumeService.Upload(c.Context(), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(resume)
}

// GetResumes handles GET /api/resumes
// @Summary List resumes
// @Tags resumes
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Resume
// @Router /resumes [get]
func (s *Server) GetResumes(c *fiber.Ctx) error {
	resumes, err := s.resumeService.List(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(resumes)
}

// GetResume handles GET /api/resumes/:id
// @Summary Get a resume
// @Tags resumes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Resume ID"
// @Success 200 {object} models.Resume
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /resumes/{id} [get]
func (s *Server) GetResume(c *fiber.Ctx) error {
	id, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}

	resume, err := s.resumeService.Get(c.Context(), id, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(resume)
}

// DownloadResume handles GET /api/resumes/:id/file
// @Summary Download the original resume file
// @Description Stream the uploaded file back from the object store
// @Tags resumes
// @Produce octet-stream
// @Security BearerAuth
// @Param id path int true "Resume ID"
// @Success 200 {file} file
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /resumes/{id}/file [get]
func (s *Server) DownloadResume(c *fiber.Ctx) error {
	id, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}

	filename, data, err := s.resumeService.DownloadFile(c.Context(), id, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	c.Attachment(filename)
	return c.Send(data)
}

// AnalyzeResume handles POST /api/resumes/:id/analyze
// @Summary Analyze a stored resume against a job description
// @Description Run the AI analysis over the resume's extracted text and persist the result
// @Tags resumes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Resume ID"
// @Param request body object{job_description=string} true "Job description"
// @Success 200 {object} object
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /resumes/{id}/analyze [post]
func (s *Server) AnalyzeResume(c *fiber.Ctx) error {
	id, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}

	var req struct {
		JobDescription string `json:"job_description"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.JobDescription == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Job description is required"))
	}

	resume, err := s.resumeService.Get(c.Context(), id, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	payload, err := json.Marshal(fiber.Map{
		"resume_text":     resume.Content,
		"job_description": req.JobDescription,
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	result, err := s.aiClient.Analyze(c.Context(), payload)
	if err != nil {
		return respondServiceError(c, err)
	}

	// Persist the latest analysis on the resume; the payload stays opaque.
	if _, err := s.resumeService.SetAnalysis(c.Context(), id, currentUserID(c), models.AnalysisBlob(result)); err != nil {
		return respondServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(result)
}

// DeleteResume handles DELETE /api/resumes/:id
// @Summary Delete a resume
// @Tags resumes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Resume ID"
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /resumes/{id} [delete]
func (s *Server) DeleteResume(c *fiber.Ctx) error {
	id, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}

	if delErr := s.resumeService.Delete(c.Context(), id, currentUserID(c)); delErr != nil {
		return respondServiceError(c, delErr)
	}
	return c.JSON(fiber.Map{"message": "Resume deleted successfully"})
}
