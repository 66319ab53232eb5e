package server

import (
	"huntboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// The AI endpoints proxy request bodies to the companion Python service
// unchanged. The backend owns auth, rate limits and error shaping; the
// payload schema belongs to the AI service.

// AnalyzePublic handles POST /api/analyze/public
// @Summary Analyze a resume against a job description
// @Description Public analysis endpoint, feature-flagged and rate limited
// @Tags ai
// @Accept json
// @Produce json
// @Param request body object true "Analysis request"
// @Success 200 {object} object
// @Failure 500 {object} models.ErrorResponse
// @Router /analyze/public [post]
func (s *Server) AnalyzePublic(c *fiber.Ctx) error {
	result, err := s.aiClient.Analyze(c.Context(), c.Body())
	if err != nil {
		return respondServiceError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(result)
}

// GenerateSummary handles POST /api/generate/summary
// @Summary Generate a resume summary
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object true "Summary request"
// @Success 200 {object} object
// @Failure 500 {object} models.ErrorResponse
// @Router /generate/summary [post]
func (s *Server) GenerateSummary(c *fiber.Ctx) error {
	result, err := s.aiClient.GenerateSummary(c.Context(), c.Body())
	if err != nil {
		return respondServiceError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(result)
}

// OptimizeResume handles POST /api/generate/optimize
// @Summary Optimize a resume for a job description
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object true "Optimization request"
// @Success 200 {object} object
// @Failure 500 {object} models.ErrorResponse
// @Router /generate/optimize [post]
func (s *Server) OptimizeResume(c *fiber.Ctx) error {
	result, err := s.aiClient.OptimizeResume(c.Context(), c.Body())
	if err != nil {
		return respondServiceError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(result)
}

// ParseResumeUpload handles POST /api/upload/parse-resume
// @Summary Parse an uploaded resume file
// @Description Forward the uploaded file to the AI service for structured parsing
// @Tags ai
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Resume file"
// @Success 200 {object} object
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /upload/parse-resume [post]
func (s *Server) ParseResumeUpload(c *fiber.Ctx) error {
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

	result, err := s.aiClient.ParseResumeFile(c.Context(), fileHeader.Filename, file, fileHeader.Size)
	if err != nil {
		return respondServiceError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(result)
}
