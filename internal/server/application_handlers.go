package server

import (
	"time"

	"huntboard/internal/board"
	"huntboard/internal/cache"
	"huntboard/internal/models"
	"huntboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// currentUserID reads the authenticated user set by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	userID, _ := c.Locals("userID").(uint)
	return userID
}

type applicationRequest struct {
	ResumeID        uint       `json:"resume_id"`
	Company         string     `json:"company"`
	JobTitle        string     `json:"job_title"`
	Location        string     `json:"location"`
	JobType         string     `json:"job_type"`
	ApplicationDate *time.Time `json:"application_date"`
	JobDescription  string     `json:"job_description"`
	Notes           string     `json:"notes"`
	IsLiked         bool       `json:"is_liked"`
}

// CreateApplication handles POST /api/applications
// @Summary Create an application
// @Description Track a new job application, starting in the Applied column
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body applicationRequest true "Application details"
// @Success 200 {object} models.Application
// @Failure 400 {object} models.ErrorResponse
// @Router /applications [post]
func (s *Server) CreateApplication(c *fiber.Ctx) error {
	var req applicationRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.CreateApplicationInput{
		UserID:         currentUserID(c),
		ResumeID:       req.ResumeID,
		Company:        req.Company,
		JobTitle:       req.JobTitle,
		Location:       req.Location,
		JobType:        models.JobType(req.JobType),
		JobDescription: req.JobDescription,
		Notes:          req.Notes,
		IsLiked:        req.IsLiked,
	}
	if req.ApplicationDate != nil {
		in.ApplicationDate = *req.ApplicationDate
	}

	app, err := s.appService.Create(c.Context(), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(app)
}

// GetApplications handles GET /api/applications
// @Summary List applications
// @Description List the authenticated user's applications, newest first
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Application
// @Router /applications [get]
func (s *Server) GetApplications(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var apps []models.Application
	err := cache.Aside(c.Context(), cache.ApplicationListKey(userID), &apps,
		cache.ApplicationListTTL, func() error {
			var fetchErr error
			apps, fetchErr = s.appService.List(c.Context(), userID)
			return fetchErr
		})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(apps)
}

// GetApplication handles GET /api/applications/:id
// @Summary Get an application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} models.Application
// @Failure 404 {object} models.ErrorResponse
// @Router /applications/{id} [get]
func (s *Server) GetApplication(c *fiber.Ctx) error {
	id, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}

	app, err := s.appService.Get(c.Context(), id, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(app)
}

// UpdateApplication handles PUT /api/applications/:id
// @Summary Update an application
// @Description Patch application fields. A status change appends to the history ledger.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body service.UpdateApplicationInput true "Fields to update"
// @Success 200 {object} models.Application
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /applications/{id} [put]
func (s *Server) UpdateApplication(c *fiber.Ctx) error {
	id, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}

	var req struct {
		Company         *string    `json:"company"`
		JobTitle        *string    `json:"job_title"`
		Location        *string    `json:"location"`
		JobType         *string    `json:"job_type"`
		Status          *string    `json:"status"`
		ResumeID        *uint      `json:"resume_id"`
		ApplicationDate *time.Time `json:"application_date"`
		JobDescription  *string    `json:"job_description"`
		Notes           *string    `json:"notes"`
		IsLiked         *bool      `json:"is_liked"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.UpdateApplicationInput{
		Company:         req.Company,
		JobTitle:        req.JobTitle,
		Location:        req.Location,
		ResumeID:        req.ResumeID,
		ApplicationDate: req.ApplicationDate,
		JobDescription:  req.JobDescription,
		Notes:           req.Notes,
		IsLiked:         req.IsLiked,
	}
	if req.JobType != nil {
		jt := models.JobType(*req.JobType)
		in.JobType = &jt
	}
	if req.Status != nil {
		st := models.Status(*req.Status)
		in.Status = &st
	}

	app, err := s.appService.Update(c.Context(), id, currentUserID(c), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(app)
}

// DeleteApplication handles DELETE /api/applications/:id
// @Summary Delete an application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /applications/{id} [delete]
func (s *Server) DeleteApplication(c *fiber.Ctx) error {
	id, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}

	if delErr := s.appService.Delete(c.Context(), id, currentUserID(c)); delErr != nil {
		return respondServiceError(c, delErr)
	}
	return c.JSON(fiber.Map{"message": "Application deleted successfully"})
}

// DeleteApplications handles DELETE /api/applications
// @Summary Bulk delete applications
// @Description Delete every listed application the user owns in one statement
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{ids=[]int} true "Application IDs"
// @Success 200 {object} object{message=string,deleted=int}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /applications [delete]
func (s *Server) DeleteApplications(c *fiber.Ctx) error {
	var req struct {
		IDs []uint `json:"ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	count, err := s.appService.DeleteMany(c.Context(), req.IDs, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Applications deleted successfully",
		"deleted": count,
	})
}

// parseBoardTime accepts a date-only value or a full RFC 3339 timestamp.
func parseBoardTime(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// GetBoard handles GET /api/applications/board
// @Summary Kanban board view
// @Description Filtered, sorted applications grouped into one column per status
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param q query string false "Substring match on title, company, location"
// @Param from query string false "Earliest applied date (YYYY-MM-DD or RFC 3339)"
// @Param until query string false "Latest applied date, inclusive of the whole day"
// @Param job_type query string false "Exact job type"
// @Param status query string false "Exact status"
// @Param liked query bool false "Only liked applications"
// @Param sort_by query string false "date_applied, job_title or company"
// @Param sort_order query string false "asc or desc"
// @Param columns query string false "Comma-separated statuses to render"
// @Success 200 {object} board.View
// @Failure 400 {object} models.ErrorResponse
// @Router /applications/board [get]
func (s *Server) GetBoard(c *fiber.Ctx) error {
	filter := board.Filter{
		Query:     c.Query("q"),
		LikedOnly: c.QueryBool("liked"),
	}

	if raw := c.Query("from"); raw != "" {
		t, err := parseBoardTime(raw)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid from date"))
		}
		filter.From = t
	}
	if raw := c.Query("until"); raw != "" {
		t, err := parseBoardTime(raw)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid until date"))
		}
		filter.Until = t
	}
	if raw := c.Query("job_type"); raw != "" {
		jt := models.JobType(raw)
		if !jt.Valid() {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid job type"))
		}
		filter.JobType = jt
	}
	if raw := c.Query("status"); raw != "" {
		st := models.Status(raw)
		if !st.Valid() {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid status"))
		}
		filter.Status = st
	}

	sortSpec := board.Sort{
		By:   c.Query("sort_by"),
		Desc: c.Query("sort_order") == "desc",
	}

	var visible []models.Status
	if raw := c.Query("columns"); raw != "" {
		for _, part := range splitCSV(raw) {
			st := models.Status(part)
			if !st.Valid() {
				return models.RespondWithError(c, fiber.StatusBadRequest,
					models.NewValidationError("Invalid status"))
			}
			visible = append(visible, st)
		}
	}

	apps, err := s.appService.List(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(board.Build(apps, filter, sortSpec, visible))
}

// GetInsights handles GET /api/applications/insights
// @Summary Pipeline insights
// @Description Aggregate counts over the user's full collection, ignoring board filters
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} board.Insights
// @Router /applications/insights [get]
func (s *Server) GetInsights(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var insights board.Insights
	err := cache.Aside(c.Context(), cache.InsightsKey(userID), &insights,
		cache.InsightsTTL, func() error {
			apps, fetchErr := s.appService.List(c.Context(), userID)
			if fetchErr != nil {
				return fetchErr
			}
			insights = board.ComputeInsights(apps)
			return nil
		})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(insights)
}
