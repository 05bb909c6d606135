package classroom

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aulacert/aula-cert-api/model"
	"github.com/aulacert/aula-cert-api/services"
	"github.com/aulacert/aula-cert-api/utils/response"
	"github.com/aulacert/aula-cert-api/utils/validation"
)

// ClassroomHandler handles classroom-related requests
type ClassroomHandler struct {
	db        *gorm.DB
	agg       *services.AggregationService
	validator *validation.Validator
}

// NewClassroomHandler creates a new classroom handler
func NewClassroomHandler(db *gorm.DB, agg *services.AggregationService) *ClassroomHandler {
	return &ClassroomHandler{
		db:        db,
		agg:       agg,
		validator: validation.NewValidator(),
	}
}

// CreateClassroomRequest represents the request body for creating a classroom
type CreateClassroomRequest struct {
	Name             string `json:"name" validate:"required,min=3,max=255"`
	Code             string `json:"code" validate:"required,min=2,max=50"`
	ExternalCourseID string `json:"external_course_id" validate:"omitempty,max=100"`
	TeamID           uint   `json:"team_id" validate:"omitempty,min=1"`
}

// UpdateClassroomRequest represents the request body for updating a
// classroom. Status is deliberately absent: it only moves through
// lifecycle events.
type UpdateClassroomRequest struct {
	Name             string `json:"name" validate:"omitempty,min=3,max=255"`
	Code             string `json:"code" validate:"omitempty,min=2,max=50"`
	ExternalCourseID string `json:"external_course_id" validate:"omitempty,max=100"`
	TeamID           *uint  `json:"team_id" validate:"omitempty,min=1"`
}

// ReportResponse decorates the aggregation report with the eligibility
// gates the certificate screens need.
type ReportResponse struct {
	services.ClassroomReport
	CanStartCertification bool `json:"can_start_certification"`
	ShowCertificates      bool `json:"show_certificates"`
}

// ListClassrooms handles GET /api/v1/classrooms
func (h *ClassroomHandler) ListClassrooms(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := c.Query("search", "")
	status := c.Query("status", "")

	query := h.db.Model(&model.Classroom{})
	if search != "" {
		query = query.Where("name ILIKE ? OR code ILIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count classrooms")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	classrooms, err := services.FetchListWithRetry(c.Context(), "classrooms", func() ([]model.Classroom, error) {
		var classrooms []model.Classroom
		err := query.Order("created_at DESC").
			Limit(limit).
			Offset(offset).
			Find(&classrooms).Error
		return classrooms, err
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch classrooms")
	}

	return response.Paginated(c, classrooms, pagination)
}

// GetClassroom handles GET /api/v1/classrooms/:id
func (h *ClassroomHandler) GetClassroom(c *fiber.Ctx) error {
	id := c.Params("id")

	var classroom model.Classroom
	err := h.db.Preload("Evaluations").
		Preload("Forms").
		First(&classroom, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Classroom not found")
		}
		return response.InternalServerError(c, "Failed to fetch classroom")
	}

	return response.Success(c, classroom)
}

// CreateClassroom handles POST /api/v1/classrooms
func (h *ClassroomHandler) CreateClassroom(c *fiber.Ctx) error {
	var req CreateClassroomRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var existing model.Classroom
	if err := h.db.Where("code = ?", req.Code).First(&existing).Error; err == nil {
		return response.Conflict(c, "Classroom with this code already exists")
	}

	classroom := model.Classroom{
		Name:             validation.SanitizeString(req.Name),
		Code:             validation.SanitizeString(req.Code),
		Status:           model.StatusPending,
		ExternalCourseID: validation.SanitizeString(req.ExternalCourseID),
		TeamID:           req.TeamID,
	}
	if err := h.db.Create(&classroom).Error; err != nil {
		return response.InternalServerError(c, "Failed to create classroom")
	}

	return response.Created(c, classroom)
}

// UpdateClassroom handles PUT /api/v1/classrooms/:id
func (h *ClassroomHandler) UpdateClassroom(c *fiber.Ctx) error {
	id := c.Params("id")

	var req UpdateClassroomRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var classroom model.Classroom
	if err := h.db.First(&classroom, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Classroom not found")
		}
		return response.InternalServerError(c, "Failed to fetch classroom")
	}

	if req.Name != "" {
		classroom.Name = validation.SanitizeString(req.Name)
	}
	if req.Code != "" {
		var existing model.Classroom
		if err := h.db.Where("code = ? AND id != ?", req.Code, id).First(&existing).Error; err == nil {
			return response.Conflict(c, "Classroom with this code already exists")
		}
		classroom.Code = validation.SanitizeString(req.Code)
	}
	if req.ExternalCourseID != "" {
		classroom.ExternalCourseID = validation.SanitizeString(req.ExternalCourseID)
	}
	if req.TeamID != nil {
		classroom.TeamID = *req.TeamID
	}

	if err := h.db.Save(&classroom).Error; err != nil {
		return response.InternalServerError(c, "Failed to update classroom")
	}
	return response.SuccessWithMessage(c, "Classroom updated successfully", classroom)
}

// DeleteClassroom handles DELETE /api/v1/classrooms/:id
func (h *ClassroomHandler) DeleteClassroom(c *fiber.Ctx) error {
	id := c.Params("id")

	var classroom model.Classroom
	if err := h.db.First(&classroom, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Classroom not found")
		}
		return response.InternalServerError(c, "Failed to fetch classroom")
	}

	if err := h.db.Delete(&classroom).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete classroom")
	}
	return response.SuccessWithMessage(c, "Classroom deleted successfully", nil)
}

// GetReport handles GET /api/v1/classrooms/:id/report
func (h *ClassroomHandler) GetReport(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid classroom id")
	}

	var classroom model.Classroom
	if err := h.db.First(&classroom, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Classroom not found")
		}
		return response.InternalServerError(c, "Failed to fetch classroom")
	}

	report, err := h.agg.Report(c.Context(), uint(id))
	if err != nil {
		return response.FromServiceError(c, err)
	}

	return response.Success(c, ReportResponse{
		ClassroomReport:       *report,
		CanStartCertification: model.CanStartCertification(report.Grade),
		ShowCertificates:      model.CanShowCertificates(report.Grade),
	})
}
