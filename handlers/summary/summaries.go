package summary

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aulacert/aula-cert-api/model"
	"github.com/aulacert/aula-cert-api/services"
	"github.com/aulacert/aula-cert-api/utils/response"
	"github.com/aulacert/aula-cert-api/utils/validation"
)

// SummaryHandler handles form and summary requests
type SummaryHandler struct {
	db        *gorm.DB
	service   *services.SummaryService
	validator *validation.Validator
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(db *gorm.DB, service *services.SummaryService) *SummaryHandler {
	return &SummaryHandler{
		db:        db,
		service:   service,
		validator: validation.NewValidator(),
	}
}

// CreateFormRequest represents the request body for creating a form
type CreateFormRequest struct {
	ClassroomID uint   `json:"classroom_id" validate:"required,min=1"`
	Name        string `json:"name" validate:"required,min=3,max=255"`
}

// ListForms handles GET /api/v1/forms
func (h *SummaryHandler) ListForms(c *fiber.Ctx) error {
	classroomID := c.Query("classroom_id", "")

	forms, err := services.FetchListWithRetry(c.Context(), "forms", func() ([]model.Form, error) {
		query := h.db.Model(&model.Form{})
		if classroomID != "" {
			query = query.Where("classroom_id = ?", classroomID)
		}
		var forms []model.Form
		err := query.Order("created_at DESC").Find(&forms).Error
		return forms, err
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch forms")
	}
	return response.Success(c, forms)
}

// GetForm handles GET /api/v1/forms/:id
func (h *SummaryHandler) GetForm(c *fiber.Ctx) error {
	id := c.Params("id")

	var form model.Form
	if err := h.db.Preload("SummaryRows").First(&form, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Form not found")
		}
		return response.InternalServerError(c, "Failed to fetch form")
	}
	return response.Success(c, form)
}

// CreateForm handles POST /api/v1/forms
func (h *SummaryHandler) CreateForm(c *fiber.Ctx) error {
	var req CreateFormRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var classroom model.Classroom
	if err := h.db.First(&classroom, req.ClassroomID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Classroom not found")
		}
		return response.InternalServerError(c, "Failed to verify classroom")
	}

	form := model.Form{
		ClassroomID: req.ClassroomID,
		Name:        validation.SanitizeString(req.Name),
	}
	if err := h.db.Create(&form).Error; err != nil {
		return response.InternalServerError(c, "Failed to create form")
	}
	return response.Created(c, form)
}

// GetSummary handles GET /api/v1/forms/:id/summary. The first call
// materializes the rows; later calls serve the stored set.
func (h *SummaryHandler) GetSummary(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid form id")
	}

	rows, err := h.service.GetOrCreateSummary(c.Context(), uint(id))
	if err != nil {
		return response.FromServiceError(c, err)
	}
	return response.Success(c, rows)
}

// DeleteForm handles DELETE /api/v1/forms/:id
func (h *SummaryHandler) DeleteForm(c *fiber.Ctx) error {
	id := c.Params("id")

	var form model.Form
	if err := h.db.First(&form, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Form not found")
		}
		return response.InternalServerError(c, "Failed to fetch form")
	}

	if err := h.db.Select("SummaryRows").Delete(&form).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete form")
	}
	return response.SuccessWithMessage(c, "Form deleted successfully", nil)
}
