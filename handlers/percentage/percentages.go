package percentage

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aulacert/aula-cert-api/model"
	"github.com/aulacert/aula-cert-api/services"
	"github.com/aulacert/aula-cert-api/utils/response"
	"github.com/aulacert/aula-cert-api/utils/validation"
)

// PercentageHandler handles weight-table requests
type PercentageHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewPercentageHandler creates a new percentage handler
func NewPercentageHandler(db *gorm.DB) *PercentageHandler {
	return &PercentageHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreatePercentageRequest represents the request body for creating a percentage
type CreatePercentageRequest struct {
	AreaID     uint `json:"area_id" validate:"required,min=1"`
	CycleID    uint `json:"cycle_id" validate:"required,min=1"`
	Percentage int  `json:"percentage" validate:"gte=0,lte=100"`
}

// UpdatePercentageRequest represents the request body for updating a percentage
type UpdatePercentageRequest struct {
	Percentage *int `json:"percentage" validate:"required,gte=0,lte=100"`
}

// ListPercentages handles GET /api/v1/percentages
func (h *PercentageHandler) ListPercentages(c *fiber.Ctx) error {
	areaID := c.Query("area_id", "")

	percentages, err := services.FetchListWithRetry(c.Context(), "percentages", func() ([]model.Percentage, error) {
		query := h.db.Preload("Area").Preload("Cycle")
		if areaID != "" {
			query = query.Where("area_id = ?", areaID)
		}
		var percentages []model.Percentage
		err := query.Order("area_id, cycle_id").Find(&percentages).Error
		return percentages, err
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch percentages")
	}
	return response.Success(c, percentages)
}

// CreatePercentage handles POST /api/v1/percentages. At most one row
// may exist per (area, cycle) pair.
func (h *PercentageHandler) CreatePercentage(c *fiber.Ctx) error {
	var req CreatePercentageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var area model.Area
	if err := h.db.First(&area, req.AreaID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Area not found")
		}
		return response.InternalServerError(c, "Failed to verify area")
	}

	var cycle model.Cycle
	if err := h.db.First(&cycle, req.CycleID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Cycle not found")
		}
		return response.InternalServerError(c, "Failed to verify cycle")
	}

	var existing model.Percentage
	err := h.db.Where("area_id = ? AND cycle_id = ?", req.AreaID, req.CycleID).First(&existing).Error
	if err == nil {
		return response.Conflict(c, "A percentage already exists for this area and cycle")
	}

	percentage := model.Percentage{
		AreaID:     req.AreaID,
		CycleID:    req.CycleID,
		Percentage: req.Percentage,
	}
	if err := h.db.Create(&percentage).Error; err != nil {
		return response.InternalServerError(c, "Failed to create percentage")
	}

	h.db.Preload("Area").Preload("Cycle").First(&percentage, percentage.ID)
	return response.Created(c, percentage)
}

// UpdatePercentage handles PUT /api/v1/percentages/:id
func (h *PercentageHandler) UpdatePercentage(c *fiber.Ctx) error {
	id := c.Params("id")

	var req UpdatePercentageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var percentage model.Percentage
	if err := h.db.First(&percentage, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Percentage not found")
		}
		return response.InternalServerError(c, "Failed to fetch percentage")
	}

	percentage.Percentage = *req.Percentage
	if err := h.db.Save(&percentage).Error; err != nil {
		return response.InternalServerError(c, "Failed to update percentage")
	}
	return response.SuccessWithMessage(c, "Percentage updated successfully", percentage)
}

// DeletePercentage handles DELETE /api/v1/percentages/:id
func (h *PercentageHandler) DeletePercentage(c *fiber.Ctx) error {
	id := c.Params("id")

	var percentage model.Percentage
	if err := h.db.First(&percentage, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Percentage not found")
		}
		return response.InternalServerError(c, "Failed to fetch percentage")
	}

	if err := h.db.Delete(&percentage).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete percentage")
	}
	return response.SuccessWithMessage(c, "Percentage deleted successfully", nil)
}
