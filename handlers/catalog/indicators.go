package catalog

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aulacert/aula-cert-api/model"
	"github.com/aulacert/aula-cert-api/utils/response"
	"github.com/aulacert/aula-cert-api/utils/validation"
)

// CreateIndicatorRequest represents the request body for creating an indicator
type CreateIndicatorRequest struct {
	Name       string `json:"name" validate:"required,min=3,max=512"`
	AreaID     uint   `json:"area_id" validate:"required,min=1"`
	ResourceID uint   `json:"resource_id" validate:"required,min=1"`
	ContentID  *uint  `json:"content_id" validate:"omitempty,min=1"`
}

// UpdateIndicatorRequest represents the request body for updating an indicator
type UpdateIndicatorRequest struct {
	Name      string `json:"name" validate:"omitempty,min=3,max=512"`
	ContentID *uint  `json:"content_id" validate:"omitempty,min=1"`
}

// ListIndicators handles GET /api/v1/indicators
func (h *CatalogHandler) ListIndicators(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	areaID := c.Query("area_id", "")
	resourceID := c.Query("resource_id", "")

	query := h.db.Model(&model.Indicator{})
	if areaID != "" {
		query = query.Where("area_id = ?", areaID)
	}
	if resourceID != "" {
		query = query.Where("resource_id = ?", resourceID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count indicators")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var indicators []model.Indicator
	err := query.Preload("Area").
		Preload("Resource").
		Preload("Content").
		Order("id").
		Limit(limit).
		Offset(offset).
		Find(&indicators).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch indicators")
	}

	return response.Paginated(c, indicators, pagination)
}

// CreateIndicator handles POST /api/v1/indicators
func (h *CatalogHandler) CreateIndicator(c *fiber.Ctx) error {
	var req CreateIndicatorRequest
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

	var resource model.Resource
	if err := h.db.First(&resource, req.ResourceID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Resource not found")
		}
		return response.InternalServerError(c, "Failed to verify resource")
	}

	// A content-scoped indicator must point at a content of its own
	// resource.
	if req.ContentID != nil {
		var content model.Content
		if err := h.db.First(&content, *req.ContentID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return response.NotFound(c, "Content not found")
			}
			return response.InternalServerError(c, "Failed to verify content")
		}
		if content.ResourceID != req.ResourceID {
			return response.BadRequest(c, "Content does not belong to the given resource")
		}
	}

	indicator := model.Indicator{
		Name:       validation.SanitizeString(req.Name),
		AreaID:     req.AreaID,
		ResourceID: req.ResourceID,
		ContentID:  req.ContentID,
	}
	if err := h.db.Create(&indicator).Error; err != nil {
		return response.InternalServerError(c, "Failed to create indicator")
	}

	h.db.Preload("Area").Preload("Resource").Preload("Content").First(&indicator, indicator.ID)
	return response.Created(c, indicator)
}

// UpdateIndicator handles PUT /api/v1/indicators/:id
func (h *CatalogHandler) UpdateIndicator(c *fiber.Ctx) error {
	id := c.Params("id")

	var req UpdateIndicatorRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var indicator model.Indicator
	if err := h.db.First(&indicator, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Indicator not found")
		}
		return response.InternalServerError(c, "Failed to fetch indicator")
	}

	if req.Name != "" {
		indicator.Name = validation.SanitizeString(req.Name)
	}
	if req.ContentID != nil {
		var content model.Content
		if err := h.db.First(&content, *req.ContentID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return response.NotFound(c, "Content not found")
			}
			return response.InternalServerError(c, "Failed to verify content")
		}
		if content.ResourceID != indicator.ResourceID {
			return response.BadRequest(c, "Content does not belong to the indicator's resource")
		}
		indicator.ContentID = req.ContentID
	}

	if err := h.db.Save(&indicator).Error; err != nil {
		return response.InternalServerError(c, "Failed to update indicator")
	}
	return response.SuccessWithMessage(c, "Indicator updated successfully", indicator)
}

// DeleteIndicator handles DELETE /api/v1/indicators/:id
func (h *CatalogHandler) DeleteIndicator(c *fiber.Ctx) error {
	id := c.Params("id")

	var indicator model.Indicator
	if err := h.db.First(&indicator, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Indicator not found")
		}
		return response.InternalServerError(c, "Failed to fetch indicator")
	}

	var evalCount int64
	if err := h.db.Model(&model.EvaluatedIndicator{}).Where("indicator_id = ?", id).Count(&evalCount).Error; err != nil {
		return response.InternalServerError(c, "Failed to check indicator dependencies")
	}
	if evalCount > 0 {
		return response.BadRequest(c, "Cannot delete indicator with recorded evaluations")
	}

	if err := h.db.Delete(&indicator).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete indicator")
	}
	return response.SuccessWithMessage(c, "Indicator deleted successfully", nil)
}
