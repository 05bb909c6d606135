package catalog

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aulacert/aula-cert-api/model"
	"github.com/aulacert/aula-cert-api/services"
	"github.com/aulacert/aula-cert-api/utils/response"
	"github.com/aulacert/aula-cert-api/utils/validation"
)

// CreateResourceRequest represents the request body for creating a resource
type CreateResourceRequest struct {
	CycleID uint   `json:"cycle_id" validate:"required,min=1"`
	Name    string `json:"name" validate:"required,min=2,max=255"`
}

// CreateContentRequest represents the request body for creating a content
type CreateContentRequest struct {
	ResourceID uint   `json:"resource_id" validate:"required,min=1"`
	Name       string `json:"name" validate:"required,min=2,max=255"`
}

// ListResources handles GET /api/v1/resources
func (h *CatalogHandler) ListResources(c *fiber.Ctx) error {
	cycleID := c.Query("cycle_id", "")

	resources, err := services.FetchListWithRetry(c.Context(), "resources", func() ([]model.Resource, error) {
		query := h.db.Preload("Cycle")
		if cycleID != "" {
			query = query.Where("cycle_id = ?", cycleID)
		}
		var resources []model.Resource
		err := query.Order("id").Find(&resources).Error
		return resources, err
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch resources")
	}
	return response.Success(c, resources)
}

// CreateResource handles POST /api/v1/resources
func (h *CatalogHandler) CreateResource(c *fiber.Ctx) error {
	var req CreateResourceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var cycle model.Cycle
	if err := h.db.First(&cycle, req.CycleID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Cycle not found")
		}
		return response.InternalServerError(c, "Failed to verify cycle")
	}

	resource := model.Resource{
		CycleID: req.CycleID,
		Name:    validation.SanitizeString(req.Name),
	}
	if err := h.db.Create(&resource).Error; err != nil {
		return response.InternalServerError(c, "Failed to create resource")
	}

	h.db.Preload("Cycle").First(&resource, resource.ID)
	return response.Created(c, resource)
}

// DeleteResource handles DELETE /api/v1/resources/:id
func (h *CatalogHandler) DeleteResource(c *fiber.Ctx) error {
	id := c.Params("id")

	var resource model.Resource
	if err := h.db.First(&resource, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Resource not found")
		}
		return response.InternalServerError(c, "Failed to fetch resource")
	}

	var indicatorCount int64
	if err := h.db.Model(&model.Indicator{}).Where("resource_id = ?", id).Count(&indicatorCount).Error; err != nil {
		return response.InternalServerError(c, "Failed to check resource dependencies")
	}
	if indicatorCount > 0 {
		return response.BadRequest(c, "Cannot delete resource with existing indicators")
	}

	if err := h.db.Delete(&resource).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete resource")
	}
	return response.SuccessWithMessage(c, "Resource deleted successfully", nil)
}

// ListContents handles GET /api/v1/contents
func (h *CatalogHandler) ListContents(c *fiber.Ctx) error {
	resourceID := c.Query("resource_id", "")

	contents, err := services.FetchListWithRetry(c.Context(), "contents", func() ([]model.Content, error) {
		query := h.db.Preload("Resource")
		if resourceID != "" {
			query = query.Where("resource_id = ?", resourceID)
		}
		var contents []model.Content
		err := query.Order("id").Find(&contents).Error
		return contents, err
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch contents")
	}
	return response.Success(c, contents)
}

// CreateContent handles POST /api/v1/contents
func (h *CatalogHandler) CreateContent(c *fiber.Ctx) error {
	var req CreateContentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var resource model.Resource
	if err := h.db.First(&resource, req.ResourceID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Resource not found")
		}
		return response.InternalServerError(c, "Failed to verify resource")
	}

	content := model.Content{
		ResourceID: req.ResourceID,
		Name:       validation.SanitizeString(req.Name),
	}
	if err := h.db.Create(&content).Error; err != nil {
		return response.InternalServerError(c, "Failed to create content")
	}
	return response.Created(c, content)
}

// DeleteContent handles DELETE /api/v1/contents/:id
func (h *CatalogHandler) DeleteContent(c *fiber.Ctx) error {
	id := c.Params("id")

	var content model.Content
	if err := h.db.First(&content, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Content not found")
		}
		return response.InternalServerError(c, "Failed to fetch content")
	}

	if err := h.db.Delete(&content).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete content")
	}
	return response.SuccessWithMessage(c, "Content deleted successfully", nil)
}
