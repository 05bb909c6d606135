package catalog

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aulacert/aula-cert-api/model"
	"github.com/aulacert/aula-cert-api/services"
	"github.com/aulacert/aula-cert-api/utils/response"
	"github.com/aulacert/aula-cert-api/utils/validation"
)

// CatalogHandler handles catalog-related requests (cycles, areas,
// resources, contents, indicators, and the browsing tree).
type CatalogHandler struct {
	db        *gorm.DB
	service   *services.CatalogService
	validator *validation.Validator
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(db *gorm.DB, service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		db:        db,
		service:   service,
		validator: validation.NewValidator(),
	}
}

// GetTree handles GET /api/v1/catalog/tree
func (h *CatalogHandler) GetTree(c *fiber.Ctx) error {
	tree, err := services.FetchListWithRetry(c.Context(), "catalog tree", h.service.LoadTree)
	if err != nil {
		return response.FromServiceError(c, err)
	}
	return response.Success(c, tree)
}

// CreateNamedRequest is the request body shared by cycle and area creation.
type CreateNamedRequest struct {
	Name string `json:"name" validate:"required,min=2,max=255"`
}

// ListCycles handles GET /api/v1/cycles
func (h *CatalogHandler) ListCycles(c *fiber.Ctx) error {
	cycles, err := services.FetchListWithRetry(c.Context(), "cycles", func() ([]model.Cycle, error) {
		var cycles []model.Cycle
		err := h.db.Order("id").Find(&cycles).Error
		return cycles, err
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch cycles")
	}
	return response.Success(c, cycles)
}

// CreateCycle handles POST /api/v1/cycles
func (h *CatalogHandler) CreateCycle(c *fiber.Ctx) error {
	var req CreateNamedRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	cycle := model.Cycle{Name: validation.SanitizeString(req.Name)}
	if err := h.db.Create(&cycle).Error; err != nil {
		return response.InternalServerError(c, "Failed to create cycle")
	}
	return response.Created(c, cycle)
}

// DeleteCycle handles DELETE /api/v1/cycles/:id
func (h *CatalogHandler) DeleteCycle(c *fiber.Ctx) error {
	id := c.Params("id")

	var cycle model.Cycle
	if err := h.db.First(&cycle, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Cycle not found")
		}
		return response.InternalServerError(c, "Failed to fetch cycle")
	}

	var resourceCount int64
	if err := h.db.Model(&model.Resource{}).Where("cycle_id = ?", id).Count(&resourceCount).Error; err != nil {
		return response.InternalServerError(c, "Failed to check cycle dependencies")
	}
	if resourceCount > 0 {
		return response.BadRequest(c, "Cannot delete cycle with existing resources")
	}

	if err := h.db.Delete(&cycle).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete cycle")
	}
	return response.SuccessWithMessage(c, "Cycle deleted successfully", nil)
}

// ListAreas handles GET /api/v1/areas
func (h *CatalogHandler) ListAreas(c *fiber.Ctx) error {
	areas, err := services.FetchListWithRetry(c.Context(), "areas", func() ([]model.Area, error) {
		var areas []model.Area
		err := h.db.Order("id").Find(&areas).Error
		return areas, err
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch areas")
	}
	return response.Success(c, areas)
}

// CreateArea handles POST /api/v1/areas
func (h *CatalogHandler) CreateArea(c *fiber.Ctx) error {
	var req CreateNamedRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	area := model.Area{Name: validation.SanitizeString(req.Name)}
	if err := h.db.Create(&area).Error; err != nil {
		return response.InternalServerError(c, "Failed to create area")
	}
	return response.Created(c, area)
}

// DeleteArea handles DELETE /api/v1/areas/:id
func (h *CatalogHandler) DeleteArea(c *fiber.Ctx) error {
	id := c.Params("id")

	var area model.Area
	if err := h.db.First(&area, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Area not found")
		}
		return response.InternalServerError(c, "Failed to fetch area")
	}

	var indicatorCount int64
	if err := h.db.Model(&model.Indicator{}).Where("area_id = ?", id).Count(&indicatorCount).Error; err != nil {
		return response.InternalServerError(c, "Failed to check area dependencies")
	}
	if indicatorCount > 0 {
		return response.BadRequest(c, "Cannot delete area with existing indicators")
	}

	if err := h.db.Delete(&area).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete area")
	}
	return response.SuccessWithMessage(c, "Area deleted successfully", nil)
}
