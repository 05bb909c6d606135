package certification

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aulacert/aula-cert-api/model"
	"github.com/aulacert/aula-cert-api/services"
	"github.com/aulacert/aula-cert-api/utils/response"
)

// CertificationHandler handles certification requests
type CertificationHandler struct {
	db      *gorm.DB
	service *services.CertificationService
}

// NewCertificationHandler creates a new certification handler
func NewCertificationHandler(db *gorm.DB, service *services.CertificationService) *CertificationHandler {
	return &CertificationHandler{
		db:      db,
		service: service,
	}
}

// IssueCertification handles POST /api/v1/classrooms/:classroom_id/certifications
func (h *CertificationHandler) IssueCertification(c *fiber.Ctx) error {
	classroomID, err := strconv.ParseUint(c.Params("classroom_id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid classroom id")
	}

	certification, err := h.service.Certify(c.Context(), uint(classroomID))
	if err != nil {
		return response.FromServiceError(c, err)
	}
	return response.Created(c, certification)
}

// ListCertifications handles GET /api/v1/classrooms/:classroom_id/certifications
func (h *CertificationHandler) ListCertifications(c *fiber.Ctx) error {
	classroomID := c.Params("classroom_id")

	certifications, err := services.FetchListWithRetry(c.Context(), "certifications", func() ([]model.Certification, error) {
		var certifications []model.Certification
		err := h.db.Where("classroom_id = ?", classroomID).
			Order("issued_at DESC").
			Find(&certifications).Error
		return certifications, err
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch certifications")
	}
	return response.Success(c, certifications)
}

// GetCertification handles GET /api/v1/certifications/:id
func (h *CertificationHandler) GetCertification(c *fiber.Ctx) error {
	id := c.Params("id")

	var certification model.Certification
	if err := h.db.First(&certification, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Certification not found")
		}
		return response.InternalServerError(c, "Failed to fetch certification")
	}
	return response.Success(c, certification)
}
