package evaluation

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aulacert/aula-cert-api/model"
	"github.com/aulacert/aula-cert-api/services"
	"github.com/aulacert/aula-cert-api/utils/response"
	"github.com/aulacert/aula-cert-api/utils/validation"
)

// EvaluationHandler handles evaluation-related requests
type EvaluationHandler struct {
	db        *gorm.DB
	service   *services.EvaluationService
	agg       *services.AggregationService
	validator *validation.Validator
}

// NewEvaluationHandler creates a new evaluation handler
func NewEvaluationHandler(db *gorm.DB, service *services.EvaluationService, agg *services.AggregationService) *EvaluationHandler {
	return &EvaluationHandler{
		db:        db,
		service:   service,
		agg:       agg,
		validator: validation.NewValidator(),
	}
}

// StartEvaluationRequest represents the request body for starting an evaluation
type StartEvaluationRequest struct {
	CycleID uint `json:"cycle_id" validate:"required,min=1"`
	AreaID  uint `json:"area_id" validate:"required,min=1"`
}

// EditOutcomeRequest represents the request body for editing one
// evaluated indicator.
type EditOutcomeRequest struct {
	Result      *int   `json:"result" validate:"required,oneof=0 1"`
	Observation string `json:"observation" validate:"omitempty,max=2000"`
}

// ListEvaluations handles GET /api/v1/classrooms/:classroom_id/evaluations
func (h *EvaluationHandler) ListEvaluations(c *fiber.Ctx) error {
	classroomID := c.Params("classroom_id")

	evaluations, err := services.FetchListWithRetry(c.Context(), "evaluations", func() ([]model.Evaluation, error) {
		var evaluations []model.Evaluation
		err := h.db.Preload("Cycle").
			Preload("Area").
			Where("classroom_id = ?", classroomID).
			Order("review_date DESC").
			Find(&evaluations).Error
		return evaluations, err
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch evaluations")
	}
	return response.Success(c, evaluations)
}

// StartEvaluation handles POST /api/v1/classrooms/:classroom_id/evaluations
func (h *EvaluationHandler) StartEvaluation(c *fiber.Ctx) error {
	classroomID, err := strconv.ParseUint(c.Params("classroom_id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid classroom id")
	}

	var req StartEvaluationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	evaluation, err := h.service.StartEvaluation(c.Context(), uint(classroomID), req.CycleID, req.AreaID)
	if err != nil {
		return response.FromServiceError(c, err)
	}

	h.agg.InvalidateReport(c.Context(), uint(classroomID))
	return response.Created(c, evaluation)
}

// GetEvaluation handles GET /api/v1/evaluations/:id
func (h *EvaluationHandler) GetEvaluation(c *fiber.Ctx) error {
	id := c.Params("id")

	var evaluation model.Evaluation
	err := h.db.Preload("Cycle").
		Preload("Area").
		Preload("Indicators").
		Preload("Indicators.Indicator").
		First(&evaluation, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Evaluation not found")
		}
		return response.InternalServerError(c, "Failed to fetch evaluation")
	}

	return response.Success(c, evaluation)
}

// EditOutcome handles PUT /api/v1/evaluations/:id/indicators/:indicator_eval_id
func (h *EvaluationHandler) EditOutcome(c *fiber.Ctx) error {
	evaluationID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid evaluation id")
	}
	indicatorEvalID, err := strconv.ParseUint(c.Params("indicator_eval_id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid indicator id")
	}

	var req EditOutcomeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	evaluation, err := h.service.EditOutcome(
		c.Context(),
		uint(evaluationID),
		uint(indicatorEvalID),
		*req.Result,
		validation.SanitizeString(req.Observation),
	)
	if err != nil {
		return response.FromServiceError(c, err)
	}

	h.agg.InvalidateReport(c.Context(), evaluation.ClassroomID)
	return response.SuccessWithMessage(c, "Indicator outcome updated successfully", evaluation)
}

// DeleteEvaluation handles DELETE /api/v1/evaluations/:id. Deleting an
// evaluation never reverts the classroom's status.
func (h *EvaluationHandler) DeleteEvaluation(c *fiber.Ctx) error {
	id := c.Params("id")

	var evaluation model.Evaluation
	if err := h.db.First(&evaluation, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Evaluation not found")
		}
		return response.InternalServerError(c, "Failed to fetch evaluation")
	}

	if err := h.db.Select("Indicators").Delete(&evaluation).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete evaluation")
	}

	h.agg.InvalidateReport(c.Context(), evaluation.ClassroomID)
	return response.SuccessWithMessage(c, "Evaluation deleted successfully", nil)
}
