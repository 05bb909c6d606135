package services

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/aulacert/aula-cert-api/model"
	"github.com/aulacert/aula-cert-api/services/analysis"
	"github.com/aulacert/aula-cert-api/utils/apperr"
)

// Analyzer runs the external compliance analysis for one evaluation
// scope. Satisfied by *analysis.Client.
type Analyzer interface {
	Analyze(ctx context.Context, classroomID, cycleID, areaID, evaluationID uint) (*analysis.AnalyzeResponse, error)
}

// EvaluationService owns the evaluation aggregates: it seeds them from
// the external compliance analysis and keeps the derived result count
// in step with indicator edits.
type EvaluationService struct {
	db       *gorm.DB
	analyzer Analyzer
}

// NewEvaluationService creates a new evaluation service
func NewEvaluationService(db *gorm.DB, analyzer Analyzer) *EvaluationService {
	return &EvaluationService{
		db:       db,
		analyzer: analyzer,
	}
}

// StartEvaluation creates the evaluation record for a (classroom,
// cycle, area) scope, runs the external compliance analysis, and
// bulk-creates the evaluated-indicator rows from its result. At most
// one live evaluation exists per scope; a repeat request conflicts
// before any analysis call is made. The classroom moves
// Pending → Processing on its first evaluation and
// Processing → Evaluated when the analysis reports the scope complete.
func (s *EvaluationService) StartEvaluation(ctx context.Context, classroomID, cycleID, areaID uint) (*model.Evaluation, error) {
	var classroom model.Classroom
	if err := s.db.WithContext(ctx).First(&classroom, classroomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("classroom %d", classroomID)
		}
		return nil, apperr.Fetch("load classroom", err)
	}

	var existing model.Evaluation
	err := s.db.WithContext(ctx).
		Where("classroom_id = ? AND cycle_id = ? AND area_id = ?", classroomID, cycleID, areaID).
		First(&existing).Error
	if err == nil {
		return nil, apperr.Conflict("evaluation %d already covers classroom %d cycle %d area %d", existing.ID, classroomID, cycleID, areaID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Fetch("check existing evaluation", err)
	}

	evaluation := model.Evaluation{
		ClassroomID: classroomID,
		CycleID:     cycleID,
		AreaID:      areaID,
		ReviewDate:  time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&evaluation).Error; err != nil {
		return nil, apperr.Persistence("create evaluation", err)
	}

	result, err := s.analyzer.Analyze(ctx, classroomID, cycleID, areaID, evaluation.ID)
	if err != nil {
		return nil, apperr.Fetch("compliance analysis", err)
	}

	indicators := make([]model.EvaluatedIndicator, 0, len(result.ResourceDetails))
	for _, detail := range result.ResourceDetails {
		indicators = append(indicators, model.EvaluatedIndicator{
			EvaluationID: evaluation.ID,
			IndicatorID:  detail.IndicatorID,
			Result:       detail.Result,
			Observation:  detail.Observation,
		})
	}
	if len(indicators) > 0 {
		if err := s.db.WithContext(ctx).Create(&indicators).Error; err != nil {
			return nil, apperr.Persistence("create evaluated indicators", err)
		}
	}

	evaluation.Result = model.CountCompliant(indicators)
	evaluation.RawAnalysis = datatypes.JSON(result.Raw)
	if err := s.db.WithContext(ctx).Save(&evaluation).Error; err != nil {
		return nil, apperr.Persistence("save evaluation result", err)
	}
	evaluation.Indicators = indicators

	s.applyLifecycleEvents(ctx, &classroom, result.Summary.Status)

	return &evaluation, nil
}

// applyLifecycleEvents advances the classroom status for the events an
// analysis run can produce. Invalid transitions are expected (a second
// evaluation on a Processing classroom fires EvaluationStarted again)
// and are ignored.
func (s *EvaluationService) applyLifecycleEvents(ctx context.Context, classroom *model.Classroom, analysisStatus string) {
	events := []model.LifecycleEvent{model.EventEvaluationStarted}
	if analysisStatus == "completed" {
		events = append(events, model.EventAnalysisCompleted)
	}

	for _, event := range events {
		next, err := model.Transition(classroom.Status, event)
		if err != nil {
			continue
		}
		if err := s.db.WithContext(ctx).Model(classroom).Update("status", next).Error; err != nil {
			log.Printf("Warning: failed to update classroom %d status to %s: %v", classroom.ID, next, err)
			return
		}
		classroom.Status = next
	}
}

// EditOutcome updates one evaluated indicator and recomputes the owning
// evaluation's derived result. The two persistence steps are
// independent writes with no transaction: if the second fails after the
// first succeeded, the indicator is durably updated but the aggregate
// stays stale until the next successful edit (or the reconciliation
// job) recomputes it. Callers must not treat Evaluation.Result as
// authoritative right after a failed edit.
func (s *EvaluationService) EditOutcome(ctx context.Context, evaluationID, indicatorEvalID uint, newResult int, newObservation string) (*model.Evaluation, error) {
	if newResult != 0 && newResult != 1 {
		return nil, apperr.Validation("result must be 0 or 1, got %d", newResult)
	}

	// The locally held set: loaded once, updated in memory after the
	// indicator write, never re-fetched between steps.
	var evaluation model.Evaluation
	err := s.db.WithContext(ctx).Preload("Indicators").First(&evaluation, evaluationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("evaluation %d", evaluationID)
		}
		return nil, apperr.Fetch("load evaluation", err)
	}

	target := -1
	for i := range evaluation.Indicators {
		if evaluation.Indicators[i].ID == indicatorEvalID {
			target = i
			break
		}
	}
	if target == -1 {
		return nil, apperr.NotFound("evaluated indicator %d in evaluation %d", indicatorEvalID, evaluationID)
	}

	// Step 1: persist the indicator. No rollback path exists past this
	// point.
	update := s.db.WithContext(ctx).
		Model(&model.EvaluatedIndicator{}).
		Where("id = ? AND evaluation_id = ?", indicatorEvalID, evaluationID).
		Updates(map[string]interface{}{
			"result":      newResult,
			"observation": newObservation,
		})
	if update.Error != nil {
		return nil, apperr.Persistence("update evaluated indicator", update.Error)
	}

	evaluation.Indicators[target].Result = newResult
	evaluation.Indicators[target].Observation = newObservation

	// Step 2: recompute over the locally held, now-updated set and
	// persist the aggregate as a second independent write.
	evaluation.Result = model.CountCompliant(evaluation.Indicators)
	err = s.db.WithContext(ctx).
		Model(&model.Evaluation{}).
		Where("id = ?", evaluationID).
		Updates(map[string]interface{}{
			"classroom_id": evaluation.ClassroomID,
			"cycle_id":     evaluation.CycleID,
			"area_id":      evaluation.AreaID,
			"result":       evaluation.Result,
		}).Error
	if err != nil {
		return nil, apperr.Persistence("update evaluation aggregate", err)
	}

	return &evaluation, nil
}

// RecomputeResult reloads an evaluation's full indicator set and
// rewrites the derived count. Used by the reconciliation job to heal
// aggregates left stale by a failed second write.
func (s *EvaluationService) RecomputeResult(ctx context.Context, evaluationID uint) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.EvaluatedIndicator{}).
		Where("evaluation_id = ? AND result = 1", evaluationID).
		Count(&count).Error
	if err != nil {
		return 0, apperr.Fetch("count compliant indicators", err)
	}

	err = s.db.WithContext(ctx).
		Model(&model.Evaluation{}).
		Where("id = ?", evaluationID).
		Update("result", int(count)).Error
	if err != nil {
		return 0, apperr.Persistence("update evaluation result", err)
	}

	return int(count), nil
}
