package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/aulacert/aula-cert-api/database"
	"github.com/aulacert/aula-cert-api/model"
	"github.com/aulacert/aula-cert-api/services/analysis"
	"github.com/aulacert/aula-cert-api/utils/apperr"
)

// scriptedAnalyzer returns a canned analysis result and counts calls,
// so the evaluation flow can run against a real database without the
// external service.
type scriptedAnalyzer struct {
	resp  *analysis.AnalyzeResponse
	err   error
	calls int
}

func (a *scriptedAnalyzer) Analyze(ctx context.Context, classroomID, cycleID, areaID, evaluationID uint) (*analysis.AnalyzeResponse, error) {
	a.calls++
	return a.resp, a.err
}

// TestEvaluationFlowIntegration exercises the evaluation aggregate
// against PostgreSQL: seeding from an analysis run, the one-live-record-
// per-scope rule, the two-step indicator edit, and aggregate healing.
// This test requires the DB_* environment variables to point at a
// running PostgreSQL instance.
func TestEvaluationFlowIntegration(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	store, err := database.StartGORM()
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()
	if err := store.Init(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	db := store.GetDB().(*gorm.DB)

	stamp := time.Now().UnixNano()
	cycle := model.Cycle{Name: fmt.Sprintf("CICLO TEST %d", stamp)}
	if err := db.Create(&cycle).Error; err != nil {
		t.Fatalf("Failed to create cycle: %v", err)
	}
	area := model.Area{Name: fmt.Sprintf("Test area %d", stamp)}
	if err := db.Create(&area).Error; err != nil {
		t.Fatalf("Failed to create area: %v", err)
	}
	resource := model.Resource{CycleID: cycle.ID, Name: "Materiales"}
	if err := db.Create(&resource).Error; err != nil {
		t.Fatalf("Failed to create resource: %v", err)
	}
	indicators := []model.Indicator{
		{Name: "Indicator A", AreaID: area.ID, ResourceID: resource.ID},
		{Name: "Indicator B", AreaID: area.ID, ResourceID: resource.ID},
		{Name: "Indicator C", AreaID: area.ID, ResourceID: resource.ID},
	}
	if err := db.Create(&indicators).Error; err != nil {
		t.Fatalf("Failed to create indicators: %v", err)
	}
	classroom := model.Classroom{
		Name:   "Integration classroom",
		Code:   fmt.Sprintf("INT-%d", stamp),
		Status: model.StatusPending,
	}
	if err := db.Create(&classroom).Error; err != nil {
		t.Fatalf("Failed to create classroom: %v", err)
	}

	defer func() {
		db.Unscoped().Where("evaluation_id IN (SELECT id FROM evaluations WHERE classroom_id = ?)", classroom.ID).Delete(&model.EvaluatedIndicator{})
		db.Unscoped().Where("classroom_id = ?", classroom.ID).Delete(&model.Evaluation{})
		db.Unscoped().Delete(&classroom)
		db.Unscoped().Where("area_id = ?", area.ID).Delete(&model.Indicator{})
		db.Unscoped().Delete(&resource)
		db.Unscoped().Delete(&area)
		db.Unscoped().Delete(&cycle)
	}()

	analyzer := &scriptedAnalyzer{resp: &analysis.AnalyzeResponse{
		ResourceDetails: []analysis.ResourceDetail{
			{IndicatorID: indicators[0].ID, Result: 1, Observation: "ok"},
			{IndicatorID: indicators[1].ID, Result: 0, Observation: "missing rubric"},
			{IndicatorID: indicators[2].ID, Result: 1, Observation: "ok"},
		},
		Summary: analysis.Summary{Status: "completed", CompliantCount: 2, TotalCount: 3},
	}}
	svc := NewEvaluationService(db, analyzer)
	ctx := context.Background()

	evaluation, err := svc.StartEvaluation(ctx, classroom.ID, cycle.ID, area.ID)
	if err != nil {
		t.Fatalf("StartEvaluation failed: %v", err)
	}
	if evaluation.Result != 2 {
		t.Errorf("evaluation result = %d, want 2", evaluation.Result)
	}
	if len(evaluation.Indicators) != 3 {
		t.Errorf("created %d evaluated indicators, want 3", len(evaluation.Indicators))
	}

	var reloaded model.Classroom
	if err := db.First(&reloaded, classroom.ID).Error; err != nil {
		t.Fatalf("Failed to reload classroom: %v", err)
	}
	if reloaded.Status != model.StatusEvaluated {
		t.Errorf("classroom status = %s, want %s", reloaded.Status, model.StatusEvaluated)
	}

	// A second request for the same scope conflicts before the analysis
	// service is contacted.
	_, err = svc.StartEvaluation(ctx, classroom.ID, cycle.ID, area.ID)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("duplicate StartEvaluation error = %v, want conflict", err)
	}
	if analyzer.calls != 1 {
		t.Errorf("analyzer ran %d times, want 1 (duplicate must be rejected first)", analyzer.calls)
	}
	var liveCount int64
	if err := db.Model(&model.Evaluation{}).
		Where("classroom_id = ? AND cycle_id = ? AND area_id = ?", classroom.ID, cycle.ID, area.ID).
		Count(&liveCount).Error; err != nil {
		t.Fatalf("Failed to count evaluations: %v", err)
	}
	if liveCount != 1 {
		t.Errorf("%d live evaluations for the scope, want 1", liveCount)
	}

	// Flip the one non-compliant indicator: both writes must land — the
	// indicator row and the recomputed aggregate.
	var target model.EvaluatedIndicator
	if err := db.Where("evaluation_id = ? AND result = 0", evaluation.ID).First(&target).Error; err != nil {
		t.Fatalf("Failed to load non-compliant indicator: %v", err)
	}
	edited, err := svc.EditOutcome(ctx, evaluation.ID, target.ID, 1, "rubric added")
	if err != nil {
		t.Fatalf("EditOutcome failed: %v", err)
	}
	if edited.Result != 3 {
		t.Errorf("edited result = %d, want 3", edited.Result)
	}
	var durable model.EvaluatedIndicator
	if err := db.First(&durable, target.ID).Error; err != nil {
		t.Fatalf("Failed to reload indicator: %v", err)
	}
	if durable.Result != 1 || durable.Observation != "rubric added" {
		t.Errorf("indicator not durable: result=%d observation=%q", durable.Result, durable.Observation)
	}
	var stored model.Evaluation
	if err := db.First(&stored, evaluation.ID).Error; err != nil {
		t.Fatalf("Failed to reload evaluation: %v", err)
	}
	if stored.Result != 3 {
		t.Errorf("stored aggregate = %d, want 3", stored.Result)
	}

	// Simulate the stale-aggregate window (indicator write landed, the
	// aggregate write did not) and verify the recompute heals it.
	if err := db.Model(&model.Evaluation{}).Where("id = ?", evaluation.ID).Update("result", 0).Error; err != nil {
		t.Fatalf("Failed to stage stale aggregate: %v", err)
	}
	healed, err := svc.RecomputeResult(ctx, evaluation.ID)
	if err != nil {
		t.Fatalf("RecomputeResult failed: %v", err)
	}
	if healed != 3 {
		t.Errorf("recomputed result = %d, want 3", healed)
	}
}
