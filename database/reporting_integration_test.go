package database

import (
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/aulacert/aula-cert-api/model"
)

// TestWeightedAveragesSkipSoftDeletedDimensions verifies the reporting
// query only aggregates over live catalog dimensions: soft-deleting an
// area or cycle removes its rows from the weighted-average result even
// though the evaluation rows themselves remain.
// This test requires the DB_* environment variables to point at a
// running PostgreSQL instance.
func TestWeightedAveragesSkipSoftDeletedDimensions(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	store, err := StartGORM()
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()
	if err := store.Init(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	db := store.GetDB().(*gorm.DB)

	reporting, err := StartReporting()
	if err != nil {
		t.Fatalf("Failed to start reporting store: %v", err)
	}
	defer reporting.Close()

	stamp := time.Now().UnixNano()
	cycle := model.Cycle{Name: fmt.Sprintf("CICLO REPORT %d", stamp)}
	if err := db.Create(&cycle).Error; err != nil {
		t.Fatalf("Failed to create cycle: %v", err)
	}
	keptArea := model.Area{Name: fmt.Sprintf("Kept area %d", stamp)}
	if err := db.Create(&keptArea).Error; err != nil {
		t.Fatalf("Failed to create area: %v", err)
	}
	removedArea := model.Area{Name: fmt.Sprintf("Removed area %d", stamp)}
	if err := db.Create(&removedArea).Error; err != nil {
		t.Fatalf("Failed to create area: %v", err)
	}
	percentages := []model.Percentage{
		{AreaID: keptArea.ID, CycleID: cycle.ID, Percentage: 50},
		{AreaID: removedArea.ID, CycleID: cycle.ID, Percentage: 50},
	}
	if err := db.Create(&percentages).Error; err != nil {
		t.Fatalf("Failed to create percentages: %v", err)
	}
	classroom := model.Classroom{
		Name:   "Reporting classroom",
		Code:   fmt.Sprintf("REP-%d", stamp),
		Status: model.StatusPending,
	}
	if err := db.Create(&classroom).Error; err != nil {
		t.Fatalf("Failed to create classroom: %v", err)
	}
	evaluations := []model.Evaluation{
		{ClassroomID: classroom.ID, CycleID: cycle.ID, AreaID: keptArea.ID, ReviewDate: time.Now(), Result: 4},
		{ClassroomID: classroom.ID, CycleID: cycle.ID, AreaID: removedArea.ID, ReviewDate: time.Now(), Result: 2},
	}
	if err := db.Create(&evaluations).Error; err != nil {
		t.Fatalf("Failed to create evaluations: %v", err)
	}

	defer func() {
		db.Unscoped().Where("classroom_id = ?", classroom.ID).Delete(&model.Evaluation{})
		db.Unscoped().Delete(&classroom)
		db.Unscoped().Where("cycle_id = ?", cycle.ID).Delete(&model.Percentage{})
		db.Unscoped().Delete(&keptArea)
		db.Unscoped().Delete(&removedArea)
		db.Unscoped().Delete(&cycle)
	}()

	rows, err := reporting.WeightedAverages(classroom.ID)
	if err != nil {
		t.Fatalf("WeightedAverages failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows before delete, want 2", len(rows))
	}

	if err := db.Delete(&removedArea).Error; err != nil {
		t.Fatalf("Failed to soft-delete area: %v", err)
	}

	rows, err = reporting.WeightedAverages(classroom.ID)
	if err != nil {
		t.Fatalf("WeightedAverages after delete failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows after delete, want 1", len(rows))
	}
	if rows[0].AreaID != keptArea.ID {
		t.Errorf("surviving row area = %d, want %d", rows[0].AreaID, keptArea.ID)
	}
	if rows[0].WeightedAverage != 2.0 {
		t.Errorf("weighted average = %v, want 2.0 (4 * 50%%)", rows[0].WeightedAverage)
	}
}
