package cron

import (
	"fmt"
	"time"

	"github.com/aulacert/aula-cert-api/model"
)

// ReconcileEvaluationResults rewrites every evaluation result that has
// drifted from its indicator count. Drift happens when the second
// write of an indicator edit fails after the first succeeded; the edit
// protocol accepts that window and relies on this job (or the next
// successful edit) to close it.
func (m *CronManager) ReconcileEvaluationResults() {
	jobName := "reconcile_evaluation_results"

	type staleRow struct {
		ID     uint
		Result int
		Actual int
	}

	var stale []staleRow
	err := m.db.
		Table("evaluations e").
		Select(`e.id, e.result, COUNT(ei.id) FILTER (WHERE ei.result = 1) AS actual`).
		Joins("LEFT JOIN evaluated_indicators ei ON ei.evaluation_id = e.id AND ei.deleted_at IS NULL").
		Where("e.deleted_at IS NULL").
		Group("e.id, e.result").
		Having("e.result <> COUNT(ei.id) FILTER (WHERE ei.result = 1)").
		Scan(&stale).Error
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to find stale aggregates: %w", err))
		return
	}

	if len(stale) == 0 {
		m.logJobComplete(jobName, "No stale aggregates")
		return
	}

	healed := 0
	for _, row := range stale {
		err := m.db.Model(&model.Evaluation{}).
			Where("id = ?", row.ID).
			Update("result", row.Actual).Error
		if err != nil {
			m.logJobError(jobName, fmt.Errorf("failed to heal evaluation %d: %w", row.ID, err))
			return
		}
		healed++
	}

	m.logJobComplete(jobName, fmt.Sprintf("Healed %d stale aggregates", healed))
}

// CleanupCronLogs deletes job logs older than 30 days.
func (m *CronManager) CleanupCronLogs() {
	jobName := "cleanup_cron_logs"

	cutoff := time.Now().AddDate(0, 0, -30)
	result := m.db.Unscoped().
		Where("created_at < ?", cutoff).
		Delete(&model.CronJobLog{})
	if result.Error != nil {
		m.logJobError(jobName, result.Error)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Deleted %d old logs", result.RowsAffected))
}
