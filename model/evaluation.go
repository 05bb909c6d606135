package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Evaluation is one scoring pass for a (classroom, cycle, area) triple.
// At most one live record exists per triple; the partial unique index
// leaves soft-deleted rows out so a scope can be re-evaluated after a
// delete. Result is derived: it must equal the number of owned
// EvaluatedIndicator rows marked compliant, and is only rewritten by
// indicator edits or the initiating analysis call.
type Evaluation struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	ClassroomID uint           `gorm:"not null;uniqueIndex:idx_evaluation_scope,where:deleted_at IS NULL" json:"classroom_id"`
	CycleID     uint           `gorm:"not null;index;uniqueIndex:idx_evaluation_scope" json:"cycle_id"`
	AreaID      uint           `gorm:"not null;index;uniqueIndex:idx_evaluation_scope" json:"area_id"`
	ReviewDate  time.Time      `json:"review_date"`
	Result      int            `gorm:"not null;default:0" json:"result"`
	// RawAnalysis keeps the untouched payload returned by the external
	// compliance analysis for audit. The engine never recomputes it.
	RawAnalysis datatypes.JSON `json:"raw_analysis,omitempty"`

	// Relationships
	Classroom  Classroom            `gorm:"foreignKey:ClassroomID" json:"classroom,omitempty"`
	Cycle      Cycle                `gorm:"foreignKey:CycleID" json:"cycle,omitempty"`
	Area       Area                 `gorm:"foreignKey:AreaID" json:"area,omitempty"`
	Indicators []EvaluatedIndicator `gorm:"foreignKey:EvaluationID;constraint:OnDelete:CASCADE" json:"indicators,omitempty"`
}

// EvaluatedIndicator is the recorded outcome of one indicator within
// one evaluation. Result is 0 (non-compliant) or 1 (compliant). Rows
// are created in bulk when an analysis completes and individually
// editable afterwards.
type EvaluatedIndicator struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	EvaluationID uint           `gorm:"not null;index" json:"evaluation_id"`
	IndicatorID  uint           `gorm:"not null;index" json:"indicator_id"`
	Result       int            `gorm:"not null;default:0" json:"result"` // 0 or 1
	Observation  string         `gorm:"type:text" json:"observation"`

	// Relationships
	Evaluation Evaluation `gorm:"foreignKey:EvaluationID" json:"-"`
	Indicator  Indicator  `gorm:"foreignKey:IndicatorID" json:"indicator,omitempty"`
}

// CountCompliant returns the number of indicators marked compliant.
// Evaluation.Result must equal this count after every successful edit.
func CountCompliant(indicators []EvaluatedIndicator) int {
	n := 0
	for _, ind := range indicators {
		if ind.Result == 1 {
			n++
		}
	}
	return n
}
