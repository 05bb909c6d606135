package model

import (
	"time"

	"gorm.io/gorm"
)

// Percentage is the weight an (area, cycle) pair contributes to the
// area's total. At most one row exists per pair.
type Percentage struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	AreaID     uint           `gorm:"not null;uniqueIndex:idx_percentage_area_cycle" json:"area_id"`
	CycleID    uint           `gorm:"not null;uniqueIndex:idx_percentage_area_cycle" json:"cycle_id"`
	Percentage int            `gorm:"not null" json:"percentage"` // 0..100

	// Relationships
	Area  Area  `gorm:"foreignKey:AreaID" json:"area,omitempty"`
	Cycle Cycle `gorm:"foreignKey:CycleID" json:"cycle,omitempty"`
}
