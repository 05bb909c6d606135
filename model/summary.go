package model

import (
	"time"

	"gorm.io/gorm"
)

// Form groups one certification round of a classroom. Summary rows and
// the round's grade hang off it.
type Form struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	ClassroomID uint           `gorm:"not null;index" json:"classroom_id"`
	Name        string         `gorm:"not null" json:"name"`
	Grade       float64        `gorm:"not null;default:0" json:"grade"`

	// Relationships
	Classroom   Classroom    `gorm:"foreignKey:ClassroomID" json:"classroom,omitempty"`
	SummaryRows []SummaryRow `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"summary_rows,omitempty"`
}

// SummaryRow is one derived line of a form's summary: an area's
// average scaled by its configured percentage. Rows are created once
// per form and fetched idempotently afterwards.
type SummaryRow struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	FormID          uint           `gorm:"not null;index" json:"form_id"`
	AreaID          uint           `gorm:"not null;index" json:"area_id"`
	Average         float64        `gorm:"not null;default:0" json:"average"`
	Percentage      int            `gorm:"not null;default:0" json:"percentage"`
	Weight          float64        `gorm:"not null;default:0" json:"weight"`
	WeightedAverage float64        `gorm:"not null;default:0" json:"weighted_average"`

	// Relationships
	Form Form `gorm:"foreignKey:FormID" json:"-"`
	Area Area `gorm:"foreignKey:AreaID" json:"area,omitempty"`
}
