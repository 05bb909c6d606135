package model

import (
	"time"

	"gorm.io/gorm"
)

// Certification is the terminal artifact issued once a classroom's
// aggregate grade clears the eligibility threshold.
type Certification struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	ClassroomID  uint           `gorm:"not null;index" json:"classroom_id"`
	SerialNumber string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"serial_number"`
	Grade        float64        `gorm:"not null" json:"grade"`
	Condition    string         `gorm:"not null" json:"condition"`
	IssuedAt     time.Time      `json:"issued_at"`
	// ArchiveURL points at the audit snapshot stored in object storage.
	ArchiveURL string `gorm:"type:varchar(512)" json:"archive_url,omitempty"`

	// Relationships
	Classroom Classroom `gorm:"foreignKey:ClassroomID" json:"classroom,omitempty"`
}
