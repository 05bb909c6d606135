package model

import (
	"time"

	"gorm.io/gorm"
)

// Cycle is a pedagogical phase within a course structure (e.g., CICLO I).
type Cycle struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"uniqueIndex;not null" json:"name"`

	// Relationships
	Resources []Resource `gorm:"foreignKey:CycleID;constraint:OnDelete:CASCADE" json:"resources,omitempty"`
}

// Area is an evaluation dimension (e.g., technical design, academic quality).
type Area struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"uniqueIndex;not null" json:"name"`

	// Relationships
	Indicators  []Indicator  `gorm:"foreignKey:AreaID" json:"-"`
	Percentages []Percentage `gorm:"foreignKey:AreaID" json:"-"`
}

// Resource is a catalog node belonging to exactly one cycle.
type Resource struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	CycleID   uint           `gorm:"not null;index" json:"cycle_id"`
	Name      string         `gorm:"not null" json:"name"`

	// Relationships
	Cycle    Cycle     `gorm:"foreignKey:CycleID" json:"cycle,omitempty"`
	Contents []Content `gorm:"foreignKey:ResourceID;constraint:OnDelete:CASCADE" json:"contents,omitempty"`
}

// Content is an optional subdivision of a resource. A resource may
// have zero contents.
type Content struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	ResourceID uint           `gorm:"not null;index" json:"resource_id"`
	Name       string         `gorm:"not null" json:"name"`

	// Relationships
	Resource Resource `gorm:"foreignKey:ResourceID" json:"resource,omitempty"`
}

// Indicator is an atomic compliance check. ResourceID is always set;
// ContentID is set only when the indicator is scoped to a specific
// content unit rather than the whole resource.
type Indicator struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	Name       string         `gorm:"not null" json:"name"`
	AreaID     uint           `gorm:"not null;index" json:"area_id"`
	ResourceID uint           `gorm:"not null;index" json:"resource_id"`
	ContentID  *uint          `gorm:"index" json:"content_id,omitempty"`

	// Relationships
	Area     Area     `gorm:"foreignKey:AreaID" json:"area,omitempty"`
	Resource Resource `gorm:"foreignKey:ResourceID" json:"resource,omitempty"`
	Content  *Content `gorm:"foreignKey:ContentID" json:"content,omitempty"`
}
