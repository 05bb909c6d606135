package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ClassroomStatus is the lifecycle state of a classroom. It is only
// mutated through Transition as a side effect of evaluation and
// certification events, never edited directly.
type ClassroomStatus string

const (
	StatusPending    ClassroomStatus = "pending"
	StatusProcessing ClassroomStatus = "processing"
	StatusEvaluated  ClassroomStatus = "evaluated"
	StatusCertified  ClassroomStatus = "certified"
)

// LifecycleEvent drives classroom status transitions.
type LifecycleEvent string

const (
	// EventEvaluationStarted fires when the first evaluation for the
	// classroom is created.
	EventEvaluationStarted LifecycleEvent = "evaluation_started"
	// EventAnalysisCompleted fires when the external analysis reports
	// that all required area/cycle evaluations have been analyzed.
	EventAnalysisCompleted LifecycleEvent = "analysis_completed"
	// EventCertificationIssued fires when a certification record is
	// successfully created.
	EventCertificationIssued LifecycleEvent = "certification_issued"
)

// Certification eligibility thresholds. The upstream product carries
// two different values in the same flow: starting certification is
// gated at 51 while the certificates listing is gated at 55. Both are
// kept as named constants until product reconciles them.
const (
	CertificationStartThreshold = 51
	CertificatesActionThreshold = 55
)

// Classroom is the unit being certified. It maps to a course in an
// external LMS through ExternalCourseID.
type Classroom struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`
	Name             string          `gorm:"not null" json:"name"`
	Code             string          `gorm:"uniqueIndex;not null" json:"code"`
	Status           ClassroomStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ExternalCourseID string          `gorm:"type:varchar(100)" json:"external_course_id"`
	TeamID           uint            `gorm:"index" json:"team_id"`

	// Relationships
	Evaluations    []Evaluation    `gorm:"foreignKey:ClassroomID" json:"evaluations,omitempty"`
	Forms          []Form          `gorm:"foreignKey:ClassroomID" json:"forms,omitempty"`
	Certifications []Certification `gorm:"foreignKey:ClassroomID" json:"-"`
}

// Transition returns the status that results from applying event to
// current. It is a pure function so every transition can be enumerated
// in tests without a database. Skipping states is not reachable, and
// nothing reverses a status automatically (deleting evaluations leaves
// the classroom where it was).
func Transition(current ClassroomStatus, event LifecycleEvent) (ClassroomStatus, error) {
	switch {
	case current == StatusPending && event == EventEvaluationStarted:
		return StatusProcessing, nil
	case current == StatusProcessing && event == EventAnalysisCompleted:
		return StatusEvaluated, nil
	case current == StatusEvaluated && event == EventCertificationIssued:
		return StatusCertified, nil
	}
	return current, fmt.Errorf("invalid transition: %s event on %s classroom", event, current)
}

// CanStartCertification reports whether the classroom's best grade
// clears the certification-start gate.
func CanStartCertification(grade float64) bool {
	return grade >= CertificationStartThreshold
}

// CanShowCertificates reports whether the certificates action is
// surfaced for the classroom's best grade.
func CanShowCertificates(grade float64) bool {
	return grade >= CertificatesActionThreshold
}
