package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aulacert/aula-cert-api/model"
	"github.com/aulacert/aula-cert-api/services/objectstore"
	"github.com/aulacert/aula-cert-api/utils/apperr"
)

// CertificationService issues the terminal certification artifact once
// a classroom's best grade clears the eligibility gate.
type CertificationService struct {
	db      *gorm.DB
	agg     *AggregationService
	archive *objectstore.ArchiveStore
}

// NewCertificationService creates a new certification service. The
// archive store is optional; without it no audit snapshot is written.
func NewCertificationService(db *gorm.DB, agg *AggregationService, archive *objectstore.ArchiveStore) *CertificationService {
	return &CertificationService{
		db:      db,
		agg:     agg,
		archive: archive,
	}
}

// Certify gates on the classroom's best form grade, creates the
// certification record, and advances the classroom to Certified. The
// audit snapshot upload is best effort: a storage failure is logged,
// not surfaced, since the certification itself is already durable.
func (s *CertificationService) Certify(ctx context.Context, classroomID uint) (*model.Certification, error) {
	var classroom model.Classroom
	if err := s.db.WithContext(ctx).Preload("Forms").First(&classroom, classroomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("classroom %d", classroomID)
		}
		return nil, apperr.Fetch("load classroom", err)
	}

	next, err := model.Transition(classroom.Status, model.EventCertificationIssued)
	if err != nil {
		return nil, apperr.Validation("classroom %d is %s, not evaluated", classroomID, classroom.Status)
	}

	grade, err := s.bestGrade(ctx, &classroom)
	if err != nil {
		return nil, err
	}

	if !model.CanStartCertification(grade) {
		return nil, apperr.Validation(
			"classroom %d grade %.2f is below the certification threshold %d",
			classroomID, grade, model.CertificationStartThreshold,
		)
	}

	certification := model.Certification{
		ClassroomID:  classroomID,
		SerialNumber: uuid.NewString(),
		Grade:        grade,
		Condition:    ClassifyGrade(grade),
		IssuedAt:     time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&certification).Error; err != nil {
		return nil, apperr.Persistence("create certification", err)
	}

	if err := s.db.WithContext(ctx).Model(&classroom).Update("status", next).Error; err != nil {
		return nil, apperr.Persistence("update classroom status", err)
	}
	classroom.Status = next

	s.archiveSnapshot(ctx, &classroom, &certification)

	return &certification, nil
}

// bestGrade returns the highest grade across the classroom's forms,
// falling back to the live aggregation report when no form has been
// graded yet.
func (s *CertificationService) bestGrade(ctx context.Context, classroom *model.Classroom) (float64, error) {
	best := 0.0
	graded := false
	for _, form := range classroom.Forms {
		if form.Grade > best {
			best = form.Grade
		}
		if form.Grade > 0 {
			graded = true
		}
	}
	if graded {
		return best, nil
	}

	report, err := s.agg.Report(ctx, classroom.ID)
	if err != nil {
		return 0, err
	}
	return report.Grade, nil
}

func (s *CertificationService) archiveSnapshot(ctx context.Context, classroom *model.Classroom, certification *model.Certification) {
	if s.archive == nil {
		return
	}

	key := fmt.Sprintf("certifications/%d/%s.json", classroom.ID, certification.SerialNumber)
	snapshot := map[string]interface{}{
		"classroom_id":   classroom.ID,
		"classroom_code": classroom.Code,
		"serial_number":  certification.SerialNumber,
		"grade":          certification.Grade,
		"condition":      certification.Condition,
		"issued_at":      certification.IssuedAt,
	}

	url, err := s.archive.ArchiveJSON(ctx, key, snapshot)
	if err != nil {
		log.Printf("Warning: failed to archive certification %s: %v", certification.SerialNumber, err)
		return
	}

	err = s.db.WithContext(ctx).
		Model(&model.Certification{}).
		Where("id = ?", certification.ID).
		Update("archive_url", url).Error
	if err != nil {
		log.Printf("Warning: failed to record archive URL for certification %s: %v", certification.SerialNumber, err)
		return
	}
	certification.ArchiveURL = url
}
