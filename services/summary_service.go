package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/aulacert/aula-cert-api/model"
	"github.com/aulacert/aula-cert-api/utils/apperr"
	"github.com/aulacert/aula-cert-api/utils/cache"
)

const summaryLockTTL = 30 * time.Second

// summaryFlight tracks which forms have a summary creation in flight
// within this process. It is a guard against duplicate creation, not a
// queue: a caller that loses the race gets the current fetch result
// and no create call.
type summaryFlight struct {
	mu       sync.Mutex
	inFlight map[uint]bool
}

func newSummaryFlight() *summaryFlight {
	return &summaryFlight{inFlight: map[uint]bool{}}
}

// begin marks formID in flight. It returns false when another call
// already holds the flag.
func (f *summaryFlight) begin(formID uint) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inFlight[formID] {
		return false
	}
	f.inFlight[formID] = true
	return true
}

// end clears the flag. It must run on every path out of a creation
// attempt, error paths included, so a failed create never blocks
// future attempts.
func (f *summaryFlight) end(formID uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.inFlight, formID)
}

// SummaryService creates and serves the derived per-form summary rows.
// Creation happens at most once per form: an in-process flag guards
// concurrent calls in one process, and a redis lock keyed by form id
// extends the guard across processes.
type SummaryService struct {
	db     *gorm.DB
	agg    *AggregationService
	cache  *cache.RedisCache
	flight *summaryFlight
}

// NewSummaryService creates a new summary service. The cache is
// optional; without it only the in-process guard applies.
func NewSummaryService(db *gorm.DB, agg *AggregationService, redisCache *cache.RedisCache) *SummaryService {
	return &SummaryService{
		db:     db,
		agg:    agg,
		cache:  redisCache,
		flight: newSummaryFlight(),
	}
}

// GetOrCreateSummary fetches the summary rows for a form, creating
// them first if none exist yet. A second sequential call never creates
// a second row set; a concurrent call in the same process skips
// creation and returns the (possibly still empty) fetch result.
func (s *SummaryService) GetOrCreateSummary(ctx context.Context, formID uint) ([]model.SummaryRow, error) {
	var form model.Form
	if err := s.db.WithContext(ctx).First(&form, formID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("form %d", formID)
		}
		return nil, apperr.Fetch("load form", err)
	}

	fetch := func() ([]model.SummaryRow, error) {
		var rows []model.SummaryRow
		err := s.db.WithContext(ctx).
			Preload("Area").
			Where("form_id = ?", formID).
			Order("area_id").
			Find(&rows).Error
		if err != nil {
			return nil, apperr.Fetch("load summary rows", err)
		}
		return rows, nil
	}

	create := func() error {
		return s.createSummary(ctx, &form)
	}

	return s.getOrCreate(ctx, formID, fetch, create)
}

// getOrCreate runs the fetch-then-maybe-create protocol under the
// single-flight guard.
func (s *SummaryService) getOrCreate(ctx context.Context, formID uint, fetch func() ([]model.SummaryRow, error), create func() error) ([]model.SummaryRow, error) {
	rows, err := fetch()
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return rows, nil
	}

	// Zero rows: creation is due unless one is already running.
	if !s.flight.begin(formID) {
		return rows, nil
	}
	defer s.flight.end(formID)

	if s.cache != nil {
		lockKey := fmt.Sprintf("summary:lock:%d", formID)
		acquired, err := s.cache.SetNX(ctx, lockKey, 1, summaryLockTTL)
		if err != nil {
			log.Printf("Warning: summary lock for form %d unavailable: %v", formID, err)
		} else if !acquired {
			// Another process is creating; serve what we have.
			return rows, nil
		} else {
			defer func() {
				if err := s.cache.Delete(ctx, lockKey); err != nil {
					log.Printf("Warning: failed to release summary lock for form %d: %v", formID, err)
				}
			}()
		}
	}

	if err := create(); err != nil {
		return nil, err
	}

	return fetch()
}

// createSummary derives one row per evaluated area of the form's
// classroom and stamps the form with its grade.
func (s *SummaryService) createSummary(ctx context.Context, form *model.Form) error {
	report, err := s.agg.Report(ctx, form.ClassroomID)
	if err != nil {
		return err
	}

	averages, err := s.areaAverages(ctx, form.ClassroomID)
	if err != nil {
		return err
	}

	percentages, err := s.areaPercentages(ctx)
	if err != nil {
		return err
	}

	rows := make([]model.SummaryRow, 0, len(report.Areas))
	for _, area := range report.Areas {
		pct := percentages[area.AreaID]
		rows = append(rows, model.SummaryRow{
			FormID:          form.ID,
			AreaID:          area.AreaID,
			Average:         averages[area.AreaID],
			Percentage:      pct,
			Weight:          float64(pct) / 100.0,
			WeightedAverage: area.TotalWeightedAverage,
		})
	}
	if len(rows) > 0 {
		if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
			return apperr.Persistence("create summary rows", err)
		}
	}

	err = s.db.WithContext(ctx).
		Model(&model.Form{}).
		Where("id = ?", form.ID).
		Update("grade", report.Grade).Error
	if err != nil {
		return apperr.Persistence("update form grade", err)
	}
	form.Grade = report.Grade

	return nil
}

// areaAverages returns the unweighted mean evaluation result per area
// for a classroom.
func (s *SummaryService) areaAverages(ctx context.Context, classroomID uint) (map[uint]float64, error) {
	type avgRow struct {
		AreaID  uint
		Average float64
	}
	var rows []avgRow
	err := s.db.WithContext(ctx).
		Model(&model.Evaluation{}).
		Select("area_id, AVG(result) AS average").
		Where("classroom_id = ?", classroomID).
		Group("area_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Fetch("area averages", err)
	}

	out := make(map[uint]float64, len(rows))
	for _, row := range rows {
		out[row.AreaID] = row.Average
	}
	return out, nil
}

// areaPercentages returns each area's total configured weight across
// cycles.
func (s *SummaryService) areaPercentages(ctx context.Context) (map[uint]int, error) {
	type pctRow struct {
		AreaID uint
		Total  int
	}
	var rows []pctRow
	err := s.db.WithContext(ctx).
		Model(&model.Percentage{}).
		Select("area_id, SUM(percentage) AS total").
		Group("area_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Fetch("area percentages", err)
	}

	out := make(map[uint]int, len(rows))
	for _, row := range rows {
		out[row.AreaID] = row.Total
	}
	return out, nil
}
