package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aulacert/aula-cert-api/model"
	"github.com/aulacert/aula-cert-api/utils/apperr"
	"github.com/aulacert/aula-cert-api/utils/cache"
)

// Canonical cycle buckets. Every weighted row must land in exactly one
// of these or be excluded from aggregation.
const (
	CicloI   = "CICLO I"
	CicloII  = "CICLO II"
	CicloIII = "CICLO III"
)

// cycleLabelVariants maps every accepted raw label to its canonical
// bucket. Anything outside this table is upstream data noise and is
// never summed into a bucket.
var cycleLabelVariants = map[string]string{
	"CICLO I":   CicloI,
	"CICLO 1":   CicloI,
	"CICLO II":  CicloII,
	"CICLO 2":   CicloII,
	"CICLO III": CicloIII,
	"CICLO 3":   CicloIII,
}

// Qualitative conditions for the certification grade.
const (
	ConditionUnacceptable = "Unacceptable conditions"
	ConditionMinimum      = "Minimum acceptable"
	ConditionRegular      = "Regular"
	ConditionGood         = "Good"
	ConditionOptimal      = "Optimal"
	ConditionExceptional  = "Exceptional quality and excellence"
	ConditionOutOfRange   = "Out of range"
)

const reportCacheTTL = 5 * time.Minute

// WeightedReporter produces the per-(area, cycle) weighted rows for a
// classroom. Satisfied by database.ReportingStore.
type WeightedReporter interface {
	WeightedAverages(classroomID uint) ([]model.WeightedAverageRow, error)
}

// AggregationService folds weighted rows into per-area totals and the
// classroom's certification grade candidate.
type AggregationService struct {
	reporter WeightedReporter
	cache    *cache.RedisCache
}

// NewAggregationService creates a new aggregation service. The cache
// is optional.
func NewAggregationService(reporter WeightedReporter, redisCache *cache.RedisCache) *AggregationService {
	return &AggregationService{
		reporter: reporter,
		cache:    redisCache,
	}
}

// AreaAggregate is one output row of the aggregator: an area's
// weighted average per canonical cycle plus the area total.
type AreaAggregate struct {
	AreaID               uint               `json:"area_id"`
	AreaName             string             `json:"area_name"`
	Cycles               map[string]float64 `json:"cycles"`
	TotalWeightedAverage float64            `json:"total_weighted_average"`
}

// ClassroomReport is the aggregated certification view of a classroom.
type ClassroomReport struct {
	ClassroomID uint            `json:"classroom_id"`
	Areas       []AreaAggregate `json:"areas"`
	// Grade is the certification grade candidate: the highest area
	// total across the classroom.
	Grade     float64 `json:"grade"`
	Condition string  `json:"condition"`
}

// NormalizeCycleLabel maps a raw cycle label onto its canonical
// bucket. The second return is false when the label matches no known
// variant; such rows must be dropped, never summed into a bucket.
func NormalizeCycleLabel(raw string) (string, bool) {
	bucket, ok := cycleLabelVariants[strings.ToUpper(strings.TrimSpace(raw))]
	return bucket, ok
}

// FoldWeightedRows groups weighted rows by area. All three cycle
// buckets are initialized to zero per area; duplicate rows for the
// same (area, bucket) are last-write-wins, which only happens on
// upstream data issues. Rows with unknown cycle labels are excluded
// with a logged warning.
func FoldWeightedRows(rows []model.WeightedAverageRow) []AreaAggregate {
	out := []AreaAggregate{}
	areaIdx := map[uint]int{}

	for _, row := range rows {
		bucket, ok := NormalizeCycleLabel(row.CycleLabel)
		if !ok {
			log.Printf("Warning: unknown cycle label %q on area %d, row excluded from aggregation", row.CycleLabel, row.AreaID)
			continue
		}

		i, seen := areaIdx[row.AreaID]
		if !seen {
			out = append(out, AreaAggregate{
				AreaID:   row.AreaID,
				AreaName: row.AreaName,
				Cycles: map[string]float64{
					CicloI:   0,
					CicloII:  0,
					CicloIII: 0,
				},
			})
			i = len(out) - 1
			areaIdx[row.AreaID] = i
		}

		out[i].Cycles[bucket] = row.WeightedAverage
		out[i].TotalWeightedAverage += row.WeightedAverage
	}

	return out
}

// ClassifyGrade maps a certification grade onto its qualitative
// condition. Bounds are inclusive upwards: 51 is already "Minimum
// acceptable", 60 still is, and so on up to 100.
func ClassifyGrade(grade float64) string {
	switch {
	case grade < 0 || grade > 100:
		return ConditionOutOfRange
	case grade < 51:
		return ConditionUnacceptable
	case grade <= 60:
		return ConditionMinimum
	case grade <= 70:
		return ConditionRegular
	case grade <= 80:
		return ConditionGood
	case grade <= 90:
		return ConditionOptimal
	default:
		return ConditionExceptional
	}
}

// Report builds the aggregated certification view for a classroom. The
// result is cached briefly since the certificate screens poll it.
func (s *AggregationService) Report(ctx context.Context, classroomID uint) (*ClassroomReport, error) {
	cacheKey := reportCacheKey(classroomID)
	if s.cache != nil {
		var cached ClassroomReport
		if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	rows, err := s.reporter.WeightedAverages(classroomID)
	if err != nil {
		return nil, apperr.Fetch("weighted averages", err)
	}

	areas := FoldWeightedRows(rows)

	grade := 0.0
	for _, area := range areas {
		if area.TotalWeightedAverage > grade {
			grade = area.TotalWeightedAverage
		}
	}

	report := &ClassroomReport{
		ClassroomID: classroomID,
		Areas:       areas,
		Grade:       grade,
		Condition:   ClassifyGrade(grade),
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, report, reportCacheTTL); err != nil {
			log.Printf("Warning: failed to cache classroom %d report: %v", classroomID, err)
		}
	}

	return report, nil
}

// InvalidateReport drops the cached report after indicator edits.
func (s *AggregationService) InvalidateReport(ctx context.Context, classroomID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, reportCacheKey(classroomID)); err != nil {
		log.Printf("Warning: failed to invalidate classroom %d report cache: %v", classroomID, err)
	}
}

func reportCacheKey(classroomID uint) string {
	return fmt.Sprintf("report:classroom:%d", classroomID)
}
