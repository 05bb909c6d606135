package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"github.com/aulacert/aula-cert-api/config"
	"github.com/aulacert/aula-cert-api/model"
)

// ReportingStore is a read-only database/sql connection used for the
// weighted-average aggregation query. It is kept separate from the
// GORM store so report traffic does not compete for the write pool.
type ReportingStore struct {
	db *sql.DB
}

// StartReporting opens the reporting connection.
func StartReporting() (*ReportingStore, error) {
	getEnv, err := config.Get()
	if err != nil {
		return nil, err
	}

	connectStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv.DB_HOST, getEnv.DB_PORT, getEnv.DB_USER_NAME,
		getEnv.DB_PASSWORD, getEnv.DB_NAME, getEnv.DB_SSL_MODE,
	)

	db, err := sql.Open("postgres", connectStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open reporting connection: %w", err)
	}

	log.Println("Successfully connected reporting store to PostgreSQL.")
	return &ReportingStore{db: db}, nil
}

// Close closes the reporting connection.
func (s *ReportingStore) Close() error {
	log.Println("Closing reporting PostgreSQL connection...")
	return s.db.Close()
}

// HealthCheck verifies the reporting connection is alive.
func (s *ReportingStore) HealthCheck() error {
	return s.db.Ping()
}

// WeightedAverages returns one row per evaluated (area, cycle) pair of
// a classroom, with the evaluation result already scaled by the pair's
// configured percentage. Pairs without a percentage row are excluded.
func (s *ReportingStore) WeightedAverages(classroomID uint) ([]model.WeightedAverageRow, error) {
	query := `
		SELECT
			e.area_id,
			a.name AS area_name,
			e.cycle_id,
			c.name AS cycle_label,
			AVG(e.result) * p.percentage / 100.0 AS weighted_average
		FROM evaluations e
		JOIN areas a ON a.id = e.area_id AND a.deleted_at IS NULL
		JOIN cycles c ON c.id = e.cycle_id AND c.deleted_at IS NULL
		JOIN percentages p ON p.area_id = e.area_id AND p.cycle_id = e.cycle_id
		WHERE e.classroom_id = $1
		  AND e.deleted_at IS NULL
		  AND p.deleted_at IS NULL
		GROUP BY e.area_id, a.name, e.cycle_id, c.name, p.percentage;
	`

	rows, err := s.db.Query(query, classroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.WeightedAverageRow{}
	for rows.Next() {
		row, err := scanIntoWeightedAverage(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *row)
	}

	return result, rows.Err()
}

func scanIntoWeightedAverage(rows *sql.Rows) (*model.WeightedAverageRow, error) {
	row := new(model.WeightedAverageRow)
	err := rows.Scan(
		&row.AreaID,
		&row.AreaName,
		&row.CycleID,
		&row.CycleLabel,
		&row.WeightedAverage,
	)
	if err != nil {
		return nil, err
	}
	return row, nil
}
