package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/aulacert/aula-cert-api/model"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("🌱 Starting database seeding...")

	// Run seeds in order (respecting foreign key constraints)
	if err := s.SeedCycles(); err != nil {
		return fmt.Errorf("failed to seed cycles: %w", err)
	}

	if err := s.SeedAreas(); err != nil {
		return fmt.Errorf("failed to seed areas: %w", err)
	}

	if err := s.SeedPercentages(); err != nil {
		return fmt.Errorf("failed to seed percentages: %w", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	return nil
}

// SeedCycles creates the three canonical pedagogical cycles
func (s *Seeder) SeedCycles() error {
	var count int64
	if err := s.db.Model(&model.Cycle{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Cycles already exist, skipping...")
		return nil
	}

	cycles := []model.Cycle{
		{Name: "CICLO I"},
		{Name: "CICLO II"},
		{Name: "CICLO III"},
	}

	if err := s.db.Create(&cycles).Error; err != nil {
		return err
	}

	log.Printf("Created %d cycles", len(cycles))
	return nil
}

// SeedAreas creates the default evaluation dimensions
func (s *Seeder) SeedAreas() error {
	var count int64
	if err := s.db.Model(&model.Area{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Areas already exist, skipping...")
		return nil
	}

	areas := []model.Area{
		{Name: "Diseño técnico"},
		{Name: "Calidad académica"},
		{Name: "Recursos y contenidos"},
	}

	if err := s.db.Create(&areas).Error; err != nil {
		return err
	}

	log.Printf("Created %d areas", len(areas))
	return nil
}

// SeedPercentages creates an even weight spread for every (area, cycle)
// pair that has none yet.
func (s *Seeder) SeedPercentages() error {
	var count int64
	if err := s.db.Model(&model.Percentage{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Percentages already exist, skipping...")
		return nil
	}

	var cycles []model.Cycle
	if err := s.db.Find(&cycles).Error; err != nil {
		return err
	}

	var areas []model.Area
	if err := s.db.Find(&areas).Error; err != nil {
		return err
	}

	if len(cycles) == 0 || len(areas) == 0 {
		return nil
	}

	weight := 100 / len(cycles)
	percentages := []model.Percentage{}
	for _, area := range areas {
		for _, cycle := range cycles {
			percentages = append(percentages, model.Percentage{
				AreaID:     area.ID,
				CycleID:    cycle.ID,
				Percentage: weight,
			})
		}
	}

	if err := s.db.Create(&percentages).Error; err != nil {
		return err
	}

	log.Printf("Created %d percentage rows", len(percentages))
	return nil
}
