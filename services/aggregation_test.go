package services

import (
	"context"
	"errors"
	"testing"

	"github.com/aulacert/aula-cert-api/model"
)

func TestNormalizeCycleLabel(t *testing.T) {
	tests := []struct {
		raw    string
		bucket string
		ok     bool
	}{
		{"CICLO I", CicloI, true},
		{"CICLO 1", CicloI, true},
		{"ciclo i", CicloI, true},
		{"  CICLO II ", CicloII, true},
		{"Ciclo 2", CicloII, true},
		{"CICLO III", CicloIII, true},
		{"ciclo 3", CicloIII, true},
		{"CICLO IV", "", false},
		{"CICLO 4", "", false},
		{"", "", false},
		{"garbage", "", false},
	}

	for _, tt := range tests {
		bucket, ok := NormalizeCycleLabel(tt.raw)
		if ok != tt.ok || bucket != tt.bucket {
			t.Errorf("NormalizeCycleLabel(%q) = (%q, %v), want (%q, %v)", tt.raw, bucket, ok, tt.bucket, tt.ok)
		}
	}
}

func TestClassifyGrade(t *testing.T) {
	tests := []struct {
		grade float64
		want  string
	}{
		{-1, ConditionOutOfRange},
		{101, ConditionOutOfRange},
		{0, ConditionUnacceptable},
		{50.99, ConditionUnacceptable},
		{51, ConditionMinimum},
		{60, ConditionMinimum},
		{60.01, ConditionRegular},
		{70, ConditionRegular},
		{70.5, ConditionGood},
		{80, ConditionGood},
		{81, ConditionOptimal},
		{90, ConditionOptimal},
		{90.01, ConditionExceptional},
		{100, ConditionExceptional},
	}

	for _, tt := range tests {
		if got := ClassifyGrade(tt.grade); got != tt.want {
			t.Errorf("ClassifyGrade(%.2f) = %q, want %q", tt.grade, got, tt.want)
		}
	}
}

func TestFoldWeightedRows(t *testing.T) {
	rows := []model.WeightedAverageRow{
		{AreaID: 1, AreaName: "Diseño técnico", CycleLabel: "CICLO I", WeightedAverage: 20},
		{AreaID: 1, AreaName: "Diseño técnico", CycleLabel: "ciclo 2", WeightedAverage: 15.5},
		{AreaID: 2, AreaName: "Calidad académica", CycleLabel: "CICLO III", WeightedAverage: 30},
	}

	areas := FoldWeightedRows(rows)
	if len(areas) != 2 {
		t.Fatalf("expected 2 areas, got %d", len(areas))
	}

	first := areas[0]
	if first.AreaID != 1 {
		t.Fatalf("expected area 1 first (encounter order), got %d", first.AreaID)
	}
	if len(first.Cycles) != 3 {
		t.Errorf("expected 3 cycle buckets, got %d", len(first.Cycles))
	}
	if first.Cycles[CicloI] != 20 || first.Cycles[CicloII] != 15.5 || first.Cycles[CicloIII] != 0 {
		t.Errorf("unexpected cycle buckets for area 1: %+v", first.Cycles)
	}
	if first.TotalWeightedAverage != 35.5 {
		t.Errorf("area 1 total = %.2f, want 35.50", first.TotalWeightedAverage)
	}

	second := areas[1]
	if second.Cycles[CicloI] != 0 || second.Cycles[CicloII] != 0 || second.Cycles[CicloIII] != 30 {
		t.Errorf("unexpected cycle buckets for area 2: %+v", second.Cycles)
	}
	if second.TotalWeightedAverage != 30 {
		t.Errorf("area 2 total = %.2f, want 30.00", second.TotalWeightedAverage)
	}
}

func TestFoldWeightedRowsUnknownLabelExcluded(t *testing.T) {
	rows := []model.WeightedAverageRow{
		{AreaID: 1, AreaName: "Diseño técnico", CycleLabel: "CICLO I", WeightedAverage: 20},
		{AreaID: 1, AreaName: "Diseño técnico", CycleLabel: "CICLO IV", WeightedAverage: 99},
	}

	areas := FoldWeightedRows(rows)
	if len(areas) != 1 {
		t.Fatalf("expected 1 area, got %d", len(areas))
	}
	if areas[0].TotalWeightedAverage != 20 {
		t.Errorf("unknown label leaked into total: %.2f", areas[0].TotalWeightedAverage)
	}
}

func TestFoldWeightedRowsDuplicateBucket(t *testing.T) {
	// Two rows landing in the same bucket only happens on upstream data
	// issues; the later row wins the bucket but both accumulate into the
	// total.
	rows := []model.WeightedAverageRow{
		{AreaID: 1, AreaName: "Diseño técnico", CycleLabel: "CICLO I", WeightedAverage: 10},
		{AreaID: 1, AreaName: "Diseño técnico", CycleLabel: "CICLO 1", WeightedAverage: 12},
	}

	areas := FoldWeightedRows(rows)
	if len(areas) != 1 {
		t.Fatalf("expected 1 area, got %d", len(areas))
	}
	if areas[0].Cycles[CicloI] != 12 {
		t.Errorf("bucket = %.2f, want last write 12.00", areas[0].Cycles[CicloI])
	}
	if areas[0].TotalWeightedAverage != 22 {
		t.Errorf("total = %.2f, want 22.00", areas[0].TotalWeightedAverage)
	}
}

func TestFoldWeightedRowsEmpty(t *testing.T) {
	areas := FoldWeightedRows(nil)
	if len(areas) != 0 {
		t.Errorf("expected no areas, got %d", len(areas))
	}
}

type stubReporter struct {
	rows []model.WeightedAverageRow
	err  error
}

func (s *stubReporter) WeightedAverages(classroomID uint) ([]model.WeightedAverageRow, error) {
	return s.rows, s.err
}

func TestReportGradeIsBestAreaTotal(t *testing.T) {
	reporter := &stubReporter{rows: []model.WeightedAverageRow{
		{AreaID: 1, AreaName: "Diseño técnico", CycleLabel: "CICLO I", WeightedAverage: 30},
		{AreaID: 1, AreaName: "Diseño técnico", CycleLabel: "CICLO II", WeightedAverage: 26},
		{AreaID: 2, AreaName: "Calidad académica", CycleLabel: "CICLO I", WeightedAverage: 40},
	}}

	svc := NewAggregationService(reporter, nil)
	report, err := svc.Report(context.Background(), 7)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	if report.ClassroomID != 7 {
		t.Errorf("ClassroomID = %d, want 7", report.ClassroomID)
	}
	if report.Grade != 56 {
		t.Errorf("Grade = %.2f, want 56.00 (area 1 total)", report.Grade)
	}
	if report.Condition != ConditionMinimum {
		t.Errorf("Condition = %q, want %q", report.Condition, ConditionMinimum)
	}
}

func TestReportEmptyClassroom(t *testing.T) {
	svc := NewAggregationService(&stubReporter{}, nil)
	report, err := svc.Report(context.Background(), 1)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if report.Grade != 0 {
		t.Errorf("Grade = %.2f, want 0", report.Grade)
	}
	if report.Condition != ConditionUnacceptable {
		t.Errorf("Condition = %q, want %q", report.Condition, ConditionUnacceptable)
	}
}

func TestReportFetchError(t *testing.T) {
	svc := NewAggregationService(&stubReporter{err: errors.New("connection refused")}, nil)
	if _, err := svc.Report(context.Background(), 1); err == nil {
		t.Fatal("expected error from failing reporter")
	}
}
