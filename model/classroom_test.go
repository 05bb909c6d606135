package model

import "testing"

func TestTransition(t *testing.T) {
	valid := map[ClassroomStatus]map[LifecycleEvent]ClassroomStatus{
		StatusPending:    {EventEvaluationStarted: StatusProcessing},
		StatusProcessing: {EventAnalysisCompleted: StatusEvaluated},
		StatusEvaluated:  {EventCertificationIssued: StatusCertified},
	}

	statuses := []ClassroomStatus{StatusPending, StatusProcessing, StatusEvaluated, StatusCertified}
	events := []LifecycleEvent{EventEvaluationStarted, EventAnalysisCompleted, EventCertificationIssued}

	for _, status := range statuses {
		for _, event := range events {
			next, err := Transition(status, event)

			want, ok := valid[status][event]
			if ok {
				if err != nil {
					t.Errorf("Transition(%s, %s) returned error: %v", status, event, err)
				}
				if next != want {
					t.Errorf("Transition(%s, %s) = %s, want %s", status, event, next, want)
				}
				continue
			}

			if err == nil {
				t.Errorf("Transition(%s, %s) should be invalid, got %s", status, event, next)
			}
			if next != status {
				t.Errorf("Transition(%s, %s) changed status to %s on error", status, event, next)
			}
		}
	}
}

func TestTransitionNoSkipping(t *testing.T) {
	// Pending cannot jump straight to Evaluated or Certified.
	if _, err := Transition(StatusPending, EventAnalysisCompleted); err == nil {
		t.Error("Pending classroom accepted analysis_completed")
	}
	if _, err := Transition(StatusPending, EventCertificationIssued); err == nil {
		t.Error("Pending classroom accepted certification_issued")
	}
}

func TestTransitionTerminal(t *testing.T) {
	for _, event := range []LifecycleEvent{EventEvaluationStarted, EventAnalysisCompleted, EventCertificationIssued} {
		if _, err := Transition(StatusCertified, event); err == nil {
			t.Errorf("Certified classroom accepted %s", event)
		}
	}
}

func TestCertificationGates(t *testing.T) {
	tests := []struct {
		grade     float64
		canStart  bool
		showCerts bool
	}{
		{50, false, false},
		{50.99, false, false},
		{51, true, false},
		{54, true, false},
		{54.99, true, false},
		{55, true, true},
		{100, true, true},
		{0, false, false},
	}

	for _, tt := range tests {
		if got := CanStartCertification(tt.grade); got != tt.canStart {
			t.Errorf("CanStartCertification(%.2f) = %v, want %v", tt.grade, got, tt.canStart)
		}
		if got := CanShowCertificates(tt.grade); got != tt.showCerts {
			t.Errorf("CanShowCertificates(%.2f) = %v, want %v", tt.grade, got, tt.showCerts)
		}
	}
}

func TestCountCompliant(t *testing.T) {
	indicators := []EvaluatedIndicator{
		{ID: 1, Result: 1},
		{ID: 2, Result: 1},
		{ID: 3, Result: 0},
		{ID: 4, Result: 1},
		{ID: 5, Result: 1},
		{ID: 6, Result: 1},
		{ID: 7, Result: 1},
		{ID: 8, Result: 0},
		{ID: 9, Result: 0},
		{ID: 10, Result: 0},
	}

	if got := CountCompliant(indicators); got != 6 {
		t.Errorf("CountCompliant = %d, want 6", got)
	}

	// Flipping the one non-compliant indicator moves the count to 7.
	indicators[2].Result = 1
	if got := CountCompliant(indicators); got != 7 {
		t.Errorf("CountCompliant after flip = %d, want 7", got)
	}
}

func TestCountCompliantEmpty(t *testing.T) {
	if got := CountCompliant(nil); got != 0 {
		t.Errorf("CountCompliant(nil) = %d, want 0", got)
	}
}
