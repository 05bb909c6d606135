package services

import (
	"context"
	"errors"
	"testing"

	"github.com/aulacert/aula-cert-api/utils/apperr"
)

func TestEditOutcomeRejectsInvalidResult(t *testing.T) {
	svc := &EvaluationService{}

	for _, result := range []int{-1, 2, 100} {
		_, err := svc.EditOutcome(context.Background(), 1, 1, result, "")
		if err == nil {
			t.Errorf("EditOutcome accepted result %d", result)
			continue
		}
		if !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("EditOutcome(%d) error = %v, want validation error", result, err)
		}
	}
}
