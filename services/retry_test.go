package services

import (
	"context"
	"errors"
	"testing"
)

func TestFetchListWithRetrySuccessFirstTry(t *testing.T) {
	calls := 0
	items, err := FetchListWithRetry(context.Background(), "things", func() ([]int, error) {
		calls++
		return []int{1, 2, 3}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("fetch ran %d times, want 1", calls)
	}
	if len(items) != 3 {
		t.Errorf("got %d items, want 3", len(items))
	}
}

func TestFetchListWithRetryHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := FetchListWithRetry(ctx, "things", func() ([]int, error) {
		calls++
		return nil, errors.New("unavailable")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("fetch ran %d times before cancellation, want 1", calls)
	}
}
