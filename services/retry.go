package services

import (
	"context"
	"log"
	"time"
)

// listRetryDelay is the fixed wait before the single retry of an
// initial list load.
const listRetryDelay = 5 * time.Second

// FetchListWithRetry runs fetch and, on failure, retries exactly once
// after a fixed delay. Only initial list loads get this treatment;
// create/update/delete calls fail straight back to the caller.
func FetchListWithRetry[T any](ctx context.Context, name string, fetch func() ([]T, error)) ([]T, error) {
	items, err := fetch()
	if err == nil {
		return items, nil
	}

	log.Printf("Warning: initial %s load failed, retrying in %s: %v", name, listRetryDelay, err)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(listRetryDelay):
	}

	return fetch()
}
