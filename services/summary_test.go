package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aulacert/aula-cert-api/model"
)

func TestSummaryFlightGuard(t *testing.T) {
	flight := newSummaryFlight()

	if !flight.begin(1) {
		t.Fatal("first begin should acquire the flag")
	}
	if flight.begin(1) {
		t.Fatal("second begin on the same form should fail")
	}
	if !flight.begin(2) {
		t.Fatal("a different form must not be blocked")
	}

	flight.end(1)
	if !flight.begin(1) {
		t.Fatal("begin after end should acquire again")
	}
}

func TestGetOrCreateSkipsWhenRowsExist(t *testing.T) {
	svc := &SummaryService{flight: newSummaryFlight()}

	created := 0
	fetch := func() ([]model.SummaryRow, error) {
		return []model.SummaryRow{{FormID: 1, AreaID: 1}}, nil
	}
	create := func() error {
		created++
		return nil
	}

	rows, err := svc.getOrCreate(context.Background(), 1, fetch, create)
	if err != nil {
		t.Fatalf("getOrCreate failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected existing rows back, got %d", len(rows))
	}
	if created != 0 {
		t.Errorf("create ran %d times on a form with rows", created)
	}
}

func TestGetOrCreateCreatesOnce(t *testing.T) {
	svc := &SummaryService{flight: newSummaryFlight()}

	var mu sync.Mutex
	var stored []model.SummaryRow
	created := 0

	fetch := func() ([]model.SummaryRow, error) {
		mu.Lock()
		defer mu.Unlock()
		return stored, nil
	}
	create := func() error {
		mu.Lock()
		defer mu.Unlock()
		created++
		stored = []model.SummaryRow{{FormID: 1, AreaID: 1}, {FormID: 1, AreaID: 2}}
		return nil
	}

	// First call creates and returns the fresh rows.
	rows, err := svc.getOrCreate(context.Background(), 1, fetch, create)
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows after create, got %d", len(rows))
	}

	// Second call finds the rows and never creates again.
	rows, err = svc.getOrCreate(context.Background(), 1, fetch, create)
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows on refetch, got %d", len(rows))
	}
	if created != 1 {
		t.Errorf("create ran %d times, want 1", created)
	}
}

func TestGetOrCreateConcurrentSingleFlight(t *testing.T) {
	svc := &SummaryService{flight: newSummaryFlight()}

	var created int32
	release := make(chan struct{})

	var mu sync.Mutex
	var stored []model.SummaryRow

	fetch := func() ([]model.SummaryRow, error) {
		mu.Lock()
		defer mu.Unlock()
		return stored, nil
	}
	create := func() error {
		atomic.AddInt32(&created, 1)
		<-release // hold the flag so the rival call observes it
		mu.Lock()
		defer mu.Unlock()
		stored = []model.SummaryRow{{FormID: 1, AreaID: 1}}
		return nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := svc.getOrCreate(context.Background(), 1, fetch, create); err != nil {
			t.Errorf("creating call failed: %v", err)
		}
	}()

	// Wait until the creator holds the in-flight flag.
	for atomic.LoadInt32(&created) == 0 {
	}

	// The rival call must skip creation and return the current (empty)
	// fetch result instead of blocking.
	rows, err := svc.getOrCreate(context.Background(), 1, fetch, create)
	if err != nil {
		t.Fatalf("rival call failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rival call should see the pre-create fetch result, got %d rows", len(rows))
	}

	close(release)
	wg.Wait()

	if atomic.LoadInt32(&created) != 1 {
		t.Errorf("create ran %d times, want 1", created)
	}
}

func TestGetOrCreateReleasesFlagOnError(t *testing.T) {
	svc := &SummaryService{flight: newSummaryFlight()}

	fetch := func() ([]model.SummaryRow, error) { return nil, nil }
	failing := func() error { return errors.New("aggregation unavailable") }

	if _, err := svc.getOrCreate(context.Background(), 1, fetch, failing); err == nil {
		t.Fatal("expected error from failing create")
	}

	// A failed create must not wedge the form: the next attempt runs.
	created := false
	retry := func() error {
		created = true
		return nil
	}
	if _, err := svc.getOrCreate(context.Background(), 1, fetch, retry); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if !created {
		t.Error("create did not run after a previous failure")
	}
}
