package services

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/dianaantanyan/combinations-api/internal/combination"
	"github.com/dianaantanyan/combinations-api/internal/domain"
	"github.com/dianaantanyan/combinations-api/internal/repo"
)

func persistInput(t *testing.T, counts []int, length int) PersistInput {
	items := mustDerive(t, counts...)
	return PersistInput{
		Items:          items,
		Request:        domain.RequestPayload{Items: counts, Length: length},
		Combinations:   combination.Generate(items, length),
		ProcessingTime: 1234567 * time.Nanosecond,
		CallerAddress:  "192.0.2.7",
	}
}

func TestPipeline_Persist_StoresAllThree(t *testing.T) {
	db := newSvcDB(t)
	p := &Pipeline{Pool: repo.NewPool(db, 1, time.Second), BatchSize: 3}
	ctx := context.Background()

	id, err := p.Persist(ctx, persistInput(t, []int{2, 2}, 2))
	if err != nil {
		t.Fatalf("Persist: %v", err)
	}

	if got := catalogLabels(t, db); !reflect.DeepEqual(got, []string{"A1", "A2", "B1", "B2"}) {
		t.Fatalf("catalog = %v", got)
	}

	r, err := repo.GetResponse(ctx, db, id)
	if err != nil {
		t.Fatalf("GetResponse: %v", err)
	}
	if r.ProcessingTimeMs != 1.23 || r.CallerAddress != "192.0.2.7" {
		t.Fatalf("unexpected response row: %+v", r)
	}
	if req := r.RequestJSON.Data(); !reflect.DeepEqual(req.Items, []int{2, 2}) || req.Length != 2 {
		t.Fatalf("request_json = %+v", req)
	}

	rows, err := repo.ListCombinationsPage(ctx, db, id, 0, 0)
	if err != nil {
		t.Fatalf("ListCombinationsPage: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 combination rows, got %d", len(rows))
	}
	seen := map[string]bool{}
	for _, row := range rows {
		if len(row.CombinationHash) != combination.HashLen {
			t.Fatalf("bad hash length %q", row.CombinationHash)
		}
		if row.CombinationHash != combination.Hash(row.CombinationJSON) {
			t.Fatalf("hash does not match stored labels %v", row.CombinationJSON)
		}
		if seen[row.CombinationHash] {
			t.Fatalf("duplicate hash %s", row.CombinationHash)
		}
		seen[row.CombinationHash] = true
	}
}

func TestPipeline_Persist_EmptyResultStoresEmptyArray(t *testing.T) {
	db := newSvcDB(t)
	p := &Pipeline{Pool: repo.NewPool(db, 1, time.Second)}

	in := persistInput(t, []int{3}, 2)
	in.Combinations = nil
	id, err := p.Persist(context.Background(), in)
	if err != nil {
		t.Fatalf("Persist: %v", err)
	}
	var raw string
	if err := db.Raw("SELECT response_json FROM responses WHERE id = ?", id).Scan(&raw).Error; err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if raw != `{"combination":[]}` {
		t.Fatalf("response_json = %s", raw)
	}
}

// A fault after the response insert and before the last combination insert
// must leave no trace of the request, and the previous catalog intact.
func TestPipeline_Persist_RollsBackOnMidPipelineFault(t *testing.T) {
	db := newSvcDB(t)
	p := &Pipeline{Pool: repo.NewPool(db, 1, time.Second), BatchSize: 1}
	ctx := context.Background()

	if _, err := p.Persist(ctx, persistInput(t, []int{1, 1, 1}, 3)); err != nil {
		t.Fatalf("seed request: %v", err)
	}
	respBefore := countRows(t, db, &domain.Response{})
	combosBefore := countRows(t, db, &domain.Combination{})

	fault := errors.New("injected fault")
	var inserts int
	var failedResponseID uint
	err := db.Callback().Create().Before("gorm:create").Register("test:fail_combinations", func(tx *gorm.DB) {
		if tx.Statement.Table != "combinations" {
			return
		}
		inserts++
		if rows, ok := tx.Statement.Dest.(*[]domain.Combination); ok && len(*rows) > 0 {
			failedResponseID = (*rows)[0].ResponseID
		}
		if inserts == 3 {
			_ = tx.AddError(fault)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	_, err = p.Persist(ctx, persistInput(t, []int{2, 2}, 2))
	if !errors.Is(err, ErrPersistence) || !errors.Is(err, fault) {
		t.Fatalf("expected persistence error wrapping the fault, got %v", err)
	}
	if failedResponseID == 0 {
		t.Fatalf("response row should have been inserted before the fault")
	}

	if _, err := repo.GetResponse(ctx, db, failedResponseID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("rolled back response %d still visible: %v", failedResponseID, err)
	}
	if n, err := repo.CountCombinations(ctx, db, failedResponseID); err != nil || n != 0 {
		t.Fatalf("expected zero combination rows for response %d, got %d (%v)", failedResponseID, n, err)
	}
	if got := countRows(t, db, &domain.Response{}); got != respBefore {
		t.Fatalf("responses: before=%d after=%d", respBefore, got)
	}
	if got := countRows(t, db, &domain.Combination{}); got != combosBefore {
		t.Fatalf("combinations: before=%d after=%d", combosBefore, got)
	}
	if got := catalogLabels(t, db); !reflect.DeepEqual(got, []string{"A1", "B1", "C1"}) {
		t.Fatalf("catalog should still hold the previous request, got %v", got)
	}
}

type exhaustedRunner struct{}

func (exhaustedRunner) WithTx(context.Context, func(*gorm.DB) error) error {
	return repo.ErrPoolExhausted
}

func TestPipeline_Persist_PoolExhausted(t *testing.T) {
	p := &Pipeline{Pool: exhaustedRunner{}}
	_, err := p.Persist(context.Background(), persistInput(t, []int{1}, 1))
	if !errors.Is(err, ErrResourceExhausted) || !Retryable(err) {
		t.Fatalf("expected retryable ErrResourceExhausted, got %v", err)
	}
}

func TestMillis(t *testing.T) {
	cases := map[time.Duration]float64{
		0:                         0,
		1234567 * time.Nanosecond: 1.23,
		1235000 * time.Nanosecond: 1.24,
		2 * time.Second:           2000,
	}
	for d, want := range cases {
		if got := millis(d); got != want {
			t.Fatalf("millis(%v) = %v, want %v", d, got, want)
		}
	}
}
