package services

import (
	"context"
	"errors"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dianaantanyan/combinations-api/internal/combination"
	"github.com/dianaantanyan/combinations-api/internal/domain"
	"github.com/dianaantanyan/combinations-api/internal/repo"
)

// TxRunner runs fn in a transaction that commits on nil and rolls back
// otherwise. *repo.Pool is the production implementation.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PersistInput is everything one request stores.
type PersistInput struct {
	Items          []combination.Item
	Request        domain.RequestPayload
	Combinations   [][]string
	ProcessingTime time.Duration
	CallerAddress  string
}

// Pipeline stores a processed request as one unit: the item catalog is
// replaced, the response row is inserted, and one hashed row per
// combination is linked to it. Either all of it commits or none of it does.
type Pipeline struct {
	Pool      TxRunner
	BatchSize int // combination rows per INSERT; <= 0 means one INSERT
}

// Persist runs the pipeline and returns the new response id.
//
// Errors are *Error values: KindResourceExhausted when the pool had no slot,
// KindPersistence for any failure inside the transaction.
func (p *Pipeline) Persist(ctx context.Context, in PersistInput) (uint, error) {
	tr := otel.Tracer("services/Pipeline")
	ctx, span := tr.Start(ctx, "Persist",
		trace.WithAttributes(
			attribute.Int("items", len(in.Items)),
			attribute.Int("combinations", len(in.Combinations)),
		),
	)
	defer span.End()

	items := make([]domain.Item, len(in.Items))
	for i, it := range in.Items {
		items[i] = domain.Item{Label: it.Label, GroupLetter: string(it.Group)}
	}
	rows := make([]domain.Combination, len(in.Combinations))
	for i, c := range in.Combinations {
		rows[i] = domain.Combination{
			CombinationJSON: datatypes.JSONSlice[string](c),
			CombinationHash: combination.Hash(c),
		}
	}
	if in.Combinations == nil {
		in.Combinations = [][]string{}
	}
	resp := &domain.Response{
		RequestJSON:      datatypes.NewJSONType(in.Request),
		ResponseJSON:     datatypes.NewJSONType(domain.ResultPayload{Combination: in.Combinations}),
		ProcessingTimeMs: millis(in.ProcessingTime),
		CallerAddress:    in.CallerAddress,
	}

	err := p.Pool.WithTx(ctx, func(tx *gorm.DB) error {
		if err := repo.ReplaceItems(ctx, tx, items, p.BatchSize); err != nil {
			return err
		}
		if err := repo.CreateResponse(ctx, tx, resp); err != nil {
			return err
		}
		for i := range rows {
			rows[i].ResponseID = resp.ID
		}
		return repo.CreateCombinations(ctx, tx, rows, p.BatchSize)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		if errors.Is(err, repo.ErrPoolExhausted) {
			return 0, resourceExhausted(err)
		}
		return 0, persistenceError("could not store request", err)
	}

	span.SetAttributes(attribute.Int64("response.id", int64(resp.ID)))
	return resp.ID, nil
}

// millis converts d to milliseconds rounded to two decimals.
func millis(d time.Duration) float64 {
	return math.Round(float64(d)/1e4) / 100
}
