package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/dianaantanyan/combinations-api/internal/combination"
	"github.com/dianaantanyan/combinations-api/internal/domain"
	"github.com/dianaantanyan/combinations-api/internal/repo"
)

// Persister stores one processed request. *Pipeline is the production
// implementation; tests substitute their own.
type Persister interface {
	Persist(ctx context.Context, in PersistInput) (uint, error)
}

// Options configures NewCombinationService.
type Options struct {
	Strategy        combination.Strategy
	MaxCombinations uint64        // 0 disables the limit
	InsertBatchSize int           // combination rows per INSERT
	IdempotencyTTL  time.Duration // lifetime of stored Idempotency-Key records
}

// Result is what a generation request returns. Combination is never nil.
type Result struct {
	ID          uint       `json:"id"`
	Combination [][]string `json:"combination"`
}

// CombinationService derives items, generates combinations and persists the
// request. It also serves read-back of stored responses and the idempotency
// records that let clients retry POST /generate safely.
type CombinationService struct {
	// DB is used for reads outside the pipeline transaction.
	DB        *gorm.DB
	Persister Persister
	Generate  combination.GenerateFunc

	MaxCombinations uint64
	IdempotencyTTL  time.Duration

	now func() time.Time
}

// NewCombinationService wires a service over pool using the selected
// generation strategy.
func NewCombinationService(pool *repo.Pool, opts Options) (*CombinationService, error) {
	gen, err := combination.ForStrategy(opts.Strategy)
	if err != nil {
		return nil, err
	}
	ttl := opts.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CombinationService{
		DB:              pool.DB(),
		Persister:       &Pipeline{Pool: pool, BatchSize: opts.InsertBatchSize},
		Generate:        gen,
		MaxCombinations: opts.MaxCombinations,
		IdempotencyTTL:  ttl,
		now:             time.Now,
	}, nil
}

// ProcessRequest derives the item universe from counts, generates every
// combination of length distinct groups, and stores items, response and
// per-combination hashes in one transaction.
//
// Invalid counts, or a request whose result would exceed MaxCombinations,
// fail with KindInvalidInput before anything is stored. A length outside
// 1..len(counts) is not an error here: it produces an empty result.
func (s *CombinationService) ProcessRequest(ctx context.Context, counts []int, length int, caller string) (res *Result, err error) {
	tr := otel.Tracer("services/CombinationService")
	ctx, span := tr.Start(ctx, "ProcessRequest",
		trace.WithAttributes(
			attribute.Int("groups", len(counts)),
			attribute.Int("length", length),
		),
	)
	defer span.End()
	defer func() {
		observeOutcome(err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, KindOf(err).String())
		}
	}()

	if err := combination.ValidateCounts(counts); err != nil {
		return nil, invalidInput(err)
	}
	if err := s.checkLimits(counts, length); err != nil {
		return nil, err
	}
	start := time.Now()
	items, err := combination.DeriveItems(counts)
	if err != nil {
		return nil, invalidInput(err)
	}
	gen := s.Generate
	if gen == nil {
		gen = combination.Generate
	}
	combos := gen(items, length)
	elapsed := time.Since(start)

	observeGeneration(elapsed, len(combos))
	span.SetAttributes(attribute.Int("combinations", len(combos)))
	zerolog.Ctx(ctx).Debug().
		Int("groups", len(counts)).
		Int("length", length).
		Int("combinations", len(combos)).
		Float64("elapsed_ms", millis(elapsed)).
		Msg("combinations generated")

	id, err := s.Persister.Persist(ctx, PersistInput{
		Items:          items,
		Request:        domain.RequestPayload{Items: append([]int{}, counts...), Length: length},
		Combinations:   combos,
		ProcessingTime: elapsed,
		CallerAddress:  caller,
	})
	if err != nil {
		if KindOf(err) == 0 {
			err = persistenceError("could not store request", err)
		}
		return nil, err
	}
	return &Result{ID: id, Combination: combos}, nil
}

// checkLimits rejects requests whose item universe or result set would
// exceed MaxCombinations. counts must already be valid. It runs before any
// allocation proportional to the request.
func (s *CombinationService) checkLimits(counts []int, length int) error {
	if s.MaxCombinations == 0 {
		return nil
	}
	var items uint64
	for _, c := range counts {
		items += uint64(c)
		if items > s.MaxCombinations {
			return invalidInputf("request would derive more than %d items", s.MaxCombinations)
		}
	}
	if n := combination.Count(counts, length); n > s.MaxCombinations {
		return invalidInputf("request would produce %d combinations, limit is %d", n, s.MaxCombinations)
	}
	return nil
}

// GetResponse returns a stored response and the number of combination rows
// linked to it.
func (s *CombinationService) GetResponse(ctx context.Context, id uint) (*domain.Response, int64, error) {
	tr := otel.Tracer("services/CombinationService")
	ctx, span := tr.Start(ctx, "GetResponse",
		trace.WithAttributes(attribute.Int64("response.id", int64(id))),
	)
	defer span.End()

	r, err := repo.GetResponse(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, 0, ErrResponseNotFound
	}
	if err != nil {
		return nil, 0, persistenceError("could not load response", err)
	}
	n, err := repo.CountCombinations(ctx, s.DB, id)
	if err != nil {
		return nil, 0, persistenceError("could not count combinations", err)
	}
	return r, n, nil
}

// ListCombinations returns one page of a response's combination rows and the
// total row count.
func (s *CombinationService) ListCombinations(ctx context.Context, id uint, page, pageSize int) ([]domain.Combination, int64, error) {
	tr := otel.Tracer("services/CombinationService")
	ctx, span := tr.Start(ctx, "ListCombinations",
		trace.WithAttributes(
			attribute.Int64("response.id", int64(id)),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}

	if _, err := repo.GetResponse(ctx, s.DB, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, 0, ErrResponseNotFound
		}
		return nil, 0, persistenceError("could not load response", err)
	}
	total, err := repo.CountCombinations(ctx, s.DB, id)
	if err != nil {
		return nil, 0, persistenceError("could not count combinations", err)
	}
	if total == 0 {
		return []domain.Combination{}, 0, nil
	}
	rows, err := repo.ListCombinationsPage(ctx, s.DB, id, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, persistenceError("could not list combinations", err)
	}
	return rows, total, nil
}

// ListItems returns the item catalog written by the most recent request.
func (s *CombinationService) ListItems(ctx context.Context) ([]domain.Item, error) {
	items, err := repo.ListItems(ctx, s.DB)
	if err != nil {
		return nil, persistenceError("could not load items", err)
	}
	if items == nil {
		items = []domain.Item{}
	}
	return items, nil
}

// HasIdempotencyRecord reports whether caller has a live record for key.
// It matches the lookup signature the idempotency middleware expects.
func (s *CombinationService) HasIdempotencyRecord(ctx context.Context, caller, key string, now time.Time) (bool, error) {
	_, err := repo.GetIdempotency(ctx, s.DB, caller, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Replay returns the stored result for caller's key, or nil when there is
// none. A key previously used with a different request yields
// ErrIdempotencyConflict.
func (s *CombinationService) Replay(ctx context.Context, caller, key string, counts []int, length int) (*Result, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, caller, key, s.clock())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistenceError("could not load idempotency record", err)
	}
	if rec.RequestHash != fingerprint(counts, length) {
		return nil, ErrIdempotencyConflict
	}
	r, err := repo.GetResponse(ctx, s.DB, rec.ResponseID)
	if err != nil {
		// Response pruned under a live key: treat as a fresh request.
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil
		}
		return nil, persistenceError("could not load response", err)
	}
	combos := r.ResponseJSON.Data().Combination
	if combos == nil {
		combos = [][]string{}
	}
	requestsTotal.WithLabelValues(outcomeReplayed).Inc()
	return &Result{ID: r.ID, Combination: combos}, nil
}

// Remember stores caller's key against responseID. A concurrent request that
// stored the same key first wins; that is not an error.
func (s *CombinationService) Remember(ctx context.Context, caller, key string, counts []int, length int, responseID uint) error {
	_, err := repo.CreateIdempotency(ctx, s.DB, caller, key, fingerprint(counts, length), responseID, s.clock(), s.IdempotencyTTL)
	if err != nil && !errors.Is(err, repo.ErrDuplicate) {
		return err
	}
	return nil
}

// PurgeIdempotency drops expired idempotency records.
func (s *CombinationService) PurgeIdempotency(ctx context.Context) (int64, error) {
	return repo.PurgeExpiredIdempotency(ctx, s.DB, s.clock())
}

func (s *CombinationService) clock() time.Time {
	if s.now == nil {
		return time.Now().UTC()
	}
	return s.now().UTC()
}

// fingerprint identifies a request body for idempotency checks. Group order
// matters, so counts are hashed as given.
func fingerprint(counts []int, length int) string {
	if counts == nil {
		counts = []int{}
	}
	b, _ := json.Marshal(domain.RequestPayload{Items: counts, Length: length})
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
