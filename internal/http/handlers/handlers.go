// Package handlers exposes the REST endpoints of the combinations API:
//   - POST /generate                         (derive, generate, persist)
//   - GET  /responses/{id}                   (stored request + result)
//   - GET  /responses/{id}/combinations      (hashed rows, paginated, ETag)
//   - GET  /items                            (catalog of the latest request)
//
// Handlers are transport-thin: they validate input, call the service, and
// translate results and service errors into HTTP responses.
package handlers

import (
	"context"

	"github.com/dianaantanyan/combinations-api/internal/domain"
	"github.com/dianaantanyan/combinations-api/internal/services"
)

// CombinationService is the service contract consumed by the handlers.
//
// Implementations must be safe for concurrent use and honor ctx.
type CombinationService interface {
	// ProcessRequest runs derive, generate and persist for one request.
	ProcessRequest(ctx context.Context, counts []int, length int, caller string) (*services.Result, error)
	// GetResponse returns a stored response and its combination row count.
	GetResponse(ctx context.Context, id uint) (*domain.Response, int64, error)
	// ListCombinations returns a page of a response's combination rows.
	ListCombinations(ctx context.Context, id uint, page, pageSize int) ([]domain.Combination, int64, error)
	// ListItems returns the current item catalog.
	ListItems(ctx context.Context) ([]domain.Item, error)
	// Replay returns the stored result for an Idempotency-Key, or nil.
	Replay(ctx context.Context, caller, key string, counts []int, length int) (*services.Result, error)
	// Remember records an Idempotency-Key against a stored response.
	Remember(ctx context.Context, caller, key string, counts []int, length int, responseID uint) error
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	svc CombinationService
}

// New constructs a Handlers bound to svc.
func New(svc CombinationService) *Handlers {
	return &Handlers{svc: svc}
}

// Pagination describes the page returned by list endpoints.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}
