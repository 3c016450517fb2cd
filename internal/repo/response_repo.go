package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/dianaantanyan/combinations-api/internal/domain"
)

// CreateResponse inserts r and fills in its store-assigned ID.
func CreateResponse(ctx context.Context, db *gorm.DB, r *domain.Response) error {
	return db.WithContext(ctx).Omit("Response").Create(r).Error
}

// GetResponse fetches a response by ID, or ErrNotFound.
func GetResponse(ctx context.Context, db *gorm.DB, id uint) (*domain.Response, error) {
	var r domain.Response
	err := db.WithContext(ctx).First(&r, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateCombinations inserts rows in batches of at most batch.
func CreateCombinations(ctx context.Context, db *gorm.DB, rows []domain.Combination, batch int) error {
	return insertBatches(db.WithContext(ctx).Omit("Response").Session(&gorm.Session{}), rows, batch)
}

// CountCombinations uses a raw COUNT so a missing table surfaces as an error.
func CountCombinations(ctx context.Context, db *gorm.DB, responseID uint) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM combinations WHERE response_id = ?", responseID).
		Scan(&total).Error
	return total, err
}

// ListCombinationsPage returns a page of a response's combination rows in
// insertion order.
func ListCombinationsPage(ctx context.Context, db *gorm.DB, responseID uint, offset, limit int) ([]domain.Combination, error) {
	var out []domain.Combination
	q := db.WithContext(ctx).
		Where("response_id = ?", responseID).
		Order("id ASC").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}
