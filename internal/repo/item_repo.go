package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/dianaantanyan/combinations-api/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound so services can match either.
var ErrNotFound = gorm.ErrRecordNotFound

// ReplaceItems swaps the whole item catalog for items. Run it inside the
// request transaction so the delete and insert commit or roll back together.
func ReplaceItems(ctx context.Context, db *gorm.DB, items []domain.Item, batch int) error {
	err := db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&domain.Item{}).Error
	if err != nil {
		return err
	}
	return insertBatches(db.WithContext(ctx), items, batch)
}

// ListItems returns the current catalog in insertion order.
func ListItems(ctx context.Context, db *gorm.DB) ([]domain.Item, error) {
	var out []domain.Item
	err := db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

// insertBatches issues one INSERT per batch of rows. A non-positive batch
// size inserts everything at once.
func insertBatches[T any](db *gorm.DB, rows []T, batch int) error {
	if len(rows) == 0 {
		return nil
	}
	if batch <= 0 {
		batch = len(rows)
	}
	for start := 0; start < len(rows); start += batch {
		end := min(start+batch, len(rows))
		chunk := rows[start:end]
		if err := db.Create(&chunk).Error; err != nil {
			return err
		}
	}
	return nil
}
