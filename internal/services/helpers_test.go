package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dianaantanyan/combinations-api/internal/combination"
	"github.com/dianaantanyan/combinations-api/internal/domain"
	"github.com/dianaantanyan/combinations-api/internal/repo"
)

// ---------- test helpers ----------

func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := repo.OpenSQLite(dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Logger = logger.Default.LogMode(logger.Silent)
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func newSvc(t *testing.T, db *gorm.DB, opts Options) *CombinationService {
	t.Helper()
	if opts.InsertBatchSize == 0 {
		opts.InsertBatchSize = 500
	}
	s, err := NewCombinationService(repo.NewPool(db, 2, time.Second), opts)
	if err != nil {
		t.Fatalf("NewCombinationService: %v", err)
	}
	return s
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}

func catalogLabels(t *testing.T, db *gorm.DB) []string {
	t.Helper()
	var rows []domain.Item
	if err := db.Order("id ASC").Find(&rows).Error; err != nil {
		t.Fatalf("load items: %v", err)
	}
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Label
	}
	return out
}

func mustDerive(t *testing.T, counts ...int) []combination.Item {
	t.Helper()
	items, err := combination.DeriveItems(counts)
	if err != nil {
		t.Fatalf("DeriveItems(%v): %v", counts, err)
	}
	return items
}
