package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/dianaantanyan/combinations-api/internal/domain"
)

func TestNewPool_Defaults(t *testing.T) {
	db := newRepoDB(t)
	p := NewPool(db, 0, 0)
	if p.Size() != 1 {
		t.Fatalf("size floor: got %d", p.Size())
	}
	if p.txOpts != nil {
		t.Fatalf("sqlite should use driver default isolation")
	}
	if p.DB() != db {
		t.Fatalf("DB() should return the wrapped handle")
	}
}

func TestPool_WithTx_CommitAndRollback(t *testing.T) {
	db := newRepoDB(t)
	p := NewPool(db, 2, time.Second)
	ctx := context.Background()

	err := p.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&domain.Item{Label: "A1", GroupLetter: "A"}).Error
	})
	if err != nil {
		t.Fatalf("commit path: %v", err)
	}

	boom := errors.New("boom")
	err = p.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&domain.Item{Label: "B1", GroupLetter: "B"}).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error back, got %v", err)
	}

	var n int64
	db.Model(&domain.Item{}).Count(&n)
	if n != 1 {
		t.Fatalf("rolled back insert should not be visible, count=%d", n)
	}
}

func TestPool_Exhausted(t *testing.T) {
	db := newRepoDB(t)
	p := NewPool(db, 1, 20*time.Millisecond)

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- p.WithTx(context.Background(), func(tx *gorm.DB) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	start := time.Now()
	err := p.WithTx(context.Background(), func(tx *gorm.DB) error {
		t.Fatalf("fn must not run without a slot")
		return nil
	})
	if !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("expected ErrPoolExhausted, got %v", err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatalf("should have queued for the acquire timeout")
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("holder: %v", err)
	}

	// Slot is free again.
	if err := p.WithTx(context.Background(), func(tx *gorm.DB) error { return nil }); err != nil {
		t.Fatalf("after release: %v", err)
	}
}

func TestPool_FailFastWithoutWait(t *testing.T) {
	db := newRepoDB(t)
	p := NewPool(db, 1, 0)
	if !p.slots.TryAcquire(1) {
		t.Fatalf("setup: could not take the slot")
	}
	defer p.slots.Release(1)

	if err := p.WithTx(context.Background(), func(*gorm.DB) error { return nil }); !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("expected ErrPoolExhausted, got %v", err)
	}
}

func TestPool_CallerCancelIsNotExhaustion(t *testing.T) {
	db := newRepoDB(t)
	p := NewPool(db, 1, time.Second)
	if !p.slots.TryAcquire(1) {
		t.Fatalf("setup: could not take the slot")
	}
	defer p.slots.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.WithTx(ctx, func(*gorm.DB) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPool_ReleasesSlotOnPanic(t *testing.T) {
	db := newRepoDB(t)
	p := NewPool(db, 1, 0)

	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected panic to propagate")
			}
		}()
		_ = p.WithTx(context.Background(), func(*gorm.DB) error { panic("fault") })
	}()

	if err := p.WithTx(context.Background(), func(*gorm.DB) error { return nil }); err != nil {
		t.Fatalf("slot leaked after panic: %v", err)
	}
}
