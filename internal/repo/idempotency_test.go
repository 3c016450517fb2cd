package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dianaantanyan/combinations-api/internal/domain"
)


func TestGetIdempotency_BlankKey_ReturnsNotFound(t *testing.T) {
	db := newRepoDB(t)
	rec, err := GetIdempotency(context.Background(), db, "1.2.3.4", "   ", time.Now().UTC())
	if rec != nil || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected (nil, ErrNotFound) for blank key, got (%v, %v)", rec, err)
	}
}

func TestIdempotency_CreateGetDuplicateExpire(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	r := newResponse()
	if err := CreateResponse(ctx, db, r); err != nil {
		t.Fatalf("CreateResponse: %v", err)
	}

	rec, err := CreateIdempotency(ctx, db, "1.2.3.4", "k1", "fp", r.ID, now, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.ID == "" || rec.ResponseID != r.ID || !rec.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected record: %+v", rec)
	}

	got, err := GetIdempotency(ctx, db, "1.2.3.4", "k1", now)
	if err != nil || got.RequestHash != "fp" || got.ResponseID != r.ID {
		t.Fatalf("GetIdempotency = %+v, %v", got, err)
	}

	// Same key from another caller is a different record.
	if _, err := GetIdempotency(ctx, db, "5.6.7.8", "k1", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("key must be caller-scoped, got %v", err)
	}

	if _, err := CreateIdempotency(ctx, db, "1.2.3.4", "k1", "fp2", r.ID, now, time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// Past expiry the record is invisible and the key can be reused.
	later := now.Add(2 * time.Hour)
	if _, err := GetIdempotency(ctx, db, "1.2.3.4", "k1", later); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired record should not be returned, got %v", err)
	}
	if _, err := CreateIdempotency(ctx, db, "1.2.3.4", "k1", "fp3", r.ID, later, time.Hour); err != nil {
		t.Fatalf("reuse after expiry: %v", err)
	}
}

func TestPurgeExpiredIdempotency(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	r := newResponse()
	if err := CreateResponse(ctx, db, r); err != nil {
		t.Fatalf("CreateResponse: %v", err)
	}
	if _, err := CreateIdempotency(ctx, db, "c", "old", "fp", r.ID, now.Add(-2*time.Hour), time.Hour); err != nil {
		t.Fatalf("seed old: %v", err)
	}
	if _, err := CreateIdempotency(ctx, db, "c", "new", "fp", r.ID, now, time.Hour); err != nil {
		t.Fatalf("seed new: %v", err)
	}

	n, err := PurgeExpiredIdempotency(ctx, db, now)
	if err != nil || n != 1 {
		t.Fatalf("PurgeExpiredIdempotency = %d, %v", n, err)
	}
	var left int64
	db.Model(&domain.Idempotency{}).Count(&left)
	if left != 1 {
		t.Fatalf("expected 1 record left, got %d", left)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	for _, msg := range []string{
		"UNIQUE constraint failed: idempotency.caller_address",
		"Error 1062: Duplicate entry 'x' for key 'ux_idem_caller_key'",
		`ERROR: duplicate key value violates unique constraint "ux_idem_caller_key"`,
	} {
		if !isUniqueViolation(errors.New(msg)) {
			t.Fatalf("expected unique violation for %q", msg)
		}
	}
	if isUniqueViolation(errors.New("disk I/O error")) {
		t.Fatalf("unexpected unique violation match")
	}
}
