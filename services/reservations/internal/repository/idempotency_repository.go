package repository

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

const idempotencyTTL = 24 * time.Hour

type idempotencyRepository struct {
	db dbtx
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", sum[:])
}

func (r *idempotencyRepository) Lookup(ctx context.Context, key string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var bookingID int64
	err := r.db.QueryRow(ctx,
		`SELECT booking_id FROM booking_idempotency WHERE key_hash=$1 AND expires_at > now()`,
		hashKey(key),
	).Scan(&bookingID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, wrapQuery("look up idempotency key", err)
	}
	return bookingID, nil
}

func (r *idempotencyRepository) Remember(ctx context.Context, key string, bookingID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO booking_idempotency (key_hash, booking_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key_hash) DO UPDATE
		SET booking_id = EXCLUDED.booking_id, expires_at = EXCLUDED.expires_at
		WHERE booking_idempotency.expires_at <= now()`,
		hashKey(key), bookingID, time.Now().Add(idempotencyTTL))
	if err != nil {
		return wrapQuery("store idempotency key", err)
	}
	return nil
}

func (r *idempotencyRepository) Purge(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM booking_idempotency WHERE expires_at < now()`)
	if err != nil {
		return 0, wrapQuery("purge idempotency keys", err)
	}
	return tag.RowsAffected(), nil
}
