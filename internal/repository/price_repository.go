package repository

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
)

// PriceRepo reads the base price table. Prices are keyed by the pair of
// room type and seat type; surcharges (weekend rule) are applied on top
// by the finalizer, never stored here.
type PriceRepo struct {
    db *sql.DB
}

// NewPriceRepo returns a new PriceRepo bound to the provided database.
func NewPriceRepo(db *sql.DB) *PriceRepo { return &PriceRepo{db: db} }

// BasePriceCentsTx returns the base price in cents for a room-type and
// seat-type combination within the provided transaction. A missing row
// yields ErrPriceNotFound wrapped with both type names; it is reported,
// not defaulted, because a silent fallback would sell seats at the wrong
// price.
func (r *PriceRepo) BasePriceCentsTx(ctx context.Context, tx *sql.Tx, roomType, seatType string) (uint32, error) {
    const q = `SELECT price_cents FROM prices WHERE room_type = ? AND seat_type = ?`
    var cents uint32
    err := tx.QueryRowContext(ctx, q, roomType, seatType).Scan(&cents)
    if errors.Is(err, sql.ErrNoRows) {
        return 0, fmt.Errorf("%w: room_type=%s seat_type=%s", ErrPriceNotFound, roomType, seatType)
    }
    if err != nil {
        return 0, err
    }
    return cents, nil
}
