package repository

import (
    "context"
    "database/sql"

    "github.com/cinemahub/ticketing/internal/model"
)

// SeatRepo provides read access to the physical seat catalog of rooms.
// Seat administration is owned by the catalog service; the checkout core
// only resolves client-supplied seat labels against a room's layout.
type SeatRepo struct {
    db *sql.DB
}

// NewSeatRepo returns a new SeatRepo bound to the provided database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// LayoutByRoomTx returns all active seats of a room within the provided
// transaction, ordered by row and number. The finalizer uses this to
// resolve seat labels like "A1" to physical seats and their seat types.
func (r *SeatRepo) LayoutByRoomTx(ctx context.Context, tx *sql.Tx, roomID uint64) ([]model.Seat, error) {
    const q = `SELECT id, room_id, row_label, seat_number, seat_type, is_active, created_at, updated_at
               FROM seats
               WHERE room_id = ? AND is_active = 1
               ORDER BY row_label, seat_number`
    rows, err := tx.QueryContext(ctx, q, roomID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var seats []model.Seat
    for rows.Next() {
        var s model.Seat
        if err := rows.Scan(&s.ID, &s.RoomID, &s.RowLabel, &s.SeatNumber, &s.SeatType, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
            return nil, err
        }
        seats = append(seats, s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return seats, nil
}
