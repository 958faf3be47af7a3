package model

import (
    "fmt"
    "time"
)

// Seat describes a physical seat in a room.  Seats are uniquely
// identified within a room by their row label and number; clients refer
// to them by the combined label (e.g. "A1").
//
// Fields:
//  ID         - primary key identifier.
//  RoomID     - room to which this seat belongs.
//  RowLabel   - letter or string designating the row.
//  SeatNumber - number of the seat within the row.
//  SeatType   - pricing class of the seat (STANDARD, VIP, COUPLE).
//  IsActive   - whether the seat is sellable.
//  CreatedAt  - creation timestamp.
//  UpdatedAt  - last update timestamp.
type Seat struct {
    ID         uint64    // seats.id
    RoomID     uint64    // seats.room_id
    RowLabel   string    // seats.row_label
    SeatNumber uint32    // seats.seat_number
    SeatType   string    // seats.seat_type
    IsActive   bool      // seats.is_active
    CreatedAt  time.Time // seats.created_at
    UpdatedAt  time.Time // seats.updated_at
}

// Label returns the client-facing seat identifier, row label followed by
// seat number ("A1", "B12").
func (s Seat) Label() string {
    return fmt.Sprintf("%s%d", s.RowLabel, s.SeatNumber)
}
