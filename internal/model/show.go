package model

import "time"

// Show represents a scheduled screening of a movie in a particular room.
// The start time matters beyond scheduling: ticket pricing applies a
// weekend surcharge keyed off the day the show starts, not the day the
// order is paid.
//
// Fields:
//  ID        - primary key identifier.
//  RoomID    - room where the show takes place.
//  RoomType  - pricing class of that room, joined in on load.
//  Title     - movie title.
//  StartsAt  - when the show begins (UTC).
//  EndsAt    - when the show ends (must be after StartsAt).
//  Status    - current state of the show (SCHEDULED, CANCELLED, FINISHED).
//  CreatedAt - creation timestamp.
//  UpdatedAt - last update timestamp.
type Show struct {
    ID        uint64    // shows.id
    RoomID    uint64    // shows.room_id
    RoomType  string    // rooms.room_type (joined)
    Title     string    // shows.title
    StartsAt  time.Time // shows.starts_at
    EndsAt    time.Time // shows.ends_at
    Status    string    // shows.status
    CreatedAt time.Time // shows.created_at
    UpdatedAt time.Time // shows.updated_at
}
