// Package realtime implements the broadcast hub that fans seat-state
// changes out to every client watching a show.  Delivery is best-effort:
// each event carries the full set of held seats for its show, so a dropped
// event is repaired by the next one and subscribers never need replay.
package realtime

// SeatStatus tags a seat event with the change it describes.
type SeatStatus string

const (
    // StatusSelected is emitted when a session acquires a hold.
    StatusSelected SeatStatus = "SELECTED"
    // StatusDeselected is emitted when a session releases its own hold.
    StatusDeselected SeatStatus = "DESELECTED"
    // StatusAlreadySelected reports a conflict: the seat is held by
    // another session.  State did not change.
    StatusAlreadySelected SeatStatus = "ALREADY_SELECTED"
    // StatusBatchDeselected is a system-originated event covering several
    // seats at once: sweeper evictions, disconnect cleanup and booking
    // finalization.  SeatID and SessionID are null.
    StatusBatchDeselected SeatStatus = "BATCH_DESELECTED"
    // StatusUnknown is returned to a sender whose action could not be
    // interpreted.
    StatusUnknown SeatStatus = "UNKNOWN"
)

// SeatEvent is the payload delivered to subscribers of a show topic.
// SelectedSeats is always the complete current held-seat set for the show;
// clients must prefer it over any locally accumulated state.
type SeatEvent struct {
    ShowID        uint64     `json:"showtimeId"`
    SeatID        *string    `json:"seatId"`
    Status        SeatStatus `json:"status"`
    SelectedSeats []string   `json:"selectedSeats"`
    SessionID     *string    `json:"sessionId"`
}

// NewSeatEvent builds a per-seat delta event.  The seats slice is
// normalised to an empty (never nil) slice so the JSON field is always an
// array.
func NewSeatEvent(showID uint64, seatID string, status SeatStatus, seats []string, sessionID string) SeatEvent {
    if seats == nil {
        seats = []string{}
    }
    return SeatEvent{
        ShowID:        showID,
        SeatID:        &seatID,
        Status:        status,
        SelectedSeats: seats,
        SessionID:     &sessionID,
    }
}

// NewBatchEvent builds a system-originated batch event with no acting seat
// or session.
func NewBatchEvent(showID uint64, seats []string) SeatEvent {
    if seats == nil {
        seats = []string{}
    }
    return SeatEvent{
        ShowID:        showID,
        Status:        StatusBatchDeselected,
        SelectedSeats: seats,
    }
}
