// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderFinalizedEvent is published when a paid order has been persisted
// with its tickets. It carries enough information for downstream
// consumers to log, notify, or feed analytics without querying the
// primary database.
type OrderFinalizedEvent struct {
    OrderReference string   `json:"order_reference"`
    UserID         uint64   `json:"user_id"`
    ShowID         uint64   `json:"show_id"`
    MovieTitle     string   `json:"movie_title"`
    StartsAt       string   `json:"starts_at"`
    SeatLabels     []string `json:"seats"`
    TotalCents     uint32   `json:"total_cents"`
    PaymentMethod  string   `json:"payment_method"`
    FinalizedAt    string   `json:"finalized_at"`
}
