// Package service contains the booking finalizer, the one component of
// the checkout core that touches durable state, and the RabbitMQ
// publisher it notifies after a successful commit.
package service

import (
    "context"
    "database/sql"
    "fmt"
    "log"
    "sort"
    "strings"
    "time"

    "github.com/google/uuid"

    "github.com/cinemahub/ticketing/internal/hold"
    "github.com/cinemahub/ticketing/internal/model"
    "github.com/cinemahub/ticketing/internal/queue"
    "github.com/cinemahub/ticketing/internal/realtime"
    "github.com/cinemahub/ticketing/internal/repository"
)

// weekendSurchargePercent is added to the base seat price when the show
// starts on a Saturday or Sunday. The show's start day decides, never the
// day the payment lands.
const weekendSurchargePercent = 25

// maxFoodLineQuantity bounds a single concession line. The quantity is
// client-supplied; without a cap an absurd value would overflow the
// uint32 total arithmetic instead of failing the request.
const maxFoodLineQuantity = 50

// FoodLine is one requested concession line in a finalize call.
type FoodLine struct {
    FoodItemID uint64 `json:"food_item_id"`
    Quantity   uint32 `json:"quantity"`
}

// FinalizeRequest carries the payment-confirmation payload into the
// finalizer. It arrives from the payment flow after the gateway reported
// success; nothing here is trusted for availability, every seat is
// re-validated against persisted tickets inside the transaction.
type FinalizeRequest struct {
    UserID           uint64
    ShowID           uint64
    SeatIDs          []string
    FoodItems        []FoodLine
    TotalAmountCents uint32
    PaymentMethod    string
    VoucherCode      string
}

// Publisher delivers an order-finalized event to the message broker.
type Publisher func(ctx context.Context, event queue.OrderFinalizedEvent) error

// The finalizer depends on its data access through narrow contracts.
// The concrete repositories in internal/repository satisfy them; tests
// substitute fakes.

// ShowStore loads the show being booked.
type ShowStore interface {
    GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Show, error)
}

// SeatStore resolves a room's physical seat layout.
type SeatStore interface {
    LayoutByRoomTx(ctx context.Context, tx *sql.Tx, roomID uint64) ([]model.Seat, error)
}

// PriceStore reads base prices by room type and seat type.
type PriceStore interface {
    BasePriceCentsTx(ctx context.Context, tx *sql.Tx, roomType, seatType string) (uint32, error)
}

// OrderStore persists orders, tickets and food lines and answers the
// ticket conflict check.
type OrderStore interface {
    TicketedSeatsTx(ctx context.Context, tx *sql.Tx, showID uint64, seatLabels []string) ([]string, error)
    CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error
    CreateTicketsTx(ctx context.Context, tx *sql.Tx, tickets []model.Ticket) error
    FoodItemsTx(ctx context.Context, tx *sql.Tx, itemIDs []uint64) (map[uint64]model.FoodItem, error)
    CreateFoodItemsTx(ctx context.Context, tx *sql.Tx, lines []model.OrderFoodItem) error
}

// VoucherStore redeems single-use vouchers.
type VoucherStore interface {
    RedeemTx(ctx context.Context, tx *sql.Tx, userID uint64, code string) (*model.Voucher, error)
}

// Finalizer converts a confirmed payment into a persisted Order with one
// Ticket per seat, atomically. On success it releases the corresponding
// in-memory holds so the live seat map stops showing them, broadcasts the
// change, and emits an order.finalized event. Holds are advisory UX
// state only: the UNIQUE ticket constraint checked and enforced inside
// the transaction is the sole double-booking backstop, so a finalize call
// never consults hold ownership.
type Finalizer struct {
    db       *sql.DB
    shows    ShowStore
    seats    SeatStore
    prices   PriceStore
    orders   OrderStore
    vouchers VoucherStore
    registry *hold.Registry
    hub      *realtime.Hub
    publish  Publisher
}

// NewFinalizer constructs a Finalizer. The publisher may be nil when no
// broker is configured; registry and hub may not.
func NewFinalizer(db *sql.DB, shows ShowStore, seats SeatStore, prices PriceStore, orders OrderStore, vouchers VoucherStore, registry *hold.Registry, hub *realtime.Hub, publish Publisher) *Finalizer {
    if db == nil || shows == nil || seats == nil || prices == nil || orders == nil || vouchers == nil || registry == nil || hub == nil {
        panic("nil dependency passed to NewFinalizer")
    }
    return &Finalizer{
        db:       db,
        shows:    shows,
        seats:    seats,
        prices:   prices,
        orders:   orders,
        vouchers: vouchers,
        registry: registry,
        hub:      hub,
        publish:  publish,
    }
}

// Finalize persists the order, its tickets and food lines in one
// transaction. Any failure (unknown seat, seat already ticketed, invalid
// voucher, oversized food line, missing price) rolls everything back;
// there is no partial ticket set. No registry lock is held while the
// transaction runs.
func (f *Finalizer) Finalize(ctx context.Context, req FinalizeRequest) (*model.Order, error) {
    seatIDs := dedupe(req.SeatIDs)
    if len(seatIDs) == 0 {
        return nil, fmt.Errorf("%w: no seats requested", repository.ErrSeatUnknown)
    }
    if err := validateFoodLines(req.FoodItems); err != nil {
        return nil, err
    }

    tx, err := f.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    show, err := f.shows.GetByIDTx(ctx, tx, req.ShowID)
    if err != nil {
        return nil, err
    }

    layout, err := f.seats.LayoutByRoomTx(ctx, tx, show.RoomID)
    if err != nil {
        return nil, err
    }
    seatTypes, err := resolveSeatTypes(layout, seatIDs)
    if err != nil {
        return nil, err
    }

    // Re-validate against persisted tickets. A seat whose hold expired and
    // was ticketed by someone else since the client last looked fails here.
    taken, err := f.orders.TicketedSeatsTx(ctx, tx, req.ShowID, seatIDs)
    if err != nil {
        return nil, err
    }
    if len(taken) > 0 {
        sort.Strings(taken)
        return nil, fmt.Errorf("%w: %s", repository.ErrSeatAlreadyBooked, strings.Join(taken, ", "))
    }

    basePrices := make(map[string]uint32) // seat type -> base cents
    var seatTotal uint32
    tickets := make([]model.Ticket, 0, len(seatIDs))
    for _, seatID := range seatIDs {
        seatType := seatTypes[seatID]
        base, ok := basePrices[seatType]
        if !ok {
            base, err = f.prices.BasePriceCentsTx(ctx, tx, show.RoomType, seatType)
            if err != nil {
                return nil, err
            }
            basePrices[seatType] = base
        }
        price := seatPriceCents(base, show.StartsAt)
        seatTotal += price
        tickets = append(tickets, model.Ticket{
            ShowID:     req.ShowID,
            SeatLabel:  seatID,
            PriceCents: price,
        })
    }

    foodLines, foodTotal, err := f.priceFoodLines(ctx, tx, req.FoodItems)
    if err != nil {
        return nil, err
    }

    var voucherID *uint64
    var discount uint32
    if req.VoucherCode != "" {
        voucher, err := f.vouchers.RedeemTx(ctx, tx, req.UserID, req.VoucherCode)
        if err != nil {
            return nil, err
        }
        voucherID = &voucher.ID
        discount = voucher.AmountCents
    }

    subtotal := seatTotal + foodTotal
    if discount > subtotal {
        discount = subtotal
    }
    total := subtotal - discount
    if req.TotalAmountCents != 0 && req.TotalAmountCents != total {
        // The gateway-reported amount disagrees with the server-side
        // price. The computed total wins; the mismatch is only logged
        // because the payment has already settled.
        log.Printf("finalize: amount mismatch for user %d show %d: paid=%d computed=%d",
            req.UserID, req.ShowID, req.TotalAmountCents, total)
    }

    order := &model.Order{
        Reference:     uuid.NewString(),
        UserID:        req.UserID,
        ShowID:        req.ShowID,
        Status:        model.OrderStatusFinalized,
        TotalCents:    total,
        PaymentMethod: req.PaymentMethod,
        VoucherID:     voucherID,
    }
    if err := f.orders.CreateTx(ctx, tx, order); err != nil {
        return nil, err
    }
    for i := range tickets {
        tickets[i].OrderID = order.ID
    }
    if err := f.orders.CreateTicketsTx(ctx, tx, tickets); err != nil {
        return nil, err
    }
    for i := range foodLines {
        foodLines[i].OrderID = order.ID
    }
    if err := f.orders.CreateFoodItemsTx(ctx, tx, foodLines); err != nil {
        return nil, err
    }

    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true

    f.afterCommit(ctx, order, show, seatIDs)
    return order, nil
}

// afterCommit releases the finalized seats from the live registry,
// broadcasts the new state and publishes the order event. All of it is
// best-effort: the order is already durable.
func (f *Finalizer) afterCommit(ctx context.Context, order *model.Order, show *model.Show, seatIDs []string) {
    f.registry.ReleaseSeats(order.ShowID, seatIDs)
    f.hub.Publish(realtime.NewBatchEvent(order.ShowID, f.registry.Snapshot(order.ShowID)))

    if f.publish == nil {
        return
    }
    event := queue.OrderFinalizedEvent{
        OrderReference: order.Reference,
        UserID:         order.UserID,
        ShowID:         order.ShowID,
        MovieTitle:     show.Title,
        StartsAt:       show.StartsAt.UTC().Format(time.RFC3339),
        SeatLabels:     seatIDs,
        TotalCents:     order.TotalCents,
        PaymentMethod:  order.PaymentMethod,
        FinalizedAt:    time.Now().UTC().Format(time.RFC3339),
    }
    if err := f.publish(ctx, event); err != nil {
        log.Printf("finalize: order event publish failed for %s: %v", order.Reference, err)
    }
}

// priceFoodLines validates the requested concession lines and prices them
// at the current catalog rate.
func (f *Finalizer) priceFoodLines(ctx context.Context, tx *sql.Tx, lines []FoodLine) ([]model.OrderFoodItem, uint32, error) {
    ids := make([]uint64, 0, len(lines))
    for _, l := range lines {
        if l.Quantity == 0 {
            continue
        }
        ids = append(ids, l.FoodItemID)
    }
    items, err := f.orders.FoodItemsTx(ctx, tx, ids)
    if err != nil {
        return nil, 0, err
    }
    var out []model.OrderFoodItem
    var total uint32
    for _, l := range lines {
        if l.Quantity == 0 {
            continue
        }
        unit := items[l.FoodItemID].PriceCents
        out = append(out, model.OrderFoodItem{
            FoodItemID:     l.FoodItemID,
            Quantity:       l.Quantity,
            UnitPriceCents: unit,
        })
        total += unit * l.Quantity
    }
    return out, total, nil
}

// seatPriceCents applies the weekend surcharge to a base price when the
// show starts on a Saturday or Sunday.
func seatPriceCents(baseCents uint32, startsAt time.Time) uint32 {
    switch startsAt.Weekday() {
    case time.Saturday, time.Sunday:
        return baseCents + baseCents*weekendSurchargePercent/100
    default:
        return baseCents
    }
}

// resolveSeatTypes maps each requested seat label to its seat type using
// the room layout. An unknown label fails the whole request with
// ErrSeatUnknown naming the seat.
func resolveSeatTypes(layout []model.Seat, seatIDs []string) (map[string]string, error) {
    byLabel := make(map[string]string, len(layout))
    for _, s := range layout {
        byLabel[s.Label()] = s.SeatType
    }
    types := make(map[string]string, len(seatIDs))
    for _, id := range seatIDs {
        t, ok := byLabel[id]
        if !ok {
            return nil, fmt.Errorf("%w: %s", repository.ErrSeatUnknown, id)
        }
        types[id] = t
    }
    return types, nil
}

// validateFoodLines rejects concession lines with a quantity beyond the
// accepted bound, naming the offending item.
func validateFoodLines(lines []FoodLine) error {
    for _, l := range lines {
        if l.Quantity > maxFoodLineQuantity {
            return fmt.Errorf("%w: food_item_id=%d quantity=%d", repository.ErrFoodQuantityInvalid, l.FoodItemID, l.Quantity)
        }
    }
    return nil
}

// dedupe drops empty and repeated seat labels preserving first-seen order.
func dedupe(seatIDs []string) []string {
    seen := make(map[string]struct{}, len(seatIDs))
    out := make([]string, 0, len(seatIDs))
    for _, id := range seatIDs {
        if id == "" {
            continue
        }
        if _, ok := seen[id]; ok {
            continue
        }
        seen[id] = struct{}{}
        out = append(out, id)
    }
    return out
}
