package model

import "time"

// OrderStatusFinalized is the only status this service ever persists: an
// order is written together with its tickets in one transaction, so there
// is no intermediate pending state to record.
const OrderStatusFinalized = "FINALIZED"

// Order is the durable record of a completed purchase.  It owns one or
// more Tickets and zero or more food lines.
//
// Fields:
//  ID            - primary key identifier.
//  Reference     - public UUID handed to the client and to downstream
//                  consumers instead of the numeric id.
//  UserID        - purchasing user.
//  ShowID        - show the tickets are for.
//  Status        - order state; always FINALIZED here.
//  TotalCents    - grand total actually charged, in cents.
//  PaymentMethod - method reported by the payment collaborator.
//  VoucherID     - redeemed voucher, if any.
//  CreatedAt     - creation timestamp.
type Order struct {
    ID            uint64    // orders.id
    Reference     string    // orders.reference
    UserID        uint64    // orders.user_id
    ShowID        uint64    // orders.show_id
    Status        string    // orders.status
    TotalCents    uint32    // orders.total_cents
    PaymentMethod string    // orders.payment_method
    VoucherID     *uint64   // orders.voucher_id (nullable)
    CreatedAt     time.Time // orders.created_at
}

// Ticket binds one seat of one show to an order, permanently.  The
// (show_id, seat_label) pair carries a UNIQUE key in the database; that
// constraint, not the in-memory hold registry, is what makes double
// booking impossible.
//
// Fields:
//  ID         - primary key identifier.
//  OrderID    - owning order.
//  ShowID     - show the ticket admits to.
//  SeatLabel  - client-facing seat identifier ("A1").
//  PriceCents - price paid for this seat, in cents.
//  CreatedAt  - creation timestamp.
type Ticket struct {
    ID         uint64    // tickets.id
    OrderID    uint64    // tickets.order_id
    ShowID     uint64    // tickets.show_id
    SeatLabel  string    // tickets.seat_label
    PriceCents uint32    // tickets.price_cents
    CreatedAt  time.Time // tickets.created_at
}

// FoodItem is a concession catalog entry.
type FoodItem struct {
    ID         uint64 // food_items.id
    Name       string // food_items.name
    PriceCents uint32 // food_items.price_cents
    IsActive   bool   // food_items.is_active
}

// OrderFoodItem is one concession line on an order.  UnitPriceCents is
// copied from the catalog at purchase time so later price changes do not
// rewrite history.
type OrderFoodItem struct {
    ID             uint64 // order_food_items.id
    OrderID        uint64 // order_food_items.order_id
    FoodItemID     uint64 // order_food_items.food_item_id
    Quantity       uint32 // order_food_items.quantity
    UnitPriceCents uint32 // order_food_items.unit_price_cents
}
