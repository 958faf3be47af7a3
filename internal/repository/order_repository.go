package repository

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "strings"

    "github.com/go-sql-driver/mysql"

    "github.com/cinemahub/ticketing/internal/model"
)

// mysqlDupEntry is the MySQL error number for a duplicate key violation.
// Ticket inserts hitting the UNIQUE(show_id, seat_label) key surface it
// when two finalizations race past the FOR UPDATE check.
const mysqlDupEntry = 1062

// OrderRepo persists orders, their tickets and food lines. All write
// methods take a transaction: an order and its tickets are only ever
// created together, atomically.
type OrderRepo struct {
    db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the provided database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// TicketedSeatsTx returns which of the given seat labels already have a
// ticket for the show. The rows are locked (FOR UPDATE) so a concurrent
// finalization of overlapping seats serializes behind this transaction;
// the UNIQUE key on tickets remains the final backstop.
func (r *OrderRepo) TicketedSeatsTx(ctx context.Context, tx *sql.Tx, showID uint64, seatLabels []string) ([]string, error) {
    if len(seatLabels) == 0 {
        return nil, nil
    }
    placeholders := strings.TrimSuffix(strings.Repeat("?,", len(seatLabels)), ",")
    q := `SELECT seat_label FROM tickets WHERE show_id = ? AND seat_label IN (` + placeholders + `) FOR UPDATE`
    args := make([]interface{}, 0, len(seatLabels)+1)
    args = append(args, showID)
    for _, l := range seatLabels {
        args = append(args, l)
    }
    rows, err := tx.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var taken []string
    for rows.Next() {
        var label string
        if err := rows.Scan(&label); err != nil {
            return nil, err
        }
        taken = append(taken, label)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return taken, nil
}

// CreateTx inserts a new order and populates its generated ID.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
    const q = `INSERT INTO orders (reference, user_id, show_id, status, total_cents, payment_method, voucher_id)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q, o.Reference, o.UserID, o.ShowID, o.Status, o.TotalCents, o.PaymentMethod, o.VoucherID)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    o.ID = uint64(id)
    return nil
}

// CreateTicketsTx bulk-inserts one ticket per seat. A duplicate-key
// violation on UNIQUE(show_id, seat_label) is translated into
// ErrSeatAlreadyBooked so callers roll the whole order back with a
// specific cause.
func (r *OrderRepo) CreateTicketsTx(ctx context.Context, tx *sql.Tx, tickets []model.Ticket) error {
    if len(tickets) == 0 {
        return nil
    }
    q := `INSERT INTO tickets (order_id, show_id, seat_label, price_cents) VALUES `
    args := make([]interface{}, 0, len(tickets)*4)
    for i, t := range tickets {
        if i > 0 {
            q += ","
        }
        q += "(?, ?, ?, ?)"
        args = append(args, t.OrderID, t.ShowID, t.SeatLabel, t.PriceCents)
    }
    if _, err := tx.ExecContext(ctx, q, args...); err != nil {
        var me *mysql.MySQLError
        if errors.As(err, &me) && me.Number == mysqlDupEntry {
            return fmt.Errorf("%w: %v", ErrSeatAlreadyBooked, err)
        }
        return err
    }
    return nil
}

// FoodItemsTx loads the active catalog entries for the given food item
// ids. Missing or inactive items yield ErrFoodItemUnknown wrapped with
// the offending id.
func (r *OrderRepo) FoodItemsTx(ctx context.Context, tx *sql.Tx, itemIDs []uint64) (map[uint64]model.FoodItem, error) {
    items := make(map[uint64]model.FoodItem, len(itemIDs))
    if len(itemIDs) == 0 {
        return items, nil
    }
    placeholders := strings.TrimSuffix(strings.Repeat("?,", len(itemIDs)), ",")
    q := `SELECT id, name, price_cents, is_active FROM food_items WHERE is_active = 1 AND id IN (` + placeholders + `)`
    args := make([]interface{}, 0, len(itemIDs))
    for _, id := range itemIDs {
        args = append(args, id)
    }
    rows, err := tx.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    for rows.Next() {
        var item model.FoodItem
        if err := rows.Scan(&item.ID, &item.Name, &item.PriceCents, &item.IsActive); err != nil {
            return nil, err
        }
        items[item.ID] = item
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    for _, id := range itemIDs {
        if _, ok := items[id]; !ok {
            return nil, fmt.Errorf("%w: id=%d", ErrFoodItemUnknown, id)
        }
    }
    return items, nil
}

// CreateFoodItemsTx bulk-inserts the order's concession lines.
func (r *OrderRepo) CreateFoodItemsTx(ctx context.Context, tx *sql.Tx, lines []model.OrderFoodItem) error {
    if len(lines) == 0 {
        return nil
    }
    q := `INSERT INTO order_food_items (order_id, food_item_id, quantity, unit_price_cents) VALUES `
    args := make([]interface{}, 0, len(lines)*4)
    for i, l := range lines {
        if i > 0 {
            q += ","
        }
        q += "(?, ?, ?, ?)"
        args = append(args, l.OrderID, l.FoodItemID, l.Quantity, l.UnitPriceCents)
    }
    _, err := tx.ExecContext(ctx, q, args...)
    return err
}
