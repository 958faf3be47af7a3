// Package repository contains data access logic for shows. A Show is a
// scheduled screening of a movie in a room; the room's type is joined in
// on load because ticket pricing depends on it.
package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/cinemahub/ticketing/internal/model"
)

// ShowRepo manages read access to shows for the checkout core. Show
// administration (create/update/cancel) lives in the catalog service and
// is out of scope here.
type ShowRepo struct {
    db *sql.DB
}

// NewShowRepo returns a new ShowRepo bound to the provided database.
func NewShowRepo(db *sql.DB) *ShowRepo { return &ShowRepo{db: db} }

// GetByIDTx loads one show together with its room's pricing class inside
// the provided transaction, so the show the finalizer prices against
// cannot change mid-order. It returns ErrShowNotFound when no row
// matches.
func (r *ShowRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Show, error) {
    const q = `SELECT s.id, s.room_id, r.room_type, s.title, s.starts_at, s.ends_at, s.status, s.created_at, s.updated_at
               FROM shows s
               JOIN rooms r ON r.id = s.room_id
               WHERE s.id = ?`
    var s model.Show
    err := tx.QueryRowContext(ctx, q, id).Scan(
        &s.ID, &s.RoomID, &s.RoomType, &s.Title,
        &s.StartsAt, &s.EndsAt, &s.Status, &s.CreatedAt, &s.UpdatedAt,
    )
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrShowNotFound
    }
    if err != nil {
        return nil, err
    }
    return &s, nil
}
