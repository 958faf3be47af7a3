package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/cinemahub/ticketing/internal/model"
)

// VoucherRepo manages single-use vouchers attached to user wallets.
type VoucherRepo struct {
    db *sql.DB
}

// NewVoucherRepo returns a new VoucherRepo bound to the provided database.
func NewVoucherRepo(db *sql.DB) *VoucherRepo { return &VoucherRepo{db: db} }

// RedeemTx consumes the voucher identified by code for the given user
// within the provided transaction and returns the redeemed voucher.  The
// SELECT ... FOR UPDATE plus guarded UPDATE both validate and consume:
// a code that does not exist for this user, is expired, or was already
// redeemed collapses into ErrVoucherInvalid.  Rolling back the
// transaction un-redeems the voucher along with everything else.
func (r *VoucherRepo) RedeemTx(ctx context.Context, tx *sql.Tx, userID uint64, code string) (*model.Voucher, error) {
    const sel = `SELECT id, user_id, code, amount_cents, expires_at, created_at FROM vouchers
                 WHERE user_id = ? AND code = ? AND redeemed_at IS NULL AND expires_at > UTC_TIMESTAMP()
                 FOR UPDATE`
    var v model.Voucher
    err := tx.QueryRowContext(ctx, sel, userID, code).Scan(&v.ID, &v.UserID, &v.Code, &v.AmountCents, &v.ExpiresAt, &v.CreatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrVoucherInvalid
    }
    if err != nil {
        return nil, err
    }
    const upd = `UPDATE vouchers SET redeemed_at = UTC_TIMESTAMP() WHERE id = ? AND redeemed_at IS NULL`
    res, err := tx.ExecContext(ctx, upd, v.ID)
    if err != nil {
        return nil, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return nil, err
    }
    if n == 0 {
        return nil, ErrVoucherInvalid
    }
    return &v, nil
}
