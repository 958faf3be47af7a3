package model

import "time"

// Voucher is a single-use discount attached to a user's wallet.  Redeeming
// a voucher stamps redeemed_at inside the same transaction that persists
// the order, so a voucher can never pay for two orders.
//
// Fields:
//  ID          - primary key identifier.
//  UserID      - owning user.
//  Code        - redemption code presented at checkout.
//  AmountCents - discount value in cents.
//  ExpiresAt   - validity limit.
//  RedeemedAt  - set when consumed; nil while available.
//  CreatedAt   - creation timestamp.
type Voucher struct {
    ID          uint64     // vouchers.id
    UserID      uint64     // vouchers.user_id
    Code        string     // vouchers.code
    AmountCents uint32     // vouchers.amount_cents
    ExpiresAt   time.Time  // vouchers.expires_at
    RedeemedAt  *time.Time // vouchers.redeemed_at (nullable)
    CreatedAt   time.Time  // vouchers.created_at
}
