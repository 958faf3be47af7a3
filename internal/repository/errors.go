// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and the booking finalizer to distinguish between different
// failure scenarios with errors.Is instead of string matching.
package repository

import "errors"

// ErrShowNotFound indicates that a show was not located in the DB.
var ErrShowNotFound = errors.New("show not found")

// ErrSeatUnknown is returned when a requested seat label does not exist
// in the room of the show being booked, or the seat is inactive. The
// offending label is wrapped alongside this sentinel.
var ErrSeatUnknown = errors.New("unknown seat")

// ErrSeatAlreadyBooked is returned when a requested seat already has a
// persisted ticket for the show. Finalization treats this as fatal for
// the whole order; the payment flow decides whether to refund.
var ErrSeatAlreadyBooked = errors.New("seat already booked")

// ErrVoucherInvalid is returned when a voucher code does not belong to
// the user, is expired, or was already redeemed. The three cases are
// deliberately indistinguishable to the client.
var ErrVoucherInvalid = errors.New("voucher invalid")

// ErrPriceNotFound is returned when the price table has no row for a
// room-type/seat-type combination. This is a data problem, not a user
// error, and is never silently defaulted.
var ErrPriceNotFound = errors.New("price not found")

// ErrFoodItemUnknown is returned when an order references a concession
// item that does not exist or is inactive.
var ErrFoodItemUnknown = errors.New("unknown food item")

// ErrFoodQuantityInvalid is returned when a concession line requests a
// quantity outside the accepted range.
var ErrFoodQuantityInvalid = errors.New("invalid food quantity")
