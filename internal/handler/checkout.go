package handler

import (
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/cinemahub/ticketing/internal/repository"
    "github.com/cinemahub/ticketing/internal/service"
)

// CheckoutHandler exposes the finalize trigger. It is invoked by the
// payment flow once the gateway has confirmed a charge; it does not talk
// to the gateway itself. JWT authentication must have run before this
// handler so the purchasing user can be read from the context.
type CheckoutHandler struct {
    Finalizer *service.Finalizer
}

// NewCheckoutHandler constructs a CheckoutHandler.
func NewCheckoutHandler(finalizer *service.Finalizer) *CheckoutHandler {
    if finalizer == nil {
        panic("nil finalizer passed to NewCheckoutHandler")
    }
    return &CheckoutHandler{Finalizer: finalizer}
}

// Confirm handles POST /v1/checkout/confirm. The request body carries the
// payment-confirmation payload; on success it responds 201 with the order
// reference and total. Finalization is all-or-nothing: a seat that is
// already ticketed, an invalid voucher or a pricing gap each abort the
// whole order with a specific cause so the payment flow can decide
// whether to refund.
func (h *CheckoutHandler) Confirm(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var body struct {
        ShowID           uint64             `json:"show_id"`
        SeatIDs          []string           `json:"seat_ids"`
        FoodItems        []service.FoodLine `json:"food_items"`
        TotalAmountCents uint32             `json:"total_amount_cents"`
        PaymentMethod    string             `json:"payment_method"`
        VoucherCode      string             `json:"voucher_code"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.ShowID == 0 || len(body.SeatIDs) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "show_id and seat_ids are required"})
    }

    order, err := h.Finalizer.Finalize(c.Request().Context(), service.FinalizeRequest{
        UserID:           userID,
        ShowID:           body.ShowID,
        SeatIDs:          body.SeatIDs,
        FoodItems:        body.FoodItems,
        TotalAmountCents: body.TotalAmountCents,
        PaymentMethod:    body.PaymentMethod,
        VoucherCode:      body.VoucherCode,
    })
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrShowNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
        case errors.Is(err, repository.ErrSeatAlreadyBooked):
            return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
        case errors.Is(err, repository.ErrSeatUnknown),
            errors.Is(err, repository.ErrFoodItemUnknown),
            errors.Is(err, repository.ErrFoodQuantityInvalid):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
        case errors.Is(err, repository.ErrVoucherInvalid):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "voucher invalid"})
        case errors.Is(err, repository.ErrPriceNotFound):
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "pricing unavailable"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to finalize order"})
        }
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "order_reference": order.Reference,
        "status":          order.Status,
        "total_cents":     order.TotalCents,
        "created_at":      time.Now().UTC().Format(time.RFC3339),
    })
}

// getUserID extracts the user_id placed in the context by the JWT
// middleware and converts it to uint64.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}
