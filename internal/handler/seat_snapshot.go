package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/cinemahub/ticketing/internal/hold"
)

// SeatSnapshotHandler answers the pull-style snapshot query clients issue
// on page load, before their live channel starts delivering deltas.
type SeatSnapshotHandler struct {
    Registry *hold.Registry
}

// NewSeatSnapshotHandler constructs a SeatSnapshotHandler.
func NewSeatSnapshotHandler(registry *hold.Registry) *SeatSnapshotHandler {
    if registry == nil {
        panic("nil registry passed to NewSeatSnapshotHandler")
    }
    return &SeatSnapshotHandler{Registry: registry}
}

// Selected handles GET /v1/shows/:id/seats/selected. It returns the set
// of currently held seats for the show as a consistent point-in-time
// view; it is safe to call while holds are being mutated concurrently.
func (h *SeatSnapshotHandler) Selected(c echo.Context) error {
    showID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || showID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{
            "success": false,
            "error":   "invalid show id",
        })
    }
    return c.JSON(http.StatusOK, echo.Map{
        "success":       true,
        "selectedSeats": h.Registry.Snapshot(showID),
    })
}
