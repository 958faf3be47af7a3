package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// Health answers liveness probes from load balancers and monitoring with
// a plain "ok".  It deliberately touches no dependency: a process with a
// down database still reports alive and lets readiness checks handle the
// rest.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}
