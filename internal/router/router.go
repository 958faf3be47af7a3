// Package router defines how HTTP routes are registered for the checkout
// core.
package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/cinemahub/ticketing/internal/config"
    "github.com/cinemahub/ticketing/internal/handler"
    "github.com/cinemahub/ticketing/internal/middleware"
)

// RegisterRoutes wires every endpoint of the checkout core onto the
// provided Echo instance.
//
// The seat endpoints are public: holds are keyed by opaque session ids,
// not by authenticated users, so guests can browse and select seats.  The
// finalize trigger requires a valid access token because it creates
// durable orders on behalf of a user.  The Redis-backed token bucket
// protects the snapshot and checkout routes; the websocket route is
// excluded since one long-lived connection per viewer is the norm.
func RegisterRoutes(e *echo.Echo, socket *handler.SeatSocketHandler, snapshot *handler.SeatSnapshotHandler, checkout *handler.CheckoutHandler, jwtSecret string, rdb *redis.Client) {
    // Health check for load balancers and monitoring.
    e.GET("/healthz", handler.Health)

    limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

    // Live seat map: upgrade to websocket, stream deltas both ways.
    e.GET("/v1/shows/:id/seats/live", socket.Live)
    // Snapshot for clients that just loaded the seat map.
    e.GET("/v1/shows/:id/seats/selected", snapshot.Selected, limiter)

    // Finalization is invoked by the payment flow with the user's token.
    checkoutGroup := e.Group("/v1/checkout")
    checkoutGroup.Use(middleware.JWTAuth(jwtSecret))
    checkoutGroup.POST("/confirm", checkout.Confirm, limiter)
}
