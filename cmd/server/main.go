package main // Entry point package

import (
    "context"
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/cinemahub/ticketing/internal/config"
    "github.com/cinemahub/ticketing/internal/database"
    "github.com/cinemahub/ticketing/internal/handler"
    "github.com/cinemahub/ticketing/internal/hold"
    "github.com/cinemahub/ticketing/internal/queue"
    "github.com/cinemahub/ticketing/internal/realtime"
    "github.com/cinemahub/ticketing/internal/repository"
    "github.com/cinemahub/ticketing/internal/router"
    "github.com/cinemahub/ticketing/internal/service"
)

func main() {
    _ = godotenv.Load() // .env is optional; real deployments use the environment
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // Redis is optional: when unavailable the rate limiter degrades to a
    // pass-through.
    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Printf("redis unavailable; rate limiting disabled")
    }

    registry := hold.NewRegistry()
    hub := realtime.NewHub()

    sweeper := hold.NewSweeper(registry, hub, cfg.SweepInterval, cfg.HoldTTL)
    sweepCtx, stopSweep := context.WithCancel(context.Background())
    defer stopSweep()
    go sweeper.Start(sweepCtx)

    // The order consumer reconnects forever; run it out of band so a
    // missing broker never blocks startup.
    go func() {
        if err := queue.StartOrderConsumer(); err != nil {
            log.Printf("order consumer stopped: %v", err)
        }
    }()

    showRepo := repository.NewShowRepo(db)
    seatRepo := repository.NewSeatRepo(db)
    priceRepo := repository.NewPriceRepo(db)
    orderRepo := repository.NewOrderRepo(db)
    voucherRepo := repository.NewVoucherRepo(db)

    finalizer := service.NewFinalizer(db, showRepo, seatRepo, priceRepo, orderRepo, voucherRepo, registry, hub, service.PublishOrderFinalized)

    e := echo.New()
    router.RegisterRoutes(e,
        handler.NewSeatSocketHandler(registry, hub),
        handler.NewSeatSnapshotHandler(registry),
        handler.NewCheckoutHandler(finalizer),
        cfg.JWTSecret,
        rdb,
    )

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
