package hold

import (
    "context"
    "log"
    "time"
)

// Notifier receives batched eviction notifications from the sweeper.  One
// notification is emitted per show per sweep, carrying both the evicted
// seats and the full set still held so that subscribers can reconcile
// without replaying individual events.
type Notifier interface {
    SeatsEvicted(showID uint64, evicted, remaining []string)
}

// Sweeper periodically evicts holds older than the configured TTL.  It is
// the only mechanism that bounds how long an abandoned session can keep a
// seat: closed tabs, crashed clients and dropped connections do not
// reliably send an explicit release.
type Sweeper struct {
    registry *Registry
    notifier Notifier
    interval time.Duration
    ttl      time.Duration
    now      func() time.Time
    stopCh   chan struct{}
    doneCh   chan struct{}
}

// NewSweeper builds a sweeper over the given registry.  The interval and
// TTL are independent tunables; a shorter interval tightens the eviction
// bound without changing hold lifetime.
func NewSweeper(registry *Registry, notifier Notifier, interval, ttl time.Duration) *Sweeper {
    return &Sweeper{
        registry: registry,
        notifier: notifier,
        interval: interval,
        ttl:      ttl,
        now:      time.Now,
        stopCh:   make(chan struct{}),
        doneCh:   make(chan struct{}),
    }
}

// NewSweeperWithClock is NewSweeper with an injectable clock so tests can
// simulate the passage of time without sleeping.
func NewSweeperWithClock(registry *Registry, notifier Notifier, interval, ttl time.Duration, now func() time.Time) *Sweeper {
    s := NewSweeper(registry, notifier, interval, ttl)
    s.now = now
    return s
}

// Start runs the sweep loop until the context is cancelled or Stop is
// called.  It blocks; callers run it in its own goroutine.
func (s *Sweeper) Start(ctx context.Context) {
    log.Printf("sweeper: started (interval=%s ttl=%s)", s.interval, s.ttl)
    ticker := time.NewTicker(s.interval)
    defer ticker.Stop()
    defer close(s.doneCh)

    for {
        select {
        case <-ctx.Done():
            log.Printf("sweeper: stopped (context cancelled)")
            return
        case <-s.stopCh:
            log.Printf("sweeper: stopped")
            return
        case <-ticker.C:
            s.Sweep(s.now())
        }
    }
}

// Stop signals the sweep loop to exit and waits for it to finish.
func (s *Sweeper) Stop() {
    close(s.stopCh)
    <-s.doneCh
}

// Sweep performs one pass over every show with live holds, evicting those
// held at or before now-TTL.  Shows are processed independently: a panic
// while handling one show is logged and does not prevent the rest of the
// pass.  It returns the total number of seats evicted.
func (s *Sweeper) Sweep(now time.Time) int {
    cutoff := now.Add(-s.ttl)
    total := 0
    for _, showID := range s.registry.ShowIDs() {
        total += s.sweepShow(showID, cutoff)
    }
    if total > 0 {
        log.Printf("sweeper: evicted %d expired holds", total)
    }
    return total
}

func (s *Sweeper) sweepShow(showID uint64, cutoff time.Time) (evicted int) {
    defer func() {
        if rec := recover(); rec != nil {
            log.Printf("sweeper: panic while sweeping show %d: %v", showID, rec)
        }
    }()
    seats := s.registry.EvictExpired(showID, cutoff)
    if len(seats) == 0 {
        return 0
    }
    if s.notifier != nil {
        s.notifier.SeatsEvicted(showID, seats, s.registry.Snapshot(showID))
    }
    return len(seats)
}
