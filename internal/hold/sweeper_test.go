package hold

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

// recordingNotifier captures SeatsEvicted calls for assertions.
type recordingNotifier struct {
    calls []evictionCall
}

type evictionCall struct {
    showID    uint64
    evicted   []string
    remaining []string
}

func (n *recordingNotifier) SeatsEvicted(showID uint64, evicted, remaining []string) {
    n.calls = append(n.calls, evictionCall{showID: showID, evicted: evicted, remaining: remaining})
}

// panickyNotifier blows up for one show to exercise sweep isolation.
type panickyNotifier struct {
    badShow uint64
    inner   *recordingNotifier
}

func (n *panickyNotifier) SeatsEvicted(showID uint64, evicted, remaining []string) {
    if showID == n.badShow {
        panic("subscriber exploded")
    }
    n.inner.SeatsEvicted(showID, evicted, remaining)
}

func newTestSweeper(ttl time.Duration, notifier Notifier, start time.Time) (*Sweeper, *Registry, *time.Time) {
    now := start
    clock := func() time.Time { return now }
    reg := NewRegistryWithClock(clock)
    s := NewSweeperWithClock(reg, notifier, 30*time.Second, ttl, clock)
    return s, reg, &now
}

func TestSweepEvictsOnlyExpiredHolds(t *testing.T) {
    base := time.Date(2026, 3, 7, 18, 0, 0, 0, time.UTC)
    notifier := &recordingNotifier{}
    s, reg, now := newTestSweeper(2*time.Minute, notifier, base)

    reg.TryHold(10, "A1", "s1")
    *now = base.Add(90 * time.Second)
    reg.TryHold(10, "A2", "s2")

    // Before the TTL elapses nothing is evicted.
    evicted := s.Sweep(base.Add(110 * time.Second))
    assert.Zero(t, evicted)
    assert.Empty(t, notifier.calls)

    // Past the TTL only the older hold goes.
    evicted = s.Sweep(base.Add(130 * time.Second))
    assert.Equal(t, 1, evicted)
    require.Len(t, notifier.calls, 1)
    assert.Equal(t, uint64(10), notifier.calls[0].showID)
    assert.Equal(t, []string{"A1"}, notifier.calls[0].evicted)
    assert.Equal(t, []string{"A2"}, notifier.calls[0].remaining)
}

func TestSweepHonorsRefreshedLease(t *testing.T) {
    // Re-selecting a held seat restarts its lease: a hold placed at T and
    // refreshed at T+90s survives the sweep at T+130s but not T+230s.
    base := time.Date(2026, 3, 7, 18, 0, 0, 0, time.UTC)
    notifier := &recordingNotifier{}
    s, reg, now := newTestSweeper(2*time.Minute, notifier, base)

    reg.TryHold(10, "A1", "owner")
    *now = base.Add(90 * time.Second)
    require.Equal(t, HoldGranted, reg.TryHold(10, "A1", "owner"))

    assert.Zero(t, s.Sweep(base.Add(130*time.Second)))
    assert.Equal(t, []string{"A1"}, reg.Snapshot(10))

    assert.Equal(t, 1, s.Sweep(base.Add(230*time.Second)))
    assert.Empty(t, reg.Snapshot(10))
}

func TestSweepBatchesPerShow(t *testing.T) {
    base := time.Now()
    notifier := &recordingNotifier{}
    s, reg, _ := newTestSweeper(time.Minute, notifier, base)

    reg.TryHold(1, "A1", "s1")
    reg.TryHold(1, "A2", "s1")
    reg.TryHold(1, "A3", "s2")
    reg.TryHold(2, "B1", "s3")

    assert.Equal(t, 4, s.Sweep(base.Add(2*time.Minute)))

    // One notification per show, regardless of how many seats expired.
    require.Len(t, notifier.calls, 2)
    byShow := map[uint64][]string{}
    for _, call := range notifier.calls {
        byShow[call.showID] = call.evicted
        assert.Empty(t, call.remaining)
    }
    assert.Equal(t, []string{"A1", "A2", "A3"}, byShow[1])
    assert.Equal(t, []string{"B1"}, byShow[2])
}

func TestSweepIsolatesShowFailures(t *testing.T) {
    base := time.Now()
    inner := &recordingNotifier{}
    s, reg, _ := newTestSweeper(time.Minute, &panickyNotifier{badShow: 1, inner: inner}, base)

    reg.TryHold(1, "A1", "s1")
    reg.TryHold(2, "B1", "s2")

    // The panic for show 1 must not stop show 2 from being swept.
    s.Sweep(base.Add(2 * time.Minute))
    assert.Empty(t, reg.Snapshot(2))
    require.Len(t, inner.calls, 1)
    assert.Equal(t, uint64(2), inner.calls[0].showID)
}

func TestSweeperStartStop(t *testing.T) {
    reg := NewRegistry()
    s := NewSweeper(reg, nil, 10*time.Millisecond, time.Minute)

    done := make(chan struct{})
    go func() {
        s.Start(context.Background())
        close(done)
    }()

    time.Sleep(30 * time.Millisecond)
    s.Stop()

    select {
    case <-done:
    case <-time.After(time.Second):
        t.Fatal("sweeper did not stop")
    }
}
