package hold

import (
    "fmt"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestTryHoldGrantAndConflict(t *testing.T) {
    r := NewRegistry()

    assert.Equal(t, HoldGranted, r.TryHold(10, "A1", "sess-a"))
    assert.Equal(t, HoldConflict, r.TryHold(10, "A1", "sess-b"))

    // Idempotent re-select by the owner.
    assert.Equal(t, HoldGranted, r.TryHold(10, "A1", "sess-a"))

    // The conflicting attempt must not have mutated anything.
    assert.Equal(t, []string{"A1"}, r.Snapshot(10))
}

func TestTryHoldContentionScenario(t *testing.T) {
    // A grabs the seat, B is refused, A lets go, B succeeds.
    r := NewRegistry()

    assert.Equal(t, HoldGranted, r.TryHold(10, "A1", "A"))
    assert.Equal(t, HoldConflict, r.TryHold(10, "A1", "B"))
    assert.Equal(t, Released, r.Release(10, "A1", "A"))
    assert.Equal(t, HoldGranted, r.TryHold(10, "A1", "B"))
}

func TestReleaseOwnershipRules(t *testing.T) {
    r := NewRegistry()
    r.TryHold(7, "C3", "owner")

    assert.Equal(t, NotOwner, r.Release(7, "C3", "intruder"))
    assert.Equal(t, []string{"C3"}, r.Snapshot(7), "non-owner release must not change state")

    assert.Equal(t, NotHeld, r.Release(7, "D4", "owner"))
    assert.Equal(t, NotHeld, r.Release(99, "C3", "owner"))

    assert.Equal(t, Released, r.Release(7, "C3", "owner"))
    assert.Empty(t, r.Snapshot(7))
}

func TestConcurrentTryHoldSingleWinner(t *testing.T) {
    // Many sessions race for the same seat; exactly one may win.
    r := NewRegistry()
    const racers = 64

    var wg sync.WaitGroup
    granted := make(chan string, racers)
    start := make(chan struct{})
    for i := 0; i < racers; i++ {
        sessionID := fmt.Sprintf("sess-%d", i)
        wg.Add(1)
        go func() {
            defer wg.Done()
            <-start
            if r.TryHold(42, "A1", sessionID) == HoldGranted {
                granted <- sessionID
            }
        }()
    }
    close(start)
    wg.Wait()
    close(granted)

    winners := make([]string, 0, 1)
    for s := range granted {
        winners = append(winners, s)
    }
    require.Len(t, winners, 1)
    assert.Equal(t, []string{"A1"}, r.Snapshot(42))
}

func TestConcurrentDisjointSeats(t *testing.T) {
    // Unrelated seats and shows must all be grantable in parallel.
    r := NewRegistry()
    const n = 50

    var wg sync.WaitGroup
    for i := 0; i < n; i++ {
        i := i
        wg.Add(1)
        go func() {
            defer wg.Done()
            showID := uint64(i%5 + 1)
            seatID := fmt.Sprintf("R%d", i)
            assert.Equal(t, HoldGranted, r.TryHold(showID, seatID, fmt.Sprintf("sess-%d", i)))
        }()
    }
    wg.Wait()

    total := 0
    for show := uint64(1); show <= 5; show++ {
        total += len(r.Snapshot(show))
    }
    assert.Equal(t, n, total)
}

func TestReleaseAllForSession(t *testing.T) {
    r := NewRegistry()
    r.TryHold(1, "A1", "s1")
    r.TryHold(1, "A2", "s1")
    r.TryHold(2, "B5", "s1")
    r.TryHold(1, "A3", "s2")

    released := r.ReleaseAllForSession("s1")
    assert.Equal(t, map[uint64][]string{1: {"A1", "A2"}, 2: {"B5"}}, released)

    // Nothing owned by s1 survives; s2 is untouched.
    assert.Equal(t, []string{"A3"}, r.Snapshot(1))
    assert.Empty(t, r.Snapshot(2))
    assert.Empty(t, r.SessionShows("s1"))

    // Seats freed by the bulk release are claimable again.
    assert.Equal(t, HoldGranted, r.TryHold(1, "A1", "s3"))

    // A second call is a no-op.
    assert.Empty(t, r.ReleaseAllForSession("s1"))
}

func TestReleaseSeatsUnconditional(t *testing.T) {
    r := NewRegistry()
    r.TryHold(3, "A1", "s1")
    r.TryHold(3, "A2", "s2")

    released := r.ReleaseSeats(3, []string{"A1", "A2", "A9"})
    assert.Equal(t, []string{"A1", "A2"}, released)
    assert.Empty(t, r.Snapshot(3))
    assert.Empty(t, r.SessionShows("s1"))
    assert.Empty(t, r.SessionShows("s2"))
}

func TestSnapshotPointInTime(t *testing.T) {
    r := NewRegistry()
    assert.Equal(t, []string{}, r.Snapshot(5), "unknown show yields an empty, non-nil set")

    r.TryHold(5, "B2", "s1")
    r.TryHold(5, "A1", "s2")
    assert.Equal(t, []string{"A1", "B2"}, r.Snapshot(5), "snapshot is sorted")
}

func TestEvictExpiredRespectsCutoff(t *testing.T) {
    now := time.Date(2026, 3, 7, 18, 0, 0, 0, time.UTC)
    clock := func() time.Time { return now }
    r := NewRegistryWithClock(clock)

    r.TryHold(11, "A1", "s1")
    now = now.Add(30 * time.Second)
    r.TryHold(11, "A2", "s2")

    // Cutoff between the two hold timestamps evicts only the older one.
    evicted := r.EvictExpired(11, now.Add(-20*time.Second))
    assert.Equal(t, []string{"A1"}, evicted)
    assert.Equal(t, []string{"A2"}, r.Snapshot(11))
}

func TestEvictExpiredPrunesEmptyShow(t *testing.T) {
    now := time.Now()
    r := NewRegistryWithClock(func() time.Time { return now })

    r.TryHold(12, "A1", "s1")
    r.EvictExpired(12, now)

    assert.Empty(t, r.Snapshot(12))
    assert.Empty(t, r.ShowIDs())

    // A pruned show must be claimable again.
    assert.Equal(t, HoldGranted, r.TryHold(12, "A1", "s2"))
    assert.Equal(t, []string{"A1"}, r.Snapshot(12))
}

func TestUnindexSkippedWhileSessionStillHolds(t *testing.T) {
    // A release can observe the session's per-show set empty, lose the
    // show lock, and only then drop the session->show entry.  If the same
    // session re-selected a seat in between, the drop must not happen, or
    // a live hold would be invisible to disconnect cleanup.
    r := NewRegistry()
    r.TryHold(1, "A1", "s1")

    r.unindexSession("s1", 1) // stale: the session still holds A1
    assert.Equal(t, []uint64{1}, r.SessionShows("s1"))

    released := r.ReleaseAllForSession("s1")
    assert.Equal(t, map[uint64][]string{1: {"A1"}}, released)
    assert.Empty(t, r.Snapshot(1))
}

func TestSessionIndexConsistentUnderSameSessionChurn(t *testing.T) {
    // One session active on two connections, hammering different seats of
    // the same show.  Whatever interleaving occurs, the session index and
    // the hold map must agree afterwards.
    r := NewRegistry()
    const iters = 2000

    var wg sync.WaitGroup
    for _, seatID := range []string{"A1", "A2"} {
        seatID := seatID
        wg.Add(1)
        go func() {
            defer wg.Done()
            for i := 0; i < iters; i++ {
                r.TryHold(1, seatID, "s1")
                r.Release(1, seatID, "s1")
            }
        }()
    }
    wg.Wait()

    if len(r.Snapshot(1)) > 0 {
        assert.Equal(t, []uint64{1}, r.SessionShows("s1"))
    } else {
        assert.Empty(t, r.SessionShows("s1"))
    }
}

func TestSessionIndexStaysInLockstep(t *testing.T) {
    r := NewRegistry()
    r.TryHold(1, "A1", "s1")
    r.TryHold(2, "B1", "s1")
    assert.ElementsMatch(t, []uint64{1, 2}, r.SessionShows("s1"))

    r.Release(1, "A1", "s1")
    assert.Equal(t, []uint64{2}, r.SessionShows("s1"))

    r.Release(2, "B1", "s1")
    assert.Empty(t, r.SessionShows("s1"))
}
