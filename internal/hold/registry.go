// Package hold implements the in-memory seat hold registry used during
// checkout.  A hold is a transient, session-owned claim on one seat of one
// show.  The registry is the single source of truth for which seats are
// currently held; nothing in this package is persisted and all state is
// lost on process restart, which is intentional: holds are short-lived by
// design and a restart simply frees every seat.
package hold

import (
    "sort"
    "sync"
    "time"
)

// Outcome reports the result of a TryHold call.
type Outcome int

const (
    // HoldGranted means the seat is now (or was already) held by the
    // requesting session.  A repeated select by the owner refreshes the
    // hold timestamp, extending its lease.
    HoldGranted Outcome = iota
    // HoldConflict means another session currently holds the seat.  The
    // registry state is unchanged.
    HoldConflict
)

// ReleaseOutcome reports the result of a Release call.
type ReleaseOutcome int

const (
    // Released means the hold existed, was owned by the caller and has
    // been removed.
    Released ReleaseOutcome = iota
    // NotOwner means the seat is held by a different session.  The state
    // is unchanged; stale clients routinely produce these.
    NotOwner
    // NotHeld means no hold exists for the seat.
    NotHeld
)

// Hold records who holds a seat and since when.  HeldAt is refreshed on an
// idempotent re-select by the owning session.
type Hold struct {
    SessionID string
    HeldAt    time.Time
}

// showHolds carries all hold state for a single show.  Both maps are
// guarded by mu and must only be mutated together: every seat in seats has
// exactly one matching entry in bySession and vice versa.  The dead flag
// is set when the registry prunes an empty show entry so that a goroutine
// holding a stale pointer can detect the removal and retry.
type showHolds struct {
    mu        sync.Mutex
    dead      bool
    seats     map[string]Hold                // seat label -> hold
    bySession map[string]map[string]struct{} // session -> seat labels
}

// Registry is the authoritative store of transient seat holds across all
// shows.  It supports fully parallel access to unrelated shows: the outer
// mutex guards only the show directory and the session index, while each
// show carries its own lock.  Per-seat linearizability follows from the
// per-show mutex.
//
// Lock ordering: the outer mutex may be taken while a show lock is NOT
// held, or around a show lock (prune path).  A show lock must never be
// held while acquiring the outer mutex.
type Registry struct {
    mu    sync.RWMutex
    shows map[uint64]*showHolds

    // byShow maps a session to the shows in which it currently holds at
    // least one seat, enabling O(holds-per-session) disconnect cleanup.
    byShow map[string]map[uint64]struct{}

    now func() time.Time
}

// NewRegistry returns an empty registry using the wall clock.
func NewRegistry() *Registry { return NewRegistryWithClock(time.Now) }

// NewRegistryWithClock returns an empty registry whose hold timestamps are
// taken from the supplied clock.  Tests use this to control time.
func NewRegistryWithClock(now func() time.Time) *Registry {
    return &Registry{
        shows:  make(map[uint64]*showHolds),
        byShow: make(map[string]map[uint64]struct{}),
        now:    now,
    }
}

// showState returns the live hold state for a show, creating it on first
// use.  Callers must lock the returned state and check its dead flag; a
// concurrent prune may have removed it from the directory, in which case
// the caller retries against the fresh entry.
func (r *Registry) showState(showID uint64) *showHolds {
    r.mu.RLock()
    sh := r.shows[showID]
    r.mu.RUnlock()
    if sh != nil {
        return sh
    }
    r.mu.Lock()
    sh = r.shows[showID]
    if sh == nil {
        sh = &showHolds{
            seats:     make(map[string]Hold),
            bySession: make(map[string]map[string]struct{}),
        }
        r.shows[showID] = sh
    }
    r.mu.Unlock()
    return sh
}

// lookup returns the hold state for a show without creating it.
func (r *Registry) lookup(showID uint64) *showHolds {
    r.mu.RLock()
    sh := r.shows[showID]
    r.mu.RUnlock()
    return sh
}

// TryHold attempts to place a hold on one seat for the given session.  It
// grants the hold when the seat is free or already held by the same
// session; a re-select by the owner refreshes the hold timestamp.  When a
// different session holds the seat the call leaves all state untouched and
// reports HoldConflict.
func (r *Registry) TryHold(showID uint64, seatID, sessionID string) Outcome {
    for {
        sh := r.showState(showID)
        sh.mu.Lock()
        if sh.dead {
            sh.mu.Unlock()
            continue // pruned under our feet; retry with a fresh entry
        }
        if h, ok := sh.seats[seatID]; ok && h.SessionID != sessionID {
            sh.mu.Unlock()
            return HoldConflict
        }
        sh.seats[seatID] = Hold{SessionID: sessionID, HeldAt: r.now()}
        set := sh.bySession[sessionID]
        if set == nil {
            set = make(map[string]struct{})
            sh.bySession[sessionID] = set
        }
        set[seatID] = struct{}{}
        sh.mu.Unlock()

        r.indexSession(sessionID, showID)
        return HoldGranted
    }
}

// Release removes the hold on one seat when, and only when, the caller is
// its owner.  Any other caller leaves the registry unchanged: NotOwner
// when somebody else holds the seat, NotHeld when nobody does.
func (r *Registry) Release(showID uint64, seatID, sessionID string) ReleaseOutcome {
    sh := r.lookup(showID)
    if sh == nil {
        return NotHeld
    }
    sh.mu.Lock()
    h, ok := sh.seats[seatID]
    if !ok {
        sh.mu.Unlock()
        return NotHeld
    }
    if h.SessionID != sessionID {
        sh.mu.Unlock()
        return NotOwner
    }
    delete(sh.seats, seatID)
    emptied := r.dropSeatLocked(sh, sessionID, seatID)
    sh.mu.Unlock()
    if emptied {
        r.unindexSession(sessionID, showID)
    }
    return Released
}

// ReleaseSeats removes holds by seat identity regardless of owner.  It is
// the release path used by the expiry sweeper and the booking finalizer,
// which act on time and on payment rather than on behalf of a session.
// The returned slice contains the seats that actually had a hold.
func (r *Registry) ReleaseSeats(showID uint64, seatIDs []string) []string {
    sh := r.lookup(showID)
    if sh == nil {
        return nil
    }
    var released []string
    emptiedSessions := make(map[string]struct{})
    sh.mu.Lock()
    for _, seatID := range seatIDs {
        h, ok := sh.seats[seatID]
        if !ok {
            continue
        }
        delete(sh.seats, seatID)
        if r.dropSeatLocked(sh, h.SessionID, seatID) {
            emptiedSessions[h.SessionID] = struct{}{}
        }
        released = append(released, seatID)
    }
    sh.mu.Unlock()
    for sessionID := range emptiedSessions {
        r.unindexSession(sessionID, showID)
    }
    sort.Strings(released)
    return released
}

// Snapshot returns the seats currently held for a show, sorted.  The copy
// is taken under the show lock, so the result is a valid point-in-time
// view rather than a merge of states that never coexisted.
func (r *Registry) Snapshot(showID uint64) []string {
    sh := r.lookup(showID)
    if sh == nil {
        return []string{}
    }
    sh.mu.Lock()
    seats := make([]string, 0, len(sh.seats))
    for seatID := range sh.seats {
        seats = append(seats, seatID)
    }
    sh.mu.Unlock()
    sort.Strings(seats)
    return seats
}

// ReleaseAllForSession removes every hold owned by the session across all
// shows, returning the released seats grouped by show.  It is called when
// a client connection closes so that abandoned selections free up
// immediately instead of waiting for the sweeper.
func (r *Registry) ReleaseAllForSession(sessionID string) map[uint64][]string {
    r.mu.Lock()
    showIDs := r.byShow[sessionID]
    delete(r.byShow, sessionID)
    r.mu.Unlock()

    released := make(map[uint64][]string, len(showIDs))
    for showID := range showIDs {
        sh := r.lookup(showID)
        if sh == nil {
            continue
        }
        sh.mu.Lock()
        seats := sh.bySession[sessionID]
        delete(sh.bySession, sessionID)
        if len(seats) > 0 {
            labels := make([]string, 0, len(seats))
            for seatID := range seats {
                delete(sh.seats, seatID)
                labels = append(labels, seatID)
            }
            sort.Strings(labels)
            released[showID] = labels
        }
        sh.mu.Unlock()
    }
    return released
}

// ShowIDs returns the ids of all shows with at least one live hold.
func (r *Registry) ShowIDs() []uint64 {
    r.mu.RLock()
    ids := make([]uint64, 0, len(r.shows))
    for id := range r.shows {
        ids = append(ids, id)
    }
    r.mu.RUnlock()
    return ids
}

// EvictExpired removes every hold for the show whose timestamp is at or
// before the cutoff, returning the evicted seats sorted.  When the show is
// left with no holds its entry is pruned from the directory.
func (r *Registry) EvictExpired(showID uint64, cutoff time.Time) []string {
    sh := r.lookup(showID)
    if sh == nil {
        return nil
    }
    var evicted []string
    emptiedSessions := make(map[string]struct{})
    sh.mu.Lock()
    for seatID, h := range sh.seats {
        if h.HeldAt.After(cutoff) {
            continue
        }
        delete(sh.seats, seatID)
        if r.dropSeatLocked(sh, h.SessionID, seatID) {
            emptiedSessions[h.SessionID] = struct{}{}
        }
        evicted = append(evicted, seatID)
    }
    empty := len(sh.seats) == 0
    sh.mu.Unlock()
    for sessionID := range emptiedSessions {
        r.unindexSession(sessionID, showID)
    }
    if empty {
        r.pruneShow(showID)
    }
    sort.Strings(evicted)
    return evicted
}

// dropSeatLocked removes one seat from a session's per-show set.  It
// reports whether the session now holds nothing in this show, in which
// case the caller must drop the session->show index entry after releasing
// the show lock.  The show lock must be held.
func (r *Registry) dropSeatLocked(sh *showHolds, sessionID, seatID string) bool {
    set := sh.bySession[sessionID]
    if set == nil {
        return false
    }
    delete(set, seatID)
    if len(set) == 0 {
        delete(sh.bySession, sessionID)
        return true
    }
    return false
}

// indexSession records that the session holds at least one seat in the show.
func (r *Registry) indexSession(sessionID string, showID uint64) {
    r.mu.Lock()
    set := r.byShow[sessionID]
    if set == nil {
        set = make(map[uint64]struct{})
        r.byShow[sessionID] = set
    }
    set[showID] = struct{}{}
    r.mu.Unlock()
}

// unindexSession drops the session->show mapping unless the session
// still holds a seat in the show.  The emptiness the caller observed was
// taken before the show lock was released, so a re-select by the same
// session may have landed in between; the check here runs under both
// locks (outer first, matching the prune path) and skips the drop in
// that case.  A TryHold racing past the check re-adds the entry through
// indexSession, which serializes behind the outer mutex held here.
func (r *Registry) unindexSession(sessionID string, showID uint64) {
    r.mu.Lock()
    if sh := r.shows[showID]; sh != nil {
        sh.mu.Lock()
        _, live := sh.bySession[sessionID]
        sh.mu.Unlock()
        if live {
            r.mu.Unlock()
            return
        }
    }
    if set := r.byShow[sessionID]; set != nil {
        delete(set, showID)
        if len(set) == 0 {
            delete(r.byShow, sessionID)
        }
    }
    r.mu.Unlock()
}

// pruneShow removes the show's entry when it has no holds left.  Both
// locks are taken, outer first, so that a concurrent TryHold either sees
// the entry before removal or creates a fresh one afterwards; the dead
// flag tells holders of a stale pointer to retry.
func (r *Registry) pruneShow(showID uint64) {
    r.mu.Lock()
    if sh := r.shows[showID]; sh != nil {
        sh.mu.Lock()
        if len(sh.seats) == 0 {
            sh.dead = true
            delete(r.shows, showID)
        }
        sh.mu.Unlock()
    }
    r.mu.Unlock()
}

// SessionShows returns the ids of shows in which the session currently
// holds seats.
func (r *Registry) SessionShows(sessionID string) []uint64 {
    r.mu.RLock()
    set := r.byShow[sessionID]
    ids := make([]uint64, 0, len(set))
    for id := range set {
        ids = append(ids, id)
    }
    r.mu.RUnlock()
    return ids
}
