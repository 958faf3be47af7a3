package realtime

import (
    "log"
    "sync"
)

// subscriberBuffer is the per-subscription channel depth.  A subscriber
// that falls further behind than this has events dropped; the full-set
// field on the next event catches it up.
const subscriberBuffer = 16

// Subscription is one subscriber's view of a show topic.  Events arrive on
// C until Unsubscribe closes it.
type Subscription struct {
    ShowID uint64
    C      chan SeatEvent
}

// Hub routes seat events to the subscribers of each show topic.  Publish
// never blocks, so the hold registry's mutation path can hand an event to
// the hub without waiting on any subscriber.
type Hub struct {
    mu     sync.Mutex
    topics map[uint64]map[*Subscription]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
    return &Hub{topics: make(map[uint64]map[*Subscription]struct{})}
}

// Subscribe registers a new subscriber for the show and returns its
// subscription.  The caller must eventually call Unsubscribe.
func (h *Hub) Subscribe(showID uint64) *Subscription {
    sub := &Subscription{ShowID: showID, C: make(chan SeatEvent, subscriberBuffer)}
    h.mu.Lock()
    subs := h.topics[showID]
    if subs == nil {
        subs = make(map[*Subscription]struct{})
        h.topics[showID] = subs
    }
    subs[sub] = struct{}{}
    h.mu.Unlock()
    return sub
}

// Unsubscribe removes the subscriber and closes its channel.  Calling it
// twice is safe.
func (h *Hub) Unsubscribe(sub *Subscription) {
    h.mu.Lock()
    if subs, ok := h.topics[sub.ShowID]; ok {
        if _, member := subs[sub]; member {
            delete(subs, sub)
            close(sub.C)
            if len(subs) == 0 {
                delete(h.topics, sub.ShowID)
            }
        }
    }
    h.mu.Unlock()
}

// Publish delivers the event to every subscriber of its show topic.  A
// publish that reaches nobody is not an error, and a full subscriber
// buffer drops the event rather than blocking the publisher.
func (h *Hub) Publish(evt SeatEvent) {
    h.mu.Lock()
    for sub := range h.topics[evt.ShowID] {
        select {
        case sub.C <- evt:
        default:
            // Lagging subscriber; the next event's full set self-heals.
        }
    }
    h.mu.Unlock()
}

// SeatsEvicted publishes one batch event for a show whose holds were
// evicted by the sweeper.  It satisfies hold.Notifier.
func (h *Hub) SeatsEvicted(showID uint64, evicted, remaining []string) {
    log.Printf("ws: show %d: %d holds expired", showID, len(evicted))
    h.Publish(NewBatchEvent(showID, remaining))
}

// SubscriberCount reports how many subscribers a show topic currently has.
func (h *Hub) SubscriberCount(showID uint64) int {
    h.mu.Lock()
    n := len(h.topics[showID])
    h.mu.Unlock()
    return n
}
