package realtime

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestPublishReachesAllShowSubscribers(t *testing.T) {
    h := NewHub()
    sub1 := h.Subscribe(10)
    sub2 := h.Subscribe(10)
    other := h.Subscribe(20)

    evt := NewSeatEvent(10, "A1", StatusSelected, []string{"A1"}, "sess-1")
    h.Publish(evt)

    for _, sub := range []*Subscription{sub1, sub2} {
        got := <-sub.C
        assert.Equal(t, evt, got)
    }
    select {
    case <-other.C:
        t.Fatal("subscriber of another show received the event")
    default:
    }
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
    h := NewHub()
    // Must not panic or block.
    h.Publish(NewBatchEvent(99, nil))
}

func TestPublishDropsWhenSubscriberLags(t *testing.T) {
    h := NewHub()
    sub := h.Subscribe(10)

    // Overfill the buffer; the publisher must never block.
    for i := 0; i < subscriberBuffer+5; i++ {
        h.Publish(NewSeatEvent(10, "A1", StatusSelected, []string{"A1"}, "s"))
    }
    assert.Len(t, sub.C, subscriberBuffer)
}

func TestUnsubscribeClosesChannelAndIsIdempotent(t *testing.T) {
    h := NewHub()
    sub := h.Subscribe(10)
    require.Equal(t, 1, h.SubscriberCount(10))

    h.Unsubscribe(sub)
    h.Unsubscribe(sub) // second call must be safe

    _, open := <-sub.C
    assert.False(t, open)
    assert.Zero(t, h.SubscriberCount(10))

    // Publishing after the topic emptied must not panic.
    h.Publish(NewBatchEvent(10, []string{}))
}

func TestSeatsEvictedPublishesBatchEvent(t *testing.T) {
    h := NewHub()
    sub := h.Subscribe(7)

    h.SeatsEvicted(7, []string{"A1", "A2"}, []string{"B1"})

    got := <-sub.C
    assert.Equal(t, StatusBatchDeselected, got.Status)
    assert.Nil(t, got.SeatID, "batch events carry no acting seat")
    assert.Nil(t, got.SessionID, "batch events carry no acting session")
    assert.Equal(t, []string{"B1"}, got.SelectedSeats)
}

func TestEventConstructorsNormaliseSeatSets(t *testing.T) {
    evt := NewSeatEvent(1, "A1", StatusDeselected, nil, "s")
    assert.NotNil(t, evt.SelectedSeats)
    assert.Empty(t, evt.SelectedSeats)
    require.NotNil(t, evt.SeatID)
    assert.Equal(t, "A1", *evt.SeatID)

    batch := NewBatchEvent(1, nil)
    assert.NotNil(t, batch.SelectedSeats)
}
