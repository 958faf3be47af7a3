package handler

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/cinemahub/ticketing/internal/hold"
    "github.com/cinemahub/ticketing/internal/realtime"
)

func recvEvent(t *testing.T, sub *realtime.Subscription) realtime.SeatEvent {
    t.Helper()
    select {
    case evt := <-sub.C:
        return evt
    default:
        t.Fatal("expected an event")
        return realtime.SeatEvent{}
    }
}

func TestHandleActionSelectBroadcasts(t *testing.T) {
    registry := hold.NewRegistry()
    hub := realtime.NewHub()
    h := NewSeatSocketHandler(registry, hub)
    sub := hub.Subscribe(10)

    h.handleAction(sub, SeatActionMessage{ShowID: 10, SeatID: "A1", Action: "SELECT", SessionID: "s1"})

    evt := recvEvent(t, sub)
    assert.Equal(t, realtime.StatusSelected, evt.Status)
    require.NotNil(t, evt.SeatID)
    assert.Equal(t, "A1", *evt.SeatID)
    require.NotNil(t, evt.SessionID)
    assert.Equal(t, "s1", *evt.SessionID)
    assert.Equal(t, []string{"A1"}, evt.SelectedSeats)
}

func TestHandleActionConflictBroadcastsAlreadySelected(t *testing.T) {
    registry := hold.NewRegistry()
    hub := realtime.NewHub()
    h := NewSeatSocketHandler(registry, hub)
    registry.TryHold(10, "A1", "s1")
    sub := hub.Subscribe(10)

    h.handleAction(sub, SeatActionMessage{ShowID: 10, SeatID: "A1", Action: "SELECT", SessionID: "s2"})

    evt := recvEvent(t, sub)
    assert.Equal(t, realtime.StatusAlreadySelected, evt.Status)
    // The holder did not change.
    assert.Equal(t, hold.NotOwner, registry.Release(10, "A1", "s2"))
}

func TestHandleActionDeselect(t *testing.T) {
    registry := hold.NewRegistry()
    hub := realtime.NewHub()
    h := NewSeatSocketHandler(registry, hub)
    registry.TryHold(10, "A1", "s1")
    sub := hub.Subscribe(10)

    h.handleAction(sub, SeatActionMessage{ShowID: 10, SeatID: "A1", Action: "DESELECT", SessionID: "s1"})

    evt := recvEvent(t, sub)
    assert.Equal(t, realtime.StatusDeselected, evt.Status)
    assert.Empty(t, evt.SelectedSeats)
}

func TestHandleActionDeselectByNonOwnerIsSilent(t *testing.T) {
    registry := hold.NewRegistry()
    hub := realtime.NewHub()
    h := NewSeatSocketHandler(registry, hub)
    registry.TryHold(10, "A1", "s1")
    sub := hub.Subscribe(10)

    h.handleAction(sub, SeatActionMessage{ShowID: 10, SeatID: "A1", Action: "DESELECT", SessionID: "s2"})

    select {
    case evt := <-sub.C:
        t.Fatalf("no event expected, got %v", evt)
    default:
    }
    assert.Equal(t, []string{"A1"}, registry.Snapshot(10))
}

func TestHandleActionUnknownGoesToSenderOnly(t *testing.T) {
    registry := hold.NewRegistry()
    hub := realtime.NewHub()
    h := NewSeatSocketHandler(registry, hub)
    sender := hub.Subscribe(10)
    other := hub.Subscribe(10)

    h.handleAction(sender, SeatActionMessage{ShowID: 10, SeatID: "A1", Action: "GRAB", SessionID: "s1"})

    evt := recvEvent(t, sender)
    assert.Equal(t, realtime.StatusUnknown, evt.Status)
    select {
    case <-other.C:
        t.Fatal("unknown-action response leaked to other subscribers")
    default:
    }
}

func TestReleaseSessionBroadcastsPerShow(t *testing.T) {
    registry := hold.NewRegistry()
    hub := realtime.NewHub()
    h := NewSeatSocketHandler(registry, hub)
    registry.TryHold(1, "A1", "gone")
    registry.TryHold(2, "B1", "gone")
    sub1 := hub.Subscribe(1)
    sub2 := hub.Subscribe(2)

    h.releaseSession("gone")

    for _, sub := range []*realtime.Subscription{sub1, sub2} {
        evt := recvEvent(t, sub)
        assert.Equal(t, realtime.StatusBatchDeselected, evt.Status)
        assert.Empty(t, evt.SelectedSeats)
    }
}
