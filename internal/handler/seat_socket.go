// Package handler contains the HTTP and WebSocket handlers of the
// checkout core: the live seat map channel, the snapshot query and the
// finalize trigger.
package handler

import (
    "encoding/json"
    "log"
    "net/http"
    "strconv"
    "time"

    "github.com/google/uuid"
    "github.com/gorilla/websocket"
    "github.com/labstack/echo/v4"

    "github.com/cinemahub/ticketing/internal/hold"
    "github.com/cinemahub/ticketing/internal/realtime"
)

// Seat-action verbs accepted on the live channel.
const (
    actionSelect   = "SELECT"
    actionDeselect = "DESELECT"
)

const (
    writeWait  = 10 * time.Second
    pongWait   = 60 * time.Second
    pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
    ReadBufferSize:  1024,
    WriteBufferSize: 1024,
    // The seat map is public state; origin checks belong to the gateway.
    CheckOrigin: func(r *http.Request) bool { return true },
}

// SeatActionMessage is the inbound payload on the live seat channel.
type SeatActionMessage struct {
    ShowID    uint64 `json:"showtimeId"`
    SeatID    string `json:"seatId"`
    Action    string `json:"action"`
    SessionID string `json:"sessionId"`
}

// SeatSocketHandler serves the bidirectional real-time seat channel for a
// show. Every connected client subscribes to the show's topic and
// receives a delta event for each hold mutation; its own SELECT and
// DESELECT actions are applied to the hold registry and broadcast.
type SeatSocketHandler struct {
    Registry *hold.Registry
    Hub      *realtime.Hub
}

// NewSeatSocketHandler constructs a SeatSocketHandler.
func NewSeatSocketHandler(registry *hold.Registry, hub *realtime.Hub) *SeatSocketHandler {
    if registry == nil || hub == nil {
        panic("nil dependency passed to NewSeatSocketHandler")
    }
    return &SeatSocketHandler{Registry: registry, Hub: hub}
}

// Live handles GET /v1/shows/:id/seats/live. It upgrades the connection
// to WebSocket, subscribes it to the show topic and processes seat
// actions until the client goes away. On disconnect every hold owned by
// the connection's sessions is released and a batch event is broadcast
// per affected show, so closed tabs free their seats immediately.
func (h *SeatSocketHandler) Live(c echo.Context) error {
    showID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || showID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
    }

    conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
    if err != nil {
        // Upgrade already wrote the HTTP error response.
        return nil
    }

    // A connection normally acts for one session, supplied as a query
    // parameter or generated here; messages may still name their own
    // session id and every session seen is cleaned up on close.
    defaultSession := c.QueryParam("session_id")
    if defaultSession == "" {
        defaultSession = uuid.NewString()
    }

    sub := h.Hub.Subscribe(showID)
    go writePump(conn, sub)

    sessions := map[string]struct{}{defaultSession: {}}
    defer func() {
        h.Hub.Unsubscribe(sub)
        for sessionID := range sessions {
            h.releaseSession(sessionID)
        }
        _ = conn.Close()
    }()

    conn.SetReadLimit(1024)
    _ = conn.SetReadDeadline(time.Now().Add(pongWait))
    conn.SetPongHandler(func(string) error {
        return conn.SetReadDeadline(time.Now().Add(pongWait))
    })

    for {
        _, data, err := conn.ReadMessage()
        if err != nil {
            if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
                log.Printf("ws: show %d: read error: %v", showID, err)
            }
            return nil
        }
        var msg SeatActionMessage
        if err := json.Unmarshal(data, &msg); err != nil {
            h.sendToConn(sub, realtime.NewSeatEvent(showID, "", realtime.StatusUnknown, h.Registry.Snapshot(showID), defaultSession))
            continue
        }
        if msg.ShowID == 0 {
            msg.ShowID = showID
        }
        if msg.SessionID == "" {
            msg.SessionID = defaultSession
        }
        sessions[msg.SessionID] = struct{}{}
        h.handleAction(sub, msg)
    }
}

// handleAction applies one seat action to the registry and publishes the
// resulting delta. Conflicts and unknown actions are normal outcomes, not
// errors: the former is broadcast so all viewers see contention resolve,
// the latter goes back to the sender only.
func (h *SeatSocketHandler) handleAction(sub *realtime.Subscription, msg SeatActionMessage) {
    switch msg.Action {
    case actionSelect:
        outcome := h.Registry.TryHold(msg.ShowID, msg.SeatID, msg.SessionID)
        status := realtime.StatusSelected
        if outcome == hold.HoldConflict {
            status = realtime.StatusAlreadySelected
        }
        h.Hub.Publish(realtime.NewSeatEvent(msg.ShowID, msg.SeatID, status, h.Registry.Snapshot(msg.ShowID), msg.SessionID))
    case actionDeselect:
        outcome := h.Registry.Release(msg.ShowID, msg.SeatID, msg.SessionID)
        if outcome != hold.Released {
            // Deselect by a non-owner or of a free seat changes nothing;
            // stale clients produce these routinely.
            log.Printf("ws: ignored deselect of %s on show %d by session %s (outcome=%d)", msg.SeatID, msg.ShowID, msg.SessionID, outcome)
            return
        }
        h.Hub.Publish(realtime.NewSeatEvent(msg.ShowID, msg.SeatID, realtime.StatusDeselected, h.Registry.Snapshot(msg.ShowID), msg.SessionID))
    default:
        h.sendToConn(sub, realtime.NewSeatEvent(msg.ShowID, msg.SeatID, realtime.StatusUnknown, h.Registry.Snapshot(msg.ShowID), msg.SessionID))
    }
}

// sendToConn delivers an event to this connection only, bypassing the
// topic. Used for responses that concern nobody else, like UNKNOWN.
func (h *SeatSocketHandler) sendToConn(sub *realtime.Subscription, evt realtime.SeatEvent) {
    select {
    case sub.C <- evt:
    default:
    }
}

// releaseSession frees every hold of one session and broadcasts a batch
// event per show that lost seats.
func (h *SeatSocketHandler) releaseSession(sessionID string) {
    released := h.Registry.ReleaseAllForSession(sessionID)
    for showID := range released {
        h.Hub.Publish(realtime.NewBatchEvent(showID, h.Registry.Snapshot(showID)))
    }
}

// writePump forwards hub events to the websocket connection and keeps the
// connection alive with pings. It exits when the subscription channel is
// closed or a write fails.
func writePump(conn *websocket.Conn, sub *realtime.Subscription) {
    ticker := time.NewTicker(pingPeriod)
    defer ticker.Stop()
    for {
        select {
        case evt, ok := <-sub.C:
            _ = conn.SetWriteDeadline(time.Now().Add(writeWait))
            if !ok {
                _ = conn.WriteMessage(websocket.CloseMessage, []byte{})
                return
            }
            if err := conn.WriteJSON(evt); err != nil {
                return
            }
        case <-ticker.C:
            _ = conn.SetWriteDeadline(time.Now().Add(writeWait))
            if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
                return
            }
        }
    }
}
