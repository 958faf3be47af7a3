package handler

import (
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/cinemahub/ticketing/internal/hold"
)

func performSnapshot(t *testing.T, h *SeatSnapshotHandler, showID string) *httptest.ResponseRecorder {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/", nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.SetPath("/v1/shows/:id/seats/selected")
    c.SetParamNames("id")
    c.SetParamValues(showID)
    require.NoError(t, h.Selected(c))
    return rec
}

func TestSnapshotSelectedSeats(t *testing.T) {
    registry := hold.NewRegistry()
    registry.TryHold(10, "B2", "s1")
    registry.TryHold(10, "A1", "s2")
    h := NewSeatSnapshotHandler(registry)

    rec := performSnapshot(t, h, "10")
    assert.Equal(t, http.StatusOK, rec.Code)

    var body struct {
        Success       bool     `json:"success"`
        SelectedSeats []string `json:"selectedSeats"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
    assert.True(t, body.Success)
    assert.Equal(t, []string{"A1", "B2"}, body.SelectedSeats)
}

func TestSnapshotEmptyShow(t *testing.T) {
    h := NewSeatSnapshotHandler(hold.NewRegistry())

    rec := performSnapshot(t, h, "55")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `{"success": true, "selectedSeats": []}`, rec.Body.String())
}

func TestSnapshotInvalidShowID(t *testing.T) {
    h := NewSeatSnapshotHandler(hold.NewRegistry())

    for _, id := range []string{"abc", "0", "-3"} {
        rec := performSnapshot(t, h, id)
        assert.Equal(t, http.StatusBadRequest, rec.Code, "id=%s", id)
    }
}
