package spectate

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/KesselZ/HeroHour-sub000/internal/rng"
	"github.com/KesselZ/HeroHour-sub000/internal/terrain"
	"github.com/KesselZ/HeroHour-sub000/internal/world"
)

func testServer(t *testing.T) (*Hub, string, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	hub := NewHub()
	h := NewHandler(hub, HandlerConfig{Logger: log.New(&logs, "", 0)})
	srv := httptest.NewServer(http.HandlerFunc(h.Handle))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http"), &logs
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil {
		resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, kind)
	var f Frame
	require.NoError(t, msgpack.Unmarshal(data, &f))
	return f
}

func TestFrameOf(t *testing.T) {
	w := world.New(rng.New(1), terrain.NewGrid(32), world.SpawnModel{}, nil, nil)
	w.Add(world.Entity{Type: world.EntityTree, X: 1, Z: 2})
	gone := w.Add(world.Entity{Type: world.EntityPickup, X: 3, Z: 4})
	w.Add(world.Entity{Type: world.EntityCity, X: 5, Z: 6, Owner: "azure"})
	w.Remove(gone.ID)
	w.Faction("azure").Gold = 7
	w.PlayerX = 9

	f := FrameOf(w, 12)
	assert.Equal(t, 12, f.Tick)
	assert.Equal(t, "spring", f.Season)
	assert.Equal(t, 9.0, f.PlayerX)
	require.Len(t, f.Entities, 2)
	assert.Equal(t, 2, f.Entities[1].ID)
	assert.Equal(t, "azure", f.Entities[1].Owner)
	require.Len(t, f.Factions, 2)
	assert.Equal(t, "azure", f.Factions[0].Name)
	assert.Equal(t, 7, f.Factions[0].Gold)
}

func TestHub_StreamsFrames(t *testing.T) {
	hub, url, _ := testServer(t)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(Frame{Tick: 1, Season: "spring"}))
	require.NoError(t, hub.Publish(Frame{Tick: 2, Entities: []EntityState{{ID: 4, Kind: "wolves", X: 1.5}}}))

	assert.Equal(t, 1, readFrame(t, conn).Tick)
	f := readFrame(t, conn)
	assert.Equal(t, 2, f.Tick)
	require.Len(t, f.Entities, 1)
	assert.Equal(t, "wolves", f.Entities[0].Kind)
	assert.Equal(t, 1.5, f.Entities[0].X)
}

func TestHub_LateJoinerGetsLastFrame(t *testing.T) {
	hub, url, _ := testServer(t)
	require.NoError(t, hub.Publish(Frame{Tick: 40}))
	require.NoError(t, hub.Publish(Frame{Tick: 41}))
	conn := dial(t, url)
	assert.Equal(t, 41, readFrame(t, conn).Tick)
}

func TestHub_DropsDisconnectedSpectators(t *testing.T) {
	hub, url, _ := testServer(t)
	a := dial(t, url)
	dial(t, url)
	require.Eventually(t, func() bool { return hub.Subscribers() == 2 }, 2*time.Second, 10*time.Millisecond)

	a.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	a.Close()
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.NoError(t, hub.Publish(Frame{Tick: 3}))
}

func TestHub_SlowSpectatorLosesFrames(t *testing.T) {
	hub := NewHub()
	_, sub := hub.subscribe(nil)
	for i := 0; i < sendBuffer+3; i++ {
		require.NoError(t, hub.Publish(Frame{Tick: i}))
	}
	sent, dropped := hub.Counts()
	assert.Equal(t, sendBuffer, sent)
	assert.Equal(t, 3, dropped)
	assert.Len(t, sub.send, sendBuffer)
}

func TestNewHandler_LoggerDefaultsAndPlainRequestIsRefused(t *testing.T) {
	assert.Same(t, log.Default(), NewHandler(NewHub(), HandlerConfig{}).logger)

	hub, url, logs := testServer(t)
	resp, err := http.Get("http" + strings.TrimPrefix(url, "ws"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, logs.String(), "spectator upgrade failed")
	assert.Zero(t, hub.Subscribers())
}
