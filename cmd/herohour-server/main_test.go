package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/KesselZ/HeroHour-sub000/internal/game"
	"github.com/KesselZ/HeroHour-sub000/internal/spectate"
)

func TestRunLoop_StepsAndPublishes(t *testing.T) {
	ts := game.NewTestSim(game.WithFlatWorld(32), game.WithTree(4, 4, 3, 5))
	hub := spectate.NewHub()
	srv := httptest.NewServer(http.HandlerFunc(spectate.NewHandler(hub, spectate.HandlerConfig{}).Handle))
	defer srv.Close()
	defer hub.Close()

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if resp != nil {
		resp.Body.Close()
	}
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, 2*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		runLoop(ctx, ts.Sim, hub, time.Millisecond)
	}()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	cancel()
	<-done

	var f spectate.Frame
	require.NoError(t, msgpack.Unmarshal(data, &f))
	assert.Zero(t, f.Tick%publishEvery)
	assert.Positive(t, f.Tick)
	assert.Len(t, f.Entities, 2, "home city and tree")
	assert.GreaterOrEqual(t, ts.Tick(), f.Tick)
}
