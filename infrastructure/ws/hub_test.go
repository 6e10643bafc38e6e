package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := NewHub().(*Hub)
	go hub.Run(ctx)
	return hub
}

func TestHub_RegisterAndSend(t *testing.T) {
	hub := startHub(t)

	a1 := NewClient("a", hub, nil)
	a2 := NewClient("a", hub, nil)
	b := NewClient("b", hub, nil)
	hub.RegisterClient(a1)
	hub.RegisterClient(a2)
	hub.RegisterClient(b)

	assert.Eventually(t, func() bool { return hub.GetClientCount() == 3 }, time.Second, 5*time.Millisecond)
	assert.True(t, hub.IsOnline("a"))

	hub.SendToClient("a", []byte("hello"))
	assert.Equal(t, []byte("hello"), <-a1.send)
	assert.Equal(t, []byte("hello"), <-a2.send)
	assert.Len(t, b.send, 0)
}

func TestHub_UnregisterClosesSendAndCallsBack(t *testing.T) {
	hub := startHub(t)

	var unregistered atomic.Int32
	hub.SetOnClientUnregister(func(c *UserClient) error {
		unregistered.Add(1)
		return nil
	})

	c := NewClient("a", hub, nil)
	hub.RegisterClient(c)
	hub.UnregisterClient(c)
	hub.UnregisterClient(c)

	assert.Eventually(t, func() bool { return unregistered.Load() == 1 }, time.Second, 5*time.Millisecond)
	_, ok := <-c.send
	assert.False(t, ok)
	assert.False(t, c.Send([]byte("late")))
	assert.False(t, hub.IsOnline("a"))
}

func TestClient_SendDropsWhenFull(t *testing.T) {
	c := NewClient("a", nil, nil)
	for i := 0; i < sendBufferSize; i++ {
		require.True(t, c.Send([]byte("x")))
	}
	assert.False(t, c.Send([]byte("overflow")))
}

// serveClient upgrades one connection for userID and hands the client to
// register. The returned conn is the remote end.
func serveClient(t *testing.T, hub IHub, userID string, register func(*UserClient)) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(userID, hub, conn)
		register(client)
		go client.WritePump()
		client.ReadPump(func([]byte) {})
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHub_DisconnectUserClosesEveryConnection(t *testing.T) {
	hub := startHub(t)

	a1 := serveClient(t, hub, "a", hub.RegisterClient)
	a2 := serveClient(t, hub, "a", hub.RegisterClient)
	serveClient(t, hub, "b", hub.RegisterClient)
	require.Eventually(t, func() bool { return hub.GetClientCount() == 3 }, time.Second, 5*time.Millisecond)

	hub.DisconnectUser("a")

	for _, conn := range []*websocket.Conn{a1, a2} {
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		_, _, err := conn.ReadMessage()
		assert.Error(t, err)
	}
	assert.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, hub.IsOnline("a"))
	assert.True(t, hub.IsOnline("b"))
}
