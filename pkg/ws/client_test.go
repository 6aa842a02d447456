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
	"github.com/stretchr/testify/require"
	"github.com/zunou-lab/chatsync/config"
	"github.com/zunou-lab/chatsync/pkg/xcontext"
)

var upgrader = websocket.Upgrader{}

func realtimeContext() context.Context {
	return xcontext.WithConfigs(context.Background(), config.Configs{
		Realtime: config.RealtimeConfigs{
			PingInterval:   time.Minute,
			ReconnectDelay: 10 * time.Millisecond,
			MaxReconnects:  3,
		},
	})
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestClientReceivesPlainAndCompressedFrames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("plain frame")))

		compressed, err := Compress([]byte("compressed frame"))
		require.NoError(t, err)
		require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, compressed))

		// Hold the connection open until the client hangs up.
		conn.ReadMessage()
	}))
	defer server.Close()

	client, err := Connect(realtimeContext(), wsURL(server), nil)
	require.NoError(t, err)
	defer client.Close()

	require.Equal(t, "plain frame", string(<-client.R))
	require.Equal(t, "compressed frame", string(<-client.R))
}

func TestClientWriteReachesServer(t *testing.T) {
	received := make(chan []byte, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		received <- msg
	}))
	defer server.Close()

	client, err := Connect(realtimeContext(), wsURL(server), nil)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Write([]byte("ack"), true))

	msg, err := Decompress(<-received)
	require.NoError(t, err)
	require.Equal(t, "ack", string(msg))
}

func TestClientReconnectsAfterDrop(t *testing.T) {
	var conns int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		if atomic.AddInt32(&conns, 1) == 1 {
			// Drop the first connection without a close handshake.
			conn.Close()
			return
		}

		defer conn.Close()
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("after reconnect")))
		conn.ReadMessage()
	}))
	defer server.Close()

	client, err := Connect(realtimeContext(), wsURL(server), nil)
	require.NoError(t, err)
	defer client.Close()

	select {
	case msg := <-client.R:
		require.Equal(t, "after reconnect", string(msg))
	case <-time.After(time.Second):
		t.Fatal("no message after reconnect")
	}
}

func TestCompressRoundTrip(t *testing.T) {
	origin := []byte("the quick brown fox")

	compressed, err := Compress(origin)
	require.NoError(t, err)
	require.NotEqual(t, origin, compressed)

	restored, err := Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, origin, restored)
}
