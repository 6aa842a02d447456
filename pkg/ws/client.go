package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zunou-lab/chatsync/pkg/xcontext"
)

const (
	defaultPingInterval   = 30 * time.Second
	defaultReconnectDelay = 2 * time.Second
	writeWait             = 10 * time.Second
)

// Client is the dialing side of a realtime connection. Incoming messages are
// delivered on R; the channel closes when the connection is shut down or the
// reconnect budget is spent.
type Client struct {
	url    string
	header http.Header
	R      chan []byte

	mu   sync.Mutex
	conn *websocket.Conn
	done chan struct{}
	once sync.Once
}

// Connect dials the realtime endpoint and starts the read loop. A dropped
// connection is redialed with the configured delay; messages sent by the
// server while disconnected are lost, which is why consumers treat the stream
// as a hint and refetch instead of applying deltas.
func Connect(ctx context.Context, url string, header http.Header) (*Client, error) {
	c := &Client{
		url:    url,
		header: header,
		R:      make(chan []byte, 128),
		done:   make(chan struct{}),
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}

	c.conn = conn
	go c.runReader(ctx)
	go c.runPinger(ctx)
	return c, nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.url, c.header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	return conn, err
}

func (c *Client) runReader(ctx context.Context) {
	defer close(c.R)

	cfg := xcontext.Configs(ctx).Realtime
	delay := cfg.ReconnectDelay
	if delay <= 0 {
		delay = defaultReconnectDelay
	}

	conn := c.current()
	retries := 0

	for {
		t, msg, err := conn.ReadMessage()
		if err == nil {
			retries = 0
			if t != websocket.TextMessage && t != websocket.BinaryMessage {
				continue
			}

			// Servers may zlib-compress large payloads; plain frames pass
			// through untouched.
			if origin, err := Decompress(msg); err == nil {
				msg = origin
			}

			select {
			case c.R <- msg:
			case <-c.done:
				return
			}

			continue
		}

		conn.Close()
		if ctx.Err() != nil || c.closed() {
			return
		}

		if cfg.MaxReconnects > 0 && retries >= cfg.MaxReconnects {
			xcontext.Logger(ctx).Errorf("Gave up reconnecting to %s after %d attempts", c.url, retries)
			return
		}

		retries++
		select {
		case <-time.After(delay):
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}

		next, err := c.dial(ctx)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot reconnect to %s: %v", c.url, err)
			conn = c.current()
			continue
		}

		c.mu.Lock()
		c.conn = next
		c.mu.Unlock()
		conn = next
	}
}

func (c *Client) runPinger(ctx context.Context) {
	interval := xcontext.Configs(ctx).Realtime.PingInterval
	if interval <= 0 {
		interval = defaultPingInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			conn := c.current()
			conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) Write(msg []byte, needCompression bool) error {
	if needCompression {
		var err error
		msg, err = Compress(msg)
		if err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		c.mu.Lock()
		c.conn.Close()
		c.mu.Unlock()
	})
}

func (c *Client) current() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

func (c *Client) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
