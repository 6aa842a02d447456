package xredis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"
)

var ErrNotFound = errors.New("redis: nil")

// MockClient is an in-memory stand-in used by tests. TTLs are ignored;
// pub/sub delivers synchronously to every subscriber of the channel.
type MockClient struct {
	mu   sync.Mutex
	data map[string]string
	subs map[string][]chan string
}

func NewMockClient() *MockClient {
	return &MockClient{
		data: make(map[string]string),
		subs: make(map[string][]chan string),
	}
}

func (c *MockClient) Exist(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

func (c *MockClient) Del(ctx context.Context, key ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range key {
		delete(c.data, k)
	}
	return nil
}

func (c *MockClient) Keys(ctx context.Context, pattern string) ([]string, error) {
	prefix := strings.TrimSuffix(pattern, "*")

	c.mu.Lock()
	defer c.mu.Unlock()
	var keys []string
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (c *MockClient) Set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *MockClient) SetObj(ctx context.Context, key string, obj any, ttl time.Duration) error {
	b, err := json.Marshal(obj)
	if err != nil {
		return err
	}

	return c.Set(ctx, key, string(b))
}

func (c *MockClient) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return s, nil
}

func (c *MockClient) GetObj(ctx context.Context, key string, v any) error {
	s, err := c.Get(ctx, key)
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(s), v)
}

func (c *MockClient) Publish(ctx context.Context, channel, payload string) error {
	c.mu.Lock()
	subs := append([]chan string{}, c.subs[channel]...)
	c.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

func (c *MockClient) Subscribe(ctx context.Context, channel string) (<-chan string, func()) {
	ch := make(chan string, 64)

	c.mu.Lock()
	c.subs[channel] = append(c.subs[channel], ch)
	c.mu.Unlock()

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, other := range c.subs[channel] {
			if other == ch {
				c.subs[channel] = append(c.subs[channel][:i], c.subs[channel][i+1:]...)
				close(ch)
				return
			}
		}
	}
}
