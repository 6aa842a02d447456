package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/zunou-lab/chatsync/internal/cache"
	"github.com/zunou-lab/chatsync/pkg/ws"
	"github.com/zunou-lab/chatsync/pkg/xcontext"
)

// serverEvent is the payload the realtime gateway pushes when another client
// changes a thread. It carries only the affected view, never message bodies;
// the listener turns it into an invalidation and lets refreshers refetch.
type serverEvent struct {
	Family string   `json:"family"`
	Scope  []string `json:"scope"`
}

type RealtimeListener struct {
	store  cache.Store
	tokens TokenSource
}

func NewRealtimeListener(store cache.Store, tokens TokenSource) *RealtimeListener {
	return &RealtimeListener{store: store, tokens: tokens}
}

// Run connects to the realtime gateway and forwards server events into the
// cache until the context is canceled. It blocks; callers run it on its own
// goroutine.
func (l *RealtimeListener) Run(ctx context.Context) error {
	cfg := xcontext.Configs(ctx).Realtime
	if cfg.URL == "" {
		return nil
	}

	token, err := l.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, err := ws.Connect(ctx, cfg.URL, header)
	if err != nil {
		return err
	}
	defer conn.Close()

	for {
		select {
		case msg, ok := <-conn.R:
			if !ok {
				return nil
			}

			l.handle(ctx, msg)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *RealtimeListener) handle(ctx context.Context, msg []byte) {
	var event serverEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		xcontext.Logger(ctx).Warnf("Got a malformed realtime event: %v", err)
		return
	}

	if event.Family == "" {
		return
	}

	l.store.Invalidate(ctx, cache.NewKey(cache.Family(event.Family), event.Scope...))
}
