package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zunou-lab/chatsync/internal/entity"
	"github.com/zunou-lab/chatsync/pkg/xcontext"
	"github.com/zunou-lab/chatsync/pkg/xredis"
)

// Mirror is a best-effort replica of the in-process store. It lets several
// dashboard processes of the same user share warm pages and hear about each
// other's invalidations; the in-process store stays the source consulted by
// every synchronous read.
type Mirror interface {
	Store(ctx context.Context, key Key, list entity.CachedList)
	Drop(ctx context.Context, key Key)
	Invalidate(ctx context.Context, prefix Key)
	Load(ctx context.Context, key Key) (entity.CachedList, bool)
}

const mirrorTTL = 10 * time.Minute

type invalidationNote struct {
	Origin string `json:"origin"`
	Prefix string `json:"prefix"`
}

type redisMirror struct {
	client  xredis.Client
	channel string

	// origin distinguishes our own published invalidations from everyone
	// else's on the shared channel.
	origin string
}

func NewRedisMirror(ctx context.Context, client xredis.Client) *redisMirror {
	return &redisMirror{
		client:  client,
		channel: xcontext.Configs(ctx).Redis.InvalidationChannel,
		origin:  uuid.NewString(),
	}
}

func (m *redisMirror) Store(ctx context.Context, key Key, list entity.CachedList) {
	if err := m.client.SetObj(ctx, m.redisKey(key), list, mirrorTTL); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot mirror cache entry %s: %v", key, err)
	}
}

func (m *redisMirror) Drop(ctx context.Context, key Key) {
	if err := m.client.Del(ctx, m.redisKey(key)); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot drop mirrored entry %s: %v", key, err)
	}
}

func (m *redisMirror) Load(ctx context.Context, key Key) (entity.CachedList, bool) {
	var list entity.CachedList
	if err := m.client.GetObj(ctx, m.redisKey(key), &list); err != nil {
		return entity.CachedList{}, false
	}

	return list, true
}

func (m *redisMirror) Invalidate(ctx context.Context, prefix Key) {
	note, err := json.Marshal(invalidationNote{Origin: m.origin, Prefix: prefix.String()})
	if err != nil {
		return
	}

	if err := m.client.Publish(ctx, m.channel, string(note)); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot publish invalidation of %s: %v", prefix, err)
	}
}

// Run pumps remote invalidations into the local store until ctx is done.
// Locally re-published notes carry our origin id and are skipped, which keeps
// two mirrors from ping-ponging the same invalidation forever.
func (m *redisMirror) Run(ctx context.Context, store *memoryStore) {
	notes, closeSub := m.client.Subscribe(ctx, m.channel)
	defer closeSub()

	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-notes:
			if !ok {
				return
			}

			var note invalidationNote
			if err := json.Unmarshal([]byte(payload), &note); err != nil {
				xcontext.Logger(ctx).Warnf("Malformed invalidation note: %v", err)
				continue
			}

			if note.Origin == m.origin {
				continue
			}

			store.invalidate(ctx, parseKey(note.Prefix), false)
		}
	}
}

func (m *redisMirror) redisKey(key Key) string {
	return "chatsync/" + key.String()
}

func parseKey(s string) Key {
	parts := strings.Split(s, "/")
	if len(parts) == 1 {
		return Key{Family: Family(parts[0])}
	}

	return Key{Family: Family(parts[0]), Scope: parts[1:]}
}
