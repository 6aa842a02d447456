package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zunou-lab/chatsync/config"
	"github.com/zunou-lab/chatsync/pkg/xcontext"
	"github.com/zunou-lab/chatsync/pkg/xredis"
)

func mirrorContext() context.Context {
	return xcontext.WithConfigs(context.Background(), config.Configs{
		Redis: config.RedisConfigs{
			Addr:                "localhost:6379",
			InvalidationChannel: "chatsync.invalidation",
		},
	})
}

func TestMirrorStoresAndLoadsEntries(t *testing.T) {
	ctx := mirrorContext()
	redisClient := xredis.NewMockClient()
	mirror := NewRedisMirror(ctx, redisClient)

	store := NewMemoryStore(ctx)
	store.SetMirror(mirror)

	key := NewKey(FamilyDirectMessages, "thread-1")
	store.Set(ctx, key, testList("a", "b"))

	loaded, ok := mirror.Load(ctx, key)
	require.True(t, ok)
	require.Len(t, loaded.Pages[0].Data, 2)
	require.Equal(t, "a", loaded.Pages[0].Data[0].ID)

	store.Delete(ctx, key)
	_, ok = mirror.Load(ctx, key)
	require.False(t, ok)
}

func TestMirrorPropagatesInvalidations(t *testing.T) {
	ctx := mirrorContext()
	redisClient := xredis.NewMockClient()

	storeA := NewMemoryStore(ctx)
	mirrorA := NewRedisMirror(ctx, redisClient)
	storeA.SetMirror(mirrorA)

	storeB := NewMemoryStore(ctx)
	mirrorB := NewRedisMirror(ctx, redisClient)
	storeB.SetMirror(mirrorB)

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go mirrorA.Run(runCtx, storeA)
	go mirrorB.Run(runCtx, storeB)
	// Yield so both Run goroutines subscribe before the one-shot publish below;
	// on GOMAXPROCS=1 the main goroutine would otherwise reach Invalidate first
	// and the note would be delivered to nobody.
	time.Sleep(50 * time.Millisecond)

	key := NewKey(FamilyDirectMessages, "thread-1")
	storeB.Set(ctx, key, testList("a"))

	var mu sync.Mutex
	var eventsA, eventsB []Key
	unsubA := storeA.Subscribe(NewKey(FamilyDirectMessages), func(k Key) {
		mu.Lock()
		eventsA = append(eventsA, k)
		mu.Unlock()
	})
	defer unsubA()
	unsubB := storeB.Subscribe(NewKey(FamilyDirectMessages), func(k Key) {
		mu.Lock()
		eventsB = append(eventsB, k)
		mu.Unlock()
	})
	defer unsubB()

	storeA.Invalidate(ctx, key)

	// The remote store hears about the invalidation through the channel.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(eventsB) == 1
	}, time.Second, time.Millisecond)

	// The origin must not re-apply its own note on top of the local pass.
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, eventsA, 1)
	require.True(t, key.Equal(eventsB[0]))
}
