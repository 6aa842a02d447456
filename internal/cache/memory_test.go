package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zunou-lab/chatsync/internal/entity"
)

func testList(ids ...string) entity.CachedList {
	page := entity.Page{
		PaginatorInfo: entity.PaginatorInfo{CurrentPage: 1, LastPage: 1, Total: len(ids)},
	}
	for _, id := range ids {
		page.Data = append(page.Data, entity.Message{ID: id, Content: "msg " + id})
	}

	return entity.CachedList{Pages: []entity.Page{page}, PageParams: []int{1}}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore(context.Background())
	key := NewKey(FamilyDirectMessages, "thread-1")
	store.Set(context.Background(), key, testList("a", "b"))

	got, ok := store.Get(key)
	require.True(t, ok)
	got.Pages[0].Data[0].Content = "mutated"

	again, _ := store.Get(key)
	require.Equal(t, "msg a", again.Pages[0].Data[0].Content)
}

func TestMemoryStoreUpdateAbsentKey(t *testing.T) {
	store := NewMemoryStore(context.Background())
	called := false
	ok := store.Update(context.Background(), NewKey(FamilyDirectMessages, "nope"),
		func(l entity.CachedList) entity.CachedList {
			called = true
			return l
		})

	require.False(t, ok)
	require.False(t, called)
}

func TestMemoryStoreKeysByPrefix(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(ctx)
	store.Set(ctx, NewKey(FamilyTeamThreadMessages, "pulse-1", "topic-1"), testList("a"))
	store.Set(ctx, NewKey(FamilyTeamThreadMessages, "pulse-1", "topic-2"), testList("b"))
	store.Set(ctx, NewKey(FamilyTeamThreadMessages, "pulse-2", "topic-1"), testList("c"))
	store.Set(ctx, NewKey(FamilyTeamMessages, "pulse-1"), testList("d"))

	keys := store.Keys(NewKey(FamilyTeamThreadMessages, "pulse-1"))
	require.Len(t, keys, 2)
	for _, k := range keys {
		require.Equal(t, FamilyTeamThreadMessages, k.Family)
		require.Equal(t, "pulse-1", k.Scope[0])
	}
}

func TestMemoryStoreSnapshotRestoreIsExact(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(ctx)
	key := NewKey(FamilyDirectMessages, "thread-1")

	original := testList("a", "b")
	original.Pages[0].Data[0].GroupedReactions = []entity.GroupedReaction{
		{Reaction: "👍", Count: 1, Users: []entity.User{{ID: "u1", Name: "One"}}},
	}
	store.Set(ctx, key, original)

	snapshot, ok := store.Get(key)
	require.True(t, ok)

	store.Update(ctx, key, func(l entity.CachedList) entity.CachedList {
		l.Pages[0].Data = l.Pages[0].Data[1:]
		return l
	})

	store.Set(ctx, key, snapshot)
	restored, _ := store.Get(key)
	require.Equal(t, original, restored)
}

func TestMemoryStoreCancelInFlight(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(ctx)
	key := NewKey(FamilyDirectMessages, "thread-1")

	rctx, release := store.TrackRead(ctx, key)
	canceled := make(chan struct{})
	go func() {
		<-rctx.Done()
		release()
		close(canceled)
	}()

	store.CancelInFlight(ctx, NewKey(FamilyDirectMessages))

	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("in-flight read was not canceled")
	}
}

func TestMemoryStoreInvalidateRunsRefresher(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(ctx)
	key := NewKey(FamilyDirectMessages, "thread-1")
	store.Set(ctx, key, testList("a"))

	var refreshed int32
	done := make(chan struct{})
	store.RegisterRefresher(FamilyDirectMessages, func(ctx context.Context, got Key) {
		require.True(t, key.Equal(got))
		if atomic.AddInt32(&refreshed, 1) == 1 {
			close(done)
		}
	})

	store.Invalidate(ctx, NewKey(FamilyDirectMessages, "thread-1"))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not run")
	}
}

func TestMemoryStoreInvalidateUncachedKeyStillRefreshes(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(ctx)

	done := make(chan Key, 1)
	store.RegisterRefresher(FamilyDirectUnread, func(ctx context.Context, got Key) {
		done <- got
	})

	prefix := NewKey(FamilyDirectUnread, "org-1")
	store.Invalidate(ctx, prefix)

	select {
	case got := <-done:
		require.True(t, prefix.Equal(got))
	case <-time.After(time.Second):
		t.Fatal("refresher did not run for uncached key")
	}
}

func TestMemoryStoreSubscribe(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(ctx)
	key := NewKey(FamilyTeamMessages, "pulse-1")

	var events []Key
	unsubscribe := store.Subscribe(NewKey(FamilyTeamMessages), func(k Key) {
		events = append(events, k)
	})

	store.Set(ctx, key, testList("a"))
	require.Len(t, events, 1)
	require.True(t, key.Equal(events[0]))

	unsubscribe()
	store.Set(ctx, key, testList("b"))
	require.Len(t, events, 1)
}
