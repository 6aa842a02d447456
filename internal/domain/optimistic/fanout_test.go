package optimistic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zunou-lab/chatsync/internal/cache"
	"github.com/zunou-lab/chatsync/internal/entity"
	"github.com/zunou-lab/chatsync/internal/model"
)

func containsKey(keys []cache.Key, want cache.Key) bool {
	for _, k := range keys {
		if k.Equal(want) {
			return true
		}
	}

	return false
}

func TestResolveReplyCreation(t *testing.T) {
	store := cache.NewMemoryStore(context.Background())
	resolver := NewResolver(store)

	plan := resolver.Resolve(model.MutationIntent{
		Kind: model.KindCreateMessage,
		Scope: model.Scope{
			Kind:          model.ThreadTeam,
			PulseID:       "pulse-1",
			ReplyThreadID: "reply-1",
		},
	})

	replyKey := cache.NewKey(cache.FamilyReplyThreadMessages, "reply-1")
	require.Equal(t, []cache.Key{replyKey}, plan.Patch)
	require.Equal(t, []cache.Key{replyKey}, plan.Invalidate)
}

func TestResolveTeamCreation(t *testing.T) {
	store := cache.NewMemoryStore(context.Background())
	resolver := NewResolver(store)

	plan := resolver.Resolve(model.MutationIntent{
		Kind: model.KindCreateMessage,
		Scope: model.Scope{
			Kind:    model.ThreadTeam,
			PulseID: "pulse-1",
			TopicID: "topic-1",
		},
	})

	msgKey := cache.NewKey(cache.FamilyTeamThreadMessages, "pulse-1", "topic-1")
	require.Equal(t, []cache.Key{msgKey}, plan.Patch)
	require.True(t, containsKey(plan.Invalidate, cache.NewKey(cache.FamilyTeamThread, "pulse-1")))
	require.True(t, containsKey(plan.Invalidate, cache.NewKey(cache.FamilyTeamThreadTopics, "pulse-1")))
}

func TestResolveReactionCoversThreadVariants(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore(ctx)
	resolver := NewResolver(store)

	// Two cached variants of the same thread, one for a different pulse.
	store.Set(ctx, cache.NewKey(cache.FamilyTeamThreadMessages, "pulse-1", "topic-1"), entity.CachedList{})
	store.Set(ctx, cache.NewKey(cache.FamilyTeamThreadMessages, "pulse-1", ""), entity.CachedList{})
	store.Set(ctx, cache.NewKey(cache.FamilyTeamThreadMessages, "pulse-2", "topic-1"), entity.CachedList{})

	plan := resolver.Resolve(model.MutationIntent{
		Kind:      model.KindToggleReaction,
		MessageID: "m1",
		Reaction:  "👍",
		Scope:     model.Scope{Kind: model.ThreadTeam, PulseID: "pulse-1"},
	})

	require.True(t, containsKey(plan.Patch, cache.NewKey(cache.FamilyTeamMessages, "pulse-1")))
	require.True(t, containsKey(plan.Patch, cache.NewKey(cache.FamilyTeamThreadMessages, "pulse-1", "topic-1")))
	require.True(t, containsKey(plan.Patch, cache.NewKey(cache.FamilyTeamThreadMessages, "pulse-1", "")))
	require.False(t, containsKey(plan.Patch, cache.NewKey(cache.FamilyTeamThreadMessages, "pulse-2", "topic-1")))
}

func TestResolveMissingScopeFailsClosed(t *testing.T) {
	store := cache.NewMemoryStore(context.Background())
	resolver := NewResolver(store)

	plan := resolver.Resolve(model.MutationIntent{
		Kind:      model.KindToggleReaction,
		MessageID: "m1",
		Scope:     model.Scope{Kind: model.ThreadTeam},
	})
	require.Empty(t, plan.Patch)
	require.Empty(t, plan.Invalidate)

	plan = resolver.Resolve(model.MutationIntent{
		Kind:  model.KindCreateMessage,
		Scope: model.Scope{Kind: model.ThreadDirect},
	})
	require.Empty(t, plan.Patch)
}

func TestResolveDirect(t *testing.T) {
	store := cache.NewMemoryStore(context.Background())
	resolver := NewResolver(store)

	plan := resolver.Resolve(model.MutationIntent{
		Kind: model.KindCreateMessage,
		Scope: model.Scope{
			Kind:           model.ThreadDirect,
			ThreadID:       "thread-1",
			OrganizationID: "org-1",
		},
	})

	threadKey := cache.NewKey(cache.FamilyDirectMessages, "thread-1")
	require.Equal(t, []cache.Key{threadKey}, plan.Patch)
	require.True(t, containsKey(plan.Invalidate, threadKey))
	require.True(t, containsKey(plan.Invalidate, cache.NewKey(cache.FamilyDirectUnread, "org-1")))
}

func TestResolveMarkReadHasNoPatch(t *testing.T) {
	store := cache.NewMemoryStore(context.Background())
	resolver := NewResolver(store)

	plan := resolver.Resolve(model.MutationIntent{
		Kind: model.KindMarkRead,
		Scope: model.Scope{
			Kind:           model.ThreadDirect,
			ThreadID:       "thread-1",
			OrganizationID: "org-1",
		},
	})

	require.Empty(t, plan.Patch)
	require.True(t, containsKey(plan.Invalidate, cache.NewKey(cache.FamilyDirectMessages, "thread-1")))
	require.True(t, containsKey(plan.Invalidate, cache.NewKey(cache.FamilyDirectUnread, "org-1")))
}

func TestResolvePinInvalidatesPinnedView(t *testing.T) {
	store := cache.NewMemoryStore(context.Background())
	resolver := NewResolver(store)

	plan := resolver.Resolve(model.MutationIntent{
		Kind:      model.KindTogglePin,
		MessageID: "m1",
		Pinned:    true,
		Scope:     model.Scope{Kind: model.ThreadTeam, PulseID: "pulse-1"},
	})
	require.True(t, containsKey(plan.Invalidate, cache.NewKey(cache.FamilyPinnedTeamMessages, "pulse-1")))

	plan = resolver.Resolve(model.MutationIntent{
		Kind:      model.KindTogglePin,
		MessageID: "m1",
		Pinned:    true,
		Scope:     model.Scope{Kind: model.ThreadDirect, ThreadID: "thread-1"},
	})
	require.True(t, containsKey(plan.Invalidate, cache.NewKey(cache.FamilyPinnedDirect, "thread-1")))
}
