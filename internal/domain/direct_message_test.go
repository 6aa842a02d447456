package domain

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"github.com/zunou-lab/chatsync/internal/cache"
	"github.com/zunou-lab/chatsync/internal/client"
	"github.com/zunou-lab/chatsync/internal/common"
	"github.com/zunou-lab/chatsync/internal/domain/optimistic"
	"github.com/zunou-lab/chatsync/internal/entity"
	"github.com/zunou-lab/chatsync/internal/model"
	"github.com/zunou-lab/chatsync/internal/testutil"
	"github.com/zunou-lab/chatsync/pkg/errorx"
)

func newDirectDomain(
	t *testing.T, caller *client.MockGraphQLCaller,
) (DirectMessageDomain, cache.Store) {
	t.Helper()

	store := cache.NewMemoryStore(testutil.MockContext(t))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	coordinator := optimistic.NewCoordinator(
		store,
		optimistic.NewResolver(store),
		common.NewTempAllocator(node),
		func() (entity.User, bool) { return testutil.SampleUser(), true },
	)

	return NewDirectMessageDomain(store, coordinator, client.NewChatClient(caller)), store
}

func TestGetOrCreateThreadSeedsCache(t *testing.T) {
	ctx := testutil.MockContext(t)

	caller := &client.MockGraphQLCaller{
		MutateFunc: func(ctx context.Context, doc string, variables any, out any) error {
			require.Contains(t, doc, "getOrCreateDirectThread")
			return testutil.DecodeInto(out, map[string]any{
				"getOrCreateDirectThread": map[string]any{
					"threadId": "thread-7",
					"messages": testutil.PageOf(1, 1, false, testutil.Message("m1", "hi")),
				},
			})
		},
	}

	d, store := newDirectDomain(t, caller)

	resp, err := d.GetOrCreateThread(ctx, &model.GetOrCreateDirectThreadRequest{
		OrganizationID: "org-1", ReceiverID: "user-2",
	})
	require.NoError(t, err)
	require.Equal(t, "thread-7", resp.ThreadID)
	require.Len(t, resp.Messages, 1)

	_, ok := store.Get(cache.NewKey(cache.FamilyDirectMessages, "thread-7"))
	require.True(t, ok)
}

func TestGetOrCreateThreadRequiresReceiver(t *testing.T) {
	ctx := testutil.MockContext(t)
	d, _ := newDirectDomain(t, &client.MockGraphQLCaller{})

	_, err := d.GetOrCreateThread(ctx, &model.GetOrCreateDirectThreadRequest{OrganizationID: "org-1"})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.BadRequest})
}

func TestSendDirectMessage(t *testing.T) {
	ctx := testutil.MockContext(t)

	caller := &client.MockGraphQLCaller{
		QueryFunc: func(ctx context.Context, doc string, variables any, out any) error {
			page := testutil.PageOf(1, 1, false, testutil.Message("m1", "hi"))
			return testutil.DecodeInto(out, map[string]any{"directMessages": page})
		},
		MutateFunc: func(ctx context.Context, doc string, variables any, out any) error {
			if strings.Contains(doc, "sendDirectMessage") {
				confirmed := testutil.Message("srv-3", "hello back")
				return testutil.DecodeInto(out, map[string]any{"sendDirectMessage": confirmed})
			}

			return nil
		},
	}

	d, store := newDirectDomain(t, caller)

	_, err := d.GetMessages(ctx, "thread-7", 1, 0)
	require.NoError(t, err)

	resp, err := d.SendMessage(ctx, &model.SendDirectMessageRequest{
		OrganizationID: "org-1", ThreadID: "thread-7", Content: "hello back",
	})
	require.NoError(t, err)
	require.Equal(t, "srv-3", resp.ID)

	list, _ := store.Get(cache.NewKey(cache.FamilyDirectMessages, "thread-7"))
	require.Equal(t, "srv-3", list.Pages[0].Data[0].ID)
	require.False(t, list.Pages[0].Data[0].Pending)
}

func TestDirectToggleReactionOptimistic(t *testing.T) {
	ctx := testutil.MockContext(t)

	caller := &client.MockGraphQLCaller{
		QueryFunc: func(ctx context.Context, doc string, variables any, out any) error {
			page := testutil.PageOf(1, 1, false, testutil.Message("m1", "hi"))
			return testutil.DecodeInto(out, map[string]any{"directMessages": page})
		},
		MutateFunc: func(ctx context.Context, doc string, variables any, out any) error {
			return nil
		},
	}

	d, store := newDirectDomain(t, caller)

	_, err := d.GetMessages(ctx, "thread-7", 1, 0)
	require.NoError(t, err)

	err = d.ToggleReaction(ctx, &model.ToggleDirectReactionRequest{
		OrganizationID: "org-1", ThreadID: "thread-7", MessageID: "m1", Reaction: "👍",
	})
	require.NoError(t, err)

	list, _ := store.Get(cache.NewKey(cache.FamilyDirectMessages, "thread-7"))
	groups := list.Pages[0].Data[0].GroupedReactions
	require.Len(t, groups, 1)
	require.Equal(t, "👍", groups[0].Reaction)
	require.Equal(t, []entity.User{testutil.SampleUser()}, groups[0].Users)
}

func TestDirectTogglePinOptimistic(t *testing.T) {
	ctx := testutil.MockContext(t)

	caller := &client.MockGraphQLCaller{
		QueryFunc: func(ctx context.Context, doc string, variables any, out any) error {
			page := testutil.PageOf(1, 1, false, testutil.Message("m1", "hi"))
			return testutil.DecodeInto(out, map[string]any{"directMessages": page})
		},
		MutateFunc: func(ctx context.Context, doc string, variables any, out any) error {
			require.Contains(t, doc, "toggleMessagePin")
			return nil
		},
	}

	d, store := newDirectDomain(t, caller)

	_, err := d.GetMessages(ctx, "thread-7", 1, 0)
	require.NoError(t, err)

	err = d.TogglePin(ctx, &model.TogglePinRequest{
		ThreadID: "thread-7", MessageID: "m1", Pinned: true,
	})
	require.NoError(t, err)

	list, _ := store.Get(cache.NewKey(cache.FamilyDirectMessages, "thread-7"))
	require.True(t, list.Pages[0].Data[0].IsPinned)
}

func TestMarkReadLeavesMessagesUntouched(t *testing.T) {
	ctx := testutil.MockContext(t)

	caller := &client.MockGraphQLCaller{
		QueryFunc: func(ctx context.Context, doc string, variables any, out any) error {
			page := testutil.PageOf(1, 1, false, testutil.Message("m1", "hi"))
			return testutil.DecodeInto(out, map[string]any{"directMessages": page})
		},
		MutateFunc: func(ctx context.Context, doc string, variables any, out any) error {
			require.Contains(t, doc, "markThreadRead")
			return nil
		},
	}

	d, store := newDirectDomain(t, caller)

	_, err := d.GetMessages(ctx, "thread-7", 1, 0)
	require.NoError(t, err)

	key := cache.NewKey(cache.FamilyDirectMessages, "thread-7")
	before, _ := store.Get(key)

	err = d.MarkRead(ctx, &model.MarkReadRequest{OrganizationID: "org-1", ThreadID: "thread-7"})
	require.NoError(t, err)

	after, _ := store.Get(key)
	require.Equal(t, before, after)
}
