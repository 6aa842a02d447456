package domain

import (
	"context"

	"github.com/zunou-lab/chatsync/internal/cache"
	"github.com/zunou-lab/chatsync/internal/client"
	"github.com/zunou-lab/chatsync/internal/domain/optimistic"
	"github.com/zunou-lab/chatsync/internal/entity"
	"github.com/zunou-lab/chatsync/internal/model"
	"github.com/zunou-lab/chatsync/pkg/errorx"
	"github.com/zunou-lab/chatsync/pkg/xcontext"
)

type DirectMessageDomain interface {
	GetOrCreateThread(ctx context.Context, req *model.GetOrCreateDirectThreadRequest) (*model.GetOrCreateDirectThreadResponse, error)
	GetMessages(ctx context.Context, threadID string, page, limit int) (*model.GetMessagesResponse, error)
	SendMessage(ctx context.Context, req *model.SendDirectMessageRequest) (*model.SendMessageResponse, error)
	ToggleReaction(ctx context.Context, req *model.ToggleDirectReactionRequest) error
	TogglePin(ctx context.Context, req *model.TogglePinRequest) error
	PinnedMessages(ctx context.Context, threadID string) (*model.PinnedMessagesResponse, error)
	MarkRead(ctx context.Context, req *model.MarkReadRequest) error
}

type directMessageDomain struct {
	store       cache.Store
	coordinator *optimistic.Coordinator
	chatClient  *client.ChatClient
}

func NewDirectMessageDomain(
	store cache.Store,
	coordinator *optimistic.Coordinator,
	chatClient *client.ChatClient,
) DirectMessageDomain {
	d := &directMessageDomain{
		store:       store,
		coordinator: coordinator,
		chatClient:  chatClient,
	}

	store.RegisterRefresher(cache.FamilyDirectMessages, d.refreshThread)
	store.RegisterRefresher(cache.FamilyPinnedDirect, d.refreshPinned)

	return d
}

// GetOrCreateThread resolves the one-on-one thread with the receiver,
// creating it server-side on first contact, and seeds the cache with the
// returned page.
func (d *directMessageDomain) GetOrCreateThread(
	ctx context.Context, req *model.GetOrCreateDirectThreadRequest,
) (*model.GetOrCreateDirectThreadResponse, error) {
	if req.ReceiverID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty receiver id")
	}

	page := req.Page
	if page <= 0 {
		page = 1
	}

	threadID, fetched, err := d.chatClient.GetOrCreateDirectThread(ctx,
		model.GetOrCreateDirectThreadRequest{
			OrganizationID: req.OrganizationID,
			ReceiverID:     req.ReceiverID,
			Page:           page,
		})
	if err != nil {
		return nil, classifyError(ctx, err)
	}

	key := cache.NewKey(cache.FamilyDirectMessages, threadID)
	list, _ := d.store.Get(key)
	list = optimistic.MergePage(list, page, fetched)
	d.store.Set(ctx, key, list)

	return &model.GetOrCreateDirectThreadResponse{
		ThreadID:      threadID,
		Messages:      optimistic.Chronological(list),
		PaginatorInfo: fetched.PaginatorInfo,
	}, nil
}

func (d *directMessageDomain) GetMessages(
	ctx context.Context, threadID string, page, limit int,
) (*model.GetMessagesResponse, error) {
	if threadID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty thread id")
	}

	if page <= 0 {
		page = 1
	}

	key := cache.NewKey(cache.FamilyDirectMessages, threadID)
	if list, ok := d.store.Get(key); ok {
		if cached, found := cachedPage(list, page); found {
			return &model.GetMessagesResponse{
				Messages:      optimistic.Chronological(list),
				PaginatorInfo: cached.PaginatorInfo,
			}, nil
		}
	}

	rctx, release := d.store.TrackRead(ctx, key)
	defer release()

	fetched, err := d.chatClient.DirectMessages(rctx, threadID, page, pageLimit(ctx, limit))
	if err != nil {
		if rctx.Err() != nil && ctx.Err() == nil {
			return nil, errorx.New(errorx.Canceled, "Read superseded by a mutation")
		}

		return nil, classifyError(ctx, err)
	}

	list, _ := d.store.Get(key)
	list = optimistic.MergePage(list, page, fetched)
	d.store.Set(ctx, key, list)

	return &model.GetMessagesResponse{
		Messages:      optimistic.Chronological(list),
		PaginatorInfo: fetched.PaginatorInfo,
	}, nil
}

func (d *directMessageDomain) SendMessage(
	ctx context.Context, req *model.SendDirectMessageRequest,
) (*model.SendMessageResponse, error) {
	if req.ThreadID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty thread id")
	}

	intent := model.MutationIntent{
		Kind:        model.KindCreateMessage,
		Content:     req.Content,
		Attachments: req.Attachments,
		RepliedTo:   req.RepliedTo,
		Scope: model.Scope{
			Kind:           model.ThreadDirect,
			OrganizationID: req.OrganizationID,
			ThreadID:       req.ThreadID,
		},
	}

	confirmed, err := d.coordinator.Mutate(ctx, intent,
		func(mctx context.Context) (*entity.Message, error) {
			return d.chatClient.SendDirectMessage(mctx, *req)
		})
	if err != nil {
		return nil, err
	}

	resp := &model.SendMessageResponse{}
	if confirmed != nil {
		resp.ID = confirmed.ID
	}

	return resp, nil
}

func (d *directMessageDomain) ToggleReaction(
	ctx context.Context, req *model.ToggleDirectReactionRequest,
) error {
	intent := model.MutationIntent{
		Kind:      model.KindToggleReaction,
		MessageID: req.MessageID,
		Reaction:  req.Reaction,
		Scope: model.Scope{
			Kind:           model.ThreadDirect,
			OrganizationID: req.OrganizationID,
			ThreadID:       req.ThreadID,
		},
	}

	_, err := d.coordinator.Mutate(ctx, intent,
		func(mctx context.Context) (*entity.Message, error) {
			return nil, d.chatClient.ToggleDirectReaction(mctx, *req)
		})
	return err
}

func (d *directMessageDomain) TogglePin(
	ctx context.Context, req *model.TogglePinRequest,
) error {
	intent := model.MutationIntent{
		Kind:      model.KindTogglePin,
		MessageID: req.MessageID,
		Pinned:    req.Pinned,
		Scope: model.Scope{
			Kind:     model.ThreadDirect,
			ThreadID: req.ThreadID,
		},
	}

	_, err := d.coordinator.Mutate(ctx, intent,
		func(mctx context.Context) (*entity.Message, error) {
			return nil, d.chatClient.TogglePin(mctx, *req)
		})
	return err
}

func (d *directMessageDomain) PinnedMessages(
	ctx context.Context, threadID string,
) (*model.PinnedMessagesResponse, error) {
	if threadID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty thread id")
	}

	key := cache.NewKey(cache.FamilyPinnedDirect, threadID)
	if list, ok := d.store.Get(key); ok && len(list.Pages) > 0 {
		return &model.PinnedMessagesResponse{Messages: list.Pages[0].Data}, nil
	}

	messages, err := d.chatClient.PinnedDirectMessages(ctx, threadID)
	if err != nil {
		return nil, classifyError(ctx, err)
	}

	d.store.Set(ctx, key, singlePageList(messages))
	return &model.PinnedMessagesResponse{Messages: messages}, nil
}

// MarkRead has no optimistic patch; the unread counters converge through the
// settle-time invalidation of their view.
func (d *directMessageDomain) MarkRead(ctx context.Context, req *model.MarkReadRequest) error {
	intent := model.MutationIntent{
		Kind: model.KindMarkRead,
		Scope: model.Scope{
			Kind:           model.ThreadDirect,
			OrganizationID: req.OrganizationID,
			ThreadID:       req.ThreadID,
		},
	}

	_, err := d.coordinator.Mutate(ctx, intent,
		func(mctx context.Context) (*entity.Message, error) {
			return nil, d.chatClient.MarkThreadRead(mctx, *req)
		})
	return err
}

func (d *directMessageDomain) refreshThread(ctx context.Context, key cache.Key) {
	if len(key.Scope) < 1 {
		return
	}

	threadID := key.Scope[0]
	params := []int{1}
	if list, ok := d.store.Get(key); ok && len(list.PageParams) > 0 {
		params = list.PageParams
	}

	limit := pageLimit(ctx, 0)
	fresh := entity.CachedList{}
	for _, param := range params {
		page, err := d.chatClient.DirectMessages(ctx, threadID, param, limit)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot refresh %s: %v", key.String(), err)
			return
		}

		fresh = optimistic.MergePage(fresh, param, page)
	}

	d.store.Set(ctx, key, fresh)
}

func (d *directMessageDomain) refreshPinned(ctx context.Context, key cache.Key) {
	if len(key.Scope) < 1 {
		return
	}

	messages, err := d.chatClient.PinnedDirectMessages(ctx, key.Scope[0])
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot refresh %s: %v", key.String(), err)
		return
	}

	d.store.Set(ctx, key, singlePageList(messages))
}
