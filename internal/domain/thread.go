package domain

import (
	"context"

	"github.com/zunou-lab/chatsync/internal/cache"
	"github.com/zunou-lab/chatsync/internal/client"
	"github.com/zunou-lab/chatsync/internal/domain/optimistic"
	"github.com/zunou-lab/chatsync/internal/domain/search"
	"github.com/zunou-lab/chatsync/internal/entity"
	"github.com/zunou-lab/chatsync/internal/model"
	"github.com/zunou-lab/chatsync/pkg/errorx"
	"github.com/zunou-lab/chatsync/pkg/xcontext"
)

type TeamThreadDomain interface {
	GetMessages(ctx context.Context, req *model.GetMessagesRequest) (*model.GetMessagesResponse, error)
	GetReplyMessages(ctx context.Context, req *model.GetReplyMessagesRequest) (*model.GetMessagesResponse, error)
	SendMessage(ctx context.Context, req *model.SendMessageRequest) (*model.SendMessageResponse, error)
	ToggleReaction(ctx context.Context, req *model.ToggleReactionRequest) error
	TogglePin(ctx context.Context, req *model.TogglePinRequest) error
	EditMessage(ctx context.Context, req *model.EditMessageRequest) error
	DeleteMessage(ctx context.Context, req *model.DeleteMessageRequest) error
	PinnedMessages(ctx context.Context, pulseID string) (*model.PinnedMessagesResponse, error)
	SearchMessages(ctx context.Context, req *model.SearchMessagesRequest) (*model.SearchMessagesResponse, error)
}

type teamThreadDomain struct {
	store       cache.Store
	coordinator *optimistic.Coordinator
	chatClient  *client.ChatClient
	searchIndex search.Indexer
}

func NewTeamThreadDomain(
	store cache.Store,
	coordinator *optimistic.Coordinator,
	chatClient *client.ChatClient,
	searchIndex search.Indexer,
) TeamThreadDomain {
	d := &teamThreadDomain{
		store:       store,
		coordinator: coordinator,
		chatClient:  chatClient,
		searchIndex: searchIndex,
	}

	store.RegisterRefresher(cache.FamilyTeamMessages, d.refreshSummary)
	store.RegisterRefresher(cache.FamilyTeamThreadMessages, d.refreshThread)
	store.RegisterRefresher(cache.FamilyReplyThreadMessages, d.refreshReply)
	store.RegisterRefresher(cache.FamilyPinnedTeamMessages, d.refreshPinned)

	return d
}

func (d *teamThreadDomain) GetMessages(
	ctx context.Context, req *model.GetMessagesRequest,
) (*model.GetMessagesResponse, error) {
	if req.PulseID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty pulse id")
	}

	page := req.Page
	if page <= 0 {
		page = 1
	}

	key := cache.NewKey(cache.FamilyTeamThreadMessages, req.PulseID, req.TopicID)
	if list, ok := d.store.Get(key); ok {
		if cached, found := cachedPage(list, page); found {
			return &model.GetMessagesResponse{
				Messages:      optimistic.Chronological(list),
				PaginatorInfo: cached.PaginatorInfo,
			}, nil
		}
	}

	limit := pageLimit(ctx, req.Limit)
	return d.fetchPage(ctx, key, page, func(rctx context.Context) (entity.Page, error) {
		return d.chatClient.TeamThreadMessages(rctx, model.GetMessagesRequest{
			PulseID: req.PulseID,
			TopicID: req.TopicID,
			Page:    page,
			Limit:   limit,
		})
	})
}

func (d *teamThreadDomain) GetReplyMessages(
	ctx context.Context, req *model.GetReplyMessagesRequest,
) (*model.GetMessagesResponse, error) {
	if req.ReplyThreadID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty reply thread id")
	}

	page := req.Page
	if page <= 0 {
		page = 1
	}

	key := cache.NewKey(cache.FamilyReplyThreadMessages, req.ReplyThreadID)
	if list, ok := d.store.Get(key); ok {
		if cached, found := cachedPage(list, page); found {
			return &model.GetMessagesResponse{
				Messages:      optimistic.Chronological(list),
				PaginatorInfo: cached.PaginatorInfo,
			}, nil
		}
	}

	limit := pageLimit(ctx, req.Limit)
	return d.fetchPage(ctx, key, page, func(rctx context.Context) (entity.Page, error) {
		return d.chatClient.ReplyThreadMessages(rctx, model.GetReplyMessagesRequest{
			ReplyThreadID: req.ReplyThreadID,
			Page:          page,
			Limit:         limit,
		})
	})
}

// fetchPage fetches one page under read tracking and merges it into the
// cached list. A read canceled by a mutation on the same view returns
// errorx.Canceled instead of half-written data.
func (d *teamThreadDomain) fetchPage(
	ctx context.Context, key cache.Key, page int,
	fetch func(ctx context.Context) (entity.Page, error),
) (*model.GetMessagesResponse, error) {
	rctx, release := d.store.TrackRead(ctx, key)
	defer release()

	fetched, err := fetch(rctx)
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

func (d *teamThreadDomain) SendMessage(
	ctx context.Context, req *model.SendMessageRequest,
) (*model.SendMessageResponse, error) {
	if req.PulseID == "" && req.ReplyThreadID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty pulse id")
	}

	intent := model.MutationIntent{
		Kind:        model.KindCreateMessage,
		Content:     req.Content,
		Attachments: req.Attachments,
		RepliedTo:   req.RepliedTo,
		Scope: model.Scope{
			Kind:          model.ThreadTeam,
			PulseID:       req.PulseID,
			TopicID:       req.TopicID,
			ReplyThreadID: req.ReplyThreadID,
		},
	}

	confirmed, err := d.coordinator.Mutate(ctx, intent,
		func(mctx context.Context) (*entity.Message, error) {
			return d.chatClient.SendTeamMessage(mctx, *req)
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

func (d *teamThreadDomain) ToggleReaction(ctx context.Context, req *model.ToggleReactionRequest) error {
	intent := model.MutationIntent{
		Kind:      model.KindToggleReaction,
		MessageID: req.MessageID,
		Reaction:  req.Reaction,
		Scope: model.Scope{
			Kind:          model.ThreadTeam,
			PulseID:       req.PulseID,
			ReplyThreadID: req.ReplyThreadID,
		},
	}

	_, err := d.coordinator.Mutate(ctx, intent,
		func(mctx context.Context) (*entity.Message, error) {
			return nil, d.chatClient.ToggleReaction(mctx, *req)
		})
	return err
}

func (d *teamThreadDomain) TogglePin(ctx context.Context, req *model.TogglePinRequest) error {
	intent := model.MutationIntent{
		Kind:      model.KindTogglePin,
		MessageID: req.MessageID,
		Pinned:    req.Pinned,
		Scope: model.Scope{
			Kind:          model.ThreadTeam,
			PulseID:       req.PulseID,
			ReplyThreadID: req.ReplyThreadID,
			ThreadID:      req.ThreadID,
		},
	}

	_, err := d.coordinator.Mutate(ctx, intent,
		func(mctx context.Context) (*entity.Message, error) {
			return nil, d.chatClient.TogglePin(mctx, *req)
		})
	return err
}

func (d *teamThreadDomain) EditMessage(ctx context.Context, req *model.EditMessageRequest) error {
	intent := model.MutationIntent{
		Kind:      model.KindEditMessage,
		MessageID: req.MessageID,
		Content:   req.Content,
		Scope: model.Scope{
			Kind:          model.ThreadTeam,
			PulseID:       req.PulseID,
			TopicID:       req.TopicID,
			ReplyThreadID: req.ReplyThreadID,
		},
	}

	_, err := d.coordinator.Mutate(ctx, intent,
		func(mctx context.Context) (*entity.Message, error) {
			return nil, d.chatClient.EditMessage(mctx, *req)
		})
	return err
}

func (d *teamThreadDomain) DeleteMessage(ctx context.Context, req *model.DeleteMessageRequest) error {
	intent := model.MutationIntent{
		Kind:      model.KindDeleteMessage,
		MessageID: req.MessageID,
		Scope: model.Scope{
			Kind:          model.ThreadTeam,
			PulseID:       req.PulseID,
			TopicID:       req.TopicID,
			ReplyThreadID: req.ReplyThreadID,
		},
	}

	_, err := d.coordinator.Mutate(ctx, intent,
		func(mctx context.Context) (*entity.Message, error) {
			return nil, d.chatClient.DeleteMessage(mctx, *req)
		})
	return err
}

func (d *teamThreadDomain) PinnedMessages(
	ctx context.Context, pulseID string,
) (*model.PinnedMessagesResponse, error) {
	if pulseID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty pulse id")
	}

	key := cache.NewKey(cache.FamilyPinnedTeamMessages, pulseID)
	if list, ok := d.store.Get(key); ok && len(list.Pages) > 0 {
		return &model.PinnedMessagesResponse{Messages: list.Pages[0].Data}, nil
	}

	messages, err := d.chatClient.PinnedTeamMessages(ctx, pulseID)
	if err != nil {
		return nil, classifyError(ctx, err)
	}

	d.store.Set(ctx, key, singlePageList(messages))
	return &model.PinnedMessagesResponse{Messages: messages}, nil
}

func (d *teamThreadDomain) SearchMessages(
	ctx context.Context, req *model.SearchMessagesRequest,
) (*model.SearchMessagesResponse, error) {
	if req.PulseID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty pulse id")
	}

	searchKey := cache.NewKey(cache.FamilyMessageSearch, req.PulseID, req.Query)
	if list, ok := d.store.Get(searchKey); ok && len(list.Pages) > 0 {
		return &model.SearchMessagesResponse{Messages: list.Pages[0].Data}, nil
	}

	limit := pageLimit(ctx, req.Limit)
	ids, err := d.searchIndex.Search(search.DocumentForPulse(req.PulseID), req.Query, 0, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot search messages: %v", err)
		return nil, errorx.New(errorx.Internal, "Cannot search messages")
	}

	// The index only stores ids; the message bodies come from whichever
	// cached view still holds them.
	keys := []cache.Key{cache.NewKey(cache.FamilyTeamMessages, req.PulseID)}
	keys = append(keys, d.store.Keys(cache.NewKey(cache.FamilyTeamThreadMessages, req.PulseID))...)

	var found []entity.Message
	for _, id := range ids {
		for _, key := range keys {
			list, ok := d.store.Get(key)
			if !ok {
				continue
			}

			if pi, mi, ok := list.FindMessage(id); ok {
				found = append(found, list.Pages[pi].Data[mi])
				break
			}
		}
	}

	d.store.Set(ctx, searchKey, singlePageList(found))
	return &model.SearchMessagesResponse{Messages: found}, nil
}

func (d *teamThreadDomain) refreshSummary(ctx context.Context, key cache.Key) {
	if len(key.Scope) < 1 {
		return
	}

	pulseID := key.Scope[0]
	d.refetch(ctx, key, func(page, limit int) (entity.Page, error) {
		return d.chatClient.TeamMessages(ctx, model.GetMessagesRequest{
			PulseID: pulseID, Page: page, Limit: limit,
		})
	})
}

func (d *teamThreadDomain) refreshThread(ctx context.Context, key cache.Key) {
	if len(key.Scope) < 1 {
		return
	}

	pulseID := key.Scope[0]
	topicID := ""
	if len(key.Scope) > 1 {
		topicID = key.Scope[1]
	}

	d.refetch(ctx, key, func(page, limit int) (entity.Page, error) {
		return d.chatClient.TeamThreadMessages(ctx, model.GetMessagesRequest{
			PulseID: pulseID, TopicID: topicID, Page: page, Limit: limit,
		})
	})
}

func (d *teamThreadDomain) refreshReply(ctx context.Context, key cache.Key) {
	if len(key.Scope) < 1 {
		return
	}

	replyThreadID := key.Scope[0]
	d.refetch(ctx, key, func(page, limit int) (entity.Page, error) {
		return d.chatClient.ReplyThreadMessages(ctx, model.GetReplyMessagesRequest{
			ReplyThreadID: replyThreadID, Page: page, Limit: limit,
		})
	})
}

func (d *teamThreadDomain) refreshPinned(ctx context.Context, key cache.Key) {
	if len(key.Scope) < 1 {
		return
	}

	messages, err := d.chatClient.PinnedTeamMessages(ctx, key.Scope[0])
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot refresh %s: %v", key.String(), err)
		return
	}

	d.store.Set(ctx, key, singlePageList(messages))
}

// refetch rebuilds a cached list by refetching every page parameter it held.
// One failing page aborts the whole refresh; the stale list stays in place
// rather than mixing generations.
func (d *teamThreadDomain) refetch(
	ctx context.Context, key cache.Key, fetch func(page, limit int) (entity.Page, error),
) {
	params := []int{1}
	if list, ok := d.store.Get(key); ok && len(list.PageParams) > 0 {
		params = list.PageParams
	}

	limit := pageLimit(ctx, 0)
	fresh := entity.CachedList{}
	for _, param := range params {
		page, err := fetch(param, limit)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot refresh %s: %v", key.String(), err)
			return
		}

		fresh = optimistic.MergePage(fresh, param, page)
	}

	d.store.Set(ctx, key, fresh)
}

func singlePageList(messages []entity.Message) entity.CachedList {
	return entity.CachedList{
		Pages: []entity.Page{{
			Data:          messages,
			PaginatorInfo: entity.PaginatorInfo{CurrentPage: 1, LastPage: 1, Total: len(messages)},
		}},
		PageParams: []int{1},
	}
}
