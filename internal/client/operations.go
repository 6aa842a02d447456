package client

import (
	"context"

	"github.com/zunou-lab/chatsync/internal/entity"
	"github.com/zunou-lab/chatsync/internal/model"
)

const messageFields = `
    id
    threadId
    topicId
    replyThreadId
    content
    createdAt
    updatedAt
    deletedAt
    isEdited
    isRead
    isPinned
    sender { id name email gravatar }
    attachments { id fileKey fileName fileType url }
    repliedToMessage { id content isEdited deletedAt sender { id name email gravatar } }
    groupedReactions { reaction count users { id name email gravatar } }`

const paginatorFields = `
    currentPage
    lastPage
    hasMorePages
    total`

const teamMessagesDoc = `query teamMessages($pulseId: ID!, $page: Int!, $limit: Int!) {
  teamMessages(pulseId: $pulseId, page: $page, limit: $limit) {
    data {` + messageFields + `
    }
    paginatorInfo {` + paginatorFields + `
    }
  }
}`

const teamThreadMessagesDoc = `query teamThreadMessages($pulseId: ID!, $topicId: ID, $page: Int!, $limit: Int!) {
  teamThreadMessages(pulseId: $pulseId, topicId: $topicId, page: $page, limit: $limit) {
    data {` + messageFields + `
    }
    paginatorInfo {` + paginatorFields + `
    }
  }
}`

const replyThreadMessagesDoc = `query replyTeamThreadMessages($replyThreadId: ID!, $page: Int!, $limit: Int!) {
  replyTeamThreadMessages(replyThreadId: $replyThreadId, page: $page, limit: $limit) {
    data {` + messageFields + `
    }
    paginatorInfo {` + paginatorFields + `
    }
  }
}`

const directMessagesDoc = `query directMessages($threadId: ID!, $page: Int!, $limit: Int!) {
  directMessages(threadId: $threadId, page: $page, limit: $limit) {
    data {` + messageFields + `
    }
    paginatorInfo {` + paginatorFields + `
    }
  }
}`

const pinnedTeamMessagesDoc = `query pinnedTeamMessages($pulseId: ID!) {
  pinnedTeamMessages(pulseId: $pulseId) {` + messageFields + `
  }
}`

const pinnedDirectMessagesDoc = `query pinnedDirectMessages($threadId: ID!) {
  pinnedDirectMessages(threadId: $threadId) {` + messageFields + `
  }
}`

const sendTeamMessageDoc = `mutation sendTeamMessage($pulseId: ID!, $topicId: ID, $replyThreadId: ID, $content: String!, $attachments: [AttachmentInput!], $repliedTo: MessageRefInput) {
  sendTeamMessage(pulseId: $pulseId, topicId: $topicId, replyThreadId: $replyThreadId, content: $content, attachments: $attachments, repliedTo: $repliedTo) {` + messageFields + `
  }
}`

const toggleReactionDoc = `mutation toggleMessageReaction($messageId: ID!, $reaction: String!) {
  toggleMessageReaction(messageId: $messageId, reaction: $reaction) {
    id
  }
}`

const togglePinDoc = `mutation toggleMessagePin($messageId: ID!, $pinned: Boolean!) {
  toggleMessagePin(messageId: $messageId, pinned: $pinned) {
    id
  }
}`

const editMessageDoc = `mutation editMessage($messageId: ID!, $content: String!) {
  editMessage(messageId: $messageId, content: $content) {
    id
  }
}`

const deleteMessageDoc = `mutation deleteMessage($messageId: ID!) {
  deleteMessage(messageId: $messageId) {
    id
  }
}`

const getOrCreateDirectThreadDoc = `mutation getOrCreateDirectThread($organizationId: ID!, $receiverId: ID!, $page: Int!) {
  getOrCreateDirectThread(organizationId: $organizationId, receiverId: $receiverId, page: $page) {
    threadId
    messages {
      data {` + messageFields + `
      }
      paginatorInfo {` + paginatorFields + `
      }
    }
  }
}`

const sendDirectMessageDoc = `mutation sendDirectMessage($organizationId: ID!, $threadId: ID!, $content: String!, $attachments: [AttachmentInput!], $repliedTo: MessageRefInput) {
  sendDirectMessage(organizationId: $organizationId, threadId: $threadId, content: $content, attachments: $attachments, repliedTo: $repliedTo) {` + messageFields + `
  }
}`

const toggleDirectReactionDoc = `mutation toggleDirectMessageReaction($threadId: ID!, $messageId: ID!, $reaction: String!) {
  toggleDirectMessageReaction(threadId: $threadId, messageId: $messageId, reaction: $reaction) {
    id
  }
}`

const markThreadReadDoc = `mutation markThreadRead($organizationId: ID!, $threadId: ID!) {
  markThreadRead(organizationId: $organizationId, threadId: $threadId)
}`

// ChatClient wraps the GraphQL caller with one typed method per server
// operation the sync engine performs.
type ChatClient struct {
	caller GraphQLCaller
}

func NewChatClient(caller GraphQLCaller) *ChatClient {
	return &ChatClient{caller: caller}
}

func (c *ChatClient) TeamMessages(
	ctx context.Context, req model.GetMessagesRequest,
) (entity.Page, error) {
	var out struct {
		TeamMessages entity.Page `json:"teamMessages"`
	}
	if err := c.caller.Query(ctx, teamMessagesDoc, req, &out); err != nil {
		return entity.Page{}, err
	}

	return out.TeamMessages, nil
}

func (c *ChatClient) TeamThreadMessages(
	ctx context.Context, req model.GetMessagesRequest,
) (entity.Page, error) {
	var out struct {
		TeamThreadMessages entity.Page `json:"teamThreadMessages"`
	}
	if err := c.caller.Query(ctx, teamThreadMessagesDoc, req, &out); err != nil {
		return entity.Page{}, err
	}

	return out.TeamThreadMessages, nil
}

func (c *ChatClient) ReplyThreadMessages(
	ctx context.Context, req model.GetReplyMessagesRequest,
) (entity.Page, error) {
	var out struct {
		ReplyThreadMessages entity.Page `json:"replyTeamThreadMessages"`
	}
	if err := c.caller.Query(ctx, replyThreadMessagesDoc, req, &out); err != nil {
		return entity.Page{}, err
	}

	return out.ReplyThreadMessages, nil
}

func (c *ChatClient) DirectMessages(
	ctx context.Context, threadID string, page, limit int,
) (entity.Page, error) {
	var out struct {
		DirectMessages entity.Page `json:"directMessages"`
	}

	variables := map[string]any{"threadId": threadID, "page": page, "limit": limit}
	if err := c.caller.Query(ctx, directMessagesDoc, variables, &out); err != nil {
		return entity.Page{}, err
	}

	return out.DirectMessages, nil
}

func (c *ChatClient) PinnedTeamMessages(ctx context.Context, pulseID string) ([]entity.Message, error) {
	var out struct {
		PinnedTeamMessages []entity.Message `json:"pinnedTeamMessages"`
	}

	variables := map[string]any{"pulseId": pulseID}
	if err := c.caller.Query(ctx, pinnedTeamMessagesDoc, variables, &out); err != nil {
		return nil, err
	}

	return out.PinnedTeamMessages, nil
}

func (c *ChatClient) PinnedDirectMessages(ctx context.Context, threadID string) ([]entity.Message, error) {
	var out struct {
		PinnedDirectMessages []entity.Message `json:"pinnedDirectMessages"`
	}

	variables := map[string]any{"threadId": threadID}
	if err := c.caller.Query(ctx, pinnedDirectMessagesDoc, variables, &out); err != nil {
		return nil, err
	}

	return out.PinnedDirectMessages, nil
}

func (c *ChatClient) SendTeamMessage(
	ctx context.Context, req model.SendMessageRequest,
) (*entity.Message, error) {
	var out struct {
		SendTeamMessage entity.Message `json:"sendTeamMessage"`
	}
	if err := c.caller.Mutate(ctx, sendTeamMessageDoc, req, &out); err != nil {
		return nil, err
	}

	return &out.SendTeamMessage, nil
}

func (c *ChatClient) ToggleReaction(ctx context.Context, req model.ToggleReactionRequest) error {
	return c.caller.Mutate(ctx, toggleReactionDoc, req, nil)
}

func (c *ChatClient) TogglePin(ctx context.Context, req model.TogglePinRequest) error {
	return c.caller.Mutate(ctx, togglePinDoc, req, nil)
}

func (c *ChatClient) EditMessage(ctx context.Context, req model.EditMessageRequest) error {
	return c.caller.Mutate(ctx, editMessageDoc, req, nil)
}

func (c *ChatClient) DeleteMessage(ctx context.Context, req model.DeleteMessageRequest) error {
	return c.caller.Mutate(ctx, deleteMessageDoc, req, nil)
}

func (c *ChatClient) GetOrCreateDirectThread(
	ctx context.Context, req model.GetOrCreateDirectThreadRequest,
) (string, entity.Page, error) {
	var out struct {
		GetOrCreateDirectThread struct {
			ThreadID string      `json:"threadId"`
			Messages entity.Page `json:"messages"`
		} `json:"getOrCreateDirectThread"`
	}
	if err := c.caller.Mutate(ctx, getOrCreateDirectThreadDoc, req, &out); err != nil {
		return "", entity.Page{}, err
	}

	return out.GetOrCreateDirectThread.ThreadID, out.GetOrCreateDirectThread.Messages, nil
}

func (c *ChatClient) SendDirectMessage(
	ctx context.Context, req model.SendDirectMessageRequest,
) (*entity.Message, error) {
	var out struct {
		SendDirectMessage entity.Message `json:"sendDirectMessage"`
	}
	if err := c.caller.Mutate(ctx, sendDirectMessageDoc, req, &out); err != nil {
		return nil, err
	}

	return &out.SendDirectMessage, nil
}

func (c *ChatClient) ToggleDirectReaction(ctx context.Context, req model.ToggleDirectReactionRequest) error {
	return c.caller.Mutate(ctx, toggleDirectReactionDoc, req, nil)
}

func (c *ChatClient) MarkThreadRead(ctx context.Context, req model.MarkReadRequest) error {
	return c.caller.Mutate(ctx, markThreadReadDoc, req, nil)
}
