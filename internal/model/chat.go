package model

import "github.com/zunou-lab/chatsync/internal/entity"

type GetMessagesRequest struct {
	PulseID string `json:"pulseId"`
	TopicID string `json:"topicId,omitempty"`
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
}

type GetMessagesResponse struct {
	// Messages is in chronological order, ready for display.
	Messages      []entity.Message
	PaginatorInfo entity.PaginatorInfo
}

type GetReplyMessagesRequest struct {
	ReplyThreadID string `json:"replyThreadId"`
	Page          int    `json:"page"`
	Limit         int    `json:"limit"`
}

type SendMessageRequest struct {
	PulseID       string              `json:"pulseId"`
	TopicID       string              `json:"topicId,omitempty"`
	ReplyThreadID string              `json:"replyThreadId,omitempty"`
	Content       string              `json:"content"`
	Attachments   []entity.Attachment `json:"attachments,omitempty"`
	RepliedTo     *entity.MessageRef  `json:"repliedTo,omitempty"`
}

type SendMessageResponse struct {
	// ID is the server-confirmed message id after reconciliation.
	ID string
}

type ToggleReactionRequest struct {
	PulseID       string `json:"pulseId"`
	ReplyThreadID string `json:"replyThreadId,omitempty"`
	MessageID     string `json:"messageId"`
	Reaction      string `json:"reaction"`
}

type TogglePinRequest struct {
	PulseID       string `json:"pulseId,omitempty"`
	ReplyThreadID string `json:"replyThreadId,omitempty"`
	ThreadID      string `json:"threadId,omitempty"`
	MessageID     string `json:"messageId"`
	Pinned        bool   `json:"pinned"`
}

type EditMessageRequest struct {
	PulseID       string `json:"pulseId"`
	TopicID       string `json:"topicId,omitempty"`
	ReplyThreadID string `json:"replyThreadId,omitempty"`
	MessageID     string `json:"messageId"`
	Content       string `json:"content"`
}

type DeleteMessageRequest struct {
	PulseID       string `json:"pulseId"`
	TopicID       string `json:"topicId,omitempty"`
	ReplyThreadID string `json:"replyThreadId,omitempty"`
	MessageID     string `json:"messageId"`
}

type SearchMessagesRequest struct {
	PulseID string `json:"pulseId"`
	Query   string `json:"query"`
	Limit   int    `json:"limit"`
}

type SearchMessagesResponse struct {
	Messages []entity.Message
}

type PinnedMessagesResponse struct {
	Messages []entity.Message
}

type GetOrCreateDirectThreadRequest struct {
	OrganizationID string `json:"organizationId"`
	ReceiverID     string `json:"receiverId"`
	Page           int    `json:"page"`
}

type GetOrCreateDirectThreadResponse struct {
	ThreadID      string
	Messages      []entity.Message
	PaginatorInfo entity.PaginatorInfo
}

type SendDirectMessageRequest struct {
	OrganizationID string              `json:"organizationId"`
	ThreadID       string              `json:"threadId"`
	Content        string              `json:"content"`
	Attachments    []entity.Attachment `json:"attachments,omitempty"`
	RepliedTo      *entity.MessageRef  `json:"repliedTo,omitempty"`
}

type ToggleDirectReactionRequest struct {
	OrganizationID string `json:"organizationId"`
	ThreadID       string `json:"threadId"`
	MessageID      string `json:"messageId"`
	Reaction       string `json:"reaction"`
}

type MarkReadRequest struct {
	OrganizationID string `json:"organizationId"`
	ThreadID       string `json:"threadId"`
}
