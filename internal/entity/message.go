package entity

import "time"

type Attachment struct {
	ID       string `json:"id"`
	FileKey  string `json:"fileKey"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	URL      string `json:"url"`
}

// MessageRef is the shallow back-reference a message keeps to the message it
// replies to. It is never patched optimistically; the referenced message has
// its own cache entries.
type MessageRef struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	Sender    User       `json:"sender"`
	IsEdited  bool       `json:"isEdited"`
	DeletedAt *time.Time `json:"deletedAt"`
}

// Message covers direct messages, team-thread messages and replies. The
// container reference that applies depends on the thread kind; unused ids
// stay empty.
type Message struct {
	ID            string `json:"id"`
	ThreadID      string `json:"threadId"`
	TopicID       string `json:"topicId"`
	ReplyThreadID string `json:"replyThreadId"`

	Sender  User   `json:"sender"`
	Content string `json:"content"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt"`

	IsEdited bool `json:"isEdited"`
	IsRead   bool `json:"isRead"`
	IsPinned bool `json:"isPinned"`

	// Pending marks an optimistic message that the server has not confirmed
	// yet. Cleared during reconciliation.
	Pending bool `json:"pending"`

	Attachments      []Attachment      `json:"attachments"`
	RepliedToMessage *MessageRef       `json:"repliedToMessage"`
	GroupedReactions []GroupedReaction `json:"groupedReactions"`
}

func (m Message) Clone() Message {
	out := m

	if m.DeletedAt != nil {
		t := *m.DeletedAt
		out.DeletedAt = &t
	}

	if m.RepliedToMessage != nil {
		ref := *m.RepliedToMessage
		if m.RepliedToMessage.DeletedAt != nil {
			t := *m.RepliedToMessage.DeletedAt
			ref.DeletedAt = &t
		}
		out.RepliedToMessage = &ref
	}

	if m.Attachments != nil {
		out.Attachments = make([]Attachment, len(m.Attachments))
		copy(out.Attachments, m.Attachments)
	}

	if m.GroupedReactions != nil {
		out.GroupedReactions = make([]GroupedReaction, len(m.GroupedReactions))
		for i, gr := range m.GroupedReactions {
			out.GroupedReactions[i] = gr.Clone()
		}
	}

	return out
}
