package model

import "github.com/zunou-lab/chatsync/internal/entity"

type MutationKind int

const (
	KindCreateMessage MutationKind = iota
	KindToggleReaction
	KindTogglePin
	KindDeleteMessage
	KindEditMessage
	KindMarkRead
)

func (k MutationKind) String() string {
	switch k {
	case KindCreateMessage:
		return "create_message"
	case KindToggleReaction:
		return "toggle_reaction"
	case KindTogglePin:
		return "toggle_pin"
	case KindDeleteMessage:
		return "delete_message"
	case KindEditMessage:
		return "edit_message"
	case KindMarkRead:
		return "mark_read"
	}

	return "unknown"
}

type ThreadKind int

const (
	ThreadTeam ThreadKind = iota
	ThreadDirect
)

// Scope carries every id a mutation might be addressed by. Ids that do not
// apply to the thread kind stay empty; the fan-out resolver fails closed when
// an id it needs is missing.
type Scope struct {
	Kind           ThreadKind
	OrganizationID string
	PulseID        string
	TopicID        string
	ReplyThreadID  string
	ThreadID       string
}

// MutationIntent is the closed set of optimistic mutations the coordinator
// dispatches on. Fields beyond Kind and Scope are read by the patch function
// matching the kind and ignored by the others.
type MutationIntent struct {
	Kind  MutationKind
	Scope Scope

	// MessageID is the target of everything except a creation.
	MessageID string

	Content     string
	Reaction    string
	Pinned      bool
	Attachments []entity.Attachment
	RepliedTo   *entity.MessageRef
}

// TargetID identifies the entity the latest-wins bookkeeping is keyed by: the
// message for mutations of an existing message, the receiving container for a
// read marker. A creation has no target: every send is a new entity with its
// own temp id, so rapid sends to one thread must all be delivered rather than
// supersede each other.
func (i MutationIntent) TargetID() string {
	if i.Kind == KindCreateMessage {
		return ""
	}

	if i.MessageID != "" {
		return i.MessageID
	}

	if i.Scope.ReplyThreadID != "" {
		return i.Scope.ReplyThreadID
	}

	if i.Scope.ThreadID != "" {
		return i.Scope.ThreadID
	}

	if i.Scope.PulseID != "" {
		return i.Scope.PulseID + "/" + i.Scope.TopicID
	}

	return ""
}
