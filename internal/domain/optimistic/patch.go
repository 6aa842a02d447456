package optimistic

import (
	"time"

	"github.com/zunou-lab/chatsync/internal/cache"
	"github.com/zunou-lab/chatsync/internal/entity"
	"github.com/zunou-lab/chatsync/internal/model"
)

// buildPatch binds a mutation intent to the cache updater applied to every
// key in the patch set. A nil return means the mutation has no optimistic
// shape (mark-read) and converges through invalidation only. Every updater
// degrades to returning its input unchanged when the cached list does not
// look the way the intent expects.
func buildPatch(intent model.MutationIntent, actor entity.User, tempID string, now time.Time) cache.Updater {
	switch intent.Kind {
	case model.KindCreateMessage:
		return createPatch(intent, actor, tempID, now)

	case model.KindToggleReaction:
		return eachMessage(intent.MessageID, func(msg entity.Message) entity.Message {
			return ToggleReaction(msg, intent.Reaction, actor)
		})

	case model.KindTogglePin:
		pinned := intent.Pinned
		return eachMessage(intent.MessageID, func(msg entity.Message) entity.Message {
			msg.IsPinned = pinned
			return msg
		})

	case model.KindDeleteMessage:
		return eachMessage(intent.MessageID, func(msg entity.Message) entity.Message {
			t := now
			msg.DeletedAt = &t
			return msg
		})

	case model.KindEditMessage:
		content := intent.Content
		return eachMessage(intent.MessageID, func(msg entity.Message) entity.Message {
			msg.Content = content
			msg.IsEdited = true
			msg.UpdatedAt = now
			return msg
		})

	case model.KindMarkRead:
		return nil
	}

	return nil
}

// createPatch prepends the pending placeholder to the newest page. The
// server returns newest-first pages, so page zero is where a fresh message
// belongs in storage order.
func createPatch(intent model.MutationIntent, actor entity.User, tempID string, now time.Time) cache.Updater {
	return func(list entity.CachedList) entity.CachedList {
		if len(list.Pages) == 0 {
			return list
		}

		msg := entity.Message{
			ID:               tempID,
			ThreadID:         intent.Scope.ThreadID,
			TopicID:          intent.Scope.TopicID,
			ReplyThreadID:    intent.Scope.ReplyThreadID,
			Sender:           actor,
			Content:          intent.Content,
			CreatedAt:        now,
			UpdatedAt:        now,
			Pending:          true,
			Attachments:      intent.Attachments,
			RepliedToMessage: intent.RepliedTo,
		}

		list.Pages[0].Data = append([]entity.Message{msg}, list.Pages[0].Data...)
		list.Pages[0].PaginatorInfo.Total++
		return list
	}
}

// eachMessage maps fn over every page, touching only the targeted message.
func eachMessage(messageID string, fn func(entity.Message) entity.Message) cache.Updater {
	return func(list entity.CachedList) entity.CachedList {
		for pi := range list.Pages {
			for mi, msg := range list.Pages[pi].Data {
				if msg.ID == messageID {
					list.Pages[pi].Data[mi] = fn(msg)
				}
			}
		}

		return list
	}
}

// reconcilePatch swaps the placeholder for the server-confirmed message after
// a successful creation. The confirmed entity wins every field; the temp id
// disappears from the cache entirely.
func reconcilePatch(tempID string, confirmed entity.Message) cache.Updater {
	confirmed.Pending = false
	return eachMessage(tempID, func(entity.Message) entity.Message {
		return confirmed.Clone()
	})
}
