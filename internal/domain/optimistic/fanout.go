package optimistic

import (
	"github.com/zunou-lab/chatsync/internal/cache"
	"github.com/zunou-lab/chatsync/internal/model"
)

// Plan is the cache footprint of one mutation: the concrete keys to patch
// optimistically, the prefixes whose in-flight reads must be canceled first,
// and the prefixes to invalidate once the mutation settles. The settle set is
// deliberately broader than the patch set: it pulls in summary views (unread
// counters, topic lists) that derive from message state but are never patched
// directly.
type Plan struct {
	Patch      []cache.Key
	Cancel     []cache.Key
	Invalidate []cache.Key
}

type Resolver struct {
	store cache.Store
}

func NewResolver(store cache.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve maps an intent to its plan. Missing scope ids fail closed: the
// affected path is left out of the patch set and state converges through the
// settle-time invalidation instead of risking a patch on the wrong key.
func (r *Resolver) Resolve(intent model.MutationIntent) Plan {
	switch intent.Scope.Kind {
	case model.ThreadDirect:
		return r.resolveDirect(intent)
	default:
		return r.resolveTeam(intent)
	}
}

func (r *Resolver) resolveTeam(intent model.MutationIntent) Plan {
	scope := intent.Scope

	// A reply mutation lives in its own thread view. Creation touches
	// nothing else; the parent thread only hears about it at settle time.
	if intent.Kind == model.KindCreateMessage {
		if scope.ReplyThreadID != "" {
			key := cache.NewKey(cache.FamilyReplyThreadMessages, scope.ReplyThreadID)
			return Plan{
				Patch:      []cache.Key{key},
				Cancel:     []cache.Key{key},
				Invalidate: []cache.Key{key},
			}
		}

		if scope.PulseID == "" {
			return Plan{}
		}

		key := cache.NewKey(cache.FamilyTeamThreadMessages, scope.PulseID, scope.TopicID)
		return Plan{
			Patch:  []cache.Key{key},
			Cancel: []cache.Key{key},
			Invalidate: []cache.Key{
				key,
				cache.NewKey(cache.FamilyTeamThread, scope.PulseID),
				cache.NewKey(cache.FamilyTeamThreadTopics, scope.PulseID),
			},
		}
	}

	if scope.PulseID == "" && scope.ReplyThreadID == "" {
		return Plan{}
	}

	var plan Plan
	if scope.PulseID != "" {
		plan.Patch = append(plan.Patch, cache.NewKey(cache.FamilyTeamMessages, scope.PulseID))

		// Every cached page-variant of the thread carries its own copy of
		// the message, unread-only and paginated views included.
		variants := cache.NewKey(cache.FamilyTeamThreadMessages, scope.PulseID)
		plan.Patch = append(plan.Patch, r.store.Keys(variants)...)

		plan.Cancel = append(plan.Cancel,
			cache.NewKey(cache.FamilyTeamMessages, scope.PulseID), variants)
		plan.Invalidate = append(plan.Invalidate,
			cache.NewKey(cache.FamilyTeamMessages, scope.PulseID),
			variants,
			cache.NewKey(cache.FamilyTeamThreadTopics, scope.PulseID),
		)
	}

	if scope.ReplyThreadID != "" {
		replyKey := cache.NewKey(cache.FamilyReplyThreadMessages, scope.ReplyThreadID)
		plan.Patch = append(plan.Patch, replyKey)
		plan.Cancel = append(plan.Cancel, replyKey)
		plan.Invalidate = append(plan.Invalidate, replyKey)
	}

	if intent.Kind == model.KindTogglePin {
		pinScope := scope.ThreadID
		if pinScope == "" {
			pinScope = scope.PulseID
		}
		if pinScope != "" {
			plan.Invalidate = append(plan.Invalidate,
				cache.NewKey(cache.FamilyPinnedTeamMessages, pinScope))
		}
	}

	return plan
}

func (r *Resolver) resolveDirect(intent model.MutationIntent) Plan {
	scope := intent.Scope
	if scope.ThreadID == "" {
		return Plan{}
	}

	key := cache.NewKey(cache.FamilyDirectMessages, scope.ThreadID)

	plan := Plan{
		Cancel:     []cache.Key{key},
		Invalidate: []cache.Key{key},
	}

	// Read markers have no optimistic shape; everything else patches the
	// thread view.
	if intent.Kind != model.KindMarkRead {
		plan.Patch = []cache.Key{key}
	}

	if scope.OrganizationID != "" {
		plan.Invalidate = append(plan.Invalidate,
			cache.NewKey(cache.FamilyDirectUnread, scope.OrganizationID))
	}

	if intent.Kind == model.KindTogglePin {
		plan.Invalidate = append(plan.Invalidate,
			cache.NewKey(cache.FamilyPinnedDirect, scope.ThreadID))
	}

	return plan
}
