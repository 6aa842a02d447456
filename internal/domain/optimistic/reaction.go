package optimistic

import (
	"unicode/utf8"

	"github.com/zunou-lab/chatsync/internal/entity"
	"golang.org/x/exp/slices"
)

// ToggleReaction computes the grouped-reaction state of one message after the
// acting user toggles a reaction symbol. Pure: the input message is not
// modified. Not safe for two mutation paths to race on the same cache entry;
// the coordinator's cancel-then-patch sequence provides the exclusivity.
func ToggleReaction(msg entity.Message, reaction string, actor entity.User) entity.Message {
	out := msg.Clone()

	idx := slices.IndexFunc(out.GroupedReactions, func(g entity.GroupedReaction) bool {
		return g.Reaction == reaction
	})

	switch {
	case idx < 0:
		out.GroupedReactions = append(out.GroupedReactions, entity.GroupedReaction{
			Reaction: reaction,
			Count:    1,
			Users:    []entity.User{actor},
		})

	case out.GroupedReactions[idx].HasUser(actor.ID):
		group := out.GroupedReactions[idx]
		users := make([]entity.User, 0, len(group.Users)-1)
		for _, u := range group.Users {
			if u.ID != actor.ID {
				users = append(users, u)
			}
		}

		if len(users) == 0 {
			out.GroupedReactions = append(
				out.GroupedReactions[:idx], out.GroupedReactions[idx+1:]...)
		} else {
			group.Users = users
			group.Count = len(users)
			out.GroupedReactions[idx] = group
		}

	default:
		group := out.GroupedReactions[idx]
		group.Users = append(group.Users, actor)
		group.Count = len(group.Users)
		out.GroupedReactions[idx] = group
	}

	sortGroups(out.GroupedReactions)
	return out
}

// sortGroups orders groups by the leading code point of the reaction symbol.
// Two independent patches of the same message (say a local toggle and a
// background refetch) must converge to identical ordering, so the sort is
// stable and keyed on nothing mutable.
func sortGroups(groups []entity.GroupedReaction) {
	slices.SortStableFunc(groups, func(a, b entity.GroupedReaction) bool {
		ra, _ := utf8.DecodeRuneInString(a.Reaction)
		rb, _ := utf8.DecodeRuneInString(b.Reaction)
		return ra < rb
	})
}
