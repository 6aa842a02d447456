package cache

import "strings"

// Family tags the entity family of a cached view. The scoping ids that follow
// the family are positional: see the constructors in fanout resolution for
// the exact layout of each family.
type Family string

const (
	FamilyTeamMessages        Family = "teamMessages"
	FamilyTeamThreadMessages  Family = "teamThreadMessages"
	FamilyReplyThreadMessages Family = "replyTeamThreadMessages"
	FamilyDirectMessages      Family = "directMessages"
	FamilyPinnedTeamMessages  Family = "pinnedTeamMessages"
	FamilyPinnedDirect        Family = "pinnedDirectMessages"
	FamilyMessageSearch       Family = "messageSearch"
	FamilyTeamThread          Family = "teamThread"
	FamilyTeamThreadTopics    Family = "teamThreadTopics"
	FamilyDirectUnread        Family = "directMessagesUnread"
)

// Key addresses one cached list or single-entity record. Keys compare by
// structural equality of the family and the full scope tuple; a shorter scope
// acts as a prefix covering every longer key below it.
type Key struct {
	Family Family
	Scope  []string
}

func NewKey(family Family, scope ...string) Key {
	return Key{Family: family, Scope: scope}
}

func (k Key) String() string {
	if len(k.Scope) == 0 {
		return string(k.Family)
	}

	return string(k.Family) + "/" + strings.Join(k.Scope, "/")
}

func (k Key) Equal(other Key) bool {
	if k.Family != other.Family || len(k.Scope) != len(other.Scope) {
		return false
	}

	for i := range k.Scope {
		if k.Scope[i] != other.Scope[i] {
			return false
		}
	}

	return true
}

// HasPrefix reports whether k sits at or below the given prefix key.
func (k Key) HasPrefix(prefix Key) bool {
	if k.Family != prefix.Family || len(prefix.Scope) > len(k.Scope) {
		return false
	}

	for i := range prefix.Scope {
		if k.Scope[i] != prefix.Scope[i] {
			return false
		}
	}

	return true
}
