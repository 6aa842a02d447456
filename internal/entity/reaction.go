package entity

// GroupedReaction aggregates every user who applied the same reaction symbol
// to one message. Invariants: Count always equals len(Users), a group with no
// users is removed rather than kept empty, and a message holds at most one
// group per distinct symbol.
type GroupedReaction struct {
	Reaction string `json:"reaction"`
	Count    int    `json:"count"`
	Users    []User `json:"users"`
}

func (g GroupedReaction) Clone() GroupedReaction {
	out := g
	if g.Users != nil {
		out.Users = make([]User, len(g.Users))
		copy(out.Users, g.Users)
	}

	return out
}

func (g GroupedReaction) HasUser(userID string) bool {
	for _, u := range g.Users {
		if u.ID == userID {
			return true
		}
	}

	return false
}
