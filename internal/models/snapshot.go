package models

// GroupSnapshot is a group together with everything that decides its balances.
// Stores load and persist a snapshot as one unit.
type GroupSnapshot struct {
	Group    Group
	Members  []Member
	Items    []Item
	Payments []Payment
}

// Member returns the membership record for a user, or nil.
func (s *GroupSnapshot) Member(userID string) *Member {
	for i := range s.Members {
		if s.Members[i].UserID == userID {
			return &s.Members[i]
		}
	}
	return nil
}

// Item returns the item with the given id, or nil.
func (s *GroupSnapshot) Item(itemID string) *Item {
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			return &s.Items[i]
		}
	}
	return nil
}

// Participates reports whether the user owns or belongs to the group.
func (s *GroupSnapshot) Participates(userID string) bool {
	return userID != "" && (s.Group.OwnerID == userID || s.Member(userID) != nil)
}

// MemberIDs returns the members' user ids in stored order.
func (s *GroupSnapshot) MemberIDs() []string {
	ids := make([]string, 0, len(s.Members))
	for _, m := range s.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// Clone returns a deep copy, so a caller can mutate it without touching the original.
func (s *GroupSnapshot) Clone() *GroupSnapshot {
	out := &GroupSnapshot{
		Group:    s.Group,
		Members:  append([]Member(nil), s.Members...),
		Items:    make([]Item, len(s.Items)),
		Payments: append([]Payment(nil), s.Payments...),
	}
	for i, item := range s.Items {
		item.Assignments = append([]ItemAssignment(nil), item.Assignments...)
		out.Items[i] = item
	}
	return out
}
