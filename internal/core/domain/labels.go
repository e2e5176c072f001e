package domain

// Well-known provider labels the reconciliation logic cares about.
const (
	LabelInbox  = "INBOX"
	LabelTrash  = "TRASH"
	LabelUnread = "UNREAD"
)

// LabelSet is an unordered, duplicate-free set of label identifiers. The zero
// value is an empty set. Stored as a slice for cheap JSON round-trips; all
// mutations go through the methods below, which maintain the no-duplicates
// invariant.
type LabelSet []string

// NewLabelSet builds a set from the given labels, discarding duplicates while
// keeping first-seen order.
func NewLabelSet(labels ...string) LabelSet {
	var s LabelSet
	for _, l := range labels {
		s = s.Add(l)
	}
	return s
}

// Has reports whether the label is a member.
func (s LabelSet) Has(label string) bool {
	for _, l := range s {
		if l == label {
			return true
		}
	}
	return false
}

// Add returns the set with the label included. Adding an existing member is a
// no-op.
func (s LabelSet) Add(label string) LabelSet {
	if label == "" || s.Has(label) {
		return s
	}
	return append(s, label)
}

// Remove returns the set without the label. Removing an absent member is a
// no-op.
func (s LabelSet) Remove(label string) LabelSet {
	for i, l := range s {
		if l == label {
			out := make(LabelSet, 0, len(s)-1)
			out = append(out, s[:i]...)
			return append(out, s[i+1:]...)
		}
	}
	return s
}

// Apply performs the reconciliation set algebra: explicit removals first, then
// explicit additions.
func (s LabelSet) Apply(add, remove []string) LabelSet {
	out := s.Clone()
	for _, l := range remove {
		out = out.Remove(l)
	}
	for _, l := range add {
		out = out.Add(l)
	}
	return out
}

// SetTrashed moves the set between the trashed and restored states. TRASH and
// INBOX are mutually exclusive members.
func (s LabelSet) SetTrashed(trashed bool) LabelSet {
	if trashed {
		return s.Remove(LabelInbox).Add(LabelTrash)
	}
	return s.Remove(LabelTrash).Add(LabelInbox)
}

// Clone returns an independent copy of the set.
func (s LabelSet) Clone() LabelSet {
	if s == nil {
		return nil
	}
	out := make(LabelSet, len(s))
	copy(out, s)
	return out
}

// Equal reports whether both sets contain the same members, order ignored.
func (s LabelSet) Equal(other LabelSet) bool {
	if len(s) != len(other) {
		return false
	}
	for _, l := range s {
		if !other.Has(l) {
			return false
		}
	}
	return true
}
