package domain

// StringSet is a set of user identifiers stored as a JSON array. Order is
// insertion order; membership checks are linear (sets here hold a handful of
// uids at most).
type StringSet []string

func (s StringSet) Contains(uid string) bool {
	for _, v := range s {
		if v == uid {
			return true
		}
	}
	return false
}

// Add returns the set with uid present. The receiver is not modified.
func (s StringSet) Add(uid string) StringSet {
	if s.Contains(uid) {
		return s
	}
	out := make(StringSet, 0, len(s)+1)
	out = append(out, s...)
	return append(out, uid)
}

// Remove returns the set with uid absent. The receiver is not modified.
func (s StringSet) Remove(uid string) StringSet {
	out := make(StringSet, 0, len(s))
	for _, v := range s {
		if v != uid {
			out = append(out, v)
		}
	}
	return out
}

// ReactionMap maps a user identifier to that user's single reaction emoji.
// Writing again for the same uid overwrites the previous emoji.
type ReactionMap map[string]string
