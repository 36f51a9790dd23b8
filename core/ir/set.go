package ir

// OrderedSet is a set of strings that remembers first-insertion order.
type OrderedSet struct {
	seen  map[string]struct{}
	items []string
}

// Add inserts s and reports whether it was new.
func (s *OrderedSet) Add(v string) bool {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[v]; ok {
		return false
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// Contains reports whether v was added.
func (s *OrderedSet) Contains(v string) bool {
	_, ok := s.seen[v]
	return ok
}

// Items returns the elements in insertion order.
func (s *OrderedSet) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of elements.
func (s *OrderedSet) Len() int {
	return len(s.items)
}
