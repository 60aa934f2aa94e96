package util

// Set is a membership set backed by a map.
type Set[K comparable] map[K]struct{}

// SetOf builds a Set from the given values.
func SetOf[K comparable](values ...K) Set[K] {
	s := make(Set[K], len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Has reports whether v is in the set.
func (s Set[K]) Has(v K) bool {
	_, ok := s[v]
	return ok
}

// Add inserts v and reports whether it was newly added.
func (s Set[K]) Add(v K) bool {
	if _, ok := s[v]; ok {
		return false
	}
	s[v] = struct{}{}
	return true
}
