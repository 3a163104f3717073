package state

// ReadSet is an insertion-ordered set of item identities.
type ReadSet struct {
	items []string
	index map[string]struct{}
}

func NewReadSet(ids ...string) *ReadSet {
	s := &ReadSet{index: make(map[string]struct{}, len(ids))}
	s.Merge(ids)
	return s
}

func (s *ReadSet) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Add reports whether id was not already present.
func (s *ReadSet) Add(id string) bool {
	if s.Contains(id) {
		return false
	}
	s.index[id] = struct{}{}
	s.items = append(s.items, id)
	return true
}

// Merge adds every id and returns how many were new.
func (s *ReadSet) Merge(ids []string) int {
	added := 0
	for _, id := range ids {
		if s.Add(id) {
			added++
		}
	}
	return added
}

func (s *ReadSet) Len() int {
	return len(s.items)
}

func (s *ReadSet) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

func (s *ReadSet) Clear() int {
	n := len(s.items)
	s.items = nil
	s.index = make(map[string]struct{})
	return n
}
