package session

// Selection is an optional index into a list. The zero value is unset.
type Selection struct {
	index int
	valid bool
}

// Index returns the selected index and whether one is set.
func (s Selection) Index() (int, bool) {
	return s.index, s.valid
}

// Clear unsets the selection.
func (s *Selection) Clear() {
	*s = Selection{}
}

// Set selects i if it lies within a list of length n.
func (s *Selection) Set(i, n int) bool {
	if i < 0 || i >= n {
		return false
	}
	s.index, s.valid = i, true
	return true
}

// Up moves towards index 0, wrapping from 0 to n-1. From unset it selects
// the last index. On an empty list it is a no-op and the selection stays unset.
func (s *Selection) Up(n int) {
	if n <= 0 {
		s.Clear()
		return
	}
	switch {
	case !s.valid || s.index <= 0 || s.index >= n:
		s.index = n - 1
	default:
		s.index--
	}
	s.valid = true
}

// Down moves towards n-1, wrapping from n-1 to 0. From unset it selects
// index 0. On an empty list it is a no-op and the selection stays unset.
func (s *Selection) Down(n int) {
	if n <= 0 {
		s.Clear()
		return
	}
	switch {
	case !s.valid || s.index >= n-1 || s.index < 0:
		s.index = 0
	default:
		s.index++
	}
	s.valid = true
}
