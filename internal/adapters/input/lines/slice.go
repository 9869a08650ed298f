package lines

import "io"

// Slice is an in-memory domain.NameSource, used for names that arrive in a request body
type Slice struct {
	names []string
	i     int
}

// FromSlice wraps names without copying them
func FromSlice(names []string) *Slice { return &Slice{names: names} }

// Next returns the next name or io.EOF
func (s *Slice) Next() (string, error) {
	if s.i >= len(s.names) {
		return "", io.EOF
	}
	n := s.names[s.i]
	s.i++
	return n, nil
}
