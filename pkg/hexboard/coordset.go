package hexboard

import "slices"

// coordSet is a set of dense coordinates sized to the topology's domain.
// Out-of-range coordinates are never members and cannot be added.
type coordSet[T ~int] struct {
	bits  []bool
	count int
}

func newCoordSet[T ~int](size int) coordSet[T] {
	return coordSet[T]{bits: make([]bool, size)}
}

func (s *coordSet[T]) inRange(c T) bool {
	return c >= 0 && int(c) < len(s.bits)
}

func (s *coordSet[T]) has(c T) bool {
	return s.inRange(c) && s.bits[c]
}

// set adds or removes c and reports whether membership changed.
func (s *coordSet[T]) set(c T, on bool) bool {
	if !s.inRange(c) || s.bits[c] == on {
		return false
	}
	s.bits[c] = on
	if on {
		s.count++
	} else {
		s.count--
	}
	return true
}

func (s *coordSet[T]) add(c T) bool    { return s.set(c, true) }
func (s *coordSet[T]) remove(c T) bool { return s.set(c, false) }
func (s *coordSet[T]) len() int        { return s.count }

func (s *coordSet[T]) clone() coordSet[T] {
	return coordSet[T]{bits: append([]bool(nil), s.bits...), count: s.count}
}

// members returns the set contents in ascending order.
func (s *coordSet[T]) members() []T {
	out := make([]T, 0, s.count)
	for i, on := range s.bits {
		if on {
			out = append(out, T(i))
		}
	}
	return out
}

func (s *coordSet[T]) equal(o *coordSet[T]) bool {
	return s.count == o.count && slices.Equal(s.bits, o.bits)
}
