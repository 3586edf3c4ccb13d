package woot

// Sequence is the ordered list of WChars currently materialised at a site,
// always bracketed by the CB and CE sentinels. The reference semantics are
// a plain array; a balanced tree or skip list would lower per-lookup cost
// from O(n) to O(log n) without changing observable behaviour, but this
// implementation follows the reference representation (spec §4.1) since
// nothing in this repo's scale needs the tree.
type Sequence struct {
	chars []WChar
	index map[Identifier]int // id -> position in chars, kept in sync by every mutator
}

// newSequence returns a fresh sequence containing only the two sentinels.
func newSequence() *Sequence {
	s := &Sequence{
		chars: make([]WChar, 0, 2),
		index: make(map[Identifier]int, 2),
	}
	s.chars = append(s.chars, newCB(), newCE())
	s.index[sentinelCB] = 0
	s.index[sentinelCE] = 1
	return s
}

// length is the total count including tombstones and sentinels.
func (s *Sequence) length() int {
	return len(s.chars)
}

// at returns the WChar at sequence index i. Undefined (panics) outside
// [0, length) — callers in this package never call it out of range.
func (s *Sequence) at(i int) WChar {
	return s.chars[i]
}

// find returns the unique WChar with the given identifier, or false if
// none is present.
func (s *Sequence) find(id Identifier) (WChar, bool) {
	i, ok := s.index[id]
	if !ok {
		return WChar{}, false
	}
	return s.chars[i], true
}

// contains reports whether a WChar with this identifier is in the sequence.
func (s *Sequence) contains(id Identifier) bool {
	_, ok := s.index[id]
	return ok
}

// pos returns the sequence index of the WChar with the given identifier,
// or -1 if absent.
func (s *Sequence) pos(id Identifier) int {
	i, ok := s.index[id]
	if !ok {
		return -1
	}
	return i
}

// insertAt splices c into position i (0 <= i <= length), shifting every
// following element right by one, and keeps the identifier index coherent.
func (s *Sequence) insertAt(c WChar, i int) {
	s.chars = append(s.chars, WChar{})
	copy(s.chars[i+1:], s.chars[i:])
	s.chars[i] = c
	for j := i; j < len(s.chars); j++ {
		s.index[s.chars[j].ID] = j
	}
}

// setVisible flips the visibility of the WChar with the given identifier.
// Used only to move visible true -> false (tombstoning); never reversed.
func (s *Sequence) setVisible(id Identifier, visible bool) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.chars[i].Visible = visible
	return true
}

// subseq returns the contiguous slice of WChars strictly between c and d
// in sequence order. Returns ErrBadRange if d does not occur after c.
func (s *Sequence) subseq(c, d WChar) ([]WChar, error) {
	pc, ok := s.index[c.ID]
	if !ok {
		return nil, ErrBadRange
	}
	pd, ok := s.index[d.ID]
	if !ok {
		return nil, ErrBadRange
	}
	if pd <= pc {
		return nil, ErrBadRange
	}
	if pd == pc+1 {
		return nil, nil
	}
	out := make([]WChar, pd-pc-1)
	copy(out, s.chars[pc+1:pd])
	return out, nil
}

// visibleValue concatenates the Value of every WChar whose Visible is
// true, in sequence order, excluding sentinels.
func (s *Sequence) visibleValue() string {
	runes := make([]rune, 0, len(s.chars))
	for _, c := range s.chars {
		if c.isSentinel() {
			continue
		}
		if c.Visible {
			runes = append(runes, c.Value)
		}
	}
	return string(runes)
}

// visibleCount returns the number of visible WChars, sentinels included —
// the denominator ithVisible's indexing is defined against.
func (s *Sequence) visibleCount() int {
	n := 0
	for _, c := range s.chars {
		if c.Visible {
			n++
		}
	}
	return n
}

// ithVisible returns the i-th visible WChar, counting sentinels:
// ithVisible(0) == CB, and the final visible WChar before CE is
// ithVisible(visibleCount-2). Visible-position semantics used throughout
// GenerateInsert/GenerateDelete are defined by this function (spec §4.1).
func (s *Sequence) ithVisible(i int) (WChar, bool) {
	if i < 0 {
		return WChar{}, false
	}
	n := -1
	for _, c := range s.chars {
		if !c.Visible {
			continue
		}
		n++
		if n == i {
			return c, true
		}
	}
	return WChar{}, false
}
