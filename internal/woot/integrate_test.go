package woot

import "testing"

// TestIntegrateInsertConcurrentSamePosition mirrors spec §8 scenario 2: two
// replicas each generate an insert between CB and CE, exchange, and must
// converge with the lower identifier placed first.
func TestIntegrateInsertConcurrentSamePosition(t *testing.T) {
	a := New("1")
	b := New("2")

	wa, err := a.GenerateInsert(0, 'a')
	if err != nil {
		t.Fatalf("a.GenerateInsert: %v", err)
	}
	wb, err := b.GenerateInsert(0, 'b')
	if err != nil {
		t.Fatalf("b.GenerateInsert: %v", err)
	}

	a.Receive(Operation{Kind: OpInsert, WChar: wb})
	if _, err := a.Drain(); err != nil {
		t.Fatalf("a.Drain: %v", err)
	}
	b.Receive(Operation{Kind: OpInsert, WChar: wa})
	if _, err := b.Drain(); err != nil {
		t.Fatalf("b.Drain: %v", err)
	}

	if a.Value() != "ab" {
		t.Fatalf("a.Value() = %q, want %q", a.Value(), "ab")
	}
	if b.Value() != "ab" {
		t.Fatalf("b.Value() = %q, want %q", b.Value(), "ab")
	}
}

// TestIntegrateInsertThreeWayAllOrders mirrors spec §8 scenario 5: three
// sites each insert once between CB and CE; every delivery order at every
// receiver converges on the same sequence, ordered by identifier.
func TestIntegrateInsertThreeWayAllOrders(t *testing.T) {
	gen := func(site SiteID) WChar {
		r := New(site)
		w, err := r.GenerateInsert(0, rune(site[0]))
		if err != nil {
			t.Fatalf("GenerateInsert(%s): %v", site, err)
		}
		return w
	}
	w1 := gen("1")
	w2 := gen("2")
	w3 := gen("3")
	ops := []WChar{w1, w2, w3}

	permutations := [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}
	for _, perm := range permutations {
		r := New("observer")
		// seed the observer's own sequence state isn't needed: it starts
		// empty and receives all three as remote operations.
		for _, idx := range perm {
			r.Receive(Operation{Kind: OpInsert, WChar: ops[idx]})
		}
		if _, err := r.Drain(); err != nil {
			t.Fatalf("perm %v: Drain: %v", perm, err)
		}
		want := string([]rune{w1.Value, w2.Value, w3.Value})
		if got := r.Value(); got != want {
			t.Fatalf("perm %v: Value() = %q, want %q", perm, got, want)
		}
	}
}

// TestSubseqBadRangeIsCallerError exercises subseq
// directly to document ErrBadRange's contract (spec §7): it is always a
// caller error, never raised by integrateInsert itself in normal use.
func TestSubseqBadRangeIsCallerError(t *testing.T) {
	s := newSequence()
	cb, _ := s.find(sentinelCB)
	ce, _ := s.find(sentinelCE)
	if _, err := s.subseq(ce, cb); err != ErrBadRange {
		t.Fatalf("subseq(CE, CB) = %v, want ErrBadRange", err)
	}
}
