package woot

import "testing"

// TestLocalInsertSequence mirrors spec §8 scenario 1.
func TestLocalInsertSequence(t *testing.T) {
	r := New("1")

	wa, err := r.GenerateInsert(0, 'a')
	if err != nil {
		t.Fatalf("GenerateInsert(0,'a'): %v", err)
	}
	if wa.ID != (Identifier{"1", 0}) {
		t.Fatalf("wa.ID = %v, want (1,0)", wa.ID)
	}
	if r.Value() != "a" {
		t.Fatalf("Value() = %q, want %q", r.Value(), "a")
	}

	wb, err := r.GenerateInsert(1, 'b')
	if err != nil {
		t.Fatalf("GenerateInsert(1,'b'): %v", err)
	}
	if wb.ID != (Identifier{"1", 1}) {
		t.Fatalf("wb.ID = %v, want (1,1)", wb.ID)
	}
	if r.Value() != "ab" {
		t.Fatalf("Value() = %q, want %q", r.Value(), "ab")
	}
}

// TestOutOfOrderDelivery mirrors spec §8 scenario 3.
func TestOutOfOrderDelivery(t *testing.T) {
	a := New("1")
	wa, err := a.GenerateInsert(0, 'a')
	if err != nil {
		t.Fatalf("GenerateInsert a: %v", err)
	}
	wb, err := a.GenerateInsert(1, 'b')
	if err != nil {
		t.Fatalf("GenerateInsert b: %v", err)
	}

	site2 := New("2")
	site2.Receive(Operation{Kind: OpInsert, WChar: wb})
	if _, err := site2.Drain(); err != nil {
		t.Fatalf("Drain after wb: %v", err)
	}
	if site2.Value() != "" {
		t.Fatalf("Value() after wb only = %q, want empty", site2.Value())
	}

	site2.Receive(Operation{Kind: OpInsert, WChar: wa})
	if _, err := site2.Drain(); err != nil {
		t.Fatalf("Drain after wa: %v", err)
	}
	if site2.Value() != "ab" {
		t.Fatalf("Value() = %q, want %q", site2.Value(), "ab")
	}
}

// TestDeleteThenConcurrentInsert mirrors spec §8 scenario 4.
func TestDeleteThenConcurrentInsert(t *testing.T) {
	a := New("1")
	wa, err := a.GenerateInsert(0, 'a')
	if err != nil {
		t.Fatalf("GenerateInsert: %v", err)
	}

	b := New("2")
	b.Receive(Operation{Kind: OpInsert, WChar: wa})
	if _, err := b.Drain(); err != nil {
		t.Fatalf("seed Drain: %v", err)
	}

	// A deletes position 0 (the 'a').
	delA, err := a.GenerateDelete(0)
	if err != nil {
		t.Fatalf("GenerateDelete: %v", err)
	}
	// B concurrently inserts 'X' at visible position 1, after the still-
	// visible (from B's view) 'a'.
	wx, err := b.GenerateInsert(1, 'X')
	if err != nil {
		t.Fatalf("GenerateInsert X: %v", err)
	}
	if wx.PrevID != wa.ID {
		t.Fatalf("wx.PrevID = %v, want %v", wx.PrevID, wa.ID)
	}

	a.Receive(Operation{Kind: OpInsert, WChar: wx})
	if _, err := a.Drain(); err != nil {
		t.Fatalf("a.Drain: %v", err)
	}
	b.Receive(Operation{Kind: OpDelete, WChar: delA})
	if _, err := b.Drain(); err != nil {
		t.Fatalf("b.Drain: %v", err)
	}

	if a.Value() != "X" {
		t.Fatalf("a.Value() = %q, want %q", a.Value(), "X")
	}
	if b.Value() != "X" {
		t.Fatalf("b.Value() = %q, want %q", b.Value(), "X")
	}
}

// TestDuplicateInsertDeliveredTwice mirrors spec §8 scenario 6.
func TestDuplicateInsertDeliveredTwice(t *testing.T) {
	a := New("1")
	w, err := a.GenerateInsert(0, 'z')
	if err != nil {
		t.Fatalf("GenerateInsert: %v", err)
	}

	b := New("2")
	b.Receive(Operation{Kind: OpInsert, WChar: w})
	b.Receive(Operation{Kind: OpInsert, WChar: w})
	if _, err := b.Drain(); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if b.Value() != "z" {
		t.Fatalf("Value() = %q, want %q", b.Value(), "z")
	}
}

func TestGenerateInsertPositionOutOfRange(t *testing.T) {
	r := New("1")
	if _, err := r.GenerateInsert(-1, 'a'); err != ErrPositionOutOfRange {
		t.Fatalf("GenerateInsert(-1): err = %v, want ErrPositionOutOfRange", err)
	}
	if _, err := r.GenerateInsert(0, 'a'); err != nil {
		t.Fatalf("GenerateInsert(0): %v", err)
	}
	// visibleCount is now 3 (CB, a, CE); the only valid visible position to
	// insert at beyond the existing char is 1 (between 'a' and CE).
	if _, err := r.GenerateInsert(2, 'b'); err != ErrPositionOutOfRange {
		t.Fatalf("GenerateInsert(2): err = %v, want ErrPositionOutOfRange", err)
	}
	if _, err := r.GenerateInsert(1, 'b'); err != nil {
		t.Fatalf("GenerateInsert(1): %v", err)
	}
}

// TestGenerateDeleteConvention documents and locks in the resolved §9 Open
// Question: visible position 0 in GenerateDelete addresses the first user
// character, not the CB sentinel.
func TestGenerateDeleteConvention(t *testing.T) {
	r := New("1")
	if _, err := r.GenerateInsert(0, 'a'); err != nil {
		t.Fatalf("GenerateInsert: %v", err)
	}
	if _, err := r.GenerateInsert(1, 'b'); err != nil {
		t.Fatalf("GenerateInsert: %v", err)
	}
	w, err := r.GenerateDelete(0)
	if err != nil {
		t.Fatalf("GenerateDelete(0): %v", err)
	}
	if w.Value != 'a' {
		t.Fatalf("GenerateDelete(0) targeted %q, want 'a'", w.Value)
	}
	if r.Value() != "b" {
		t.Fatalf("Value() = %q, want %q", r.Value(), "b")
	}
}

func TestGenerateDeletePositionOutOfRange(t *testing.T) {
	r := New("1")
	if _, err := r.GenerateDelete(0); err != ErrPositionOutOfRange {
		t.Fatalf("GenerateDelete(0) on empty replica: err = %v, want ErrPositionOutOfRange", err)
	}
}
