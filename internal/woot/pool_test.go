package woot

import "testing"

func TestPoolDrainDefersUntilAnchorArrives(t *testing.T) {
	a := New("1")
	wa0, err := a.GenerateInsert(0, 'a')
	if err != nil {
		t.Fatalf("GenerateInsert a: %v", err)
	}
	wa1, err := a.GenerateInsert(1, 'b')
	if err != nil {
		t.Fatalf("GenerateInsert b: %v", err)
	}

	b := New("2")
	b.Receive(Operation{Kind: OpInsert, WChar: wa1}) // prev_id (1,0) absent: pooled
	progressed, err := b.Drain()
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if progressed {
		t.Fatal("expected no progress before wa0 arrives")
	}
	if b.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", b.Pending())
	}

	b.Receive(Operation{Kind: OpInsert, WChar: wa0})
	progressed, err = b.Drain()
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if !progressed {
		t.Fatal("expected progress once wa0 arrives")
	}
	if b.Pending() != 0 {
		t.Fatalf("Pending() = %d, want 0", b.Pending())
	}
	if b.Value() != "ab" {
		t.Fatalf("Value() = %q, want %q", b.Value(), "ab")
	}
}

func TestDrainFixedPoint(t *testing.T) {
	r := New("1")
	if _, err := r.GenerateInsert(0, 'x'); err != nil {
		t.Fatalf("GenerateInsert: %v", err)
	}
	progressed, err := r.Drain()
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if progressed {
		t.Fatal("expected Drain on an empty pool to report no progress")
	}
	progressed, err = r.Drain()
	if err != nil {
		t.Fatalf("second Drain: %v", err)
	}
	if progressed {
		t.Fatal("expected repeated Drain to stay at a fixed point")
	}
}

func TestDuplicateDeliveryIsIdempotent(t *testing.T) {
	a := New("1")
	w, err := a.GenerateInsert(0, 'a')
	if err != nil {
		t.Fatalf("GenerateInsert: %v", err)
	}

	b := New("2")
	b.Receive(Operation{Kind: OpInsert, WChar: w})
	b.Receive(Operation{Kind: OpInsert, WChar: w})
	if _, err := b.Drain(); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if b.Value() != "a" {
		t.Fatalf("Value() = %q, want %q", b.Value(), "a")
	}
	if b.Len() != 3 { // CB, a, CE
		t.Fatalf("Len() = %d, want 3 (no duplicate copy)", b.Len())
	}
}

// TestGenerateDeleteStalePositionIsRejected covers the local-addressing
// side: once visible position 0 has been deleted, there is no longer a
// visible character there (the document is now empty), so a second
// GenerateDelete(0) must be rejected rather than silently resolving past
// the end of the visible content onto the CE sentinel.
func TestGenerateDeleteStalePositionIsRejected(t *testing.T) {
	a := New("1")
	if _, err := a.GenerateInsert(0, 'a'); err != nil {
		t.Fatalf("GenerateInsert: %v", err)
	}
	if _, err := a.GenerateDelete(0); err != nil {
		t.Fatalf("GenerateDelete: %v", err)
	}
	if a.Value() != "" {
		t.Fatalf("Value() = %q, want empty", a.Value())
	}
	if _, err := a.GenerateDelete(0); err != ErrPositionOutOfRange {
		t.Fatalf("second GenerateDelete(0) = %v, want ErrPositionOutOfRange", err)
	}
}

// TestDuplicateDeleteIsIdempotent covers the identifier-addressed side:
// redelivering the same Delete operation (as a remote replica might, over
// an at-least-once transport) must not error and must not double-tombstone.
func TestDuplicateDeleteIsIdempotent(t *testing.T) {
	a := New("1")
	w, err := a.GenerateInsert(0, 'a')
	if err != nil {
		t.Fatalf("GenerateInsert: %v", err)
	}

	b := New("2")
	b.Receive(Operation{Kind: OpInsert, WChar: w})
	del := w
	del.Visible = false
	b.Receive(Operation{Kind: OpDelete, WChar: del})
	b.Receive(Operation{Kind: OpDelete, WChar: del})
	if _, err := b.Drain(); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if b.Value() != "" {
		t.Fatalf("Value() = %q, want empty", b.Value())
	}
}
