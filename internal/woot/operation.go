package woot

// OpKind tags an Operation as one of the two WOOT operation constructors.
// The reference source's duck-typed {kind, wchar} record becomes a proper
// two-constructor tagged variant here (spec §9 design note), rather than a
// string-tagged record.
type OpKind int

const (
	// OpInsert carries a full WChar to be integrated via integrateInsert.
	OpInsert OpKind = iota
	// OpDelete targets the WChar to tombstone by WChar.ID; the other WChar
	// fields it carries are informational only (§6).
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Operation is the unit exchanged between sites: {kind, wchar} (spec §4.1,
// §6). For OpDelete only WChar.ID is semantically required; other fields
// may be elided on the wire.
type Operation struct {
	Kind  OpKind
	WChar WChar
}

// executable reports whether op can be executed against seq right now
// (spec §4.6):
//   - Insert: both WChar.PrevID and WChar.NextID must already be present
//     (presence, not visibility — tombstones satisfy the condition).
//   - Delete: a WChar with WChar.ID must already be present.
func (op Operation) executable(seq *Sequence) bool {
	switch op.Kind {
	case OpInsert:
		return seq.contains(op.WChar.PrevID) && seq.contains(op.WChar.NextID)
	case OpDelete:
		return seq.contains(op.WChar.ID)
	default:
		return false
	}
}

// alreadyReflected reports whether op's effect is already present in seq,
// used by Receive to pre-filter duplicates before they ever enter the pool
// (spec §4.6 / §9 Open Question, resolved in favour of eager pre-filtering:
// integrateInsert must never be invoked on an id already present).
func (op Operation) alreadyReflected(seq *Sequence) bool {
	switch op.Kind {
	case OpInsert:
		return seq.contains(op.WChar.ID)
	case OpDelete:
		w, ok := seq.find(op.WChar.ID)
		return ok && !w.Visible
	default:
		return false
	}
}
