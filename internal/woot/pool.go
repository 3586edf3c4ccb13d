package woot

// pool is the pending-operation pool: an unordered collection of received
// operations whose causal prerequisites are not yet satisfied. It is a
// per-replica field of ReplicatedString — the reference source places an
// equivalent pool on the class prototype, which would share it across
// every replica in a process; spec §9 flags that as almost certainly a
// bug, so this implementation never gives the pool package- or type-level
// storage.
type pool struct {
	ops []Operation
}

// add appends op to the pool, unconditionally. Deduplication against the
// already-integrated state happens earlier, in ReplicatedString.Receive.
func (p *pool) add(op Operation) {
	p.ops = append(p.ops, op)
}

// drainOnce performs a single pass: every currently-executable operation
// is executed, in pool iteration order, and removed; the rest stay in the
// pool for the next pass. Reports whether anything executed.
func (p *pool) drainOnce(seq *Sequence) (progressed bool, err error) {
	survivors := p.ops[:0:0]
	for _, op := range p.ops {
		if !op.executable(seq) {
			survivors = append(survivors, op)
			continue
		}
		if execErr := execute(seq, op); execErr != nil {
			return progressed, execErr
		}
		progressed = true
	}
	p.ops = survivors
	return progressed, nil
}

// execute applies a single executable operation to seq (spec §4.6):
// Insert resolves its anchors and calls integrateInsert; Delete resolves
// its target and calls integrateDelete.
func execute(seq *Sequence, op Operation) error {
	switch op.Kind {
	case OpInsert:
		cp, ok := seq.find(op.WChar.PrevID)
		if !ok {
			return ErrAnchorMissing
		}
		cn, ok := seq.find(op.WChar.NextID)
		if !ok {
			return ErrAnchorMissing
		}
		return seq.integrateInsert(op.WChar, cp, cn)
	case OpDelete:
		return seq.integrateDelete(op.WChar.ID)
	default:
		return ErrUnknownIdentifier
	}
}

// drain repeatedly performs passes over the pool until a full pass
// executes nothing (spec §4.6 "Drain"). Returns whether any operation
// executed across the whole call.
func (p *pool) drain(seq *Sequence) (anyProgress bool, err error) {
	for {
		progressed, drainErr := p.drainOnce(seq)
		if drainErr != nil {
			return anyProgress, drainErr
		}
		if progressed {
			anyProgress = true
			continue
		}
		return anyProgress, nil
	}
}

// len reports how many operations are currently pooled, awaiting their
// preconditions.
func (p *pool) len() int {
	return len(p.ops)
}
