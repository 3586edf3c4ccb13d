package woot

// integrateInsert places c between cp and cn, which are already present in
// the sequence with pos(cp) < pos(cn). This is the heart of WOOT (spec
// §4.4): the recursive linearisation that makes every replica converge on
// the same placement for concurrently-inserted characters regardless of
// delivery order.
func (s *Sequence) integrateInsert(c, cp, cn WChar) error {
	sub, err := s.subseq(cp, cn)
	if err != nil {
		return err
	}
	if len(sub) == 0 {
		s.insertAt(c, s.pos(cn.ID))
		return nil
	}

	lstar, err := s.linearise(sub, cp, cn)
	if err != nil {
		return err
	}

	i := 1
	for i < len(lstar)-1 && lessID(lstar[i].ID, c.ID) {
		i++
	}
	return s.integrateInsert(c, lstar[i-1], lstar[i])
}

// linearise computes L* (spec §4.4 step 3): the subset of sub whose own
// original anchors bracket the same region as c's, with cp prepended and
// cn appended. s in sub qualifies iff:
//   - the WChar with id s.PrevID occurs at or before cp in the current
//     sequence, and
//   - cn occurs at or before the WChar with id s.NextID in the current
//     sequence.
func (s *Sequence) linearise(sub []WChar, cp, cn WChar) ([]WChar, error) {
	posCp := s.pos(cp.ID)
	posCn := s.pos(cn.ID)

	lstar := make([]WChar, 0, len(sub)+2)
	lstar = append(lstar, cp)
	for _, sc := range sub {
		prevPos, ok := s.index[sc.PrevID]
		if !ok {
			return nil, ErrAnchorMissing
		}
		nextPos, ok := s.index[sc.NextID]
		if !ok {
			return nil, ErrAnchorMissing
		}
		if prevPos <= posCp && posCn <= nextPos {
			lstar = append(lstar, sc)
		}
	}
	lstar = append(lstar, cn)
	return lstar, nil
}

// integrateDelete tombstones c: its visibility flips false and it remains
// in the sequence, still anchoring any future concurrent insert (spec
// §4.5). Idempotent — deleting an already-invisible WChar is a no-op.
func (s *Sequence) integrateDelete(id Identifier) error {
	if !s.setVisible(id, false) {
		return ErrUnknownIdentifier
	}
	return nil
}
