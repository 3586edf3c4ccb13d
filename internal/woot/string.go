package woot

// ReplicatedString is the public surface of one site's replica: generate
// local insert/delete at a visible position, receive a remote operation,
// drain the pool, and read the visible string (spec §4.7). It owns the
// sequence, the pending pool, the site identifier, and the clock.
type ReplicatedString struct {
	site  SiteID
	clock uint64
	seq   *Sequence
	pool  pool
}

// New creates an empty replica identified by site. site is assumed given
// by the host (identity assignment to sites is outside this package's
// scope — spec §1), but "" is reserved: sentinelCB and sentinelCE are
// {Site: "", Clock: 0} and {Site: "", Clock: 1} (id.go), so a replica
// minting identifiers under an empty site would collide with the
// sequence's own bracket identifiers on its first two operations. New
// panics rather than silently corrupting the sequence's identifier
// uniqueness invariant — a programming fault, not a runtime condition
// the host can recover from.
func New(site SiteID) *ReplicatedString {
	if site == "" {
		panic("woot: New: site must not be empty (\"\" is reserved for sentinels)")
	}
	return &ReplicatedString{
		site: site,
		seq:  newSequence(),
	}
}

// SiteID returns the replica's site identifier.
func (r *ReplicatedString) SiteID() SiteID { return r.site }

// Clock returns the replica's next-to-be-minted clock value, for hosts
// that want to label outgoing state without minting an operation.
func (r *ReplicatedString) Clock() uint64 { return r.clock }

// nextIdentifier mints a fresh identifier (site, clock) and advances the
// local clock (spec §4.2).
func (r *ReplicatedString) nextIdentifier() Identifier {
	id := Identifier{Site: r.site, Clock: r.clock}
	r.clock++
	return id
}

// GenerateInsert mints and locally integrates a new character at visible
// position visiblePos (0 <= visiblePos < visibleCount-1): insertion happens
// between the visiblePos-th and (visiblePos+1)-th visible WChars (spec
// §4.3). Returns the WChar for the caller to ship as an Insert operation.
func (r *ReplicatedString) GenerateInsert(visiblePos int, value rune) (WChar, error) {
	if visiblePos < 0 || visiblePos >= r.seq.visibleCount()-1 {
		return WChar{}, ErrPositionOutOfRange
	}
	cp, ok := r.seq.ithVisible(visiblePos)
	if !ok {
		return WChar{}, ErrPositionOutOfRange
	}
	cn, ok := r.seq.ithVisible(visiblePos + 1)
	if !ok {
		return WChar{}, ErrPositionOutOfRange
	}

	c := WChar{
		ID:      r.nextIdentifier(),
		Value:   value,
		Visible: true,
		PrevID:  cp.ID,
		NextID:  cn.ID,
	}
	if err := r.seq.integrateInsert(c, cp, cn); err != nil {
		return WChar{}, err
	}
	return c, nil
}

// GenerateDelete marks the (visiblePos+1)-th visible WChar invisible —
// visiblePos 0 addresses the first user character, skipping the CB
// sentinel (spec §4.3, §9 Open Question resolved: sentinel-inclusive
// ithVisible indexing, user-character-relative GenerateDelete indexing).
// Returns the WChar for the caller to ship as a Delete operation. visiblePos
// is revalidated against the *current* visible count on every call, so a
// position already deleted is no longer addressable by that same position
// once nothing visible remains there (see Receive for the identifier-
// addressed idempotent case: redelivering the same Delete operation is a
// no-op, not an error).
func (r *ReplicatedString) GenerateDelete(visiblePos int) (WChar, error) {
	// -2, not GenerateInsert's -1: visiblePos+1 must land on a user
	// character, never on the CE sentinel at the last visible index.
	if visiblePos < 0 || visiblePos >= r.seq.visibleCount()-2 {
		return WChar{}, ErrPositionOutOfRange
	}
	w, ok := r.seq.ithVisible(visiblePos + 1)
	if !ok {
		return WChar{}, ErrPositionOutOfRange
	}
	if err := r.seq.integrateDelete(w.ID); err != nil {
		return WChar{}, err
	}
	w.Visible = false
	return w, nil
}

// Receive appends op to the pending pool unless it is already reflected in
// the current state, in which case it is dropped silently (spec §4.6,
// §9 Open Question: this implementation pre-filters rather than relying on
// execute to no-op, since integrateInsert must never be called on an id
// already present).
func (r *ReplicatedString) Receive(op Operation) {
	if op.alreadyReflected(r.seq) {
		return
	}
	r.pool.add(op)
}

// Drain executes every currently-executable pooled operation, repeating
// passes until a full pass makes no progress (spec §4.6). Returns whether
// any operation executed, for host-side scheduling.
func (r *ReplicatedString) Drain() (bool, error) {
	return r.pool.drain(r.seq)
}

// Pending reports how many operations remain in the pool, awaiting their
// causal prerequisites.
func (r *ReplicatedString) Pending() int {
	return r.pool.len()
}

// Value returns the current visible string: the concatenation of every
// visible non-sentinel WChar's value, in sequence order (spec §4.1, §4.7).
func (r *ReplicatedString) Value() string {
	return r.seq.visibleValue()
}

// Len returns the sequence's total length including tombstones and
// sentinels (spec §4.1 length()).
func (r *ReplicatedString) Len() int {
	return r.seq.length()
}
