package woot

import "errors"

// ErrBadRange is returned by subseq when d does not occur after c in the
// current sequence. The integration algorithm never constructs an invalid
// range by itself; seeing this means a caller passed WChars out of order.
var ErrBadRange = errors.New("woot: bad range: d does not occur after c")

// ErrPositionOutOfRange is returned by GenerateInsert/GenerateDelete when
// called with a visible position outside the addressable range. No WChar
// is minted and the site clock is not advanced.
var ErrPositionOutOfRange = errors.New("woot: visible position out of range")

// ErrAnchorMissing is returned if an Insert operation is executed whose
// prev/next id is not present in the sequence. Executability is always
// checked before execution (§4.6), so seeing this indicates the pool or
// its caller violated that precondition — an invariant violation, not a
// normal runtime condition.
var ErrAnchorMissing = errors.New("woot: anchor not present in sequence")

// ErrUnknownIdentifier is returned by Delete-oriented lookups when the
// target id is not present in the sequence at all.
var ErrUnknownIdentifier = errors.New("woot: identifier not present in sequence")
