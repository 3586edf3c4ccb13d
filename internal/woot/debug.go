package woot

import "github.com/davecgh/go-spew/spew"

// DumpSequence renders a ReplicatedString's internal sequence state for
// failing-test diagnosis, the way edirooss-zmux-server's pkg/fmtt walks and
// dumps error chains with spew. Not used on any hot path — library code so
// other packages' tests can reach for it too instead of hand-rolling a
// printf loop over chars.
func DumpSequence(r *ReplicatedString) string {
	return spew.Sdump(r.seq.chars)
}
