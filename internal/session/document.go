package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Polqt/wootcollab/internal/woot"
)

// SnapshotOptions tunes Document.Snapshot's caching policy, modelled
// directly on edirooss-zmux-server's SummaryOptions: a short TTL trades a
// little staleness for protecting a hot document from many concurrent
// recomputations by idle viewers.
type SnapshotOptions struct {
	// TTL controls how long a cached snapshot is served before recompute.
	TTL time.Duration
}

func (o *SnapshotOptions) setDefaults() {
	if o.TTL <= 0 {
		o.TTL = 100 * time.Millisecond
	}
}

// Document holds the live WOOT replica for one collaborative document, the
// sessions currently viewing/editing it, and a coalesced snapshot cache.
type Document struct {
	ID string

	mu       sync.RWMutex
	replica  *woot.ReplicatedString
	sessions map[string]*Session

	idleSince time.Time // zero while sessions are attached

	log  *zap.Logger
	opts SnapshotOptions
	now  func() time.Time

	snapMu    sync.RWMutex
	snapText  string
	snapLen   int
	snapAt    time.Time
	snapGroup singleflight.Group
}

// NewDocument creates a new empty document whose WOOT replica is sited
// under siteID (typically the hub process's own site identifier). Every
// operation generated host-side for this document, whichever session
// requested it, is minted by this replica under siteID; a session's own
// SiteID only labels the messages it originates.
func NewDocument(id, siteID string, opts SnapshotOptions, log *zap.Logger) *Document {
	opts.setDefaults()
	return &Document{
		ID:        id,
		replica:   woot.New(siteID),
		sessions:  make(map[string]*Session),
		idleSince: time.Time{},
		log:       log.Named("document").With(zap.String("doc", id)),
		opts:      opts,
		now:       time.Now,
	}
}

// addSession registers sess and clears idle tracking.
func (d *Document) addSession(sess *Session) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessions[sess.ID] = sess
	d.idleSince = time.Time{}
}

// removeSession unregisters sess and, if it was the last one, starts the
// idle clock the hub's reaper checks.
func (d *Document) removeSession(sessID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sessions, sessID)
	if len(d.sessions) == 0 {
		d.idleSince = d.now()
	}
}

// idleDuration reports how long the document has had zero sessions, or
// zero if it currently has any.
func (d *Document) idleDuration() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.sessions) > 0 || d.idleSince.IsZero() {
		return 0
	}
	return d.now().Sub(d.idleSince)
}

// sessionCount returns the number of attached sessions.
func (d *Document) sessionCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.sessions)
}

// generateInsert mints and integrates a local insert under the document's
// own replica site identity, returning the operation payload to ship.
func (d *Document) generateInsert(visiblePos int, value rune) (OpPayload, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	w, err := d.replica.GenerateInsert(visiblePos, value)
	if err != nil {
		return OpPayload{}, err
	}
	return opPayloadFromWChar(woot.OpInsert, w), nil
}

// generateDelete mints and integrates a local delete, returning the
// operation payload to ship.
func (d *Document) generateDelete(visiblePos int) (OpPayload, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	w, err := d.replica.GenerateDelete(visiblePos)
	if err != nil {
		return OpPayload{}, err
	}
	return opPayloadFromWChar(woot.OpDelete, w), nil
}

// applyRemote receives and drains a remote operation, reporting whether it
// made any progress (so the caller can skip rebroadcasting a no-op).
func (d *Document) applyRemote(op woot.Operation) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.replica.Receive(op)
	return d.replica.Drain()
}

// broadcast sends msg to every session except excludeID.
func (d *Document) broadcast(msg Message, excludeID string, log *zap.Logger) {
	d.mu.RLock()
	targets := make([]*Session, 0, len(d.sessions))
	for id, s := range d.sessions {
		if id == excludeID {
			continue
		}
		targets = append(targets, s)
	}
	d.mu.RUnlock()

	for _, s := range targets {
		if err := s.Push(msg); err != nil {
			log.Warn("broadcast failed", zap.String("session", s.ID), zap.Error(err))
		}
	}
}

// Snapshot returns the document's current text, recomputing it only once
// SnapshotOptions.TTL has elapsed since the last recompute. Concurrent
// callers racing a stale cache are coalesced onto a single recompute via
// singleflight, exactly as edirooss-zmux-server's SummaryService coalesces
// concurrent cache refreshes.
func (d *Document) Snapshot(ctx context.Context) SnapshotPayload {
	d.snapMu.RLock()
	fresh := d.now().Sub(d.snapAt) < d.opts.TTL
	text, n, at := d.snapText, d.snapLen, d.snapAt
	d.snapMu.RUnlock()
	if fresh {
		return SnapshotPayload{Text: text, VisibleLen: n, GeneratedAt: at}
	}

	v, _, _ := d.snapGroup.Do(d.ID, func() (any, error) {
		d.mu.RLock()
		text := d.replica.Value()
		n := len([]rune(text))
		d.mu.RUnlock()

		now := d.now()
		d.snapMu.Lock()
		d.snapText, d.snapLen, d.snapAt = text, n, now
		d.snapMu.Unlock()
		return SnapshotPayload{Text: text, VisibleLen: n, GeneratedAt: now}, nil
	})
	return v.(SnapshotPayload)
}
