package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Polqt/wootcollab/internal/woot"
)

// Publisher fans a locally-generated operation out to other processes
// hosting the same document (internal/replication implements this over
// Redis pub/sub). A Hub with no Publisher behaves exactly like a single
// process server.
type Publisher interface {
	Publish(ctx context.Context, docID string, op OpPayload) error
}

// HubOptions configures a Hub.
type HubOptions struct {
	SiteID          string // this process's woot site identity
	SnapshotOptions SnapshotOptions
	IdleDocTTL      time.Duration // documents with zero sessions longer than this are evicted
}

func (o *HubOptions) setDefaults() {
	if o.SiteID == "" {
		o.SiteID = "server"
	}
	if o.IdleDocTTL <= 0 {
		o.IdleDocTTL = 10 * time.Minute
	}
}

// Hub is the central message router for all active documents and
// sessions in this process.
type Hub struct {
	mu   sync.RWMutex
	docs map[string]*Document

	opts HubOptions
	log  *zap.Logger
	pub  Publisher
}

// NewHub creates a new Hub. pub may be nil to disable cross-process
// replication.
func NewHub(opts HubOptions, log *zap.Logger, pub Publisher) *Hub {
	opts.setDefaults()
	return &Hub{
		docs: make(map[string]*Document),
		opts: opts,
		log:  log.Named("hub"),
		pub:  pub,
	}
}

// GetOrCreate returns the document with the given id, creating it if
// needed.
func (h *Hub) GetOrCreate(docID string) *Document {
	h.mu.Lock()
	defer h.mu.Unlock()
	if d, ok := h.docs[docID]; ok {
		return d
	}
	d := NewDocument(docID, h.opts.SiteID, h.opts.SnapshotOptions, h.log)
	h.docs[docID] = d
	return d
}

// Lookup returns the document if it already exists, without creating one.
func (h *Hub) Lookup(docID string) (*Document, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	d, ok := h.docs[docID]
	return d, ok
}

// ListDocs returns a snapshot of live document ids and their session
// counts, for the admin HTTP surface.
func (h *Hub) ListDocs() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]int, len(h.docs))
	for id, d := range h.docs {
		out[id] = d.sessionCount()
	}
	return out
}

// Join registers a session with its document and sends the current
// snapshot.
func (h *Hub) Join(ctx context.Context, sess *Session) {
	doc := h.GetOrCreate(sess.DocID)
	doc.addSession(sess)

	snap := doc.Snapshot(ctx)
	payload, _ := json.Marshal(snap)
	if err := sess.Push(Message{
		DocID:   sess.DocID,
		Type:    MsgSnapshot,
		Payload: payload,
		Ts:      time.Now(),
	}); err != nil {
		h.log.Warn("snapshot push failed", zap.String("session", sess.ID), zap.Error(err))
	}
}

// Leave removes a session from its document.
func (h *Hub) Leave(sess *Session) {
	doc, ok := h.Lookup(sess.DocID)
	if !ok {
		return
	}
	doc.removeSession(sess.ID)
	h.log.Info("session left", zap.String("session", sess.ID), zap.String("doc", sess.DocID))
}

// Dispatch handles an incoming message from a session: host-facing
// Insert/Delete requests are turned into woot operations on the document's
// replica and broadcast (locally and, if configured, via Publisher) to
// every other session. Other message types are logged and ignored;
// operations from other processes arrive through ApplyRemoteOp instead.
func (h *Hub) Dispatch(ctx context.Context, sess *Session, msg Message) {
	doc := h.GetOrCreate(msg.DocID)

	switch msg.Type {
	case MsgInsert:
		var p InsertPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			h.log.Warn("bad insert payload", zap.Error(err))
			h.sendError(sess, "bad insert payload")
			return
		}
		runes := []rune(p.Value)
		if len(runes) != 1 {
			h.sendError(sess, "value must be exactly one character")
			return
		}
		op, err := doc.generateInsert(p.VisiblePos, runes[0])
		if err != nil {
			h.log.Warn("generateInsert failed", zap.Error(err), zap.String("doc", msg.DocID))
			h.sendError(sess, err.Error())
			return
		}
		h.publishAndBroadcast(ctx, doc, sess, op)

	case MsgDelete:
		var p DeletePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			h.log.Warn("bad delete payload", zap.Error(err))
			h.sendError(sess, "bad delete payload")
			return
		}
		op, err := doc.generateDelete(p.VisiblePos)
		if err != nil {
			h.log.Warn("generateDelete failed", zap.Error(err), zap.String("doc", msg.DocID))
			h.sendError(sess, err.Error())
			return
		}
		h.publishAndBroadcast(ctx, doc, sess, op)

	default:
		h.log.Warn("unknown message type", zap.String("type", msg.Type))
	}
}

// ApplyRemoteOp integrates an operation received from another process
// (via internal/replication) into the named document and rebroadcasts it
// to this process's own sessions if it made progress.
func (h *Hub) ApplyRemoteOp(docID string, op OpPayload) error {
	doc := h.GetOrCreate(docID)
	progressed, err := doc.applyRemote(op.toOperation())
	if err != nil {
		return err
	}
	if !progressed {
		return nil
	}
	payload, _ := json.Marshal(op)
	doc.broadcast(Message{DocID: docID, Type: wireType(op.Kind), Payload: payload, Ts: time.Now()}, "", h.log)
	return nil
}

func (h *Hub) publishAndBroadcast(ctx context.Context, doc *Document, sess *Session, op OpPayload) {
	payload, _ := json.Marshal(op)
	msg := Message{DocID: doc.ID, Type: wireType(op.Kind), Payload: payload, SiteID: sess.SiteID, Ts: time.Now()}
	doc.broadcast(msg, sess.ID, h.log)

	if h.pub == nil {
		return
	}
	if err := h.pub.Publish(ctx, doc.ID, op); err != nil {
		h.log.Warn("replication publish failed", zap.Error(err), zap.String("doc", doc.ID))
	}
}

func (h *Hub) sendError(sess *Session, reason string) {
	payload, _ := json.Marshal(struct {
		Error string `json:"error"`
	}{reason})
	if err := sess.Push(Message{DocID: sess.DocID, Type: MsgError, Payload: payload, Ts: time.Now()}); err != nil {
		h.log.Warn("error push failed", zap.String("session", sess.ID), zap.Error(err))
	}
}

func wireType(kind woot.OpKind) string {
	if kind == woot.OpDelete {
		return MsgDelete
	}
	return MsgInsert
}

// Run periodically evicts documents that have had zero sessions for
// longer than IdleDocTTL, reclaiming the memory of their WOOT replicas.
// The teacher's Hub.Run was a no-op placeholder; this is its real
// implementation. Call as a goroutine: go hub.Run(ctx).
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.opts.IdleDocTTL / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.reapIdle()
		}
	}
}

func (h *Hub) reapIdle() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, d := range h.docs {
		if d.idleDuration() >= h.opts.IdleDocTTL {
			delete(h.docs, id)
			h.log.Info("evicted idle document", zap.String("doc", id))
		}
	}
}
