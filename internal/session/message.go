// Package session manages connected clients, per-document WOOT replicas,
// and message routing between them.
package session

import (
	"encoding/json"
	"time"

	"github.com/Polqt/wootcollab/internal/woot"
)

// Message types, carried in Message.Type (spec §6 "operation wire format").
const (
	MsgInsert   = "insert"
	MsgDelete   = "delete"
	MsgSnapshot = "snapshot"
	MsgAck      = "ack"
	MsgError    = "error"
)

// Message is the wire envelope exchanged between a client and the hub.
// Payload is interpreted according to Type. (internal/replication carries
// bare OpPayload values between hubs, not Messages.)
type Message struct {
	DocID   string          `json:"doc_id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	SiteID  string          `json:"site_id"`
	Ts      time.Time       `json:"ts"`
}

// InsertPayload is a host-facing request to insert value at a visible
// position — the caller has not yet minted a WChar (spec §4.3).
type InsertPayload struct {
	VisiblePos int    `json:"visible_pos"`
	Value      string `json:"value"` // single rune, transported as a string
}

// DeletePayload is a host-facing request to delete the visible character
// at a position (spec §4.3).
type DeletePayload struct {
	VisiblePos int `json:"visible_pos"`
}

// OpPayload is the wire form of a woot.Operation (spec §6): the full WChar
// for Insert, or just its identifier for Delete (other fields are
// informational and safe to omit, but this implementation always sends
// them for simplicity and debuggability).
type OpPayload struct {
	Kind  woot.OpKind `json:"kind"`
	ID    wireID      `json:"id"`
	Value rune        `json:"value,omitempty"`

	Visible bool   `json:"visible"`
	PrevID  wireID `json:"prev_id"`
	NextID  wireID `json:"next_id"`
}

// wireID is the JSON-friendly projection of a woot.Identifier.
type wireID struct {
	Site  string `json:"site"`
	Clock uint64 `json:"clock"`
}

func toWireID(id woot.Identifier) wireID {
	return wireID{Site: id.Site, Clock: id.Clock}
}

func (w wireID) toIdentifier() woot.Identifier {
	return woot.Identifier{Site: w.Site, Clock: w.Clock}
}

// toOperation converts the wire payload back into a woot.Operation.
func (p OpPayload) toOperation() woot.Operation {
	return woot.Operation{
		Kind: p.Kind,
		WChar: woot.WChar{
			ID:      p.ID.toIdentifier(),
			Value:   p.Value,
			Visible: p.Visible,
			PrevID:  p.PrevID.toIdentifier(),
			NextID:  p.NextID.toIdentifier(),
		},
	}
}

// opPayloadFromWChar builds the wire form of an Insert or Delete operation
// from a generated/received WChar.
func opPayloadFromWChar(kind woot.OpKind, w woot.WChar) OpPayload {
	return OpPayload{
		Kind:    kind,
		ID:      toWireID(w.ID),
		Value:   w.Value,
		Visible: w.Visible,
		PrevID:  toWireID(w.PrevID),
		NextID:  toWireID(w.NextID),
	}
}

// SnapshotPayload is sent to a newly joined session and returned by the
// admin HTTP API.
type SnapshotPayload struct {
	Text        string    `json:"text"`
	VisibleLen  int       `json:"visible_len"`
	GeneratedAt time.Time `json:"generated_at"`
}
