package session

// Sender is implemented by the transport layer so Session can push
// messages without depending on the transport package (mirrors the
// teacher's session.Sender boundary).
type Sender interface {
	Send(msg Message) error
	Close() error
	RemoteAddr() string
}

// Session represents one connected client editing a document.
type Session struct {
	ID     string // unique session id (uuid, minted by internal/transport)
	DocID  string
	SiteID string // site label put on messages this session originates; its edits are minted under the document replica's site
	sender Sender
}

// NewSession creates a session bound to the given transport sender.
func NewSession(id, docID, siteID string, sender Sender) *Session {
	return &Session{ID: id, DocID: docID, SiteID: siteID, sender: sender}
}

// Push sends a message to this client.
func (s *Session) Push(msg Message) error {
	return s.sender.Send(msg)
}
