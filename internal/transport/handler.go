package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Polqt/wootcollab/internal/session"
)

// Dispatcher is the slice of *session.Hub the WebSocket handler drives.
type Dispatcher interface {
	Join(ctx context.Context, sess *session.Session)
	Leave(sess *session.Session)
	Dispatch(ctx context.Context, sess *session.Session, msg session.Message)
}

// Handler upgrades incoming HTTP requests on /ws/:docID to WebSocket
// connections and pumps them into a Dispatcher, adapting the teacher's
// WSHandler.ServeHTTP into a gin.HandlerFunc.
type Handler struct {
	hub    Dispatcher
	siteID string
	log    *zap.Logger
}

// NewHandler creates a Handler that mints sessions under siteID (this
// process's own identity — see session.NewDocument's doc comment on why
// the document's replica, not the browser connection, owns the WOOT site).
func NewHandler(hub Dispatcher, siteID string, log *zap.Logger) *Handler {
	return &Handler{hub: hub, siteID: siteID, log: log.Named("transport")}
}

// ServeHTTP upgrades the connection, joins the document, and pumps
// messages until the client disconnects.
func (h *Handler) ServeHTTP() gin.HandlerFunc {
	return func(c *gin.Context) {
		docID := c.Param("docID")
		if docID == "" {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}

		conn, rw, err := wsHandshake(c.Writer, c.Request)
		if err != nil {
			h.log.Warn("websocket handshake failed", zap.Error(err), zap.String("doc", docID))
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		ws := &WSConn{conn: conn, rw: rw}
		defer ws.Close()

		sessID := uuid.NewString()
		sess := session.NewSession(sessID, docID, h.siteID, &wsSender{conn: ws})

		ctx := context.Background()
		h.hub.Join(ctx, sess)
		h.log.Info("session joined", zap.String("session", sessID), zap.String("doc", docID), zap.String("remote", ws.RemoteAddr()))
		defer h.hub.Leave(sess)

		for {
			raw, err := ws.ReadMessage()
			if err != nil {
				h.log.Debug("read loop ended", zap.String("session", sessID), zap.Error(err))
				return
			}
			var msg session.Message
			if err := json.Unmarshal(raw, &msg); err != nil {
				h.log.Warn("bad client frame", zap.Error(err), zap.String("session", sessID))
				continue
			}
			msg.DocID = docID
			msg.SiteID = h.siteID
			h.hub.Dispatch(ctx, sess, msg)
		}
	}
}

// wsSender adapts *WSConn to session.Sender by JSON-encoding outbound
// messages as text frames.
type wsSender struct {
	conn *WSConn
}

func (s *wsSender) Send(msg session.Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("transport: marshal message: %w", err)
	}
	return s.conn.WriteMessage(b)
}

func (s *wsSender) Close() error         { return s.conn.Close() }
func (s *wsSender) RemoteAddr() string   { return s.conn.RemoteAddr() }
