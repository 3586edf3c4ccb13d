package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Polqt/wootcollab/internal/session"
)

type handlers struct {
	hub *session.Hub
}

func newHandlers(hub *session.Hub) *handlers {
	return &handlers{hub: hub}
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// listDocs reports every live document id and its connected session
// count, for operator visibility.
func (h *handlers) listDocs(c *gin.Context) {
	c.JSON(http.StatusOK, h.hub.ListDocs())
}

// getDoc returns a document's current text snapshot, creating the
// document if it doesn't exist yet (mirrors the WebSocket path's
// implicit create-on-join).
func (h *handlers) getDoc(c *gin.Context) {
	docID := c.Param("docID")
	if docID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing docID"})
		return
	}
	doc := h.hub.GetOrCreate(docID)
	c.JSON(http.StatusOK, doc.Snapshot(c.Request.Context()))
}
