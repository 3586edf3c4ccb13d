// Package httpapi wires the gin.Engine that fronts wootcollab: the
// WebSocket upgrade route plus a small read-only admin surface, built the
// way edirooss-zmux-server/cmd/zmux-server/main.go builds its router.
package httpapi

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Polqt/wootcollab/internal/httpapi/middleware"
	"github.com/Polqt/wootcollab/internal/session"
	"github.com/Polqt/wootcollab/internal/transport"
)

// Options configures the router.
type Options struct {
	SiteID                string
	Env                   string
	MaxConcurrentRequests int
	TrustedProxies        []string
}

// NewRouter builds the gin.Engine: WebSocket upgrade at /ws/:docID, a
// small JSON admin surface under /api/v1, and a liveness probe at
// /health.
func NewRouter(hub *session.Hub, opts Options, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	proxies := opts.TrustedProxies
	if len(proxies) == 0 {
		proxies = []string{"127.0.0.1"}
	}
	_ = r.SetTrustedProxies(proxies)

	r.Use(gin.Recovery())

	if opts.Env == "dev" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "X-Total-Count"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.Use(middleware.RequestID())
	r.Use(middleware.ZapLogger(log))
	if opts.MaxConcurrentRequests > 0 {
		r.Use(middleware.CapConcurrentRequests(opts.MaxConcurrentRequests))
	}

	h := newHandlers(hub)

	r.GET("/health", h.health)
	r.GET("/api/v1/docs", h.listDocs)
	r.GET("/api/v1/docs/:docID", h.getDoc)

	ws := transport.NewHandler(hub, opts.SiteID, log)
	r.GET("/ws/:docID", ws.ServeHTTP())

	return r
}

func init() {
	// Quiet gin's default debug banner in favor of the structured logger
	// installed above; mirrors the teacher's gin.SetMode(gin.ReleaseMode).
	if os.Getenv("GIN_MODE") == "" {
		_ = os.Setenv("GIN_MODE", "release")
	}
}
