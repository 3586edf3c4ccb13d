// Command wootcollab runs the WOOT collaborative text-editing server: a
// WebSocket endpoint per document backed by a woot.ReplicatedString, with
// optional Redis-based fan-out across processes.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Polqt/wootcollab/internal/config"
	"github.com/Polqt/wootcollab/internal/httpapi"
	"github.com/Polqt/wootcollab/internal/replication"
	"github.com/Polqt/wootcollab/internal/session"
)

func main() {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.DisableStacktrace = true
	log := zap.Must(logConfig.Build())
	defer log.Sync()
	log = log.Named("main")

	cfg := config.Load()
	log.Info("loaded config",
		zap.String("addr", cfg.Addr),
		zap.String("site_id", cfg.SiteID),
		zap.Bool("replication", cfg.RedisAddr != ""),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pub session.Publisher
	var repl *replication.Replicator
	if cfg.RedisAddr != "" {
		repl = replication.New(cfg.RedisAddr, log)
		defer repl.Close()
		pub = repl
	}

	hub := session.NewHub(session.HubOptions{
		SiteID:          cfg.SiteID,
		SnapshotOptions: session.SnapshotOptions{TTL: cfg.SnapshotTTL},
		IdleDocTTL:      cfg.IdleDocTTL,
	}, log, pub)

	go hub.Run(ctx)
	if repl != nil {
		go repl.Run(ctx, hub)
	}

	router := httpapi.NewRouter(hub, httpapi.Options{
		SiteID:                cfg.SiteID,
		Env:                   cfg.Env,
		MaxConcurrentRequests: cfg.MaxConcurrentRequests,
	}, log)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // WebSocket connections are long-lived
		IdleTimeout:  60 * time.Second,
		ErrorLog:     zap.NewStdLog(log.Named("http").WithOptions(zap.AddCallerSkip(1))),
	}

	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown failed", zap.Error(err))
	}
}
