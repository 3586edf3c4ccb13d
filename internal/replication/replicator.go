// Package replication fans WOOT operations out to other processes hosting
// the same document over Redis pub/sub, so the collaboration server can
// run as more than one process. It is optional host plumbing the original
// single-process demo did not need (spec.md §6 leaves persistence/transport
// out of scope and "None mandated"); a Hub built without a Replicator
// behaves exactly like a single-process server.
package replication

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Polqt/wootcollab/internal/session"
)

// applier is the narrow slice of *session.Hub that Replicator needs to
// feed inbound operations back into — kept as an interface so this package
// can be unit-tested with a fake.
type applier interface {
	ApplyRemoteOp(docID string, op session.OpPayload) error
}

// Replicator wraps a Redis client for cross-process operation fan-out.
// Construction mirrors edirooss-zmux-server/redis/client.go's Client: a
// tuned redis.Options, a named sub-logger, and a startup Ping.
type Replicator struct {
	client *redis.Client
	log    *zap.Logger
}

const channelPrefix = "wootcollab:doc:"

// New creates a Replicator connected to addr. Call Close when done.
func New(addr string, log *zap.Logger) *Replicator {
	log = log.Named("replication")
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
	})

	r := &Replicator{client: client, log: log}
	r.ping()
	return r
}

func (r *Replicator) ping() {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := r.client.Ping(ctx).Err(); err != nil {
		r.log.Warn("redis ping failed", zap.Error(err), zap.String("addr", r.client.Options().Addr))
		return
	}
	r.log.Info("redis connected", zap.String("addr", r.client.Options().Addr))
}

// Close releases the underlying Redis client.
func (r *Replicator) Close() error {
	return r.client.Close()
}

func channelFor(docID string) string {
	return channelPrefix + docID
}

// Publish fans op out to every other process subscribed to docID's
// channel.
func (r *Replicator) Publish(ctx context.Context, docID string, op session.OpPayload) error {
	b, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("replication: marshal op: %w", err)
	}
	if err := r.client.Publish(ctx, channelFor(docID), b).Err(); err != nil {
		return fmt.Errorf("replication: publish: %w", err)
	}
	return nil
}

// Run subscribes to every document channel this process might host
// (pattern-subscribe on channelPrefix+"*") and feeds each received
// operation into hub via ApplyRemoteOp, until ctx is cancelled. Call it
// once at process startup, as a goroutine: go replicator.Run(ctx, hub).
func (r *Replicator) Run(ctx context.Context, hub applier) {
	sub := r.client.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()
	ch := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			docID := strings.TrimPrefix(msg.Channel, channelPrefix)
			var op session.OpPayload
			if err := json.Unmarshal([]byte(msg.Payload), &op); err != nil {
				r.log.Warn("bad replicated payload", zap.Error(err), zap.String("doc", docID))
				continue
			}
			if err := hub.ApplyRemoteOp(docID, op); err != nil {
				r.log.Warn("apply replicated op failed", zap.Error(err), zap.String("doc", docID))
			}
		}
	}
}
