// Package realtime keeps the gateway-facing connection registry and fans
// incident events out to realtime consumers.
package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alerta-utec/alerta-api/internal/models"
)

// Connection describes a live gateway connection and the identity behind it.
type Connection struct {
	ID          string          `json:"connection_id"`
	UserID      string          `json:"user_id"`
	Role        models.UserRole `json:"role"`
	ConnectedAt int64           `json:"connected_at"`
}

// Registry stores live connections in Redis. Entries expire on their own so a
// crashed gateway cannot leak connections forever.
type Registry struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRegistry wraps an existing Redis client.
func NewRegistry(client *redis.Client, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Registry{client: client, ttl: ttl}
}

func connectionKey(id string) string {
	return "conn:" + id
}

// Register records a new connection for the given identity.
func (r *Registry) Register(ctx context.Context, conn Connection) error {
	if conn.ConnectedAt == 0 {
		conn.ConnectedAt = time.Now().UTC().Unix()
	}
	key := connectionKey(conn.ID)
	fields := map[string]interface{}{
		"user_id":      conn.UserID,
		"role":         string(conn.Role),
		"connected_at": conn.ConnectedAt,
	}
	if err := r.client.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("realtime: register connection: %w", err)
	}
	if err := r.client.Expire(ctx, key, r.ttl).Err(); err != nil {
		return fmt.Errorf("realtime: set connection ttl: %w", err)
	}
	return nil
}

// Deregister removes a connection. Unknown ids are a no-op.
func (r *Registry) Deregister(ctx context.Context, connectionID string) error {
	if err := r.client.Del(ctx, connectionKey(connectionID)).Err(); err != nil {
		return fmt.Errorf("realtime: deregister connection: %w", err)
	}
	return nil
}

// Active returns the ids of currently registered connections.
func (r *Registry) Active(ctx context.Context) ([]string, error) {
	var ids []string
	iter := r.client.Scan(ctx, 0, connectionKey("*"), 0).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, iter.Val()[len("conn:"):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("realtime: scan connections: %w", err)
	}
	return ids, nil
}
