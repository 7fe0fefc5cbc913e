// Package redis provides Redis persistence for flows.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/dukex/flowstudio/pkg/models"
	"github.com/dukex/flowstudio/pkg/persistence"
	"github.com/dukex/flowstudio/pkg/serializer"
)

const (
	keyPrefix = "flowstudio:flow:"
	indexKey  = "flowstudio:flows"
)

// Persistence stores each flow as a JSON string under flowstudio:flow:<namespace>:<id>
// and keeps the set of stored keys in flowstudio:flows.
type Persistence struct {
	client redis.UniversalClient
	logger *slog.Logger
	codec  serializer.JSONCodec
}

// NewPersistence connects to the Redis server behind a redis:// URL.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	options, err := redis.ParseURL(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = client.Ping(pingCtx).Err()
	if err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.InfoContext(ctx, "Connected to Redis", "addr", options.Addr, "db", options.DB)

	return NewPersistenceWithClient(client, logger), nil
}

// NewPersistenceWithClient wraps an existing client.
func NewPersistenceWithClient(client redis.UniversalClient, logger *slog.Logger) *Persistence {
	return &Persistence{client: client, logger: logger}
}

func flowKey(namespace, id string) string {
	return keyPrefix + namespace + ":" + id
}

// Close closes the client.
func (p *Persistence) Close(_ context.Context) error {
	err := p.client.Close()
	if err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}

// HealthCheck pings the server.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

// Flows returns every indexed flow ordered by namespace and id. Index entries whose value
// expired or was removed out of band are skipped.
func (p *Persistence) Flows(ctx context.Context) ([]*models.Flow, error) {
	keys, err := p.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read flow index: %w", err)
	}

	flows := make([]*models.Flow, 0, len(keys))

	if len(keys) == 0 {
		return flows, nil
	}

	values, err := p.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read flows: %w", err)
	}

	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			p.logger.WarnContext(ctx, "indexed flow is missing", "key", keys[i])

			continue
		}

		flow, err := p.codec.Unmarshal([]byte(raw))
		if err != nil {
			return nil, err
		}

		flows = append(flows, flow)
	}

	sort.Slice(flows, func(i, j int) bool {
		return flows[i].Key() < flows[j].Key()
	})

	return flows, nil
}

// FlowByID returns a stored flow.
func (p *Persistence) FlowByID(ctx context.Context, namespace, id string) (*models.Flow, error) {
	raw, err := p.client.Get(ctx, flowKey(namespace, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, persistence.NewFlowError("FlowByID", namespace, id, persistence.ErrFlowNotFound)
		}

		return nil, fmt.Errorf("failed to get flow: %w", err)
	}

	return p.codec.Unmarshal(raw)
}

// SaveFlow writes a flow and indexes it in one transaction.
func (p *Persistence) SaveFlow(ctx context.Context, flow *models.Flow) error {
	if err := persistence.ValidateFlow(flow); err != nil {
		return err
	}

	namespace, id := flow.Properties.Namespace, flow.Properties.ID
	now := time.Now().UTC()

	existing, err := p.FlowByID(ctx, namespace, id)

	switch {
	case err == nil:
		flow.CreatedAt = existing.CreatedAt
	case persistence.IsFlowNotFound(err):
		if flow.CreatedAt.IsZero() {
			flow.CreatedAt = now
		}
	default:
		return err
	}

	flow.UpdatedAt = now

	data, err := p.codec.Marshal(flow)
	if err != nil {
		return persistence.NewFlowError("Save", namespace, id, err)
	}

	key := flowKey(namespace, id)

	_, err = p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, 0)
		pipe.SAdd(ctx, indexKey, key)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save flow: %w", err)
	}

	return nil
}

// DeleteFlow removes a flow and its index entry.
func (p *Persistence) DeleteFlow(ctx context.Context, namespace, id string) error {
	key := flowKey(namespace, id)

	var deleted *redis.IntCmd

	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, key)
		pipe.SRem(ctx, indexKey, key)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete flow: %w", err)
	}

	if deleted.Val() == 0 {
		return persistence.NewFlowError("Delete", namespace, id, persistence.ErrFlowNotFound)
	}

	return nil
}
