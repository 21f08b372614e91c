// FilePath: internal/source/redis.go
package source

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/blitt001/ha-opensensemap/internal/config"
	"github.com/blitt001/ha-opensensemap/internal/models"
)

// Redis reads sensor state from a Redis hash per reference. Producers are
// expected to write HSET <ref> value <v> unit <u> whenever a reading
// changes; a missing key or sentinel value is reported as unavailable.
type Redis struct {
	client *redis.Client
}

// NewRedis connects a Redis-backed source.
func NewRedis(cfg config.RedisConfig) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Redis{client: client}
}

// Ping verifies the connection at startup.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Get fetches the current reading for a reference.
func (r *Redis) Get(ctx context.Context, ref string) (models.Reading, error) {
	fields, err := r.client.HGetAll(ctx, ref).Result()
	if err != nil {
		return models.Reading{}, err
	}
	if len(fields) == 0 {
		return models.Reading{Available: false}, nil
	}
	reading := models.Reading{
		Value: fields["value"],
		Unit:  fields["unit"],
	}
	reading.Available = usable(reading.Value)
	return reading, nil
}

// Close releases the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
