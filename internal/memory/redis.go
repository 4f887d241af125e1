package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the list key used when none is configured.
const DefaultRedisKey = "bluebot:memories"

// Redis stores memories as a Redis list of JSON-encoded records.
type Redis struct {
	client *redis.Client
	key    string
	owned  bool
}

// NewRedis uses an existing client. The caller keeps ownership of it.
func NewRedis(client *redis.Client, key string) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{client: client, key: key}
}

// NewRedisFromURL connects to rawURL (redis://host:port/db) and pings it.
func NewRedisFromURL(ctx context.Context, rawURL, key string) (*Redis, error) {
	if rawURL == "" {
		rawURL = "redis://localhost:6379/0"
	}
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	r := NewRedis(client, key)
	r.owned = true
	return r, nil
}

func (r *Redis) Describe() string { return "redis key " + r.key }

func (r *Redis) Load(ctx context.Context) (*Data, error) {
	vals, err := r.client.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", r.key, err)
	}

	data := Empty()
	for _, v := range vals {
		var rec Record
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			continue // skip malformed entries
		}
		data.Memories = append(data.Memories, rec)
	}
	return data, nil
}

func (r *Redis) Save(ctx context.Context, data *Data) error {
	records := data.normalize().Memories
	values := make([]interface{}, 0, len(records))
	for _, rec := range records {
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling record: %w", err)
		}
		values = append(values, string(raw))
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key)
		if len(values) > 0 {
			pipe.RPush(ctx, r.key, values...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("pipeline exec for %s: %w", r.key, err)
	}
	return nil
}

func (r *Redis) Close() error {
	if r.owned {
		return r.client.Close()
	}
	return nil
}
