package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"weft/internal/assembly"
)

const keyPrefix = "weft:assembly:"

// AssemblyRecord is one cached assembly result.
type AssemblyRecord struct {
	MilestoneID string            `json:"milestone_id"`
	Task        string            `json:"task"`
	Context     string            `json:"context"`
	Meta        assembly.Metadata `json:"meta"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Redis caches assembled contexts so repeated runs against an unchanged
// index skip the pipeline.
type Redis struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedis connects to the configured Redis instance and verifies it
// answers.
func NewRedis(url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.MaxRetries = 3
	opts.DialTimeout = 2 * time.Second
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Redis{client: client, ctx: context.Background()}, nil
}

// CacheAssembly stores a result under the given cache key.
func (r *Redis) CacheAssembly(key string, rec *AssemblyRecord, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal assembly: %w", err)
	}
	return r.client.Set(r.ctx, keyPrefix+key, data, ttl).Err()
}

// GetAssembly retrieves a cached result, or an error when absent.
func (r *Redis) GetAssembly(key string) (*AssemblyRecord, error) {
	data, err := r.client.Get(r.ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("assembly not found in cache")
	} else if err != nil {
		return nil, fmt.Errorf("failed to get assembly: %w", err)
	}

	var rec AssemblyRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal assembly: %w", err)
	}
	return &rec, nil
}

// Invalidate deletes every cached assembly.
func (r *Redis) Invalidate() error {
	iter := r.client.Scan(r.ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(r.ctx) {
		if err := r.client.Del(r.ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Stats reports how many assemblies are cached.
func (r *Redis) Stats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var count int64
	iter := r.client.Scan(r.ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(r.ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	stats["cached_assemblies"] = count

	if info, err := r.client.Info(r.ctx, "memory").Result(); err == nil {
		stats["memory_info"] = info
	}
	return stats, nil
}

// Close closes the connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
