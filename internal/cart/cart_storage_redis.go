package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cartKeyPrefix = "cart:"

	// Abandoned carts expire eventually; every write refreshes the clock.
	cartTTL = 30 * 24 * time.Hour
)

// RedisStorage persists each cart as a JSON-encoded ordered list.
type RedisStorage struct {
	rdb *redis.Client
}

func NewRedisStorage(rdb *redis.Client) *RedisStorage {
	if rdb == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStorage{rdb: rdb}
}

func (r *RedisStorage) Load(ctx context.Context, cartID string) ([]Item, error) {
	raw, err := r.rdb.Get(ctx, cartKeyPrefix+cartID).Bytes()
	if err == redis.Nil {
		return []Item{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", cartID, err)
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		// A corrupt blob is treated as an empty cart; the next write
		// replaces it with a well-formed list.
		return []Item{}, nil
	}
	return items, nil
}

func (r *RedisStorage) Save(ctx context.Context, cartID string, items []Item) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", cartID, err)
	}
	if err := r.rdb.Set(ctx, cartKeyPrefix+cartID, raw, cartTTL).Err(); err != nil {
		return fmt.Errorf("save cart %s: %w", cartID, err)
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, cartID string) error {
	if err := r.rdb.Del(ctx, cartKeyPrefix+cartID).Err(); err != nil {
		return fmt.Errorf("delete cart %s: %w", cartID, err)
	}
	return nil
}
