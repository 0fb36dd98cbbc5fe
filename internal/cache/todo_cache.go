package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	dom "TodoAPI/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyList   = "todo:list"
	keyItem   = "todo:item:"
	scanBatch = 100
)

// TodoCache caches populated todo reads in Redis.
type TodoCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTodoCache returns a new TodoCache.
func NewTodoCache(rdb *redis.Client, ttl time.Duration) *TodoCache {
	return &TodoCache{rdb: rdb, ttl: ttl}
}

// GetList returns cached list or nil if miss.
func (c *TodoCache) GetList(ctx context.Context) ([]dom.Todo, error) {
	var list []dom.Todo
	ok, err := c.get(ctx, keyList, &list)
	if err != nil || !ok {
		return nil, err
	}
	if list == nil {
		list = []dom.Todo{}
	}
	return list, nil
}

// SetList stores the list in cache.
func (c *TodoCache) SetList(ctx context.Context, list []dom.Todo) error {
	return c.set(ctx, keyList, list)
}

// GetTodo returns the cached populated todo. ok is false on a miss.
func (c *TodoCache) GetTodo(ctx context.Context, id string) (t dom.Todo, ok bool, err error) {
	ok, err = c.get(ctx, keyItem+id, &t)
	return t, ok, err
}

// SetTodo stores a populated todo.
func (c *TodoCache) SetTodo(ctx context.Context, t dom.Todo) error {
	return c.set(ctx, keyItem+t.ID, t)
}

// InvalidateAll removes the list and every cached todo (cache invalidation on write).
func (c *TodoCache) InvalidateAll(ctx context.Context) error {
	if err := c.rdb.Del(ctx, keyList).Err(); err != nil {
		return err
	}
	iter := c.rdb.Scan(ctx, 0, keyItem+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *TodoCache) get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *TodoCache) set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}
