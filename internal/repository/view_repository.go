package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"advisory-service/internal/models"
	"advisory-service/internal/utils"
	"advisory-service/internal/viewstate"

	"github.com/redis/go-redis/v9"
)

// ViewRepository stores page views for a limited time. Update applies fn atomically per view.
type ViewRepository[In any, Out any] interface {
	Create(ctx context.Context, view viewstate.View[In, Out]) error
	Get(ctx context.Context, id string) (viewstate.View[In, Out], error)
	Update(ctx context.Context, id string, fn func(viewstate.View[In, Out]) (viewstate.View[In, Out], error)) (viewstate.View[In, Out], error)
}

type memoryEntry[T any] struct {
	value     T
	expiresAt time.Time
}

type memoryViewRepository[In any, Out any] struct {
	mu    sync.Mutex
	views map[string]memoryEntry[viewstate.View[In, Out]]
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryViewRepository[In any, Out any](ttl time.Duration) ViewRepository[In, Out] {
	return &memoryViewRepository[In, Out]{
		views: make(map[string]memoryEntry[viewstate.View[In, Out]]),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (r *memoryViewRepository[In, Out]) Create(_ context.Context, view viewstate.View[In, Out]) error {
	if view.ID == "" {
		return fmt.Errorf("view ID cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked()
	r.views[view.ID] = memoryEntry[viewstate.View[In, Out]]{value: view, expiresAt: r.now().Add(r.ttl)}
	return nil
}

func (r *memoryViewRepository[In, Out]) Get(_ context.Context, id string) (viewstate.View[In, Out], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getLocked(id)
}

func (r *memoryViewRepository[In, Out]) Update(_ context.Context, id string, fn func(viewstate.View[In, Out]) (viewstate.View[In, Out], error)) (viewstate.View[In, Out], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.getLocked(id)
	if err != nil {
		return current, err
	}
	next, err := fn(current)
	if err != nil {
		return current, err
	}
	r.views[id] = memoryEntry[viewstate.View[In, Out]]{value: next, expiresAt: r.now().Add(r.ttl)}
	return next, nil
}

func (r *memoryViewRepository[In, Out]) getLocked(id string) (viewstate.View[In, Out], error) {
	entry, ok := r.views[id]
	if !ok || !r.now().Before(entry.expiresAt) {
		delete(r.views, id)
		return viewstate.View[In, Out]{}, fmt.Errorf("view %s: %w", id, models.ErrNotFound)
	}
	return entry.value, nil
}

func (r *memoryViewRepository[In, Out]) sweepLocked() {
	now := r.now()
	for id, entry := range r.views {
		if !now.Before(entry.expiresAt) {
			delete(r.views, id)
		}
	}
}

type redisViewRepository[In any, Out any] struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisViewRepository[In any, Out any](client *redis.Client, ttl time.Duration) ViewRepository[In, Out] {
	return &redisViewRepository[In, Out]{client: client, ttl: ttl}
}

func (r *redisViewRepository[In, Out]) getViewKey(id string) string {
	return fmt.Sprintf("advisory:view:%s", id)
}

func (r *redisViewRepository[In, Out]) Create(ctx context.Context, view viewstate.View[In, Out]) error {
	if view.ID == "" {
		return fmt.Errorf("view ID cannot be empty")
	}
	data, err := utils.SerializeModel(view)
	if err != nil {
		return fmt.Errorf("failed to serialize view: %w", err)
	}
	if err := r.client.Set(ctx, r.getViewKey(view.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store view: %w", err)
	}
	return nil
}

func (r *redisViewRepository[In, Out]) Get(ctx context.Context, id string) (viewstate.View[In, Out], error) {
	return r.load(ctx, r.client, id)
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *redisViewRepository[In, Out]) load(ctx context.Context, g getter, id string) (viewstate.View[In, Out], error) {
	var view viewstate.View[In, Out]
	data, err := g.Get(ctx, r.getViewKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return view, fmt.Errorf("view %s: %w", id, models.ErrNotFound)
		}
		return view, fmt.Errorf("failed to get view: %w", err)
	}
	if err := utils.DeserializeModel(data, &view); err != nil {
		return view, fmt.Errorf("failed to deserialize view: %w", err)
	}
	return view, nil
}

const maxUpdateAttempts = 5

// Update uses WATCH so a concurrent writer forces a retry instead of a lost update.
func (r *redisViewRepository[In, Out]) Update(ctx context.Context, id string, fn func(viewstate.View[In, Out]) (viewstate.View[In, Out], error)) (viewstate.View[In, Out], error) {
	key := r.getViewKey(id)
	var next viewstate.View[In, Out]

	txf := func(tx *redis.Tx) error {
		current, err := r.load(ctx, tx, id)
		if err != nil {
			return err
		}
		next, err = fn(current)
		if err != nil {
			return err
		}
		data, err := utils.SerializeModel(next)
		if err != nil {
			return fmt.Errorf("failed to serialize view: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}

	for range maxUpdateAttempts {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return next, err
	}
	return next, fmt.Errorf("failed to update view %s: too much contention", id)
}
