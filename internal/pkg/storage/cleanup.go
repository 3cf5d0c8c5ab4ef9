package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/cresol/hub-api/internal/pkg/logger"
	"github.com/cresol/hub-api/internal/pkg/retry"
)

const orphanQueueKey = "storage:orphans"

// OrphanQueue holds objects whose removal failed.
type OrphanQueue interface {
	Push(ctx context.Context, objs ...Object) error
	Pop(ctx context.Context, n int) ([]Object, error)
	Len(ctx context.Context) (int64, error)
}

// RedisQueue keeps orphans in a Redis list so every instance and the
// operator CLI share them.
type RedisQueue struct {
	client *redis.Client
}

func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client}
}

func (q *RedisQueue) Push(ctx context.Context, objs ...Object) error {
	if len(objs) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(objs))
	for _, o := range objs {
		b, err := json.Marshal(o)
		if err != nil {
			return err
		}
		values = append(values, b)
	}
	return q.client.LPush(ctx, orphanQueueKey, values...).Err()
}

func (q *RedisQueue) Pop(ctx context.Context, n int) ([]Object, error) {
	raw, err := q.client.RPopCount(ctx, orphanQueueKey, n).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	objs := make([]Object, 0, len(raw))
	for _, s := range raw {
		var o Object
		if err := json.Unmarshal([]byte(s), &o); err != nil {
			log.Warn().Err(err).Str("value", s).Msg("Dropping malformed orphan entry")
			continue
		}
		objs = append(objs, o)
	}
	return objs, nil
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, orphanQueueKey).Result()
}

// MemoryQueue is the single-instance fallback when Redis is not configured.
type MemoryQueue struct {
	mu    sync.Mutex
	items []Object
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

func (q *MemoryQueue) Push(_ context.Context, objs ...Object) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, objs...)
	return nil
}

func (q *MemoryQueue) Pop(_ context.Context, n int) ([]Object, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n > len(q.items) {
		n = len(q.items)
	}
	out := append([]Object(nil), q.items[:n]...)
	q.items = q.items[n:]
	return out, nil
}

func (q *MemoryQueue) Len(_ context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.items)), nil
}

// Cleaner removes stored files after their database row is gone. Removal is
// best effort: failures are logged and queued for the sweeper, never
// returned to the caller.
type Cleaner struct {
	store ObjectStore
	queue OrphanQueue
}

func NewCleaner(store ObjectStore, queue OrphanQueue) *Cleaner {
	return &Cleaner{store: store, queue: queue}
}

// Store exposes the underlying object store.
func (c *Cleaner) Store() ObjectStore {
	return c.store
}

// Queue exposes the orphan queue the sweeper drains.
func (c *Cleaner) Queue() OrphanQueue {
	return c.queue
}

// Remove deletes objs, grouping them per bucket.
func (c *Cleaner) Remove(ctx context.Context, objs ...Object) {
	for bucket, keys := range groupByBucket(objs) {
		err := c.store.Remove(ctx, bucket, keys...)
		if err == nil {
			continue
		}

		logger.FromContext(ctx).Warn().Err(err).
			Str("bucket", bucket).
			Strs("keys", keys).
			Msg("Storage removal failed, queued for retry")

		if errors.Is(err, ErrBucketNotFound) {
			continue
		}
		pending := make([]Object, len(keys))
		for i, k := range keys {
			pending[i] = Object{Bucket: bucket, Key: k}
		}
		if qErr := c.queue.Push(context.WithoutCancel(ctx), pending...); qErr != nil {
			logger.FromContext(ctx).Error().Err(qErr).Strs("keys", keys).Msg("Failed to queue orphaned objects")
		}
	}
}

func groupByBucket(objs []Object) map[string][]string {
	grouped := make(map[string][]string)
	for _, o := range objs {
		if o.Key == "" {
			continue
		}
		grouped[o.Bucket] = append(grouped[o.Bucket], o.Key)
	}
	return grouped
}

// Sweeper retries queued removals on an interval.
type Sweeper struct {
	store     ObjectStore
	queue     OrphanQueue
	policy    retry.Policy
	batchSize int
}

func NewSweeper(store ObjectStore, queue OrphanQueue, policy retry.Policy) *Sweeper {
	return &Sweeper{store: store, queue: queue, policy: policy, batchSize: 100}
}

// Start runs the sweeper until ctx is done.
func (s *Sweeper) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Storage sweeper stopped")
			return
		case <-ticker.C:
			if n, err := s.RunOnce(ctx); err != nil {
				log.Error().Err(err).Msg("Storage sweep failed")
			} else if n > 0 {
				log.Info().Int("removed", n).Msg("Swept orphaned storage objects")
			}
		}
	}
}

// RunOnce drains the queue once and returns the number of removed objects.
// Objects that still fail go back to the queue.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	total, err := s.queue.Len(ctx)
	if err != nil {
		return 0, fmt.Errorf("orphan queue length: %w", err)
	}

	removed := 0
	var failed []Object
	for drained := int64(0); drained < total; {
		batch, err := s.queue.Pop(ctx, s.batchSize)
		if err != nil {
			return removed, fmt.Errorf("pop orphans: %w", err)
		}
		if len(batch) == 0 {
			break
		}
		drained += int64(len(batch))

		for bucket, keys := range groupByBucket(batch) {
			err := retry.Do(ctx, s.policy, func(ctx context.Context) error {
				err := s.store.Remove(ctx, bucket, keys...)
				if errors.Is(err, ErrBucketNotFound) {
					return retry.Permanent(err)
				}
				return err
			})
			switch {
			case err == nil:
				removed += len(keys)
			case errors.Is(err, ErrBucketNotFound):
				log.Warn().Str("bucket", bucket).Int("keys", len(keys)).Msg("Dropping orphans of missing bucket")
			default:
				for _, k := range keys {
					failed = append(failed, Object{Bucket: bucket, Key: k})
				}
			}
		}
	}

	if len(failed) > 0 {
		if err := s.queue.Push(ctx, failed...); err != nil {
			return removed, fmt.Errorf("requeue orphans: %w", err)
		}
	}
	return removed, nil
}
