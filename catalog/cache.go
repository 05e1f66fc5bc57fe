package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/go-redis/redis/v8"
)

// SnapshotCache keeps the last published snapshot in Redis so that a
// restarting process inside the max-age window can warm-start without an
// upstream fetch. It is an optimization only: every failure is reported to
// the caller for logging and otherwise ignored.
type SnapshotCache struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

// NewSnapshotCache builds a cache around an existing Redis client. The TTL
// should match the catalog max age so an expired entry is never mistaken
// for a fresh snapshot.
func NewSnapshotCache(rdb *redis.Client, keyPrefix string, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		rdb: rdb,
		key: keyPrefix + ":snapshot",
		ttl: ttl,
	}
}

// Store writes the snapshot to Redis with the configured TTL.
func (c *SnapshotCache) Store(ctx context.Context, snap *Snapshot) error {
	if snap.Empty() {
		return nil
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "marshal snapshot for cache")
	}
	if err := c.rdb.Set(ctx, c.key, payload, c.ttl).Err(); err != nil {
		return errors.Wrap(err, "store snapshot in redis")
	}
	return nil
}

// Load returns the cached snapshot, or (nil, nil) on a cache miss.
func (c *SnapshotCache) Load(ctx context.Context) (*Snapshot, error) {
	payload, err := c.rdb.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "load snapshot from redis")
	}

	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, errors.Wrap(err, "decode cached snapshot")
	}
	if snap.Empty() {
		return nil, nil
	}
	return &snap, nil
}
