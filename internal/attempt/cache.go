package attempt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultServedSetTTL = 24 * time.Hour

// CachedServedSets fronts a ServedSetStore with Redis so the repeat-fetch and
// submission paths skip the database for a set served moments earlier. The
// database row stays authoritative; the cache only mirrors what Save pinned.
type CachedServedSets struct {
	inner  ServedSetStore
	client *redis.Client
	ttl    time.Duration
}

var _ ServedSetStore = (*CachedServedSets)(nil)

func NewCachedServedSets(inner ServedSetStore, client *redis.Client, ttl time.Duration) *CachedServedSets {
	if ttl <= 0 {
		ttl = defaultServedSetTTL
	}
	return &CachedServedSets{inner: inner, client: client, ttl: ttl}
}

func servedSetKey(participantID string, date time.Time) string {
	return "quiz:served:" + participantID + ":" + date.Format("2006-01-02")
}

// Save delegates to the store and mirrors whichever set ended up pinned,
// whether this call created it or lost the race to an earlier serve.
func (c *CachedServedSets) Save(ctx context.Context, set ServedSet) (ServedSet, bool, error) {
	pinned, created, err := c.inner.Save(ctx, set)
	if err != nil {
		return ServedSet{}, false, err
	}
	c.put(ctx, pinned)
	return pinned, created, nil
}

// Get serves from Redis when possible and backfills on a miss.
func (c *CachedServedSets) Get(ctx context.Context, participantID string, date time.Time) (*ServedSet, error) {
	data, err := c.client.Get(ctx, servedSetKey(participantID, date)).Bytes()
	if err == nil {
		var set ServedSet
		if err := json.Unmarshal(data, &set); err == nil {
			return &set, nil
		}
		// Corrupt entry, fall through to the store.
	} else if err != redis.Nil {
		return nil, err
	}

	set, err := c.inner.Get(ctx, participantID, date)
	if err != nil {
		return nil, err
	}
	if set != nil {
		c.put(ctx, *set)
	}
	return set, nil
}

// put is best effort; a cache write failure never fails the request.
func (c *CachedServedSets) put(ctx context.Context, set ServedSet) {
	data, err := json.Marshal(set)
	if err != nil {
		return
	}
	c.client.Set(ctx, servedSetKey(set.ParticipantID, set.QuizDate), data, c.ttl)
}
