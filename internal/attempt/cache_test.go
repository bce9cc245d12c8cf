package attempt

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingServedStore struct {
	stubServedStore
	gets  int
	saves int
}

func (s *countingServedStore) Save(ctx context.Context, set ServedSet) (ServedSet, bool, error) {
	s.saves++
	return s.stubServedStore.Save(ctx, set)
}

func (s *countingServedStore) Get(ctx context.Context, participantID string, date time.Time) (*ServedSet, error) {
	s.gets++
	return s.stubServedStore.Get(ctx, participantID, date)
}

func cacheFixtureSet() ServedSet {
	return ServedSet{
		ParticipantID: "stu-1",
		QuizDate:      time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Tier:          "easy",
		Questions: []ServedQuestion{
			{ID: "q1", CorrectIndex: 2, Category: "science"},
			{ID: "q2", CorrectIndex: 0, Category: "history"},
		},
		CreatedAt: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
	}
}

func TestCachedServedSetsGetAfterSaveSkipsStore(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	inner := &countingServedStore{stubServedStore: stubServedStore{sets: map[string]ServedSet{}}}
	cache := NewCachedServedSets(inner, client, time.Hour)

	set := cacheFixtureSet()
	_, created, err := cache.Save(context.Background(), set)
	require.NoError(t, err)
	assert.True(t, created)

	got, err := cache.Get(context.Background(), set.ParticipantID, set.QuizDate)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, set.Questions, got.Questions)
	assert.Equal(t, 0, inner.gets, "warm cache should not touch the store")
}

func TestCachedServedSetsMissBackfills(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})

	set := cacheFixtureSet()
	inner := &countingServedStore{stubServedStore: stubServedStore{sets: map[string]ServedSet{}}}
	_, _, err := inner.Save(context.Background(), set)
	require.NoError(t, err)
	inner.saves = 0

	cache := NewCachedServedSets(inner, client, time.Hour)

	got, err := cache.Get(context.Background(), set.ParticipantID, set.QuizDate)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, inner.gets)

	got, err = cache.Get(context.Background(), set.ParticipantID, set.QuizDate)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, inner.gets, "second read should come from the backfilled entry")
}

func TestCachedServedSetsUnknownParticipant(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	inner := &countingServedStore{stubServedStore: stubServedStore{sets: map[string]ServedSet{}}}
	cache := NewCachedServedSets(inner, client, time.Hour)

	got, err := cache.Get(context.Background(), "nobody", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCachedServedSetsEntryExpires(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	inner := &countingServedStore{stubServedStore: stubServedStore{sets: map[string]ServedSet{}}}
	cache := NewCachedServedSets(inner, client, time.Minute)

	set := cacheFixtureSet()
	_, _, err := cache.Save(context.Background(), set)
	require.NoError(t, err)

	srv.FastForward(2 * time.Minute)

	got, err := cache.Get(context.Background(), set.ParticipantID, set.QuizDate)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, inner.gets, "expired entry should fall back to the store")
}
