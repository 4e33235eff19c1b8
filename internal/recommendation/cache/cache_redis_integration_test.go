//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"carepath/pkg/platform/sentinel"
	"carepath/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.cache = NewRedisCache(s.redis.Client)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestSetAndGetRoundTrip() {
	ctx := context.Background()

	payload := []byte(`["Physical Therapy","Weight Management Program"]`)
	s.Require().NoError(s.cache.Set(ctx, SetKey(1, "Jane", "Doe"), payload, time.Hour))

	got, err := s.cache.Get(ctx, SetKey(1, "Jane", "Doe"))
	s.Require().NoError(err)
	s.Equal(payload, got, "payload must round-trip byte-identical")
}

func (s *RedisCacheSuite) TestGetMiss() {
	_, err := s.cache.Get(context.Background(), "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisCacheSuite) TestDelete() {
	ctx := context.Background()
	key := SetKey(1, "Jane", "Doe")

	s.Require().NoError(s.cache.Set(ctx, key, []byte("v"), time.Hour))
	s.Require().NoError(s.cache.Delete(ctx, key))

	_, err := s.cache.Get(ctx, key)
	s.ErrorIs(err, sentinel.ErrNotFound)

	// Deleting an absent key is a no-op.
	s.NoError(s.cache.Delete(ctx, key))
}

func (s *RedisCacheSuite) TestEntryExpires() {
	ctx := context.Background()
	key := RecordKey("rec-1")

	s.Require().NoError(s.cache.Set(ctx, key, []byte("v"), 500*time.Millisecond))

	_, err := s.cache.Get(ctx, key)
	s.Require().NoError(err)

	s.Eventually(func() bool {
		_, err := s.cache.Get(ctx, key)
		return err != nil
	}, 3*time.Second, 100*time.Millisecond, "entry should expire after its TTL")
}
