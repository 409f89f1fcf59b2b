package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RedisLimiterSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	client  *redis.Client
	limiter *RedisLimiter
	now     time.Time
	ctx     context.Context
}

func (s *RedisLimiterSuite) SetupTest() {
	s.mr = miniredis.RunT(s.T())
	s.client = redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.limiter = NewRedisLimiter(s.client, 3, time.Minute)
	s.limiter.now = func() time.Time { return s.now }
	s.ctx = context.Background()
}

func (s *RedisLimiterSuite) TearDownTest() {
	s.client.Close()
}

func TestRedisLimiterSuite(t *testing.T) {
	suite.Run(t, new(RedisLimiterSuite))
}

func (s *RedisLimiterSuite) TestAllowsUpToLimit() {
	for i := 0; i < 3; i++ {
		ok, err := s.limiter.Allow(s.ctx, "ip:1.2.3.4")
		s.Require().NoError(err)
		s.True(ok, "request %d should pass", i+1)
	}
	ok, err := s.limiter.Allow(s.ctx, "ip:1.2.3.4")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *RedisLimiterSuite) TestKeysAreIndependent() {
	for i := 0; i < 3; i++ {
		_, err := s.limiter.Allow(s.ctx, "ip:a")
		s.Require().NoError(err)
	}
	ok, err := s.limiter.Allow(s.ctx, "ip:b")
	s.Require().NoError(err)
	s.True(ok)
}

func (s *RedisLimiterSuite) TestNewWindowResets() {
	for i := 0; i < 4; i++ {
		_, err := s.limiter.Allow(s.ctx, "ip:a")
		s.Require().NoError(err)
	}
	s.now = s.now.Add(time.Minute)
	ok, err := s.limiter.Allow(s.ctx, "ip:a")
	s.Require().NoError(err)
	s.True(ok)
}

func (s *RedisLimiterSuite) TestKeyExpires() {
	_, err := s.limiter.Allow(s.ctx, "ip:a")
	s.Require().NoError(err)

	key := "ratelimit:ip:a:" + "1704067200"
	s.True(s.mr.Exists(key))
	s.Equal(time.Minute, s.mr.TTL(key))
}

func (s *RedisLimiterSuite) TestRedisDown() {
	down := miniredis.NewMiniRedis()
	s.Require().NoError(down.Start())
	client := redis.NewClient(&redis.Options{Addr: down.Addr(), MaxRetries: -1})
	defer client.Close()
	down.Close()

	_, err := NewRedisLimiter(client, 3, time.Minute).Allow(s.ctx, "ip:a")
	s.Error(err)
}

func TestLocalLimiter_Burst(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLocalLimiter(2, time.Second)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "k")
	assert.False(t, ok)

	now = now.Add(500 * time.Millisecond)
	ok, _ = l.Allow(ctx, "k")
	assert.True(t, ok)
}

func TestLocalLimiter_EvictsIdle(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLocalLimiter(5, time.Second)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = l.Allow(ctx, "a")
	_, _ = l.Allow(ctx, "b")
	assert.Equal(t, 2, l.size())

	now = now.Add(10 * time.Second)
	_, _ = l.Allow(ctx, "c")
	assert.Equal(t, 1, l.size())
}
