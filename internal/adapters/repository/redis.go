package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/dreamxi/internal/domain/model"
	"github.com/okian/dreamxi/pkg/logger"
	"github.com/okian/dreamxi/pkg/metrics"
)

const (
	defaultRedisPrefix = "dreamxi:"
	defaultRedisTTL    = 24 * time.Hour
	redisBackend       = "redis"
)

// RedisStore keeps matches as JSON documents in Redis. A sorted set indexes
// match ids by expiry so Count ignores matches whose key has expired.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger logger.Logger
}

// NewRedisStore creates a store on an existing client.
func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: defaultRedisPrefix,
		ttl:    defaultRedisTTL,
		logger: logger.Get().Named("redis-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) matchKey(id string) string {
	return fmt.Sprintf("%smatch:%s", s.prefix, id)
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "matches"
}

// expiry returns the index score of a match saved now.
func (s *RedisStore) expiry(now time.Time) float64 {
	if s.ttl == 0 {
		return float64(1<<53 - 1)
	}
	return float64(now.Add(s.ttl).Unix())
}

// Save writes the match document and refreshes its index entry.
func (s *RedisStore) Save(ctx context.Context, m *model.Match) error {
	if m == nil || m.ID == "" {
		return fmt.Errorf("save: %w", ErrInvalidMatch)
	}
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency(redisBackend, "save", float64(time.Since(start).Microseconds())/1000)
	}()

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling match: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.matchKey(m.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: s.expiry(start), Member: m.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		metrics.RecordErrorByComponent("store", "redis_save")
		return fmt.Errorf("saving match %s: %w", m.ID, err)
	}
	return nil
}

// Get reads a match document.
func (s *RedisStore) Get(ctx context.Context, id string) (*model.Match, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency(redisBackend, "get", float64(time.Since(start).Microseconds())/1000)
	}()

	data, err := s.client.Get(ctx, s.matchKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("match %s: %w", id, ErrNotFound)
	}
	if err != nil {
		metrics.RecordErrorByComponent("store", "redis_get")
		return nil, fmt.Errorf("reading match %s: %w", id, err)
	}

	var m model.Match
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshaling match %s: %w", id, err)
	}
	return &m, nil
}

// Count prunes expired index entries and returns the number left. Errors are
// logged and reported as zero.
func (s *RedisStore) Count(ctx context.Context) int {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, s.indexKey(), "-inf", "("+now)
	card := pipe.ZCard(ctx, s.indexKey())
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn(ctx, "counting matches failed", logger.Error(err))
		return 0
	}
	n := int(card.Val())
	metrics.UpdateMatchesStored(n)
	return n
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
