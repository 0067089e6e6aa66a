package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/newsprint/internal/core"
)

const cacheKeyPrefix = "newsprint:gen:"

// CachedLLM memoizes Generate results in Redis. Cache failures are logged and
// the call falls through to the wrapped provider.
type CachedLLM struct {
	inner core.LLMProvider
	name  string
	rdb   *redis.Client
	ttl   time.Duration
	log   logrus.FieldLogger
}

// NewCachedLLM wraps inner. name must change whenever the underlying model does.
func NewCachedLLM(inner core.LLMProvider, name string, rdb *redis.Client, ttl time.Duration, log logrus.FieldLogger) *CachedLLM {
	return &CachedLLM{inner: inner, name: name, rdb: rdb, ttl: ttl, log: log}
}

// NewRedisClient connects and pings.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func (c *CachedLLM) key(systemPrompt, userPrompt string) string {
	h := sha256.New()
	h.Write([]byte(c.name))
	h.Write([]byte{0})
	h.Write([]byte(systemPrompt))
	h.Write([]byte{0})
	h.Write([]byte(userPrompt))
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *CachedLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	key := c.key(systemPrompt, userPrompt)

	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		return cached, nil
	case errors.Is(err, redis.Nil):
	default:
		c.log.WithError(err).Debug("generation cache read failed")
	}

	out, err := c.inner.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", err
	}

	if err := c.rdb.Set(ctx, key, out, c.ttl).Err(); err != nil {
		c.log.WithError(err).Debug("generation cache write failed")
	}
	return out, nil
}

var _ core.LLMProvider = (*CachedLLM)(nil)
