package service

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/himanshusingh9554/edumateai/pkg/hash"
)

// AnswerCacheTTL bounds how long answers live in the hot cache. The durable
// question store underneath has no eviction; Redis only saves it a read.
const AnswerCacheTTL = 24 * time.Hour

// CacheService provides a Redis read-through layer in front of the durable
// question/answer lookup. Keys are derived from the exact (video URL,
// question) pair, so its hit semantics are identical to the database cache.
type CacheService struct {
	rdb *redis.Client
}

// NewCacheService creates a new CacheService. If redisURL is empty or the
// connection fails, it returns a CacheService with a nil client (cache
// operations become no-ops and every lookup falls through to the database).
func NewCacheService(redisURL string) *CacheService {
	if redisURL == "" {
		log.Println("redis: no URL configured, answer caching disabled")
		return &CacheService{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("redis: invalid URL %q, answer caching disabled: %v", redisURL, err)
		return &CacheService{}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis: connection failed, answer caching disabled: %v", err)
		return &CacheService{}
	}

	log.Println("redis: connected, answer caching enabled")
	return &CacheService{rdb: rdb}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// GetAnswer retrieves a cached answer for the exact (video URL, question)
// pair. Returns "" on miss or when caching is disabled.
func (c *CacheService) GetAnswer(ctx context.Context, videoURL, question string) (string, error) {
	if c.rdb == nil {
		return "", nil
	}
	answer, err := c.rdb.Get(ctx, answerKey(videoURL, question)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return answer, err
}

// SetAnswer stores an answer in the hot cache. Best-effort: the durable row
// already exists by the time this is called.
func (c *CacheService) SetAnswer(ctx context.Context, videoURL, question, answer string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Set(ctx, answerKey(videoURL, question), answer, AnswerCacheTTL).Err()
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func answerKey(videoURL, question string) string {
	return "qa:" + hash.AnswerKey(videoURL, question)
}
