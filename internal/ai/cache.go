package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/board"
)

// Cache wraps a board.Summarizer with Redis-backed response caching. Keys
// include a fingerprint of the snapshot, so any board change misses.
type Cache struct {
	base  board.Summarizer
	redis *redis.Client
	ttl   time.Duration
	log   logrus.FieldLogger
}

// NewCache creates a caching Summarizer. A nil client disables caching.
func NewCache(base board.Summarizer, client *redis.Client, ttl time.Duration, log logrus.FieldLogger) *Cache {
	if base == nil {
		panic("ai.NewCache: base summarizer is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Cache{base: base, redis: client, ttl: ttl, log: log}
}

// Summarize implements board.Summarizer.
func (c *Cache) Summarize(ctx context.Context, snap board.Snapshot) (string, error) {
	key, err := summaryCacheKey(snap)
	if err != nil {
		c.log.WithError(err).Warn("fingerprinting board, skipping cache")
		return c.base.Summarize(ctx, snap)
	}
	if text, ok := c.load(ctx, key); ok {
		return text, nil
	}

	text, err := c.base.Summarize(ctx, snap)
	if err != nil {
		return "", err
	}
	c.store(ctx, key, text)
	return text, nil
}

// Answer implements board.Summarizer.
func (c *Cache) Answer(ctx context.Context, snap board.Snapshot, question string) (string, error) {
	key, err := answerCacheKey(snap, question)
	if err != nil {
		c.log.WithError(err).Warn("fingerprinting board, skipping cache")
		return c.base.Answer(ctx, snap, question)
	}
	if text, ok := c.load(ctx, key); ok {
		return text, nil
	}

	text, err := c.base.Answer(ctx, snap, question)
	if err != nil {
		return "", err
	}
	c.store(ctx, key, text)
	return text, nil
}

func (c *Cache) load(ctx context.Context, key string) (string, bool) {
	if c.redis == nil {
		return "", false
	}
	text, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the summarizer without failing.
			c.log.WithError(err).Warn("reading assistant cache")
		}
		return "", false
	}
	return text, true
}

func (c *Cache) store(ctx context.Context, key, text string) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	if err := c.redis.Set(ctx, key, text, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("writing assistant cache")
	}
}

// encodeSnapshot writes the canonical form of a snapshot for hashing.
var encodeSnapshot = func(w io.Writer, snap board.Snapshot) error {
	return json.NewEncoder(w).Encode(snap)
}

// fingerprint hashes everything the prompts are built from.
func fingerprint(snap board.Snapshot, extra string) (string, error) {
	h := sha256.New()
	if err := encodeSnapshot(h, snap); err != nil {
		return "", fmt.Errorf("encoding snapshot of %s: %w", snap.ProjectID, err)
	}
	h.Write([]byte(extra))
	return hex.EncodeToString(h.Sum(nil)), nil
}

func summaryCacheKey(snap board.Snapshot) (string, error) {
	fp, err := fingerprint(snap, "")
	if err != nil {
		return "", err
	}
	return "summary:" + snap.ProjectID + ":" + fp, nil
}

func answerCacheKey(snap board.Snapshot, question string) (string, error) {
	fp, err := fingerprint(snap, question)
	if err != nil {
		return "", err
	}
	return "answer:" + snap.ProjectID + ":" + fp, nil
}
