// Package archive keeps a capped history of fetched quote batches in Redis.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/quote-fetcher/pkg/quote"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

// DefaultKey is the Redis list holding archived batches, newest first.
const DefaultKey = "quotes:batches"

var (
	// ErrInvalidLimit is returned by Recent for a non-positive limit.
	ErrInvalidLimit = errors.New("limit must be > 0")

	// ErrInvalidRecord indicates a stored record could not be decoded.
	ErrInvalidRecord = errors.New("invalid archive record")
)

var archiveWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "quote_archive_writes_total",
	Help: "Total archive writes by result",
}, []string{"result"}) // "ok", "error"

// Record is one archived batch.
type Record struct {
	ID        string      `json:"id"`
	FetchedAt time.Time   `json:"fetched_at"`
	URLs      []string    `json:"urls"`
	Results   quote.Batch `json:"results"`
	Failures  int         `json:"failures"`
}

// NewRecord builds a Record for a finished batch with a fresh ID.
func NewRecord(urls []string, batch quote.Batch) Record {
	return Record{
		ID:        uuid.NewString(),
		FetchedAt: time.Now().UTC(),
		URLs:      urls,
		Results:   batch,
		Failures:  batch.Failures(),
	}
}

// Archive stores records in a Redis list trimmed to MaxBatches entries.
type Archive struct {
	redis      *redis.Client
	key        string
	maxBatches int
}

// New creates an archive. maxBatches <= 0 keeps 100 batches.
func New(redisClient *redis.Client, maxBatches int) *Archive {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if maxBatches <= 0 {
		maxBatches = 100
	}
	return &Archive{
		redis:      redisClient,
		key:        DefaultKey,
		maxBatches: maxBatches,
	}
}

// Save prepends rec and trims the list in one pipeline.
func (a *Archive) Save(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		archiveWritesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("marshal record: %w", err)
	}

	pipe := a.redis.TxPipeline()
	pipe.LPush(ctx, a.key, data)
	pipe.LTrim(ctx, a.key, 0, int64(a.maxBatches-1))
	if _, err := pipe.Exec(ctx); err != nil {
		archiveWritesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("redis push: %w", err)
	}

	archiveWritesTotal.WithLabelValues("ok").Inc()
	return nil
}

// Recent returns up to limit records, newest first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	raw, err := a.redis.LRange(ctx, a.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange: %w", err)
	}

	records := make([]Record, 0, len(raw))
	for _, item := range raw {
		var rec Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Ping checks the Redis connection.
func (a *Archive) Ping(ctx context.Context) error {
	return a.redis.Ping(ctx).Err()
}
