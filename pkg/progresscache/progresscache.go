package progresscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campusforge/timetable-engine/internal/engine"
)

const keyPrefix = "timetable:run:progress:"

// Sink is a Redis-backed engine.ProgressSink: it durably stores the latest
// ProgressRecord for a run so a caller that lost its in-process channel
// listener (a restarted poller, a second process) can still read how far a
// run has gotten.
type Sink struct {
	client *redis.Client
	runID  string
	ttl    time.Duration
}

// NewSink builds a Sink keyed to one run ID.
func NewSink(client *redis.Client, runID string, ttl time.Duration) Sink {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return Sink{client: client, runID: runID, ttl: ttl}
}

// Notify implements engine.ProgressSink, overwriting the stored record.
func (s Sink) Notify(ctx context.Context, record engine.ProgressRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode progress record: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+s.runID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store progress record: %w", err)
	}
	return nil
}

// Load reads back the most recently stored record for runID.
func Load(ctx context.Context, client *redis.Client, runID string) (engine.ProgressRecord, error) {
	payload, err := client.Get(ctx, keyPrefix+runID).Bytes()
	if err != nil {
		return engine.ProgressRecord{}, fmt.Errorf("load progress record: %w", err)
	}
	var record engine.ProgressRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return engine.ProgressRecord{}, fmt.Errorf("decode progress record: %w", err)
	}
	return record, nil
}
