package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	transcriptKeyPrefix   = "chat_transcript:"
	defaultTranscriptTTL  = 72 * time.Hour
	transcriptMaxMessages = 250
)

// TranscriptMessage is one archived turn of a session.
type TranscriptMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Body      string    `json:"body"`
	Intent    string    `json:"intent,omitempty"`
	State     string    `json:"state,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TranscriptStore archives session turns in Redis. A nil store is a no-op so
// deployments without Redis skip archiving entirely.
type TranscriptStore struct {
	redis       *redis.Client
	tracer      trace.Tracer
	ttl         time.Duration
	maxMessages int64
}

// NewTranscriptStore creates a transcript store. Returns nil when redisClient
// is nil.
func NewTranscriptStore(redisClient *redis.Client, ttl time.Duration) *TranscriptStore {
	if redisClient == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultTranscriptTTL
	}
	return &TranscriptStore{
		redis:       redisClient,
		tracer:      otel.Tracer("medbook.internal.session.transcript"),
		ttl:         ttl,
		maxMessages: transcriptMaxMessages,
	}
}

// Append archives one turn, trimming the list to the retention cap.
func (s *TranscriptStore) Append(ctx context.Context, sessionID string, msg TranscriptMessage) error {
	if s == nil || s.redis == nil {
		return nil
	}
	if sessionID == "" {
		return errors.New("session: transcript sessionID required")
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("session: marshal transcript message: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "session.transcript.append")
	defer span.End()

	key := transcriptKey(sessionID)
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, s.ttl)
	if s.maxMessages > 0 {
		pipe.LTrim(ctx, key, -s.maxMessages, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: append transcript message: %w", err)
	}
	return nil
}

// List returns the most recent limit messages in chronological order; limit
// zero returns everything retained.
func (s *TranscriptStore) List(ctx context.Context, sessionID string, limit int64) ([]TranscriptMessage, error) {
	if s == nil || s.redis == nil {
		return nil, nil
	}
	if sessionID == "" {
		return nil, errors.New("session: transcript sessionID required")
	}

	ctx, span := s.tracer.Start(ctx, "session.transcript.list")
	defer span.End()

	start := int64(0)
	if limit > 0 {
		start = -limit
	}

	raw, err := s.redis.LRange(ctx, transcriptKey(sessionID), start, -1).Result()
	if err != nil {
		span.RecordError(err)
		if err == redis.Nil {
			return []TranscriptMessage{}, nil
		}
		return nil, fmt.Errorf("session: list transcript: %w", err)
	}

	out := make([]TranscriptMessage, 0, len(raw))
	for _, item := range raw {
		var msg TranscriptMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			span.RecordError(err)
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func transcriptKey(sessionID string) string {
	return transcriptKeyPrefix + sessionID
}
