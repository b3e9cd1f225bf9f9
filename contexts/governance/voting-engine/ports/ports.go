package ports

import (
	"context"
	"time"
)

// EventEnvelope is the canonical audit event shape produced by the command
// layer. Sequence carries the engine's commit order; consumers that need
// strict ordering sort on it.
type EventEnvelope struct {
	EventID          string    `json:"event_id"`
	EventType        string    `json:"event_type"`
	OccurredAt       time.Time `json:"occurred_at"`
	SourceService    string    `json:"source_service"`
	TraceID          string    `json:"trace_id"`
	SchemaVersion    int       `json:"schema_version"`
	PartitionKeyPath string    `json:"partition_key_path"`
	PartitionKey     string    `json:"partition_key"`
	Sequence         uint64    `json:"sequence"`
	Caller           string    `json:"caller"`
	Data             []byte    `json:"data"`
}

// OutboxMessage is a persisted audit row awaiting publication.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Sequence     uint64
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	OutboxWriter
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
	ListOutbox(ctx context.Context) ([]OutboxMessage, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler func(context.Context, EventEnvelope) error) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
