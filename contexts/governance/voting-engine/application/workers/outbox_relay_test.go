package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"dvoting/contexts/governance/voting-engine/adapters/memory"
	"dvoting/contexts/governance/voting-engine/ports"
)

type capturingPublisher struct {
	topics   []string
	events   []ports.EventEnvelope
	failAt   int
	failWith error
}

func (p *capturingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	if p.failWith != nil && len(p.events) == p.failAt {
		return p.failWith
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func seedOutbox(t *testing.T, store *memory.Store, count int) {
	t.Helper()
	for i := 1; i <= count; i++ {
		envelope := ports.EventEnvelope{
			EventID:      "evt-" + string(rune('0'+i)),
			EventType:    "governance.vote_cast",
			OccurredAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			PartitionKey: "board-election",
			Sequence:     uint64(i),
			Caller:       "0xa",
			Data:         []byte(`{}`),
		}
		if err := store.AppendOutbox(context.Background(), envelope); err != nil {
			t.Fatalf("seed append %d failed: %v", i, err)
		}
	}
}

func TestRunOncePublishesPendingInCommitOrder(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedOutbox(t, store, 3)
	publisher := &capturingPublisher{}

	relay := OutboxRelay{Outbox: store, Publisher: publisher, BatchSize: 10}
	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("run once failed: %v", err)
	}

	if len(publisher.events) != 3 {
		t.Fatalf("published = %d, want 3", len(publisher.events))
	}
	for i, event := range publisher.events {
		if event.Sequence != uint64(i+1) {
			t.Fatalf("event %d sequence = %d, want %d", i, event.Sequence, i+1)
		}
		if publisher.topics[i] != "governance.vote_cast" {
			t.Fatalf("event %d topic = %s", i, publisher.topics[i])
		}
	}

	pending, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending after relay = %d, want 0", len(pending))
	}

	// Nothing left: a second cycle is a no-op.
	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("idle run failed: %v", err)
	}
	if len(publisher.events) != 3 {
		t.Fatalf("idle run re-published rows")
	}
}

func TestRunOnceStopsOnPublishFailureAndRetries(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedOutbox(t, store, 3)
	brokerDown := errors.New("broker unavailable")
	publisher := &capturingPublisher{failAt: 1, failWith: brokerDown}

	relay := OutboxRelay{Outbox: store, Publisher: publisher, BatchSize: 10}
	if err := relay.RunOnce(ctx); !errors.Is(err, brokerDown) {
		t.Fatalf("run once: got %v, want broker error", err)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("published before failure = %d, want 1", len(publisher.events))
	}

	// The failed row was not marked, so the next cycle picks it up first.
	pending, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 2 || pending[0].Sequence != 2 {
		t.Fatalf("pending after failure wrong: %+v", pending)
	}

	publisher.failWith = nil
	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("retry run failed: %v", err)
	}
	if len(publisher.events) != 3 {
		t.Fatalf("published total = %d, want 3", len(publisher.events))
	}
	if publisher.events[1].Sequence != 2 || publisher.events[2].Sequence != 3 {
		t.Fatalf("retry order wrong: %+v", publisher.events)
	}
}

func TestRunOnceRespectsBatchSize(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedOutbox(t, store, 5)
	publisher := &capturingPublisher{}

	relay := OutboxRelay{Outbox: store, Publisher: publisher, BatchSize: 2}
	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("run once failed: %v", err)
	}
	if len(publisher.events) != 2 {
		t.Fatalf("first batch = %d, want 2", len(publisher.events))
	}

	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("third run failed: %v", err)
	}
	if len(publisher.events) != 5 {
		t.Fatalf("published total = %d, want 5", len(publisher.events))
	}
}
