package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	domainerrors "dvoting/contexts/governance/voting-engine/domain/errors"
	"dvoting/contexts/governance/voting-engine/ports"
)

func testEnvelope(id string, sequence uint64) ports.EventEnvelope {
	return ports.EventEnvelope{
		EventID:      id,
		EventType:    "governance.vote_cast",
		OccurredAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		PartitionKey: "board-election",
		Sequence:     sequence,
		Caller:       "0xa",
		Data:         []byte(`{"proposal_id":0}`),
	}
}

func TestAppendOutboxIsIdempotentPerEventID(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	if err := store.AppendOutbox(ctx, testEnvelope("evt-1", 1)); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	// Exact replay is absorbed.
	if err := store.AppendOutbox(ctx, testEnvelope("evt-1", 1)); err != nil {
		t.Fatalf("replay append failed: %v", err)
	}
	rows, err := store.ListOutbox(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}

	// Same id with a different payload is a conflict.
	conflicting := testEnvelope("evt-1", 1)
	conflicting.Caller = "0xb"
	if err := store.AppendOutbox(ctx, conflicting); !errors.Is(err, domainerrors.ErrAuditConflict) {
		t.Fatalf("conflicting append: got %v, want ErrAuditConflict", err)
	}
}

func TestListPendingOutboxOrdersBySequence(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	// Insert out of order; listing follows commit sequence.
	for _, sequence := range []uint64{3, 1, 2} {
		envelope := testEnvelope("evt-"+string(rune('0'+sequence)), sequence)
		if err := store.AppendOutbox(ctx, envelope); err != nil {
			t.Fatalf("append %d failed: %v", sequence, err)
		}
	}

	pending, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("pending = %d, want 3", len(pending))
	}
	for i, row := range pending {
		if row.Sequence != uint64(i+1) {
			t.Fatalf("row %d sequence = %d, want %d", i, row.Sequence, i+1)
		}
	}

	limited, err := store.ListPendingOutbox(ctx, 2)
	if err != nil {
		t.Fatalf("limited list failed: %v", err)
	}
	if len(limited) != 2 || limited[1].Sequence != 2 {
		t.Fatalf("limited batch wrong: %+v", limited)
	}
}

func TestMarkOutboxPublishedRemovesFromPending(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	if err := store.AppendOutbox(ctx, testEnvelope("evt-1", 1)); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := store.AppendOutbox(ctx, testEnvelope("evt-2", 2)); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if err := store.MarkOutboxPublished(ctx, "evt-1", time.Now().UTC()); err != nil {
		t.Fatalf("mark published failed: %v", err)
	}
	pending, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 1 || pending[0].OutboxID != "evt-2" {
		t.Fatalf("pending after publish wrong: %+v", pending)
	}

	// Published rows stay visible in the full audit listing.
	all, err := store.ListOutbox(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("audit rows = %d, want 2", len(all))
	}

	if err := store.MarkOutboxPublished(ctx, "evt-404", time.Now().UTC()); !errors.Is(err, domainerrors.ErrAuditConflict) {
		t.Fatalf("unknown row: got %v, want ErrAuditConflict", err)
	}
}
