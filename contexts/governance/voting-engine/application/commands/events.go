package commands

import (
	"encoding/json"
	"time"

	"dvoting/contexts/governance/voting-engine/domain/entities"
	"dvoting/contexts/governance/voting-engine/ports"
)

// newGovernanceEnvelope wraps a committed engine event in the canonical
// envelope. Events are partitioned by election name so consumers of a single
// election observe them in commit order.
func newGovernanceEnvelope(eventID string, event entities.Event, electionName string) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        string(event.Type),
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "voting-engine",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "election",
		PartitionKey:     electionName,
		Sequence:         event.Sequence,
		Caller:           event.Caller,
		Data:             payload,
	}, nil
}
