package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher provides typed methods for publishing events to NATS JetStream.
type Publisher struct {
	js jetstream.JetStream
}

// NewPublisher creates a new Publisher.
func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

// PublishTurnRecorded announces a persisted turn.
func (p *Publisher) PublishTurnRecorded(ctx context.Context, event TurnRecordedEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	return p.publish(ctx, SubjectTurnRecorded, event)
}

// PublishProfileUpdated asks every replica to drop its cached profile.
func (p *Publisher) PublishProfileUpdated(ctx context.Context, event ProfileUpdatedEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	return p.publish(ctx, SubjectProfileUpdated, event)
}

// PublishMaintenanceCleaned reports the outcome of a retention pass.
func (p *Publisher) PublishMaintenanceCleaned(ctx context.Context, event MaintenanceCleanedEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	return p.publish(ctx, SubjectMaintenanceCleaned, event)
}

func (p *Publisher) publish(ctx context.Context, subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling event for %s: %w", subject, err)
	}
	_, err = p.js.Publish(ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}
