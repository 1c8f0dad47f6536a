package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"
)

// ConsumerManager handles durable consumer creation and retrieval.
type ConsumerManager struct {
	js jetstream.JetStream
}

// NewConsumerManager creates a new ConsumerManager.
func NewConsumerManager(js jetstream.JetStream) *ConsumerManager {
	return &ConsumerManager{js: js}
}

// EnsureConsumer creates or updates a durable consumer on the given stream.
func (cm *ConsumerManager) EnsureConsumer(ctx context.Context, stream, name, filterSubject string) (jetstream.Consumer, error) {
	cfg := jetstream.ConsumerConfig{
		Durable:       name,
		FilterSubject: filterSubject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	}

	consumer, err := cm.js.CreateOrUpdateConsumer(ctx, stream, cfg)
	if err != nil {
		return nil, fmt.Errorf("ensuring consumer %s on %s: %w", name, stream, err)
	}
	return consumer, nil
}

// ProfileCache is the part of the persona selector that profile updates
// invalidate.
type ProfileCache interface {
	Invalidate(userID string)
	ClearCache()
}

// ProfileUpdateListener drops cached profiles when profile_updated events
// arrive.
type ProfileUpdateListener struct {
	consumerMgr *ConsumerManager
	cache       ProfileCache
	durable     string
}

// NewProfileUpdateListener creates a listener. durable names the JetStream
// consumer; replicas that must each see every event need distinct names.
func NewProfileUpdateListener(consumerMgr *ConsumerManager, cache ProfileCache, durable string) *ProfileUpdateListener {
	return &ProfileUpdateListener{consumerMgr: consumerMgr, cache: cache, durable: durable}
}

// Start runs the fetch loop until ctx is cancelled.
func (l *ProfileUpdateListener) Start(ctx context.Context) error {
	consumer, err := l.consumerMgr.EnsureConsumer(ctx, StreamEvents, l.durable, SubjectProfileUpdated)
	if err != nil {
		return err
	}

	slog.Info("profile update listener started", "consumer", l.durable)

	for {
		msgs, err := consumer.Fetch(10, jetstream.FetchMaxWait(FetchTimeout))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Debug("fetching profile updates", "error", err)
			continue
		}

		for msg := range msgs.Messages() {
			if err := l.Handle(msg.Data()); err != nil {
				slog.Error("handling profile update", "error", err)
				_ = msg.Term()
				continue
			}
			_ = msg.Ack()
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

// Handle applies one encoded ProfileUpdatedEvent to the cache.
func (l *ProfileUpdateListener) Handle(data []byte) error {
	var event ProfileUpdatedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("unmarshaling profile update: %w", err)
	}
	if event.UserID == "" {
		l.cache.ClearCache()
		return nil
	}
	l.cache.Invalidate(event.UserID)
	slog.Debug("profile update applied", "user_id", event.UserID, "event_id", event.ID)
	return nil
}
