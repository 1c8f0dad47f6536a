// Package orchestrator runs one conversational turn through context
// detection, memory and persona selection.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aiox-platform/persona/internal/convcontext"
	"github.com/aiox-platform/persona/internal/memory"
	inats "github.com/aiox-platform/persona/internal/nats"
	"github.com/aiox-platform/persona/internal/persona"
)

// ContextDetector is satisfied by *convcontext.Detector.
type ContextDetector interface {
	DetectContext(ctx context.Context, userID, message string, meta convcontext.Metadata) (convcontext.ConversationContext, error)
}

// Memory is satisfied by *memory.Manager.
type Memory interface {
	Snapshot(ctx context.Context, userID, conversationID, targetPerson string) (*memory.Snapshot, error)
	SaveTurn(ctx context.Context, userID, conversationID, targetPerson string, turn memory.Turn, turnNumber int) error
}

// PersonaSelector is satisfied by *persona.Selector.
type PersonaSelector interface {
	SelectPersona(ctx context.Context, userID string, c convcontext.ConversationContext) (*persona.SelectedPersona, error)
}

// EventPublisher is satisfied by *nats.Publisher.
type EventPublisher interface {
	PublishTurnRecorded(ctx context.Context, event inats.TurnRecordedEvent) error
}

// Prepared is everything a response generator needs for one turn.
type Prepared struct {
	Context       convcontext.ConversationContext `json:"context"`
	Memory        *memory.Snapshot                `json:"memory"`
	Persona       *persona.SelectedPersona        `json:"persona"`
	MemoryPrompt  string                          `json:"memory_prompt"`
	PersonaPrompt string                          `json:"persona_prompt"`
}

// Pipeline wires the detector, memory and selector together.
type Pipeline struct {
	detector ContextDetector
	memory   Memory
	selector PersonaSelector
	events   EventPublisher
}

// NewPipeline creates a Pipeline. events may be nil.
func NewPipeline(detector ContextDetector, mem Memory, selector PersonaSelector, events EventPublisher) *Pipeline {
	return &Pipeline{
		detector: detector,
		memory:   mem,
		selector: selector,
		events:   events,
	}
}

// Prepare detects the context of an incoming message, reads memory for the
// conversation and selects the persona. persona.ErrProfileNotFound is
// returned unchanged in the chain.
func (p *Pipeline) Prepare(ctx context.Context, userID, message string, meta convcontext.Metadata) (*Prepared, error) {
	c, err := p.detector.DetectContext(ctx, userID, message, meta)
	if err != nil {
		return nil, fmt.Errorf("detecting context: %w", err)
	}

	snap, err := p.memory.Snapshot(ctx, userID, meta.ConversationID, meta.Sender)
	if err != nil {
		return nil, fmt.Errorf("reading memory: %w", err)
	}

	sel, err := p.selector.SelectPersona(ctx, userID, c)
	if err != nil {
		return nil, fmt.Errorf("selecting persona: %w", err)
	}

	slog.Debug("turn prepared",
		"user_id", userID,
		"conversation_id", meta.ConversationID,
		"mood", c.Emotional.DetectedMood,
		"setting", c.Social.SocialSetting,
	)

	return &Prepared{
		Context:       c,
		Memory:        snap,
		Persona:       sel,
		MemoryPrompt:  memory.PromptDescription(snap),
		PersonaPrompt: persona.PromptDescription(sel),
	}, nil
}

// Record persists a turn with the context it was produced in and announces
// it. A failed announcement is logged; the turn is already stored.
func (p *Pipeline) Record(ctx context.Context, userID string, meta convcontext.Metadata, turn memory.Turn, c *convcontext.ConversationContext) error {
	if turn.Timestamp == 0 {
		turn.Timestamp = meta.Timestamp
	}
	turn.ContextSnapshot = c

	if err := p.memory.SaveTurn(ctx, userID, meta.ConversationID, meta.Sender, turn, meta.TurnNumber); err != nil {
		return err
	}
	if p.events == nil {
		return nil
	}

	event := inats.TurnRecordedEvent{
		UserID:         userID,
		ConversationID: meta.ConversationID,
		TargetPerson:   meta.Sender,
		TurnNumber:     meta.TurnNumber,
		Role:           string(turn.Role),
		Timestamp:      time.Now().UTC(),
	}
	if c != nil {
		event.Mood = c.Emotional.DetectedMood.String()
		event.SocialSetting = c.Social.SocialSetting.String()
		if c.Temporal != nil {
			event.TimeOfDay = c.Temporal.TimeOfDay.String()
		}
	}
	if err := p.events.PublishTurnRecorded(ctx, event); err != nil {
		slog.Warn("publishing turn recorded event", "error", err, "conversation_id", meta.ConversationID)
	}
	return nil
}
